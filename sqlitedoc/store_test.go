package sqlitedoc

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kartikbazzad/bunbase/bunquery"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	coll := openTestStore(t).Collection("users")

	key, err := coll.Insert(ctx, bunquery.Document{"name": "Alice", "age": 30})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	doc, err := coll.Get(ctx, key.String())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc["name"] != "Alice" {
		t.Errorf("doc = %v", doc)
	}
	// JSON round-trips numbers as float64.
	if doc["age"] != float64(30) {
		t.Errorf("age = %v (%T)", doc["age"], doc["age"])
	}

	if _, err := coll.Get(ctx, "00000000-0000-0000-0000-000000000001"); !errors.Is(err, bunquery.ErrNotFound) {
		t.Errorf("missing id should yield ErrNotFound, got %v", err)
	}
}

func TestInsertReplacesSameKey(t *testing.T) {
	ctx := context.Background()
	coll := openTestStore(t).Collection("users")

	key, err := coll.Insert(ctx, bunquery.Document{"name": "Alice"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := coll.Insert(ctx, bunquery.Document{
		bunquery.NativeKeyField: key.String(),
		"name":                  "Alice B",
	}); err != nil {
		t.Fatalf("re-insert failed: %v", err)
	}

	doc, err := coll.Get(ctx, key.String())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc["name"] != "Alice B" {
		t.Errorf("replacement did not take, doc = %v", doc)
	}

	n, err := coll.CountDocuments(ctx, nil)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1 after replace", n)
	}
}

func TestInsertRejectsBadKey(t *testing.T) {
	coll := openTestStore(t).Collection("users")
	_, err := coll.Insert(context.Background(), bunquery.Document{
		bunquery.NativeKeyField: "not-a-key",
	})
	var validationErr *bunquery.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestFindAndCount(t *testing.T) {
	ctx := context.Background()
	coll := openTestStore(t).Collection("users")
	for i := 0; i < 6; i++ {
		dept := "eng"
		if i%2 == 0 {
			dept = "sales"
		}
		if _, err := coll.Insert(ctx, bunquery.Document{"n": i, "department": dept}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	conditions := map[string]any{"department": map[string]any{"$eq": "eng"}}
	n, err := coll.CountDocuments(ctx, conditions)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	cur, err := coll.Find(ctx, conditions)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	docs, err := cur.Sort(map[string]int{"n": 1}).All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(docs) != 3 || docs[0]["n"] != float64(1) || docs[2]["n"] != float64(5) {
		t.Errorf("docs = %v", docs)
	}
}

func TestNativeKeyPushdown(t *testing.T) {
	ctx := context.Background()
	coll := openTestStore(t).Collection("users")

	key, err := coll.Insert(ctx, bunquery.Document{"name": "Alice"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := coll.Insert(ctx, bunquery.Document{"name": "Bob"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// The shape the expression builder emits for an id filter.
	conditions := map[string]any{
		bunquery.NativeKeyField: map[string]any{"$eq": key},
	}
	cur, err := coll.Find(ctx, conditions)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	docs, err := cur.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(docs) != 1 || docs[0]["name"] != "Alice" {
		t.Errorf("key lookup got %v", docs)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	key, err := store.Collection("users").Insert(ctx, bunquery.Document{"name": "Alice"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	doc, err := reopened.Collection("users").Get(ctx, key.String())
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if doc["name"] != "Alice" {
		t.Errorf("doc = %v", doc)
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if _, err := store.Collection("users").Insert(ctx, bunquery.Document{"name": "Alice"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	n, err := store.Collection("orders").CountDocuments(ctx, nil)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 0 {
		t.Errorf("orders should be empty, got %d", n)
	}
}
