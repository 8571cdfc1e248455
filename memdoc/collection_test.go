package memdoc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kartikbazzad/bunbase/bunquery"
)

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	coll := New()

	key, err := coll.Insert(ctx, bunquery.Document{"name": "Alice"})
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

	if _, err := coll.Get(ctx, "00000000-0000-0000-0000-000000000001"); !errors.Is(err, bunquery.ErrNotFound) {
		t.Errorf("missing id should yield ErrNotFound, got %v", err)
	}
}

func TestInsertIsolatesCaller(t *testing.T) {
	ctx := context.Background()
	coll := New()

	original := bunquery.Document{"name": "Alice"}
	key, err := coll.Insert(ctx, original)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	// Insert must not write the key back into the caller's map.
	if _, ok := original[bunquery.NativeKeyField]; ok {
		t.Error("caller's document was mutated")
	}

	original["name"] = "Mallory"
	doc, err := coll.Get(ctx, key.String())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc["name"] != "Alice" {
		t.Error("stored document shares state with the caller's map")
	}
}

func TestFindAndCount(t *testing.T) {
	ctx := context.Background()
	coll := New()
	for i := 0; i < 6; i++ {
		_, err := coll.Insert(ctx, bunquery.Document{"n": i, "parity": i % 2})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	conditions := map[string]any{"parity": map[string]any{"$eq": 0}}
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
	docs, err := cur.Sort(map[string]int{"n": -1}).Limit(2).All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(docs) != 2 || docs[0]["n"] != 4 || docs[1]["n"] != 2 {
		t.Errorf("docs = %v", docs)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coll := New()
	if _, err := coll.Insert(ctx, bunquery.Document{"a": 1}); err == nil {
		t.Error("Insert should fail on a canceled context")
	}
	if _, err := coll.Find(ctx, nil); err == nil {
		t.Error("Find should fail on a canceled context")
	}
	if _, err := coll.CountDocuments(ctx, nil); err == nil {
		t.Error("CountDocuments should fail on a canceled context")
	}
}

func TestStoreCreatesOnFirstUse(t *testing.T) {
	store := NewStore()
	a := store.Collection("users")
	b := store.Collection("users")
	if a != b {
		t.Error("same name must return the same collection")
	}
	if store.Collection("orders") == a {
		t.Error("different names must be distinct collections")
	}
}

// TestServiceAgainstMemdoc runs the whole pipeline against a live collection:
// 42 records, filter on department, second page of five sorted by name.
func TestServiceAgainstMemdoc(t *testing.T) {
	ctx := context.Background()
	coll := New()
	var aliceID string
	for i := 0; i < 42; i++ {
		dept := "eng"
		if i%3 == 0 {
			dept = "sales"
		}
		key, err := coll.Insert(ctx, bunquery.Document{
			"name":       fmt.Sprintf("user-%02d", i),
			"department": dept,
			"age":        20 + i,
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if i == 0 {
			aliceID = key.String()
		}
	}

	svc := bunquery.NewService()

	resp, err := svc.FetchPage(ctx, bunquery.Request{
		Filters: []bunquery.FilterClause{
			{Field: "department", Operator: bunquery.OpEq, Value: "eng"},
		},
		Pagination: bunquery.PaginationQuery{Page: 2, Limit: 5, SortBy: "name"},
	}, coll)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if resp.Total != 28 {
		t.Errorf("total = %d, want 28 eng records", resp.Total)
	}
	if len(resp.Data) != 5 || resp.Page != 2 {
		t.Fatalf("page 2 should hold 5 records, got %d (page %d)", len(resp.Data), resp.Page)
	}
	for i := 1; i < len(resp.Data); i++ {
		if resp.Data[i-1]["name"].(string) > resp.Data[i]["name"].(string) {
			t.Errorf("results out of order: %v", resp.Data)
		}
	}

	// Filtering on the public id finds the record through the native key.
	resp, err = svc.FetchPage(ctx, bunquery.Request{
		Filters: []bunquery.FilterClause{
			{Field: "id", Operator: bunquery.OpEq, Value: aliceID},
		},
	}, coll)
	if err != nil {
		t.Fatalf("FetchPage by id failed: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Fatalf("id lookup got total %d, %d docs", resp.Total, len(resp.Data))
	}
	if resp.Data[0]["id"] != aliceID {
		t.Errorf("reshaped id = %v, want %s", resp.Data[0]["id"], aliceID)
	}
	if _, ok := resp.Data[0][bunquery.NativeKeyField]; ok {
		t.Error("native key must not appear in reshaped output")
	}
}
