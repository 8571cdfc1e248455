package cursor

import (
	"context"
	"testing"

	"github.com/kartikbazzad/bunbase/bunquery"
)

func numbered(n int) []bunquery.Document {
	docs := make([]bunquery.Document, n)
	for i := range docs {
		docs[i] = bunquery.Document{"n": i}
	}
	return docs
}

func TestAllAppliesSortSkipLimit(t *testing.T) {
	ctx := context.Background()

	docs, err := Over(numbered(10)).Sort(map[string]int{"n": -1}).Skip(2).Limit(3).All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(docs) != 3 || docs[0]["n"] != 7 || docs[2]["n"] != 5 {
		t.Errorf("docs = %v", docs)
	}
}

func TestAllWithoutDirectives(t *testing.T) {
	docs, err := Over(numbered(4)).All(context.Background())
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(docs) != 4 {
		t.Errorf("expected all 4 documents, got %d", len(docs))
	}
}

func TestSkipBeyondEnd(t *testing.T) {
	docs, err := Over(numbered(3)).Skip(10).All(context.Background())
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("skip past the end should be empty, got %v", docs)
	}
}

func TestZeroLimit(t *testing.T) {
	docs, err := Over(numbered(3)).Limit(0).All(context.Background())
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("an explicit zero limit yields no documents, got %v", docs)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Over(numbered(3)).All(ctx); err == nil {
		t.Error("All should fail on a canceled context")
	}
}
