// Package memdoc provides an in-memory document collection satisfying the
// bunquery Collection contract. It backs tests and single-process
// deployments; nothing is persisted.
package memdoc

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kartikbazzad/bunbase/bunquery"
	"github.com/kartikbazzad/bunbase/bunquery/internal/cursor"
	"github.com/kartikbazzad/bunbase/bunquery/internal/match"
)

// Collection is an in-memory document set. Safe for concurrent use.
type Collection struct {
	mu   sync.RWMutex
	docs []bunquery.Document
}

// New returns an empty collection.
func New() *Collection {
	return &Collection{}
}

// Insert stores a copy of the document, assigning a fresh native key when
// none is present, and returns the key.
func (c *Collection) Insert(ctx context.Context, doc bunquery.Document) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	stored := cloneDocument(doc)
	key, ok := nativeKey(stored)
	if !ok {
		key = uuid.New()
		stored[bunquery.NativeKeyField] = key
	}

	c.mu.Lock()
	c.docs = append(c.docs, stored)
	c.mu.Unlock()
	return key, nil
}

// Get returns a copy of the document with the given public id string.
func (c *Collection) Get(ctx context.Context, id string) (bunquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, doc := range c.docs {
		if raw, ok := doc[bunquery.NativeKeyField]; ok && bunquery.NativeKeyString(raw) == id {
			return cloneDocument(doc), nil
		}
	}
	return nil, bunquery.ErrNotFound
}

// Find snapshots the documents matching conditions and returns a cursor over
// the snapshot.
func (c *Collection) Find(ctx context.Context, conditions map[string]any) (bunquery.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var matched []bunquery.Document
	for _, doc := range c.docs {
		if match.Matches(doc, conditions) {
			matched = append(matched, cloneDocument(doc))
		}
	}
	return cursor.Over(matched), nil
}

// CountDocuments counts the documents matching conditions.
func (c *Collection) CountDocuments(ctx context.Context, conditions map[string]any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, doc := range c.docs {
		if match.Matches(doc, conditions) {
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

func nativeKey(doc bunquery.Document) (uuid.UUID, bool) {
	switch raw := doc[bunquery.NativeKeyField].(type) {
	case uuid.UUID:
		return raw, true
	case string:
		key, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, false
		}
		return key, true
	}
	return uuid.Nil, false
}

// cloneDocument copies the top level only. Nested values are shared; callers
// treat documents as immutable once stored.
func cloneDocument(doc bunquery.Document) bunquery.Document {
	out := make(bunquery.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
