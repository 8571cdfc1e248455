// Package cursor provides an in-memory Cursor over an already-matched
// document slice. Both bundled backends materialize matches eagerly and hand
// them to this cursor for sort, skip and limit.
package cursor

import (
	"context"

	"github.com/kartikbazzad/bunbase/bunquery"
	"github.com/kartikbazzad/bunbase/bunquery/internal/match"
)

type sliceCursor struct {
	docs  []bunquery.Document
	sort  map[string]int
	skip  int64
	limit int64
}

// Over returns a Cursor iterating the given documents. The slice is owned by
// the cursor afterwards.
func Over(docs []bunquery.Document) bunquery.Cursor {
	return &sliceCursor{docs: docs, limit: -1}
}

func (c *sliceCursor) Sort(spec map[string]int) bunquery.Cursor {
	c.sort = spec
	return c
}

func (c *sliceCursor) Skip(n int64) bunquery.Cursor {
	c.skip = n
	return c
}

func (c *sliceCursor) Limit(n int64) bunquery.Cursor {
	c.limit = n
	return c
}

func (c *sliceCursor) All(ctx context.Context) ([]bunquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs := c.docs
	if len(c.sort) > 0 {
		match.SortDocuments(docs, c.sort)
	}
	if c.skip > 0 {
		if c.skip >= int64(len(docs)) {
			docs = nil
		} else {
			docs = docs[c.skip:]
		}
	}
	if c.limit >= 0 && c.limit < int64(len(docs)) {
		docs = docs[:c.limit]
	}

	out := make([]bunquery.Document, len(docs))
	copy(out, docs)
	return out, nil
}
