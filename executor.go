package bunquery

import "context"

// QueryExecutor runs a compiled expression against a live collection handle
// and returns the raw matching records. It does not count, validate or
// reshape, and backend failures propagate to the caller unmodified.
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, expr *CompiledExpression, c Collection) ([]Document, error)
}

// CursorExecutor is the default QueryExecutor over the Cursor contract.
type CursorExecutor struct{}

// ExecuteQuery applies the expression's conditions as the query filter, then
// sort, skip and limit when present (limit only when strictly positive), and
// materializes the matches.
func (CursorExecutor) ExecuteQuery(ctx context.Context, expr *CompiledExpression, c Collection) ([]Document, error) {
	cur, err := c.Find(ctx, expr.Conditions)
	if err != nil {
		return nil, err
	}
	if len(expr.Sort) > 0 {
		cur = cur.Sort(expr.Sort)
	}
	if expr.Skip > 0 {
		cur = cur.Skip(expr.Skip)
	}
	if expr.Limit > 0 {
		cur = cur.Limit(expr.Limit)
	}
	return cur.All(ctx)
}
