// Package bunquery compiles declarative filter expressions into document-store
// queries and orchestrates their paginated execution.
//
// A request is a list of (field, operator, value) clauses plus pagination
// directives. The Builder compiles clauses into a CompiledExpression using the
// $-prefixed operator grammar, the executor runs it against any Collection
// backend, and the Service glues validation, counting, fetching and result
// reshaping into a single paginated response.
package bunquery

import "context"

// Operator is the closed set of filter operators accepted in a FilterClause.
type Operator string

const (
	OpLt      Operator = "<"
	OpLte     Operator = "<="
	OpGt      Operator = ">"
	OpGte     Operator = ">="
	OpEq      Operator = "="
	OpNeq     Operator = "!="
	OpIn      Operator = "in"
	OpNotIn   Operator = "not_in"
	OpLike    Operator = "like"
	OpNotLike Operator = "not_like"
)

const (
	// OperatorPrefix is the character the document query language reserves
	// for operator keys. It is disallowed in field names and scanned for in
	// filter values.
	OperatorPrefix = "$"

	// NativeKeyField is the backend primary-key field of a stored document.
	NativeKeyField = "_id"

	// IDField is the public identifier field exposed in reshaped results.
	IDField = "id"

	// DefaultLimit is used when pagination carries no limit, or an explicit
	// zero limit. See Service.FetchPage.
	DefaultLimit = 10
)

// Document is the raw record shape exchanged with collection backends.
type Document = map[string]any

// FilterClause is one field/operator/value triple of a filter request.
type FilterClause struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// PaginationQuery carries the pagination and sort directives of a request.
// Page, Limit and Offset are `any` because they arrive from JSON and must be
// validated as exact integers; fractional numbers and strings are rejected
// rather than truncated.
type PaginationQuery struct {
	Page          any    `json:"page,omitempty"`
	Limit         any    `json:"limit,omitempty"`
	Offset        any    `json:"offset,omitempty"`
	SortBy        string `json:"sortBy,omitempty"`
	SortDirection string `json:"sortDirection,omitempty"`
}

// Request is the input contract of the Service: both parts are optional and
// default to "match everything, first page".
type Request struct {
	Filters    []FilterClause  `json:"filters,omitempty"`
	Pagination PaginationQuery `json:"pagination,omitempty"`
}

// CompiledExpression is the backend-native query artifact produced by the
// Builder. Conditions maps field names to $-operator predicates. It is built
// fresh per call and not mutated after construction.
type CompiledExpression struct {
	Conditions map[string]any
	Sort       map[string]int
	Limit      int64
	Skip       int64
}

// WithSort attaches a single-field sort to the expression. Direction defaults
// to ascending; only the literal "desc" sorts descending.
func (e *CompiledExpression) WithSort(field, direction string) {
	if field == "" {
		return
	}
	dir := 1
	if direction == "desc" {
		dir = -1
	}
	e.Sort = map[string]int{field: dir}
}

// PaginatedResponse is the one-shot output envelope of the Service.
// Page is clamped to the real page count; Total reflects the count after
// subtracting any raw offset applied ahead of page-based pagination.
type PaginatedResponse struct {
	Data  []Document `json:"data"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// Collection is the backend handle the executor and Service run against.
// Any store offering a conditions-based find plus an independent count
// satisfies the contract.
type Collection interface {
	Find(ctx context.Context, conditions map[string]any) (Cursor, error)
	CountDocuments(ctx context.Context, conditions map[string]any) (int64, error)
}

// Cursor is the deferred result handle returned by Collection.Find.
// Sort, Skip and Limit configure the pending fetch; All materializes it.
type Cursor interface {
	Sort(spec map[string]int) Cursor
	Skip(n int64) Cursor
	Limit(n int64) Cursor
	All(ctx context.Context) ([]Document, error)
}
