package bunquery

import (
	"context"
	"log/slog"

	"github.com/kartikbazzad/bunbase/bunquery/internal/logger"
)

// Service coordinates validation, expression compilation, count, fetch and
// result reshaping into one paginated response. Builder, Executor and Mapper
// are injected strategies; NewService wires the defaults. A Service is
// stateless per call and safe for concurrent use.
type Service struct {
	Validator Validator
	Builder   ExpressionBuilder
	Executor  QueryExecutor
	Mapper    DocumentMapper
	Log       *slog.Logger
}

// NewService returns a Service with the default builder, executor and mapper.
func NewService() *Service {
	return &Service{
		Builder:  NewBuilder(),
		Executor: CursorExecutor{},
		Mapper:   MapDocument,
		Log:      logger.Component("bunquery"),
	}
}

// FetchPage runs the full filter+pagination pipeline against the collection.
//
// Limit falls back to DefaultLimit and page to 1 when absent. An explicit
// zero limit also triggers the default: the original contract coerced falsy
// values, and callers depend on 0 meaning "unset" rather than "empty page".
// The raw offset is subtracted from the matched count before page accounting,
// so total and the page clamp describe the post-offset universe.
//
// Errors are logged once at this boundary and returned unchanged; count and
// fetch failures are never retried.
func (s *Service) FetchPage(ctx context.Context, req Request, c Collection) (*PaginatedResponse, error) {
	resp, err := s.fetchPage(ctx, req, c)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("paginated fetch failed", "error", err)
		}
		return nil, err
	}
	return resp, nil
}

func (s *Service) fetchPage(ctx context.Context, req Request, c Collection) (*PaginatedResponse, error) {
	if err := s.Validator.ValidatePagination(req.Pagination); err != nil {
		return nil, err
	}

	limit := intOrDefault(req.Pagination.Limit, DefaultLimit)
	page := intOrDefault(req.Pagination.Page, 1)
	baseOffset := intOrDefault(req.Pagination.Offset, 0)
	totalOffset := baseOffset + (page-1)*limit

	expr, err := s.Builder.BuildFilterExpression(req.Filters)
	if err != nil {
		return nil, err
	}
	expr.WithSort(req.Pagination.SortBy, req.Pagination.SortDirection)
	expr.Limit = int64(limit)
	expr.Skip = int64(totalOffset)

	// Count runs against the conditions only; skip, limit and sort do not
	// affect it.
	total, err := c.CountDocuments(ctx, expr.Conditions)
	if err != nil {
		return nil, err
	}
	effectiveTotal := total - int64(baseOffset)
	if effectiveTotal < 0 {
		effectiveTotal = 0
	}
	totalPages := int((effectiveTotal + int64(limit) - 1) / int64(limit))

	docs, err := s.Executor.ExecuteQuery(ctx, expr, c)
	if err != nil {
		return nil, err
	}

	data := make([]Document, 0, len(docs))
	for _, doc := range docs {
		data = append(data, s.Mapper(doc))
	}

	if page > totalPages {
		page = totalPages
	}
	return &PaginatedResponse{
		Data:  data,
		Total: effectiveTotal,
		Page:  page,
		Limit: limit,
	}, nil
}

// intOrDefault coerces an already-validated pagination value, treating both
// absent and zero values as "use the default".
func intOrDefault(v any, def int) int {
	if v == nil {
		return def
	}
	n, ok := asInt(v)
	if !ok || n == 0 {
		return def
	}
	return n
}
