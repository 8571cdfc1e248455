package bunquery

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ExpressionBuilder compiles an ordered list of filter clauses into a
// backend-native expression. Implementations are injected into the Service;
// Builder is the default.
type ExpressionBuilder interface {
	BuildFilterExpression(filters []FilterClause) (*CompiledExpression, error)
}

// Builder is the default ExpressionBuilder. It validates every clause value,
// guards field names against the reserved operator prefix, rewrites public id
// filters to the native key field and maps each operator through a fixed
// compilation table.
type Builder struct {
	validator Validator
}

// NewBuilder returns a ready-to-use Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildFilterExpression compiles filters into a CompiledExpression.
// An empty list compiles to empty conditions, which match everything.
// Any rejected clause aborts the whole build; no partial expression is
// returned. Clauses on the same field overwrite each other, last write wins.
func (b *Builder) BuildFilterExpression(filters []FilterClause) (*CompiledExpression, error) {
	expr := &CompiledExpression{Conditions: map[string]any{}}
	if len(filters) == 0 {
		return expr, nil
	}

	rest := filters
	// The first filter on the public id field is the primary lookup: it is
	// extracted and compiled ahead of the remaining clauses.
	if i := indexOfIDFilter(filters); i >= 0 {
		rest = make([]FilterClause, 0, len(filters)-1)
		rest = append(rest, filters[:i]...)
		rest = append(rest, filters[i+1:]...)
		if err := b.compileInto(expr, rewriteIdentifier(filters[i])); err != nil {
			return nil, err
		}
	}
	for _, f := range rest {
		if err := b.compileInto(expr, rewriteIdentifier(f)); err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (b *Builder) compileInto(expr *CompiledExpression, f FilterClause) error {
	if err := b.validator.ValidateValue(f.Value); err != nil {
		return err
	}
	if strings.Contains(f.Field, OperatorPrefix) {
		return &FieldNameError{Field: f.Field}
	}
	predicate, err := compileOperator(f)
	if err != nil {
		return err
	}
	expr.Conditions[f.Field] = predicate
	return nil
}

// compileOperator maps one (field, operator, value) triple to a backend
// predicate. Operators outside the table are a hard error, never ignored.
func compileOperator(f FilterClause) (any, error) {
	switch f.Operator {
	case OpEq:
		return map[string]any{"$eq": f.Value}, nil
	case OpNeq:
		return map[string]any{"$ne": f.Value}, nil
	case OpLt:
		return map[string]any{"$lt": f.Value}, nil
	case OpLte:
		return map[string]any{"$lte": f.Value}, nil
	case OpGt:
		return map[string]any{"$gt": f.Value}, nil
	case OpGte:
		return map[string]any{"$gte": f.Value}, nil
	case OpIn:
		list, err := asList(f)
		if err != nil {
			return nil, err
		}
		return map[string]any{"$in": list}, nil
	case OpNotIn:
		list, err := asList(f)
		if err != nil {
			return nil, err
		}
		return map[string]any{"$nin": list}, nil
	case OpLike:
		return map[string]any{"$regex": likePattern(f.Value), "$options": "i"}, nil
	case OpNotLike:
		return map[string]any{
			"$not": map[string]any{"$regex": likePattern(f.Value), "$options": "i"},
		}, nil
	}
	return nil, &UnsupportedOperatorError{Operator: f.Operator}
}

// likePattern escapes every character with special meaning in the pattern
// syntax, so a like filter always means a literal case-insensitive substring
// match.
func likePattern(value any) string {
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprintf("%v", value)
	}
	return regexp.QuoteMeta(s)
}

func asList(f FilterClause) ([]any, error) {
	v := reflect.ValueOf(f.Value)
	if !v.IsValid() || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
		return nil, validationErrorf("operator %q requires an array value for field %q", string(f.Operator), f.Field)
	}
	list := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		list[i] = v.Index(i).Interface()
	}
	return list, nil
}

func indexOfIDFilter(filters []FilterClause) int {
	for i, f := range filters {
		if f.Field == IDField {
			return i
		}
	}
	return -1
}

// rewriteIdentifier redirects a filter on the public id field to the native
// key field when its value parses as a native key. Values that do not parse
// keep targeting a field literally named "id".
func rewriteIdentifier(f FilterClause) FilterClause {
	if f.Field != IDField {
		return f
	}
	s, ok := f.Value.(string)
	if !ok {
		return f
	}
	key, err := uuid.Parse(s)
	if err != nil {
		return f
	}
	f.Field = NativeKeyField
	f.Value = key
	return f
}
