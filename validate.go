package bunquery

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
)

// Validator rejects filter values and pagination parameters that could
// corrupt the compiled query or indicate an injection attempt. All checks are
// pure; nothing touches a backend.
type Validator struct{}

// ValidateValue fails when the value is, or recursively contains, a mapping
// whose keys start with the reserved operator prefix. The scan walks mappings,
// sequences and struct fields to any depth. Strings are not inspected here:
// pattern construction escapes them for the regex context instead.
func (Validator) ValidateValue(value any) error {
	return scanValue(reflect.ValueOf(value))
}

// ValidatePagination fails when page, limit or offset is present but not
// representable as an exact integer. Fractional numbers and strings (numeric
// or not) are errors, never silently truncated.
func (Validator) ValidatePagination(p PaginationQuery) error {
	fields := []struct {
		name  string
		value any
	}{
		{"page", p.Page},
		{"limit", p.Limit},
		{"offset", p.Offset},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if _, ok := asInt(f.value); !ok {
			return validationErrorf("pagination field %q must be an integer", f.name)
		}
	}
	return nil
}

func scanValue(v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return scanValue(v.Elem())
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key()
			if key.Kind() == reflect.String && strings.HasPrefix(key.String(), OperatorPrefix) {
				return validationErrorf("value contains reserved operator key %q", key.String())
			}
			if err := scanValue(iter.Value()); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := scanValue(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			if !field.CanInterface() {
				continue
			}
			if err := scanValue(field); err != nil {
				return err
			}
		}
	}
	return nil
}

// asInt reports whether v is an exact integer and returns it as int.
// json.Number is accepted when it parses as an integer; real strings never
// are, even if numeric.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float32:
		return floatAsInt(float64(n))
	case float64:
		return floatAsInt(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func floatAsInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	return int(f), true
}
