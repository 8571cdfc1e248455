// Package match evaluates compiled $-operator conditions against documents.
// It is the shared per-row filter used by the in-memory and SQLite backends.
package match

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// patternCache keeps compiled regex predicates across queries. Like-filters
// repeat the same escaped patterns heavily, so a small LRU is enough.
var patternCache, _ = lru.New[string, *regexp.Regexp](256)

// Matches reports whether the document satisfies every condition.
// A field missing from the document never matches, whatever the predicate.
func Matches(doc map[string]any, conditions map[string]any) bool {
	for field, predicate := range conditions {
		actual, ok := doc[field]
		if !ok {
			return false
		}
		if !matchPredicate(actual, predicate) {
			return false
		}
	}
	return true
}

func matchPredicate(actual any, predicate any) bool {
	ops, ok := predicate.(map[string]any)
	if !ok {
		// Bare value, implicit equality.
		return Compare(actual, predicate) == 0
	}

	options, _ := ops["$options"].(string)
	for op, expected := range ops {
		switch op {
		case "$eq":
			if Compare(actual, expected) != 0 {
				return false
			}
		case "$ne":
			if Compare(actual, expected) == 0 {
				return false
			}
		case "$gt":
			if Compare(actual, expected) <= 0 {
				return false
			}
		case "$gte":
			if Compare(actual, expected) < 0 {
				return false
			}
		case "$lt":
			if Compare(actual, expected) >= 0 {
				return false
			}
		case "$lte":
			if Compare(actual, expected) > 0 {
				return false
			}
		case "$in":
			if !inList(actual, expected) {
				return false
			}
		case "$nin":
			if inList(actual, expected) {
				return false
			}
		case "$regex":
			if !matchRegex(actual, expected, options) {
				return false
			}
		case "$options":
			// Modifier for $regex, handled above.
		case "$not":
			if matchPredicate(actual, expected) {
				return false
			}
		default:
			// Unknown operator never matches.
			return false
		}
	}
	return true
}

func inList(actual any, expected any) bool {
	v := reflect.ValueOf(expected)
	if !v.IsValid() || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if Compare(actual, v.Index(i).Interface()) == 0 {
			return true
		}
	}
	return false
}

func matchRegex(actual any, expected any, options string) bool {
	pattern, ok := expected.(string)
	if !ok {
		return false
	}
	s, ok := actual.(string)
	if !ok {
		return false
	}
	for _, opt := range options {
		if opt == 'i' {
			pattern = "(?i)" + pattern
			break
		}
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Add(pattern, re)
	return re, nil
}

// Compare returns -1, 0 or 1. Values comparable as numbers compare
// numerically; everything else falls back to string comparison of the
// rendered values, which also covers native keys.
func Compare(a, b any) int {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	sa := fmt.Sprintf("%v", a)
	sb := fmt.Sprintf("%v", b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// SortDocuments orders docs in place by the single-field sort spec produced
// by the expression builder (field name to +1/-1).
func SortDocuments(docs []map[string]any, spec map[string]int) {
	for field, dir := range spec {
		desc := dir < 0
		sort.SliceStable(docs, func(i, j int) bool {
			c := Compare(docs[i][field], docs[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
		return
	}
}
