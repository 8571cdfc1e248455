package bunquery

import (
	"fmt"

	"github.com/google/uuid"
)

// DocumentMapper reshapes one raw backend record into its public form.
// The Service applies it to every fetched document; custom reshaping is a
// matter of plugging in a different function, not of subclassing anything.
type DocumentMapper func(Document) Document

// MapDocument is the default mapper: the native key field is replaced by a
// string id field, everything else passes through unchanged. Values of types
// the mapper does not recognize are carried over as-is rather than failing.
func MapDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if k == NativeKeyField {
			continue
		}
		out[k] = v
	}
	if raw, ok := doc[NativeKeyField]; ok {
		out[IDField] = NativeKeyString(raw)
	}
	return out
}

// NativeKeyString renders a stored native key in its public string form.
func NativeKeyString(raw any) string {
	switch key := raw.(type) {
	case uuid.UUID:
		return key.String()
	case string:
		return key
	default:
		return fmt.Sprintf("%v", raw)
	}
}
