package handlers

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// querySchema shapes the query request body. It stays deliberately loose on
// operator literals and pagination value types: the compiler and validator
// own those rejections and their error messages.
const querySchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"filters": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["field", "operator"],
				"additionalProperties": false,
				"properties": {
					"field":    {"type": "string", "minLength": 1},
					"operator": {"type": "string", "minLength": 1},
					"value":    {}
				}
			}
		},
		"pagination": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"page":          {},
				"limit":         {},
				"offset":        {},
				"sortBy":        {"type": "string"},
				"sortDirection": {"type": "string", "enum": ["asc", "desc"]}
			}
		}
	}
}`

func compileQuerySchema() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(querySchema))
	if err != nil {
		return nil, fmt.Errorf("invalid query request schema: %w", err)
	}
	return schema, nil
}

// validateQueryBody checks the raw request body against the schema and
// returns a single joined message on failure.
func validateQueryBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed request body: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("invalid request body: %s", strings.Join(msgs, "; "))
	}
	return nil
}
