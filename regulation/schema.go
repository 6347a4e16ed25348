package regulation

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const responseSchemaURL = "stair_regulation_response.json"

// responseSchema accepts what the model is asked to return. Numbers may
// arrive as numeric strings and unknown members are tolerated.
const responseSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "regulation_name": {"type": ["string", "null"]},
    "regulation_code": {"type": ["string", "null"]},
    "riser_height": {"$ref": "#/$defs/rule"},
    "tread_depth": {"$ref": "#/$defs/rule"},
    "two_r_plus_g": {"$ref": "#/$defs/rule"},
    "landing_length": {"$ref": "#/$defs/rule"}
  },
  "$defs": {
    "number": {
      "anyOf": [
        {"type": "number"},
        {"type": "null"},
        {"type": "string", "pattern": "^\\s*[-+]?([0-9]+(\\.[0-9]*)?|\\.[0-9]+)([eE][-+]?[0-9]+)?\\s*$"}
      ]
    },
    "text": {"type": ["string", "null"]},
    "rule": {
      "type": ["object", "null"],
      "properties": {
        "min_value": {"$ref": "#/$defs/number"},
        "max_value": {"$ref": "#/$defs/number"},
        "unit": {"$ref": "#/$defs/text"},
        "source": {"$ref": "#/$defs/text"},
        "full_text": {"$ref": "#/$defs/text"}
      }
    }
  }
}`

var compiledResponseSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(responseSchemaURL, strings.NewReader(responseSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile(responseSchemaURL)
})

// ValidateResponseSchema checks a completion body against the documented
// response shape.
func ValidateResponseSchema(body []byte) error {
	schema, err := compiledResponseSchema()
	if err != nil {
		return fmt.Errorf("regulation: compile response schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}
