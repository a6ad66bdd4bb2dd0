package categories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/extrahand/taskpages/fields"
)

// pageFieldsSchema validates the persisted field map: every entry must be
// a {value, provenance} pair, and the structured sections must keep the
// shape the public page renders.
var pageFieldsSchema = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"$defs": map[string]any{
		"entry": map[string]any{
			"type":     "object",
			"required": []any{"value", "provenance"},
			"properties": map[string]any{
				"provenance": map[string]any{
					"enum": []any{"derived", "overridden"},
				},
			},
		},
		"titledItem": map[string]any{
			"type":     "object",
			"required": []any{"title", "description"},
			"properties": map[string]any{
				"title":       map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
			},
		},
		"subtitledItem": map[string]any{
			"type":     "object",
			"required": []any{"subtitle", "description"},
			"properties": map[string]any{
				"subtitle":    map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
			},
		},
		"earningsRow": map[string]any{
			"type":     "object",
			"required": []any{"jobType"},
			"properties": map[string]any{
				"jobType": map[string]any{"type": "string"},
				"1-2":     map[string]any{"type": "string"},
				"3-5":     map[string]any{"type": "string"},
				"5+":      map[string]any{"type": "string"},
			},
		},
		"bandMap": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type": "string",
			},
		},
	},
	"additionalProperties": map[string]any{"$ref": "#/$defs/entry"},
	"properties": map[string]any{
		"whyJoinFeatures": map[string]any{
			"allOf": []any{
				map[string]any{"$ref": "#/$defs/entry"},
				map[string]any{
					"properties": map[string]any{
						"value": map[string]any{
							"type":  "array",
							"items": map[string]any{"$ref": "#/$defs/titledItem"},
						},
					},
				},
			},
		},
		"questions": map[string]any{
			"allOf": []any{
				map[string]any{"$ref": "#/$defs/entry"},
				map[string]any{
					"properties": map[string]any{
						"value": map[string]any{
							"type":  "array",
							"items": map[string]any{"$ref": "#/$defs/subtitledItem"},
						},
					},
				},
			},
		},
		"howToEarnSteps": map[string]any{
			"allOf": []any{
				map[string]any{"$ref": "#/$defs/entry"},
				map[string]any{
					"properties": map[string]any{
						"value": map[string]any{
							"type":  "array",
							"items": map[string]any{"$ref": "#/$defs/subtitledItem"},
						},
					},
				},
			},
		},
		"incomeOpportunitiesRows": map[string]any{
			"allOf": []any{
				map[string]any{"$ref": "#/$defs/entry"},
				map[string]any{
					"properties": map[string]any{
						"value": map[string]any{
							"type":  "array",
							"items": map[string]any{"$ref": "#/$defs/earningsRow"},
						},
					},
				},
			},
		},
		"earningPotentialData": map[string]any{
			"allOf": []any{
				map[string]any{"$ref": "#/$defs/entry"},
				map[string]any{
					"properties": map[string]any{
						"value": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"weekly":  map[string]any{"$ref": "#/$defs/bandMap"},
								"monthly": map[string]any{"$ref": "#/$defs/bandMap"},
								"yearly":  map[string]any{"$ref": "#/$defs/bandMap"},
							},
						},
					},
				},
			},
		},
	},
}

var (
	compileFieldsSchemaOnce sync.Once
	compiledFieldsSchema    *jsonschema.Schema
	compileFieldsSchemaErr  error
)

func fieldsSchema() (*jsonschema.Schema, error) {
	compileFieldsSchemaOnce.Do(func() {
		encoded, err := json.Marshal(pageFieldsSchema)
		if err != nil {
			compileFieldsSchemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("category_fields.json", bytes.NewReader(encoded)); err != nil {
			compileFieldsSchemaErr = err
			return
		}
		compiledFieldsSchema, compileFieldsSchemaErr = compiler.Compile("category_fields.json")
	})
	return compiledFieldsSchema, compileFieldsSchemaErr
}

// ValidateFields checks the field map against the page schema. Violations
// surface as a ValidationError keyed by instance location.
func ValidateFields(m *fields.Map) error {
	if m == nil || m.Len() == 0 {
		return nil
	}
	schema, err := fieldsSchema()
	if err != nil {
		return fmt.Errorf("categories: compile fields schema: %w", err)
	}

	encoded, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("categories: encode fields: %w", err)
	}
	var payload any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return fmt.Errorf("categories: decode fields: %w", err)
	}

	if err := schema.Validate(payload); err != nil {
		var validationErr *jsonschema.ValidationError
		if ok := asValidationError(err, &validationErr); ok {
			return &ValidationError{Fields: collectSchemaIssues(validationErr)}
		}
		return validationError("fields", err)
	}
	return nil
}

func asValidationError(err error, target **jsonschema.ValidationError) bool {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return false
	}
	*target = ve
	return true
}

func collectSchemaIssues(err *jsonschema.ValidationError) validation.Errors {
	issues := validation.Errors{}
	var walk func(node *jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			location := strings.TrimPrefix(node.InstanceLocation, "/")
			if location == "" {
				location = "fields"
			}
			issues[location] = validation.NewError("validation_schema", node.Message)
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
