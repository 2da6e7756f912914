// Package schemas provides JSON Schema validation for LLM-produced artifacts.
// Model output is untrusted: every structured response is validated before use.
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SkillListSchema validates the output of skill extraction: a flat array of
// non-empty skill names.
const SkillListSchema = `{
  "type": "array",
  "items": {
    "type": "string",
    "minLength": 1
  }
}`

// AssistantDecisionSchema validates one step of the assistant tool loop:
// either a tool call or a final answer.
const AssistantDecisionSchema = `{
  "type": "object",
  "oneOf": [
    {
      "required": ["tool"],
      "properties": {
        "tool": {
          "type": "string",
          "enum": ["search", "update_section", "extract_skills", "compare_skills"]
        },
        "args": {"type": "object"}
      }
    },
    {
      "required": ["final", "action", "explanation"],
      "properties": {
        "final": {"type": "boolean", "enum": [true]},
        "action": {
          "type": "string",
          "enum": ["none", "update_cv", "update_skills", "update_both"]
        },
        "updated_cv": {"type": "string"},
        "updated_skills": {
          "type": "array",
          "items": {"type": "string"}
        },
        "explanation": {"type": "string"}
      }
    }
  ]
}`

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema: %s", e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}

// ValidateSkillList validates a skill extraction response.
func ValidateSkillList(jsonContent string) error {
	return ValidateJSONString(SkillListSchema, jsonContent)
}

// ValidateAssistantDecision validates one assistant loop step.
func ValidateAssistantDecision(jsonContent string) error {
	return ValidateJSONString(AssistantDecisionSchema, jsonContent)
}
