package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// TitleForbiddenCharacters are rejected in job titles because the title
// becomes a folder name.
const TitleForbiddenCharacters = `"*:<>?/\|#`

const submissionSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["department", "division", "jobTitle"],
  "properties": {
    "department": {"type": "string", "minLength": 1},
    "division": {"type": "string", "minLength": 1},
    "jobTitle": {"type": "string", "minLength": 1, "pattern": "^[^\"*:<>?/\\\\|#]+$"},
    "partTimePosition": {"type": "boolean"},
    "requestedBy": {"type": "string"},
    "templateFiles": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["fileName", "fileAbsoluteUrl"],
        "properties": {
          "fileName": {
            "type": "string",
            "minLength": 1,
            "pattern": "^[^\"*:<>?/\\\\|#]+$",
            "not": {"enum": [".", ".."]}
          },
          "fileAbsoluteUrl": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var submissionSchema = mustSchema(submissionSchemaJSON)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins all errors into one line.
func (r *ValidationResult) Summary() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// ValidateSubmission validates a job posting submission. doc is any value
// that marshals to the submission JSON shape.
func ValidateSubmission(doc interface{}) *ValidationResult {
	return validate(submissionSchema, gojsonschema.NewGoLoader(doc))
}

func validate(schema *gojsonschema.Schema, doc gojsonschema.JSONLoader) *ValidationResult {
	result, err := schema.Validate(doc)
	if err != nil {
		return &ValidationResult{
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "UNREADABLE_DOCUMENT"}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: messageFor(desc),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

func messageFor(desc gojsonschema.ResultError) string {
	switch {
	case desc.Type() == "pattern" && desc.Field() == "jobTitle":
		return fmt.Sprintf("must not contain any of %s", TitleForbiddenCharacters)
	case desc.Type() == "pattern" && strings.HasSuffix(desc.Field(), ".fileName"):
		return fmt.Sprintf("file name must not contain any of %s", TitleForbiddenCharacters)
	case desc.Type() == "number_not" && strings.HasSuffix(desc.Field(), ".fileName"):
		return "file name must not be a relative path segment"
	}
	return desc.Description()
}

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return schema
}
