package extract

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// resumeSchema checks the types of an extracted resume before it is decoded.
// Requiredness is left to types.ResumeDocument.Validate.
const resumeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "personalInfo": {
      "type": "object",
      "properties": {
        "fullName": {"type": "string"},
        "email": {"type": "string"},
        "phone": {"type": "string"},
        "linkedin": {"type": "string"},
        "website": {"type": "string"},
        "location": {"type": "string"}
      }
    },
    "summary": {"type": "string"},
    "skills": {"type": "string"},
    "workExperience": {"type": "array", "items": {"$ref": "#/definitions/work"}},
    "education": {"type": "array", "items": {"$ref": "#/definitions/education"}},
    "projects": {"type": "array", "items": {"$ref": "#/definitions/project"}},
    "certifications": {"type": "array", "items": {"$ref": "#/definitions/certification"}},
    "languages": {"type": "array", "items": {"$ref": "#/definitions/language"}},
    "awards": {"type": "array", "items": {"$ref": "#/definitions/strings"}},
    "volunteerWork": {"type": "array", "items": {"$ref": "#/definitions/strings"}},
    "publications": {"type": "array", "items": {"$ref": "#/definitions/strings"}}
  },
  "definitions": {
    "strings": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "work": {
      "type": "object",
      "properties": {
        "id": {"type": "string"},
        "jobTitle": {"type": "string"},
        "company": {"type": "string"},
        "startDate": {"type": "string"},
        "endDate": {"type": "string"},
        "current": {"type": "boolean"},
        "description": {"type": "string"}
      }
    },
    "education": {
      "type": "object",
      "properties": {
        "id": {"type": "string"},
        "degree": {"type": "string"},
        "school": {"type": "string"},
        "startDate": {"type": "string"},
        "endDate": {"type": "string"},
        "current": {"type": "boolean"}
      }
    },
    "project": {"$ref": "#/definitions/strings"},
    "certification": {"$ref": "#/definitions/strings"},
    "language": {
      "type": "object",
      "properties": {
        "id": {"type": "string"},
        "language": {"type": "string"},
        "proficiency": {"enum": ["native", "fluent", "intermediate", "basic"]}
      }
    }
  }
}`

var compiledResumeSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(resumeSchema))
})

// FieldError is one schema violation
type FieldError struct {
	Field   string
	Message string
}

// SchemaError lists every violation found in an extracted resume
type SchemaError struct {
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString("resume JSON does not match the expected shape:")
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

// ValidateResumeShape checks raw JSON against the resume schema.
func ValidateResumeShape(raw []byte) error {
	schema, err := compiledResumeSchema()
	if err != nil {
		return fmt.Errorf("failed to compile resume schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("failed to validate resume JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	se := &SchemaError{}
	for _, re := range result.Errors() {
		se.Errors = append(se.Errors, FieldError{Field: re.Field(), Message: re.Description()})
	}
	return se
}
