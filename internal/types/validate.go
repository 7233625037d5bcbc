package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the resume at the data-entry boundary.
func (r *ResumeDocument) Validate() error {
	return describe(validate.Struct(r))
}

// Validate checks the posting is long enough to score.
func (j *JobPosting) Validate() error {
	return describe(validate.Struct(j))
}

// describe flattens validator errors into one readable message.
func describe(err error) error {
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + ": invalid email address"
	case "url":
		return field + ": invalid URL"
	case "min":
		if fe.StructField() == "Text" {
			return "job description must be at least " + fe.Param() + " characters"
		}
		return field + " must be at least " + fe.Param() + " characters"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "unique":
		return field + " contains duplicate ids"
	default:
		return field + " failed " + fe.Tag() + " validation"
	}
}
