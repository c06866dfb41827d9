package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FormatFieldErrors converts validator.ValidationErrors into one message per
// failing field, keyed by the field's json name. Any other error yields nil.
func FormatFieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	messages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if _, seen := messages[e.Field()]; seen {
			continue
		}
		messages[e.Field()] = formatSingleError(e)
	}
	return messages
}

// formatSingleError formats a single validation error to a user-facing message
func formatSingleError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is a required field.", field)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must have at least %s characters.", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", field, e.Param())

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must have at most %s characters.", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", field, e.Param())

	case "email", "email_address":
		return fmt.Sprintf("%s must be a valid email address.", field)

	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}
