package usecase

import (
	"contact-form-service/internal/domain"
	"contact-form-service/pkg/logger"
	"contact-form-service/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// ContactValidator maps field values to the set of failing rules.
// It holds no state of its own, so the same input always gives the same output.
type ContactValidator struct {
	validate *validator.Validate
}

// NewContactValidator expects a validator with pkg/validation rules registered
func NewContactValidator(validate *validator.Validate) *ContactValidator {
	return &ContactValidator{validate: validate}
}

// Validate evaluates every rule independently and returns all failures
func (v *ContactValidator) Validate(values domain.FieldValues) domain.ValidationErrors {
	errs := domain.ValidationErrors{}

	err := v.validate.Struct(values)
	if err == nil {
		return errs
	}

	messages := validation.FormatFieldErrors(err)
	if messages == nil {
		// InvalidValidationError only happens on programmer error
		logger.Log.Error("Contact form validation failed unexpectedly", "error", err)
		return errs
	}

	for name, msg := range messages {
		if field, ok := domain.ParseField(name); ok {
			errs[field] = msg
		}
	}
	return errs
}

// ValidateField reports the error for a single field, if it fails
func (v *ContactValidator) ValidateField(values domain.FieldValues, field domain.Field) (string, bool) {
	msg, ok := v.Validate(values)[field]
	return msg, ok
}
