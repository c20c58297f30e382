package handler

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/maren/photorestore/internal/domain"
)

// Validator wraps go-playground/validator for request structs.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Struct validates a struct using go-playground/validator tags. The first
// failing field is reported as a domain.ValidationError.
func (v *Validator) Struct(i any) error {
	if err := v.validate.Struct(i); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if ok && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return &domain.ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on '%s' validation", fe.Tag()),
			}
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
