package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	msgMissingInput  = "Please fill in all required fields."
	msgInvalidPostal = "Please enter a valid 5-digit postal code."
)

const postalCodeField = "zipCode"

// Validator checks raw site forms before any calculation runs.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a Validator that reports fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate checks the form and converts it to a SiteInput. Missing fields
// are reported before any format or range violation.
func (val *Validator) Validate(form SiteForm) (SiteInput, error) {
	err := val.v.Struct(form)
	if err == nil {
		return form.Input(), nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return SiteInput{}, fmt.Errorf("validate site form: %w", err)
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return SiteInput{}, &ValidationError{Kind: KindMissingInput, Field: fe.Field(), Message: msgMissingInput}
		}
	}
	return SiteInput{}, toValidationError(fieldErrs[0])
}

func toValidationError(fe validator.FieldError) *ValidationError {
	if fe.Field() == postalCodeField {
		return &ValidationError{Kind: KindInvalidFormat, Field: fe.Field(), Message: msgInvalidPostal}
	}

	var msg string
	switch fe.Tag() {
	case "gt":
		msg = fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		msg = fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		msg = fmt.Sprintf("failed rule %q", fe.Tag())
	}
	return &ValidationError{Kind: KindInvalidValue, Field: fe.Field(), Message: msg}
}
