package domain

import (
	"errors"
	"fmt"
)

// ErrValidation matches every ValidationError via errors.Is.
var ErrValidation = errors.New("invalid site input")

// Kind classifies a validation failure.
type Kind string

const (
	// KindMissingInput means a required field is absent or empty.
	KindMissingInput Kind = "missing_input"
	// KindInvalidFormat means the postal code is not five digits.
	KindInvalidFormat Kind = "invalid_format"
	// KindInvalidValue means a present field is out of range or not an allowed value.
	KindInvalidValue Kind = "invalid_value"
)

// ValidationError reports the first violated input rule.
type ValidationError struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
