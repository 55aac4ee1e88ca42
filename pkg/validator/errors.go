package validator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingField  = errors.New("missing field")
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrInvalidFormat = errors.New("invalid format")
)

// FieldError describes the first violation found on a single field.
// Use errors.Is against ErrMissingField, ErrTypeMismatch or ErrInvalidFormat to classify it.
type FieldError struct {
	Field    string
	Kind     error
	Expected string
	Actual   string
	Allowed  []string
}

func (e *FieldError) Error() string {
	switch e.Kind {
	case ErrMissingField:
		return fmt.Sprintf("%s is required", e.Field)
	case ErrTypeMismatch:
		return fmt.Sprintf("%s must be %s, got %s", e.Field, e.Expected, e.Actual)
	case ErrInvalidFormat:
		if len(e.Allowed) > 0 {
			return fmt.Sprintf("%s must be one of [%s]", e.Field, strings.Join(e.Allowed, ", "))
		}

		return fmt.Sprintf("%s must be %s", e.Field, e.Expected)
	}

	return fmt.Sprintf("%s is invalid", e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

func missing(field string) error {
	return &FieldError{Field: field, Kind: ErrMissingField}
}

func mismatch(field, expected string, actual interface{}) error {
	return &FieldError{
		Field:    field,
		Kind:     ErrTypeMismatch,
		Expected: expected,
		Actual:   fmt.Sprintf("%T", actual),
	}
}

func invalid(field, expected string) error {
	return &FieldError{Field: field, Kind: ErrInvalidFormat, Expected: expected}
}
