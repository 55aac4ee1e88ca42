package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	v *validator.Validate
)

func init() {
	v = validator.New()
}

// Validate runs struct tag validation on i.
func Validate(i interface{}) error {
	if i == nil {
		return fmt.Errorf("data to validate is nil")
	}

	return v.Struct(i)
}

// Var validates a single value against the tag.
func Var(field interface{}, tag string) error {
	return v.Var(field, tag)
}

// IsValidation reports whether err comes from struct tag validation or a field validator.
func IsValidation(err error) bool {
	var tagErr validator.ValidationErrors
	var fieldErr *FieldError
	return errors.As(err, &tagErr) || errors.As(err, &fieldErr)
}
