package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FromValidationErrors converts the errors of the struct validator to a ValidationError with
// one message per field. Other errors are returned unchanged.
func FromValidationErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	result := &ValidationError{}
	for _, fe := range fieldErrs {
		result.Errors = append(result.Errors, FieldError{
			Field:   fe.Field(),
			Type:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return result
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", fe.Field(), fe.Param())
	case "numeric", "number":
		return fmt.Sprintf("%s must be a number.", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must match the format %s.", fe.Field(), fe.Param())
	case "min", "gte", "gt":
		return fmt.Sprintf("%s must be at least %s.", fe.Field(), fe.Param())
	case "max", "lte", "lt":
		return fmt.Sprintf("%s must be at most %s.", fe.Field(), fe.Param())
	case "file":
		return fmt.Sprintf("%s must be an existing file.", fe.Field())
	}
	return fmt.Sprintf("%s is invalid (%s).", fe.Field(), fe.Tag())
}
