package console

import (
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/h44z/sms-portal/internal/domain"
)

// Validator validates the payload of a form before it is sent.
type Validator interface {
	// Struct validates the given struct.
	Struct(s interface{}) error
}

// NewValidator returns the validator used for all console forms.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validatePayload validates struct payloads and converts validation failures to a domain.ValidationError with one message per field.
func validatePayload(v Validator, payload any) error {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(payload)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	if err := v.Struct(payload); err != nil {
		return domain.FromValidationErrors(err)
	}
	return nil
}
