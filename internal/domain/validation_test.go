package domain

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromValidationErrors(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := FromValidationErrors(v.Struct(MessageRequest{Enc: "utf8", Dst: "49x", Src: "portal", Priority: 11}))

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.Equal(t, []FieldError{
		{Field: "Enc", Type: "oneof", Message: "Enc must be one of: latin ucs."},
		{Field: "Msg", Type: "required", Message: "Msg is required."},
		{Field: "Dst", Type: "numeric", Message: "Dst must be a number."},
		{Field: "Priority", Type: "lte", Message: "Priority must be at most 10."},
	}, valErr.Errors)
}

func TestFromValidationErrors_otherErrors(t *testing.T) {
	other := errors.New("boom")
	assert.Same(t, other, FromValidationErrors(other))
	assert.NoError(t, FromValidationErrors(nil))
}
