package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp,omitempty" validate:"required"`
}

func TestStruct_UsesJSONNames(t *testing.T) {
	err := Struct(sample{})
	require.Error(t, err)
	assert.Equal(t, "field 'email' failed 'required'; field 'otp' failed 'required'", err.Error())
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Email: "a@b.com", OTP: "123456"}))
}
