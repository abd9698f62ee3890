package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sellForm struct {
	Currency  string  `validate:"required,len=3"`
	Amount    float64 `validate:"required,gt=0"`
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
}

func TestValidate_Valid(t *testing.T) {
	form := sellForm{Currency: "USD", Amount: 120.50, Latitude: 37.49, Longitude: 127.02}
	assert.NoError(t, Validate(form))
}

func TestValidate_MissingFields(t *testing.T) {
	err := Validate(sellForm{})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	fields := verr.Fields()
	assert.Equal(t, "is required", fields["Currency"])
	assert.Equal(t, "is required", fields["Amount"])
}

func TestValidate_TagMessages(t *testing.T) {
	form := sellForm{Currency: "USDOLLAR", Amount: -3, Latitude: 137.0, Longitude: 227.0}
	err := Validate(form)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	fields := verr.Fields()
	assert.Equal(t, "must be exactly 3 characters", fields["Currency"])
	assert.Equal(t, "must be greater than 0", fields["Amount"])
	assert.Equal(t, "must be a valid latitude", fields["Latitude"])
	assert.Equal(t, "must be a valid longitude", fields["Longitude"])
}

func TestValidationError_Message(t *testing.T) {
	err := Validate(sellForm{Currency: "USD", Amount: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Amount' is required")
}
