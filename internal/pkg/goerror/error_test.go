package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInternal, http.StatusInternalServerError},
		{CodeInvalidFormat, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusUnprocessableEntity},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeTooManyRequest, http.StatusTooManyRequests},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeTimeout, http.StatusRequestTimeout},
		{CodeGone, http.StatusGone},
		{CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			var gerr *Error
			require.ErrorAs(t, NewBusiness("x", tt.code), &gerr)
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestNewBusinessWithFields(t *testing.T) {
	err := NewBusinessWithFields("Wrong code", CodeInvalidInput, "attempts_used", "1", "attempts_max", "3", "dangling")

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "Wrong code", gerr.Error())
	assert.Equal(t, TypeBusiness, gerr.Type())
	assert.Equal(t, map[string]string{"attempts_used": "1", "attempts_max": "3"}, gerr.Fields())

	assert.Nil(t, NewBusinessWithFields("x", CodeGone).(*Error).Fields())
}

func TestNewUnavailable(t *testing.T) {
	cause := errors.New("gateway down")
	err := NewUnavailable(cause, "Could not send")

	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeUnavailable))
	assert.Equal(t, "Could not send", err.(*Error).Msg())
	assert.Equal(t, TypeServer, err.(*Error).Type())
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewBusiness("gone", CodeGone))
	assert.True(t, HasCode(wrapped, CodeGone))
	assert.False(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeGone))
}

func TestNewInvalidInput(t *testing.T) {
	err := NewInvalidInput(nil, "phone", "is required")
	assert.Equal(t, map[string]string{"phone": "is required"}, err.(*Error).Fields())

	odd := NewInvalidInput(nil, "phone")
	assert.True(t, HasCode(odd, CodeInvalidFormat))

	cause := errors.New("boom")
	assert.ErrorIs(t, NewInvalidInput(cause), cause)
}

func TestErrorMessageFallbacks(t *testing.T) {
	assert.Equal(t, "Validation violation", (&Error{errType: TypeValidation}).Error())
	assert.Equal(t, "Business rule violation", (&Error{errType: TypeBusiness}).Error())
	assert.Equal(t, "Internal error", (&Error{errType: TypeServer}).Error())
	assert.Equal(t, `type=ERROR_TYPE_SERVER code=ERROR_CODE_INTERNAL msg="Internal server error" cause=db`,
		NewServer(errors.New("db")).(*Error).String())
	assert.Equal(t, http.StatusInternalServerError, Code(99).Status())
}
