package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromKeepsCodedErrors(t *testing.T) {
	err := fmt.Errorf("create order: %w", BadRequest("Invalid coupon code"))

	got := From(err)
	assert.Equal(t, CodeBadRequest, got.Code)
	assert.Equal(t, "Invalid coupon code", got.Error())
	assert.True(t, Is(err, CodeBadRequest))
}

func TestFromHidesUncodedCause(t *testing.T) {
	cause := errors.New("pq: connection refused")

	got := From(cause)
	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, "Internal server error", got.Error())
	assert.ErrorIs(t, got, cause)
}

func TestExtensions(t *testing.T) {
	tests := []struct {
		err    *Error
		code   string
		status int
	}{
		{NotFound("x"), "NOT_FOUND", 404},
		{BadRequest("x"), "BAD_REQUEST", 400},
		{Forbidden("x"), "FORBIDDEN", 403},
		{Unauthorized("x"), "UNAUTHORIZED", 401},
		{Conflict("x"), "CONFLICT", 409},
		{Internal(nil), "INTERNAL", 500},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ext := tt.err.Extensions()
			assert.Equal(t, tt.code, ext["code"])
			assert.Equal(t, tt.status, ext["statusCode"])
		})
	}
}

func TestCodeOfNil(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Nil(t, From(nil))
}
