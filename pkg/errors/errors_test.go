package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrInvalidRange, "start 2025-06 is after end 2025-03"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrInvalidRange.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "start 2025-06 is after end 2025-03", appErr.Message)
}

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.EqualError(t, appErr, "internal server error: boom")
}

func TestWrapUnwrapsToCause(t *testing.T) {
	cause := errors.New("bad day")
	err := Wrap(cause, ErrInvalidTemplate.Code, ErrInvalidTemplate.Status, "invalid weekly template")
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, FromError(nil))
}
