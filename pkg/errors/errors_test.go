package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	base := NewValidationError("bad pack name")
	wrapped := fmt.Errorf("handle text: %w", base)

	assert.True(t, IsValidationError(wrapped))
	assert.False(t, IsInternalError(wrapped))
	assert.Equal(t, ErrorTypeValidation, TypeOf(wrapped))
}

func TestWrapInternalKeepsCause(t *testing.T) {
	cause := errors.New("ffmpeg exited 1")
	err := WrapInternal("transform failed", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "transform failed: ffmpeg exited 1", err.Error())
	assert.Equal(t, ErrorTypeInternal, TypeOf(err))
}

func TestTypeOfUntypedIsInternal(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, TypeOf(errors.New("boom")))
	assert.Equal(t, ErrorTypeNotFound, TypeOf(NewNotFoundError("pack not found")))
	assert.Equal(t, ErrorTypePermission, TypeOf(NewPermissionError("not an admin")))
	assert.Equal(t, ErrorTypeConflict, TypeOf(NewConflictError("exists")))
}
