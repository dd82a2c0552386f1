package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundErrorsUnwrap(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrUserNotFound, ErrStructureNotFound, ErrAssessmentNotFound} {
		assert.ErrorIs(t, err, ErrNotFound)
		assert.True(t, IsNotFoundError(err))
		assert.True(t, IsNotFoundError(fmt.Errorf("wrapped: %w", err)))
	}

	assert.False(t, IsNotFoundError(errors.New("something else")))
	assert.False(t, IsNotFoundError(nil))
}

func TestDuplicateErrorsUnwrap(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ErrEmailExists, ErrDuplicate)
	assert.True(t, IsDuplicateError(ErrEmailExists))
	assert.False(t, IsDuplicateError(ErrUserNotFound))
}

func TestStoreErrorFormatting(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := NewStoreError("structure", "create", "insert failed", inner)

	assert.Contains(t, err.Error(), "create operation on structure failed")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, inner)

	bare := NewStoreError("user", "delete", "gone", nil)
	assert.Equal(t, "delete operation on user failed: gone", bare.Error())
}
