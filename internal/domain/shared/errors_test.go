package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "Item request not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))

	wrapped := fmt.Errorf("load request: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestDomainError_WithCause(t *testing.T) {
	cause := errors.New("duplicate key value")
	err := ErrAlreadyExists.WithCause(cause)

	assert.Equal(t, "ALREADY_EXISTS", err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, ErrAlreadyExists.Err)
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, Filter{Page: 1, PageSize: 25}.Offset())
	assert.Equal(t, 50, Filter{Page: 3, PageSize: 25}.Offset())
	assert.Equal(t, 0, Filter{Page: 0, PageSize: 25}.Offset())
}
