package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrNoCredentials_IsInvalidToken(t *testing.T) {
	assert.ErrorIs(t, ErrNoCredentials, ErrInvalidToken)
	assert.True(t, IsAuthError(fmt.Errorf("wrapped: %w", ErrNoCredentials)))
	assert.False(t, errors.Is(ErrInvalidToken, ErrNoCredentials))
	assert.Equal(t, "authentication credentials were not provided", ErrNoCredentials.Error())
}
