package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	require.True(t, hasher.Verify(hash, "hunter22"))
	require.False(t, hasher.Verify(hash, "hunter23"))
}

func TestPasswordHasherRejectsOverlongInput(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	_, err := hasher.Hash(strings.Repeat("a", 73))
	require.Error(t, err)

	_, err = hasher.Hash(strings.Repeat("a", 72))
	require.NoError(t, err)
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	hasher := NewPasswordHasher(-1)
	require.Equal(t, defaultBcryptCost, hasher.cost)

	hasher = NewPasswordHasher(bcrypt.MaxCost + 1)
	require.Equal(t, defaultBcryptCost, hasher.cost)
}
