package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/bulletin-app/bulletin-api/internal/models"
)

func TestTokenIssuerIssueCarriesIdentityClaims(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	issuer.now = func() time.Time { return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC) }

	signed, err := issuer.Issue(models.User{ID: 42, Name: "Dana", Role: models.RoleEditor})
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time {
		return time.Date(2026, 6, 15, 12, 30, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "42", claims["sub"])
	require.Equal(t, "editor", claims["role"])
	require.Equal(t, "Dana", claims["name"])
}

func TestTokenIssuerExpiry(t *testing.T) {
	issuer := NewTokenIssuer("secret", 2*time.Hour)
	issued := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	signed, err := issuer.Issue(models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	expiry, err := issuer.Expiry(signed)
	require.NoError(t, err)
	require.True(t, expiry.Equal(issued.Add(2*time.Hour)))

	_, err = issuer.Expiry("not-a-token")
	require.Error(t, err)
}
