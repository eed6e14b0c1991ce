package security

import (
	"Mediahub/internal/api/config"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	Init(config.JWTConfig{Secret: "test-secret", Issuer: "Mediahub"})

	token, err := GenerateToken(42)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
}

func TestValidateTokenRejects(t *testing.T) {
	Init(config.JWTConfig{Secret: "test-secret", Issuer: "Mediahub"})

	sign := func(claims *UserClaims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	valid := jwt.RegisteredClaims{
		Issuer:    "Mediahub",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": sign(&UserClaims{UserID: 1, RegisteredClaims: valid}, "other"),
		"no user":      sign(&UserClaims{RegisteredClaims: valid}, "test-secret"),
		"wrong issuer": sign(&UserClaims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "someone-else", ExpiresAt: valid.ExpiresAt,
		}}, "test-secret"),
		"expired": sign(&UserClaims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "Mediahub", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}, "test-secret"),
		"no expiry": sign(&UserClaims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{Issuer: "Mediahub"}}, "test-secret"),
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &UserClaims{UserID: 1, RegisteredClaims: valid}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	tests["other hmac"] = hs512

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateToken(token)
			assert.Error(t, err)
		})
	}
}
