package auth

import (
	"testing"
	"time"

	"github.com/commerce/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-verification"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func customerClaims(customerID string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID,
			Issuer:    "identity-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerifierVerify(t *testing.T) {
	verifier := NewVerifier(config.JWTConfig{Secret: testSecret, Issuer: "identity-service"})
	customerID := uuid.New().String()

	t.Run("accepts a valid token", func(t *testing.T) {
		token := signToken(t, testSecret, customerClaims(customerID))

		claims, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, customerID, claims.Customer())
	})

	t.Run("reads the customer from the legacy claim", func(t *testing.T) {
		claims := customerClaims("")
		claims.CustomerID = customerID
		token := signToken(t, testSecret, claims)

		parsed, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, customerID, parsed.Customer())
	})

	t.Run("prefers the subject over the legacy claim", func(t *testing.T) {
		claims := customerClaims(customerID)
		claims.CustomerID = uuid.New().String()
		token := signToken(t, testSecret, claims)

		parsed, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, customerID, parsed.Customer())
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		token := signToken(t, "wrong-secret", customerClaims(customerID))

		_, err := verifier.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		claims := customerClaims(customerID)
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		token := signToken(t, testSecret, claims)

		_, err := verifier.Verify(token)
		require.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects a token used before its not-before", func(t *testing.T) {
		claims := customerClaims(customerID)
		claims.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))
		token := signToken(t, testSecret, claims)

		_, err := verifier.Verify(token)
		require.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("rejects a wrong issuer", func(t *testing.T) {
		claims := customerClaims(customerID)
		claims.Issuer = "somebody-else"
		token := signToken(t, testSecret, claims)

		_, err := verifier.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects a token without a customer", func(t *testing.T) {
		token := signToken(t, testSecret, customerClaims(""))

		_, err := verifier.Verify(token)
		require.ErrorIs(t, err, ErrMissingCustomerID)
	})

	t.Run("rejects the none algorithm", func(t *testing.T) {
		claims := customerClaims(customerID)
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &claims)
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.Verify(signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := verifier.Verify("not.a.token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("skips the issuer check when unconfigured", func(t *testing.T) {
		open := NewVerifier(config.JWTConfig{Secret: testSecret})
		claims := customerClaims(customerID)
		claims.Issuer = "anything"
		token := signToken(t, testSecret, claims)

		_, err := open.Verify(token)
		require.NoError(t, err)
	})
}
