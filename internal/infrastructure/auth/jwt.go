// Package auth verifies customer access tokens issued by the identity service.
package auth

import (
	"errors"

	"github.com/commerce/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token has expired")
	ErrInvalidClaims     = errors.New("invalid token claims")
	ErrTokenNotYetValid  = errors.New("token is not yet valid")
	ErrMissingCustomerID = errors.New("missing customer id in claims")
)

// Claims represents the customer token claims. The customer ID is carried
// in the standard subject claim; customer_id is accepted as a fallback for
// tokens minted by the legacy identity service.
type Claims struct {
	jwt.RegisteredClaims
	CustomerID string `json:"customer_id,omitempty"`
}

// Customer returns the customer ID the token was issued for
func (c *Claims) Customer() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.CustomerID
}

// Verifier validates customer access tokens. This service only verifies
// tokens, it never issues them.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a token verifier from JWT configuration
func NewVerifier(cfg config.JWTConfig) *Verifier {
	return &Verifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Verify parses and validates a token string and returns its claims
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Customer() == "" {
		return nil, ErrMissingCustomerID
	}
	return claims, nil
}
