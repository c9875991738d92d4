package middleware

import (
	"net/http"
	"strings"

	"github.com/commerce/backend/internal/infrastructure/auth"
	"github.com/commerce/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey     = "jwt_claims"
	JWTCustomerIDKey = "jwt_customer_id"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Verifier *auth.Verifier
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// AllowHeaderFallback accepts X-Customer-ID without a token.
	// Development only; disabled in production config.
	AllowHeaderFallback bool
	Logger              *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(verifier *auth.Verifier) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Verifier: verifier,
		SkipPaths: []string{
			"/healthz",
			"/readyz",
		},
	}
}

// CustomerAuth creates customer authentication middleware
func CustomerAuth(verifier *auth.Verifier) gin.HandlerFunc {
	return CustomerAuthWithConfig(DefaultJWTConfig(verifier))
}

// CustomerAuthWithConfig creates customer authentication middleware with custom config
func CustomerAuthWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			if cfg.AllowHeaderFallback {
				if customerID := c.GetHeader("X-Customer-ID"); customerID != "" {
					setCustomer(c, customerID)
					c.Next()
					return
				}
			}
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.Verifier.Verify(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg, err, "Token validation failed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		setCustomer(c, claims.Customer())
		c.Next()
	}
}

// setCustomer records the authenticated customer in the gin and request contexts
func setCustomer(c *gin.Context, customerID string) {
	c.Set(JWTCustomerIDKey, customerID)

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	ctx, _ = logger.WithCustomerID(ctx, log, customerID)
	c.Request = c.Request.WithContext(ctx)
}

// abortUnauthorized rejects the request with a 401
func abortUnauthorized(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Customer authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "UNAUTHORIZED"
	errorMessage := "Authentication required"
	switch err {
	case auth.ErrExpiredToken:
		errorCode = "TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	case auth.ErrTokenNotYetValid:
		errorCode = "TOKEN_NOT_VALID"
		errorMessage = "Token is not yet valid"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// GetCustomerID retrieves the authenticated customer ID from gin.Context
func GetCustomerID(c *gin.Context) string {
	if customerID, exists := c.Get(JWTCustomerIDKey); exists {
		if id, ok := customerID.(string); ok {
			return id
		}
	}
	return ""
}
