package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/commerce/backend/internal/infrastructure/auth"
	"github.com/commerce/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	r := gin.New()
	r.Use(CustomerAuthWithConfig(cfg))
	r.GET("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"customer_id": GetCustomerID(c)})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func signedToken(t *testing.T, customerID string, mutate func(*auth.Claims)) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	if mutate != nil {
		mutate(&claims)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestCustomerAuth(t *testing.T) {
	verifier := auth.NewVerifier(config.JWTConfig{Secret: testSecret})
	customerID := uuid.New().String()

	t.Run("accepts a bearer token", func(t *testing.T) {
		r := newAuthRouter(DefaultJWTConfig(verifier))

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+signedToken(t, customerID, nil))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), customerID)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		r := newAuthRouter(DefaultJWTConfig(verifier))

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("rejects a malformed header", func(t *testing.T) {
		r := newAuthRouter(DefaultJWTConfig(verifier))

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("labels an expired token", func(t *testing.T) {
		r := newAuthRouter(DefaultJWTConfig(verifier))

		token := signedToken(t, customerID, func(c *auth.Claims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		})
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("skips configured paths", func(t *testing.T) {
		r := newAuthRouter(DefaultJWTConfig(verifier))

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("accepts the header fallback when enabled", func(t *testing.T) {
		cfg := DefaultJWTConfig(verifier)
		cfg.AllowHeaderFallback = true
		r := newAuthRouter(cfg)

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("X-Customer-ID", customerID)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), customerID)
	})

	t.Run("ignores the header fallback when disabled", func(t *testing.T) {
		r := newAuthRouter(DefaultJWTConfig(verifier))

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("X-Customer-ID", customerID)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
