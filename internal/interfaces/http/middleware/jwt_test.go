package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/estudio-contable/backend/internal/infrastructure/auth"
	"github.com/estudio-contable/backend/internal/infrastructure/config"
	"github.com/estudio-contable/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: expiration,
		Issuer:                "estudio-test",
	})
}

func protectedRouter(cfg JWTMiddlewareConfig, handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), JWTAuthMiddleware(cfg))
	r.GET("/test", handler)
	return r
}

func okHandler(c *gin.Context) { c.Status(http.StatusOK) }

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	userID := uuid.New()
	token, err := svc.GenerateToken(userID, "ana@example.com")
	require.NoError(t, err)

	var owner, ctxOwner string
	r := protectedRouter(JWTMiddlewareConfig{JWTService: svc}, func(c *gin.Context) {
		owner = GetOwnerID(c)
		ctxOwner = logger.GetOwnerID(c.Request.Context())
		assert.NotNil(t, GetJWTClaims(c))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), owner)
	assert.Equal(t, userID.String(), ctxOwner)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	expired, err := newTestJWTService(-time.Minute).GenerateToken(uuid.New(), "ana@example.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Token inválido"},
		{"wrong scheme", "Basic abc", "Token inválido"},
		{"empty bearer", "Bearer ", "Token inválido"},
		{"garbage token", "Bearer not-a-jwt", "Token inválido"},
		{"expired", "Bearer " + expired.AccessToken, "El token ha expirado"},
	}

	r := protectedRouter(JWTMiddlewareConfig{JWTService: svc}, okHandler)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Contains(t, w.Body.String(), "request_id")
		})
	}
}

func TestJWTAuthMiddleware_RevokedToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	token, err := svc.GenerateToken(uuid.New(), "ana@example.com")
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(token.AccessToken)
	require.NoError(t, err)

	blacklist := auth.NewInMemoryTokenBlacklist()
	require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Minute))

	r := protectedRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist}, okHandler)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "El token fue revocado")
}

func TestGetJWTClaims_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetOwnerID(c))
}
