package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwriting-api/pkg/utils"
)

func newAuthRouter(t *testing.T, cfg AuthConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Auth(cfg))
	r.GET("/v1/projects", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestAuth_ValidAccessToken(t *testing.T) {
	cfg := AuthConfig{Secret: "test-secret", Issuer: "test", Enabled: true}
	r := newAuthRouter(t, cfg)

	token, err := utils.NewJWTManager(cfg.Secret, cfg.Issuer).GenerateToken("user-1", "access", time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newAuthRouter(t, AuthConfig{Secret: "test-secret", Issuer: "test", Enabled: true})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/projects", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RejectsRefreshToken(t *testing.T) {
	cfg := AuthConfig{Secret: "test-secret", Issuer: "test", Enabled: true}
	r := newAuthRouter(t, cfg)

	token, err := utils.NewJWTManager(cfg.Secret, cfg.Issuer).GenerateToken("user-1", "refresh", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token type")
}

func TestAuth_SkipPaths(t *testing.T) {
	cfg := AuthConfig{
		Secret:    "test-secret",
		Issuer:    "test",
		Enabled:   true,
		SkipPaths: []string{"/health"},
	}
	r := newAuthRouter(t, cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_Disabled(t *testing.T) {
	r := newAuthRouter(t, AuthConfig{Enabled: false})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/projects", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
