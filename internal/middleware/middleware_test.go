package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/poolsim/internal/auth"
	"github.com/playmatatu/poolsim/internal/config"
)

func newRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(cfg))
	r.GET("/open", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/control", ControlAuth(cfg), func(c *gin.Context) { c.Status(http.StatusAccepted) })
	r.GET("/ws", WebSocketCORSCheck(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestControlAuth(t *testing.T) {
	hash, err := auth.HashControlKey("key")
	require.NoError(t, err)
	cfg := &config.Config{Environment: "development", JWTSecret: "secret", ControlKeyHash: hash}
	r := newRouter(cfg)

	token, _, err := auth.IssueToken("secret", time.Hour, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized},
		{"bearer", "Bearer " + token, "", http.StatusAccepted},
		{"query param", "", "?access_token=" + token, http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/control"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestControlAuthDisabled(t *testing.T) {
	r := newRouter(&config.Config{Environment: "development"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/control", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestCORSAllowsFrontend(t *testing.T) {
	r := newRouter(&config.Config{Environment: "production", FrontendURL: "https://pool.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Origin", "https://pool.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://pool.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebSocketOriginCheck(t *testing.T) {
	cfg := &config.Config{Environment: "production", FrontendURL: "https://pool.example.com"}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", WebSocketCORSCheck(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

	upgrade := func(origin string) int {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, upgrade("https://pool.example.com"))
	assert.Equal(t, http.StatusOK, upgrade(""))
	assert.Equal(t, http.StatusForbidden, upgrade("http://localhost:3000"))
}
