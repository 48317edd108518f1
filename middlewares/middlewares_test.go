package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString(ContextRole)})
	})
	r.GET("/", handlers...)
	return r
}

func get(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	token, err := utils.GenerateToken("alice", models.RoleCashier)
	require.NoError(t, err)
	r := newEngine(AuthMiddleware())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "Authorization", tt.header)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRoleCheck(t *testing.T) {
	withRole := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(ContextRole, role) }
	}

	assert.Equal(t, http.StatusOK, get(newEngine(withRole(models.RoleManager), RoleCheck(models.RoleKitchen)), "", "").Code)
	assert.Equal(t, http.StatusOK, get(newEngine(withRole(models.RoleKitchen), RoleCheck(models.RoleKitchen)), "", "").Code)
	assert.Equal(t, http.StatusForbidden, get(newEngine(withRole(models.RoleCashier), RoleCheck(models.RoleKitchen)), "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(newEngine(RoleCheck(models.RoleKitchen)), "", "").Code)
}

func TestLoggerMiddlewareRequestID(t *testing.T) {
	r := newEngine(LoggerMiddleware())

	generated := get(r, "", "")
	assert.Len(t, generated.Header().Get(HeaderRequestID), 36)

	kept := get(r, HeaderRequestID, "abc-123")
	assert.Equal(t, "abc-123", kept.Header().Get(HeaderRequestID))
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := newEngine(rl.RateLimit())

	assert.Equal(t, http.StatusOK, get(r, "", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:4000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterEvictsIdleIPs(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	assert.True(t, rl.limiter("10.0.0.1").Allow())
	assert.False(t, rl.limiter("10.0.0.1").Allow())
	rl.limiter("10.0.0.2")
	assert.Equal(t, 2, rl.tracked())

	now = now.Add(limiterIdleTTL / 2)
	rl.limiter("10.0.0.2")
	now = now.Add(limiterIdleTTL/2 + time.Second)
	rl.limiter("10.0.0.3")

	// .1 went quiet and was swept; .2 was seen recently and keeps its bucket
	assert.Equal(t, 2, rl.tracked())
	assert.True(t, rl.limiter("10.0.0.1").Allow())
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddlewares("http://pos.local"))
	r.OPTIONS("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://pos.local", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(SecurityHeaders())

	plain := get(r, "", "")
	assert.Equal(t, "nosniff", plain.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", plain.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", plain.Header().Get("Content-Security-Policy"))
	assert.Empty(t, plain.Header().Get("Strict-Transport-Security"))

	proxied := get(r, "X-Forwarded-Proto", "https")
	assert.Contains(t, proxied.Header().Get("Strict-Transport-Security"), "max-age=")
}

func TestErrorEnvelopeCarriesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggerMiddleware())
	r.GET("/", func(c *gin.Context) {
		utils.RespondError(c, http.StatusBadGateway, assert.AnError)
	})

	w := get(r, HeaderRequestID, "req-42")
	require.Equal(t, http.StatusBadGateway, w.Code)

	var body utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Status)
	assert.Equal(t, assert.AnError.Error(), body.Message)
	assert.Equal(t, "req-42", body.RequestID)
}
