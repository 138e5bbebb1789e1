package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fikerless/config"

	"github.com/gin-gonic/gin"
)

func rateLimitedEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RateLimitMiddleware())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return engine
}

func hitFrom(engine *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware_EnforcesConfiguredBurst(t *testing.T) {
	config.AppConfig.RateLimitPerMinute = 3
	config.AppConfig.RateLimitBurst = 3
	defer func() {
		config.AppConfig.RateLimitPerMinute = 0
		config.AppConfig.RateLimitBurst = 0
	}()

	engine := rateLimitedEngine()
	for i := 0; i < 3; i++ {
		if code := hitFrom(engine, "203.0.113.7"); code != http.StatusOK {
			t.Fatalf("request %d: want 200, got %d", i+1, code)
		}
	}
	if code := hitFrom(engine, "203.0.113.7"); code != http.StatusTooManyRequests {
		t.Fatalf("want 429 past the burst, got %d", code)
	}

	// Other clients keep their own budget.
	if code := hitFrom(engine, "203.0.113.8"); code != http.StatusOK {
		t.Fatalf("want 200 for a fresh client, got %d", code)
	}
}
