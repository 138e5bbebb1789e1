package middleware

import (
	"net/http"
	"sync"
	"time"

	"fikerless/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiterStore holds a map of IP addresses to their rate limiters.
type rateLimiterStore struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

var limiterStore = &rateLimiterStore{
	limiters: make(map[string]*rate.Limiter),
}

// limitPolicy reads the configured per-client rate. Unset or nonsense
// values fall back to 200 requests per minute.
func limitPolicy() (rate.Limit, int) {
	perMinute := config.AppConfig.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 200
	}
	burst := config.AppConfig.RateLimitBurst
	if burst <= 0 {
		burst = perMinute
	}
	return rate.Every(time.Minute / time.Duration(perMinute)), burst
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[ip]
	if !exists {
		limit, burst := limitPolicy()
		limiter = rate.NewLimiter(limit, burst)
		s.limiters[ip] = limiter
	}
	return limiter
}

// RateLimitMiddleware limits requests per IP address.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zap.L()
		ip := getClientIP(c)
		limiter := limiterStore.getLimiter(ip)
		if !limiter.Allow() {
			logger.Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
