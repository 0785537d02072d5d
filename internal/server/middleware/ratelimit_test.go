package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(10, time.Minute, discardLogger())
	defer limiter.Stop()

	assert.Equal(t, 10, limiter.rate)
	assert.Equal(t, time.Minute, limiter.window)
	assert.NotNil(t, limiter.buckets)
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("requests within limit are allowed", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute, discardLogger())
		defer limiter.Stop()

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("192.168.1.1"), fmt.Sprintf("request %d should be allowed", i+1))
		}
	})

	t.Run("requests over limit are denied", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute, discardLogger())
		defer limiter.Stop()

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("192.168.1.1"))
		}
		assert.False(t, limiter.Allow("192.168.1.1"))
	})

	t.Run("keys have independent buckets", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute, discardLogger())
		defer limiter.Stop()

		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.False(t, limiter.Allow("10.0.0.1"))
		assert.True(t, limiter.Allow("10.0.0.2"))
	})

	t.Run("bucket refills after window", func(t *testing.T) {
		limiter := NewRateLimiter(1, 50*time.Millisecond, discardLogger())
		defer limiter.Stop()

		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.False(t, limiter.Allow("10.0.0.1"))

		time.Sleep(60 * time.Millisecond)
		assert.True(t, limiter.Allow("10.0.0.1"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	wrapped := RateLimitMiddleware(2, time.Minute, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/villages", nil)
		req.RemoteAddr = "192.168.1.1:4000"
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/villages", nil)
	req.RemoteAddr = "192.168.1.1:4000"
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "remote addr only",
			remote:   "192.168.1.1:4000",
			expected: "192.168.1.1:4000",
		},
		{
			name:     "x-forwarded-for single",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.9"},
			remote:   "10.0.0.1:4000",
			expected: "203.0.113.9",
		},
		{
			name:     "x-forwarded-for chain takes first",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"},
			remote:   "10.0.0.1:4000",
			expected: "203.0.113.9",
		},
		{
			name:     "x-real-ip",
			headers:  map[string]string{"X-Real-IP": "203.0.113.10"},
			remote:   "10.0.0.1:4000",
			expected: "203.0.113.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}
