package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"support-be/internal/ratelimit"
	"support-be/pkg/logger"
)

func newGate(maxAttempts int) *ratelimit.Gate {
	policy := ratelimit.Policy{
		MaxAttempts: maxAttempts,
		Window:      time.Minute,
		Lockout:     5 * time.Minute,
	}
	return ratelimit.NewGate("test", policy, ratelimit.NewSlidingWindowLimiter(ratelimit.NewMemoryStore()))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_AllowsAndSetsHeaders(t *testing.T) {
	mw := RateLimit(newGate(5), logger.NewNop())
	handler := mw(okHandler())

	r := httptest.NewRequest(http.MethodPost, "/escalate", nil)
	r.RemoteAddr = "10.0.0.1:54321"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimit_RejectsWithRetryAfter(t *testing.T) {
	mw := RateLimit(newGate(2), logger.NewNop())
	handler := mw(okHandler())

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/escalate", nil)
		r.RemoteAddr = "10.0.0.1:54321"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if i < 1 {
			require.Equal(t, http.StatusOK, w.Code, "request %d", i)
			continue
		}
		require.Equal(t, http.StatusTooManyRequests, w.Code, "request %d", i)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_ClientsAreIndependent(t *testing.T) {
	mw := RateLimit(newGate(2), logger.NewNop())
	handler := mw(okHandler())

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/escalate", nil)
		r.RemoteAddr = "10.0.0.1:1000"
		handler.ServeHTTP(httptest.NewRecorder(), r)
	}

	r := httptest.NewRequest(http.MethodPost, "/escalate", nil)
	r.RemoteAddr = "10.0.0.2:1000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code, "a locked client must not affect others")
}

func TestGlobalThrottle(t *testing.T) {
	// One token, no refill within the test
	mw := GlobalThrottle(rate.NewLimiter(rate.Limit(0.001), 1), logger.NewNop())
	handler := mw(okHandler())

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}

func TestClientAddress(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"10.0.0.1:54321", "10.0.0.1"},
		{"[::1]:8080", "::1"},
		{"10.0.0.1", "10.0.0.1"},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tt.remoteAddr
		assert.Equal(t, tt.want, clientAddress(r))
	}
}
