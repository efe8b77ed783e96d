package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"support-be/internal/ratelimit"
	"support-be/pkg/errors"
	"support-be/pkg/logger"
)

// RateLimit gates a route through its Gate. Every gated response carries
// X-RateLimit-Remaining and X-RateLimit-Reset; a rejected request gets 429
// with Retry-After as the retry hint.
func RateLimit(gate *ratelimit.Gate, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := gate.Check(r.Context(), clientAddress(r), time.Now())
			if err != nil {
				log.WithError(err).WithField("route", gate.Route()).Error("Rate gate check failed")
				writeErrorResponse(w, errors.NewServiceUnavailableError("Rate limiter unavailable", err), log)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetInMs, 10))

			if !decision.Allowed {
				retryAfter := (decision.ResetInMs + 999) / 1000 // round up to whole seconds
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				log.WithFields(map[string]interface{}{
					"route":       gate.Route(),
					"reset_in_ms": decision.ResetInMs,
				}).Info("Request rate limited")
				writeErrorResponse(w, errors.NewRateLimitError("Too many attempts, try again later", decision.ResetInMs), log)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GlobalThrottle is a coarse whole-process guard in front of the per-key
// gates: a token bucket shared by all callers.
func GlobalThrottle(limiter *rate.Limiter, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Warn("Global throttle tripped")
				w.Header().Set("Retry-After", "1")
				writeErrorResponse(w, errors.NewRateLimitError("Service is busy, try again shortly", 1000), log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientAddress extracts the caller address used for limiter key derivation.
// chi's RealIP middleware has already folded X-Forwarded-For into RemoteAddr.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
