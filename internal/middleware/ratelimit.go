package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/hongminglow/accounts-be/internal/http/respond"
	"github.com/hongminglow/accounts-be/internal/ratelimit"
)

// RequestLimiter is the part of ratelimit.Limiter the middleware needs.
type RequestLimiter interface {
	Take(client string, class ratelimit.Class) ratelimit.Decision
}

// RateLimit throttles requests per client IP within the given endpoint class.
func RateLimit(limiter RequestLimiter, class ratelimit.Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Take(ClientKey(r), class)
			if d.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			}
			if !d.Allowed {
				seconds := int(math.Ceil(d.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				respond.Error(w, http.StatusTooManyRequests,
					"Request was throttled. Expected available in "+strconv.Itoa(seconds)+" seconds.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey returns the client IP. It expects chi's RealIP to have run when
// the service sits behind a proxy.
func ClientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
