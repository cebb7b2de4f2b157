package middleware

import (
	"net"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stormhead-org/backoffice/internal/lib"
)

// NewRateLimitMiddleware limits requests per client IP.
func NewRateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.Allow(ip) {
				lib.WriteError(w, r, status.Error(codes.ResourceExhausted, "too many requests"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
