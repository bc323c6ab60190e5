package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

// DefaultRetryAfterSeconds is the value sent in the Retry-After header when
// a rate limit is exceeded.
const DefaultRetryAfterSeconds = 1

// ClientKey extracts a per-client key from the request: the first
// X-Forwarded-For hop when present, otherwise the remote host.
func ClientKey(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		if comma := strings.Index(forwarded, ","); comma >= 0 {
			forwarded = strings.TrimSpace(forwarded[:comma])
		}
		if forwarded != "" {
			return forwarded
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware enforces per-client limits, returning 429 with a Retry-After
// header when a client exceeds its bucket. Requests with an empty client key
// pass through unlimited.
func Middleware(limiter *Limiter, keyFn func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			bucket := limiter.Get(key)
			if !bucket.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(DefaultRetryAfterSeconds))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte("Too Many Requests"))
				return
			}

			remaining := int(bucket.Tokens())
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}
