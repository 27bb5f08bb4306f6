package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/todo-web/internal/ratelimit"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(r *http.Request) string

type RateLimitConfig struct {
	Store *ratelimit.Store
	// Stats is optional.
	Stats ratelimit.StatsStore
	// KeyFn defaults to ClientIP(false).
	KeyFn KeyFunc
	// PathPrefix limits throttling to matching paths. Empty throttles everything.
	PathPrefix string
}

// ClientIP keys requests by remote address, or by the first
// X-Forwarded-For entry when trustXFF is set.
func ClientIP(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// RateLimit rejects requests whose bucket is empty with 429 and Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.KeyFn == nil {
		cfg.KeyFn = ClientIP(false)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Store == nil || (cfg.PathPrefix != "" && !strings.HasPrefix(path.Clean(r.URL.Path), cfg.PathPrefix)) {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyFn(r)
			dec := cfg.Store.Allow(key)

			if cfg.Stats != nil {
				if err := cfg.Stats.Record(r.Context(), ratelimit.StatsEvent{
					Key:     key,
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				}); err != nil {
					slog.WarnContext(r.Context(), "rate limit stats not recorded", "error", err)
				}
			}

			if !dec.Allowed {
				secs := int((dec.RetryAfter + time.Second - 1) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.Header().Set(AuthErrorHeader, "TOO_MANY_REQUESTS")
				writeJSONError(w, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "too many attempts, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
