package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/httputil"
	"custodia/pkg/requestcontext"
)

// Middleware applies a per-client-IP limit to every request it wraps.
type Middleware struct {
	store    Store
	limit    Limit
	logger   *slog.Logger
	disabled bool
}

// Option configures the middleware.
type Option func(*Middleware)

// WithDisabled turns the limiter off. Used in demo and test deployments.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// NewMiddleware creates rate-limiting middleware over the given store.
func NewMiddleware(store Store, limit Limit, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{store: store, limit: limit, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Handler wraps next with the IP-keyed limit.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := clientIP(r)
		result, err := m.store.Allow(ctx, "ip:"+ip, m.limit)
		if err != nil {
			// The limiter failing must not take the API down with it.
			m.logger.ErrorContext(ctx, "rate limiter unavailable, allowing request",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			m.logger.WarnContext(ctx, "request rate limited",
				"request_id", requestcontext.RequestID(ctx),
				"client_ip", ip,
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the caller address, preferring the first X-Forwarded-For
// hop set by the edge proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
