// Package request assigns every inbound request a correlation ID. The ID is
// echoed back in the X-Request-ID response header and carried through the
// context so log lines and audit events from one request can be joined.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"custodia/pkg/requestcontext"
)

// HeaderRequestID is the header the ID is read from and echoed into.
const HeaderRequestID = "X-Request-ID"

// Middleware reuses the caller-supplied X-Request-ID when present, otherwise
// generates one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
