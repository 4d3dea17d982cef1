package testutil

import (
	"context"
	"net/http"

	"custodia/pkg/requestcontext"
)

// AsActor stamps a request with an authenticated subject, simulating what the
// auth middleware does for real traffic. Kind is "entity" or "person".
func AsActor(req *http.Request, actorID, kind string) *http.Request {
	ctx := requestcontext.WithActorID(req.Context(), actorID)
	ctx = requestcontext.WithActorKind(ctx, kind)
	return req.WithContext(ctx)
}

// WithRequestID stamps a request with a correlation ID.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), key, value))
}
