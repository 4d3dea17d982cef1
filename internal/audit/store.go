package audit

import (
	"context"

	dErrors "custodia/pkg/domain-errors"
)

// ErrBufferFull is returned by buffered sinks when the delivery channel is
// saturated and the event was dropped.
var ErrBufferFull = dErrors.New(dErrors.CodeInternal, "audit buffer full")

// Sink receives events for delivery; implementations may persist locally or
// forward to a broker.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a Sink that can also be read back, for the admin surface and
// tests.
type Store interface {
	Sink
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
