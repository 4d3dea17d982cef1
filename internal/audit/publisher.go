package audit

import (
	"context"
	"log/slog"

	"custodia/pkg/platform/middleware/metadata"
	"custodia/pkg/requestcontext"
)

// Publisher enriches events with request-scoped context and hands them to a
// sink. Delivery failures are logged, never propagated: losing an audit
// event must not abort the business operation it describes.
type Publisher struct {
	sink   Sink
	logger *slog.Logger
}

func NewPublisher(sink Sink, logger *slog.Logger) *Publisher {
	return &Publisher{sink: sink, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	if event.Device == "" {
		event.Device = metadata.DeviceSummary(event.UserAgent)
	}
	if event.ActorID == "" {
		event.ActorID = requestcontext.ActorID(ctx)
	}

	if err := p.sink.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit event dropped",
			"kind", string(event.Kind),
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}
