package audit

import "context"

// Worker consumes events from a channel and persists them, decoupling slow
// sinks (Kafka) from the request path. The channel is the buffer; when the
// caller's send would block it should drop instead.
type Worker struct {
	sink  Sink
	inbox <-chan Event
}

func NewWorker(sink Sink, inbox <-chan Event) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

// ChannelSink exposes a channel as a Sink with drop-on-full semantics so the
// request path never blocks on audit delivery.
type ChannelSink struct {
	ch chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1024
	}
	return &ChannelSink{ch: make(chan Event, buffer)}
}

// Inbox returns the channel a Worker should drain.
func (s *ChannelSink) Inbox() <-chan Event {
	return s.ch
}

func (s *ChannelSink) Append(_ context.Context, event Event) error {
	select {
	case s.ch <- event:
		return nil
	default:
		return ErrBufferFull
	}
}
