package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hydration/internal/platform/metrics"
	"hydration/pkg/requestcontext"
)

// Publisher queues events for the Worker. Emit never blocks the request path:
// when the buffer is full the event is dropped and counted.
type Publisher struct {
	inbox   chan Event
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewPublisher creates a publisher with a buffered inbox.
func NewPublisher(prefix string, buffer int, logger *slog.Logger, m *metrics.Metrics) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		inbox:   make(chan Event, buffer),
		prefix:  prefix,
		logger:  logger,
		metrics: m,
	}
}

// Emit fills in the ID and timestamp and queues the event. Safe on a nil Publisher.
func (p *Publisher) Emit(ctx context.Context, e Event) {
	if p == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = requestcontext.Now(ctx)
	}
	select {
	case p.inbox <- e:
	default:
		p.metrics.RecordEvent(p.Subject(e.Type), "dropped")
		p.logger.WarnContext(ctx, "event buffer full, dropping event",
			"request_id", requestcontext.RequestID(ctx),
			"type", e.Type,
		)
	}
}

// Subject returns the NATS subject for an event type.
func (p *Publisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// Inbox exposes queued events to a Worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// Sink delivers one event to a subject.
type Sink interface {
	Publish(ctx context.Context, subject string, e Event) error
}

// Worker drains the publisher inbox into a sink.
type Worker struct {
	publisher *Publisher
	sink      Sink
	timeout   time.Duration
}

// NewWorker binds a sink to a publisher.
func NewWorker(publisher *Publisher, sink Sink) *Worker {
	return &Worker{publisher: publisher, sink: sink, timeout: 5 * time.Second}
}

// Run publishes until ctx is cancelled, then flushes what is already queued.
// Delivery failures are logged and counted; they never stop the worker.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case e := <-w.publisher.inbox:
			w.deliver(ctx, e)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	for {
		select {
		case e := <-w.publisher.inbox:
			w.deliver(ctx, e)
		default:
			return
		}
	}
}

func (w *Worker) deliver(ctx context.Context, e Event) {
	subject := w.publisher.Subject(e.Type)
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
	defer cancel()
	if err := w.sink.Publish(pubCtx, subject, e); err != nil {
		w.publisher.metrics.RecordEvent(subject, "failed")
		w.publisher.logger.ErrorContext(ctx, "failed to publish event",
			"subject", subject,
			"event_id", e.ID,
			"error", err,
		)
		return
	}
	w.publisher.metrics.RecordEvent(subject, "published")
}
