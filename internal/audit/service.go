package audit

import (
	"context"
	"log/slog"
	"time"

	"jassari/pkg/requestcontext"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByProfile(ctx context.Context, profileID string) ([]Event, error)
}

// Service buffers events for the worker. Recording never blocks a request:
// when the buffer is full the event is dropped and logged, since audit
// backpressure must not take the membership API down with it.
type Service struct {
	inbox  chan Event
	logger *slog.Logger
}

const defaultBuffer = 1024

func NewService(logger *slog.Logger) *Service {
	return &Service{
		inbox:  make(chan Event, defaultBuffer),
		logger: logger,
	}
}

// Record stamps and enqueues an event. Timestamp and request ID default from
// the request context when unset.
func (s *Service) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case s.inbox <- event:
	default:
		s.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", string(event.Action),
			"profile_id", event.ProfileID,
		)
	}
}

// Inbox exposes the event channel for the worker.
func (s *Service) Inbox() <-chan Event {
	return s.inbox
}

// Worker drains the service inbox into the store.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run persists events until ctx is cancelled, then drains what is already
// buffered before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.append(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"action", string(event.Action),
			"profile_id", event.ProfileID,
			"error", err.Error(),
		)
	}
}
