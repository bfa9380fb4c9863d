package notification

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentedSender counts successful sends per template.
type InstrumentedSender struct {
	next Sender
	sent *prometheus.CounterVec
}

// Instrument wraps a sender with a per-template send counter.
func Instrument(next Sender, sent *prometheus.CounterVec) *InstrumentedSender {
	return &InstrumentedSender{next: next, sent: sent}
}

func (s *InstrumentedSender) Send(ctx context.Context, msg Message) error {
	if err := s.next.Send(ctx, msg); err != nil {
		return err
	}
	s.sent.WithLabelValues(string(msg.Template)).Inc()
	return nil
}
