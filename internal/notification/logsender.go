package notification

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the log instead of delivering them. Used when
// no broker is configured, typically in local development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "notification (not delivered, no broker configured)",
		"recipient", msg.Recipient,
		"template", string(msg.Template),
		"language", msg.Language.String(),
	)
	return nil
}
