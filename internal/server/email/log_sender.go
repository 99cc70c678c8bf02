package email

import (
	"context"

	"github.com/dmitrijs2005/contacthub/internal/logging"
)

// LogSender "delivers" messages by logging them. Used in development when no
// SMTP relay is configured.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info(ctx, "email (log sender)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
