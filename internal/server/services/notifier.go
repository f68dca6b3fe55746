package services

import (
	"context"

	"github.com/dmitrijs2005/librarian/internal/logging"
)

// Notifier delivers out-of-band messages to account holders.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email string, token string) error
}

// LogNotifier writes reset tokens to the log instead of sending mail. It is
// meant for development setups without a mail relay.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l.With("module", "notifier")}
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, email string, token string) error {
	n.logger.Info(ctx, "password reset requested", "email", email, "token", token)
	return nil
}
