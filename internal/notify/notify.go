// Package notify delivers failure alerts to human operators. Delivery is
// best-effort and fire-and-forget with respect to pipeline control flow: a
// notification failure never replaces or masks the error being reported.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Notifier reports an unrecoverable pipeline failure to operators.
type Notifier interface {
	Notify(ctx context.Context, subject string, cause error) error
}

// Channel is a single delivery target (webhook, email).
type Channel interface {
	Name() string
	Deliver(ctx context.Context, subject, body string) error
}

// FailureNotifier fans a failure out to every configured channel. Each
// channel is always attempted; one channel failing does not prevent the
// others. Per-channel failures are joined into the returned error so the
// caller can log them without losing the original cause.
type FailureNotifier struct {
	channels []Channel
	logger   *slog.Logger
}

// NewFailureNotifier constructs a notifier over the given channels.
func NewFailureNotifier(logger *slog.Logger, channels ...Channel) *FailureNotifier {
	return &FailureNotifier{channels: channels, logger: logger}
}

// Notify formats the failure and delivers it to every channel in turn.
func (n *FailureNotifier) Notify(ctx context.Context, subject string, cause error) error {
	body := fmt.Sprintf("%s\nError: %v", subject, cause)

	var errs []error
	for _, ch := range n.channels {
		if err := ch.Deliver(ctx, subject, body); err != nil {
			n.logger.Warn("notification channel failed", "channel", ch.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		n.logger.Info("failure notification delivered", "channel", ch.Name())
	}
	return errors.Join(errs...)
}

// LoggerNotifier is a stub that writes notifications to the logger. Useful
// for tests and local runs without alert credentials.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Notify writes the failure to the structured logger.
func (n *LoggerNotifier) Notify(_ context.Context, subject string, cause error) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Error("pipeline failure", "subject", subject, "cause", cause)
	return nil
}
