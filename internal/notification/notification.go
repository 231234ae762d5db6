package notification

import (
	"context"
	"log/slog"
)

const (
	// KindPayoutCompleted indicates a payout finished successfully.
	KindPayoutCompleted = "payout_completed"
	// KindReconciliationNeeded indicates a compensation failed and the
	// residual inconsistency needs manual reconciliation.
	KindReconciliationNeeded = "reconciliation_needed"
)

// Message describes a notification payload.
type Message struct {
	Kind          string
	CorrelationID string
	Body          string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "correlation_id", message.CorrelationID, "body", message.Body)
	return nil
}
