package notification

import (
	"context"
	"log/slog"
)

const (
	// KindTransactionPosted indicates a credit or debit was recorded.
	KindTransactionPosted = "transaction_posted"
	// KindWalletStatusChanged indicates a wallet moved between ACTIVE and FROZEN.
	KindWalletStatusChanged = "wallet_status_changed"
	// KindTransactionsPurged indicates a bulk deletion of a wallet's transactions.
	KindTransactionsPurged = "transactions_purged"
	// KindWalletDeleted indicates a frozen wallet was removed.
	KindWalletDeleted = "wallet_deleted"
)

// Message describes a ledger event payload.
type Message struct {
	Kind     string
	WalletID string
	Body     string
}

// Notifier delivers ledger events to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes events to the logger.
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
	n.logger.Info("ledger event", "kind", message.Kind, "wallet_id", message.WalletID, "body", message.Body)
	return nil
}
