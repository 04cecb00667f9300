// Package transactions is the only path by which wallet balances change: it
// posts credits and debits, performs frozen-gated deletion, answers bounded
// paginated queries and produces the export row set.
package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/walletgate/walletgate/internal/apperr"
	"github.com/walletgate/walletgate/internal/ledger"
	"github.com/walletgate/walletgate/internal/notification"
)

// Transaction type labels derived from the amount's sign.
const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

// TypeOf labels a transaction from the sign of its amount.
func TypeOf(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return TypeDebit
	}
	return TypeCredit
}

// Service wires ledger postings, deletions, queries and export.
type Service struct {
	store    ledger.Store
	notifier notification.Notifier
}

// NewService constructs a transaction service.
func NewService(store ledger.Store, notifier notification.Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// PostInput captures the data needed to record a credit or debit.
type PostInput struct {
	WalletID    string
	Amount      decimal.Decimal
	Description string
	ReferenceID string
}

// Post records a signed transaction and updates the balance atomically with
// the append. A zero amount has no economic meaning and is rejected. Posting
// is permitted regardless of wallet status; only deletion is gated.
func (s *Service) Post(ctx context.Context, input PostInput) (ledger.Transaction, error) {
	if input.Amount.IsZero() {
		return ledger.Transaction{}, apperr.New(apperr.InvalidArgument, "amount must be nonzero")
	}

	tx, err := s.store.AppendTransaction(ctx, input.WalletID, input.Amount, input.Description, input.ReferenceID)
	if err != nil {
		return ledger.Transaction{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:     notification.KindTransactionPosted,
			WalletID: tx.WalletID,
			Body:     fmt.Sprintf("%s of %s posted", TypeOf(tx.Amount), tx.Amount.Abs()),
		})
	}
	return tx, nil
}

// Delete removes one transaction of a frozen wallet. The balance is
// recomputed from the remaining transactions by the store.
func (s *Service) Delete(ctx context.Context, id string) (ledger.Wallet, error) {
	return s.store.DeleteTransaction(ctx, id)
}

// DeleteAll purges every transaction of a frozen wallet, all-or-nothing.
func (s *Service) DeleteAll(ctx context.Context, walletID string) (ledger.Wallet, error) {
	w, err := s.store.DeleteAllTransactions(ctx, walletID)
	if err != nil {
		return ledger.Wallet{}, err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:     notification.KindTransactionsPurged,
			WalletID: w.ID,
			Body:     fmt.Sprintf("all transactions of wallet %s deleted", w.ID),
		})
	}
	return w, nil
}

// Query validates and bounds the caller's listing parameters, then delegates
// to the store. The effective query is returned alongside the page so the
// transport can echo the applied skip and limit.
func (s *Service) Query(ctx context.Context, walletID string, params QueryParams) (ledger.Page, ledger.Query, error) {
	q, err := params.build()
	if err != nil {
		return ledger.Page{}, ledger.Query{}, err
	}
	page, err := s.store.QueryTransactions(ctx, walletID, q)
	if err != nil {
		return ledger.Page{}, ledger.Query{}, err
	}
	return page, q, nil
}

// ExportRow is one line of the export: date, amount, type derived from the
// sign, description.
type ExportRow struct {
	Date        time.Time
	Amount      decimal.Decimal
	Type        string
	Description string
}

// Export returns the wallet's full history in chronological order, ready for
// serialization to a flat tabular format.
func (s *Service) Export(ctx context.Context, walletID string) ([]ExportRow, error) {
	txs, err := s.store.ListTransactions(ctx, walletID)
	if err != nil {
		return nil, err
	}
	rows := make([]ExportRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, ExportRow{
			Date:        tx.CreatedAt,
			Amount:      tx.Amount,
			Type:        TypeOf(tx.Amount),
			Description: tx.Description,
		})
	}
	return rows, nil
}
