// Package wallet exposes the wallet lifecycle: creation with an optional
// seeded balance, the ACTIVE/FROZEN state machine, and frozen-gated
// deletion. Balances themselves only change through the transactions engine.
package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/walletgate/walletgate/internal/ledger"
	"github.com/walletgate/walletgate/internal/notification"
)

// Service exposes wallet lifecycle operations backed by the ledger store.
type Service struct {
	store    ledger.Store
	notifier notification.Notifier
}

// NewService builds a wallet service instance.
func NewService(store ledger.Store, notifier notification.Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// CreateInput captures data required to create a wallet.
type CreateInput struct {
	Name           string
	InitialBalance decimal.Decimal
}

// Create provisions an ACTIVE wallet. A positive initial balance is recorded
// as a seed transaction so the balance always equals the transaction sum.
func (s *Service) Create(ctx context.Context, input CreateInput) (ledger.Wallet, error) {
	return s.store.CreateWallet(ctx, strings.TrimSpace(input.Name), input.InitialBalance)
}

// Get retrieves a wallet by id.
func (s *Service) Get(ctx context.Context, id string) (ledger.Wallet, error) {
	return s.store.GetWallet(ctx, id)
}

// List returns every wallet in creation order.
func (s *Service) List(ctx context.Context) ([]ledger.Wallet, error) {
	return s.store.ListWallets(ctx)
}

// SetStatus moves the wallet to the target status. Re-requesting the current
// status is a no-op success; no other component changes status.
func (s *Service) SetStatus(ctx context.Context, id, status string) (ledger.Wallet, error) {
	w, err := s.store.SetWalletStatus(ctx, id, status)
	if err != nil {
		return ledger.Wallet{}, err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:     notification.KindWalletStatusChanged,
			WalletID: w.ID,
			Body:     fmt.Sprintf("wallet %s is now %s", w.ID, w.Status),
		})
	}
	return w, nil
}

// Delete removes a frozen wallet and its transactions.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteWallet(ctx, id); err != nil {
		return err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:     notification.KindWalletDeleted,
			WalletID: id,
			Body:     fmt.Sprintf("wallet %s deleted", id),
		})
	}
	return nil
}
