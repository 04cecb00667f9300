// Package ledger is the source of truth for wallets and their transactions.
// A wallet holds a single balance; every balance change is an immutable
// transaction, and the balance always equals the sum of the wallet's
// non-deleted transaction amounts.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/walletgate/walletgate/internal/apperr"
)

// Wallet status values. A deleted wallet is removed from the store entirely;
// there is no terminal status.
const (
	StatusActive = "ACTIVE"
	StatusFrozen = "FROZEN"
)

// ValidStatus reports whether s is a known wallet status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusFrozen
}

// SeedReferenceID marks the synthetic transaction created alongside a wallet
// to carry its initial balance, keeping the balance invariant unconditional.
const SeedReferenceID = "SEED"

// SeedDescription is the description of the synthetic initial transaction.
const SeedDescription = "Initial balance"

// Wallet is a stored-value account with one balance and a lifecycle status.
type Wallet struct {
	ID        string
	Name      string
	Balance   decimal.Decimal
	Status    string
	CreatedAt time.Time
}

// Transaction is an immutable signed entry posted against exactly one
// wallet. A positive amount credits the wallet, a negative amount debits it.
// Once posted, only its existence can change.
type Transaction struct {
	ID          string
	WalletID    string
	Amount      decimal.Decimal
	Description string
	ReferenceID string
	CreatedAt   time.Time
}

// Sort fields and orders accepted by Query.
const (
	SortByCreatedAt = "createdAt"
	SortByAmount    = "amount"

	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// Query bounds a transaction listing. Sorting is deterministic: the sort
// field first, then createdAt, then id as the final tiebreak.
type Query struct {
	Skip  int
	Limit int
	Sort  string
	Order string
}

// Validate rejects out-of-range or unknown query parameters. Stores call it
// before executing so that no invalid input is silently coerced.
func (q Query) Validate() error {
	if q.Skip < 0 {
		return apperr.New(apperr.InvalidArgument, "skip must not be negative")
	}
	if q.Limit <= 0 {
		return apperr.New(apperr.InvalidArgument, "limit must be positive")
	}
	switch q.Sort {
	case SortByCreatedAt, SortByAmount:
	default:
		return apperr.New(apperr.InvalidArgument, "unknown sort field %q", q.Sort)
	}
	switch q.Order {
	case OrderAsc, OrderDesc:
	default:
		return apperr.New(apperr.InvalidArgument, "unknown sort order %q", q.Order)
	}
	return nil
}

// Page is one window of a transaction listing. Total counts every
// non-deleted transaction of the wallet irrespective of Skip and Limit.
type Page struct {
	Transactions []Transaction
	Total        int
}

// Store is the contract implemented by ledger backends (in-memory,
// Postgres). Every mutating operation is atomic: either all of its effects
// become visible or none do. Operations touching the same wallet are
// serialized; unrelated wallets proceed concurrently. Reads observe
// committed atomic units only.
type Store interface {
	// CreateWallet provisions an ACTIVE wallet. A negative initial balance
	// is rejected with InvalidArgument; a positive one atomically creates a
	// seed transaction so the balance invariant holds from the start.
	CreateWallet(ctx context.Context, name string, initialBalance decimal.Decimal) (Wallet, error)

	// GetWallet fails with NotFound when the wallet does not exist.
	GetWallet(ctx context.Context, id string) (Wallet, error)

	// ListWallets returns every wallet in creation order.
	ListWallets(ctx context.Context) ([]Wallet, error)

	// SetWalletStatus moves the wallet to the target status and returns the
	// updated record. Re-setting the current status is a no-op success.
	SetWalletStatus(ctx context.Context, id, status string) (Wallet, error)

	// DeleteWallet removes the wallet and all of its transactions. It fails
	// with InvalidState unless the wallet is frozen.
	DeleteWallet(ctx context.Context, id string) error

	// AppendTransaction assigns id and createdAt, records the transaction
	// and adds its amount to the wallet balance as one atomic unit. Posting
	// is permitted regardless of wallet status.
	AppendTransaction(ctx context.Context, walletID string, amount decimal.Decimal, description, referenceID string) (Transaction, error)

	// DeleteTransaction removes one transaction and recomputes the owning
	// wallet's balance from the remaining transactions. It fails with
	// InvalidState unless the owning wallet is frozen.
	DeleteTransaction(ctx context.Context, id string) (Wallet, error)

	// DeleteAllTransactions removes every transaction of the wallet,
	// all-or-nothing, and recomputes the balance. It fails with
	// InvalidState unless the wallet is frozen.
	DeleteAllTransactions(ctx context.Context, walletID string) (Wallet, error)

	// QueryTransactions returns a sorted page plus the total count.
	QueryTransactions(ctx context.Context, walletID string, q Query) (Page, error)

	// ListTransactions returns the wallet's full history in chronological
	// order (createdAt, then id). Used for export.
	ListTransactions(ctx context.Context, walletID string) ([]Transaction, error)
}
