package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walletgate/walletgate/internal/apperr"
)

// walletState bundles a wallet record with its transactions under one lock,
// which is the wallet's serialization scope.
type walletState struct {
	mu  sync.Mutex
	rec Wallet
	txs []Transaction
}

type inMemoryStore struct {
	// mu guards the wallet map and creation order. Per-wallet state is
	// guarded by walletState.mu; mu is always acquired first.
	mu      sync.RWMutex
	wallets map[string]*walletState
	order   []string
}

// NewInMemory creates a concurrency-safe in-memory store. It backs local
// development without Postgres and the unit tests.
func NewInMemory() Store {
	return &inMemoryStore{wallets: make(map[string]*walletState)}
}

func (s *inMemoryStore) CreateWallet(_ context.Context, name string, initialBalance decimal.Decimal) (Wallet, error) {
	if name == "" {
		return Wallet{}, apperr.New(apperr.InvalidArgument, "wallet name is required")
	}
	if initialBalance.IsNegative() {
		return Wallet{}, apperr.New(apperr.InvalidArgument, "initial balance must not be negative")
	}

	now := time.Now().UTC()
	w := &walletState{rec: Wallet{
		ID:        uuid.NewString(),
		Name:      name,
		Balance:   initialBalance,
		Status:    StatusActive,
		CreatedAt: now,
	}}
	if initialBalance.IsPositive() {
		w.txs = append(w.txs, Transaction{
			ID:          uuid.NewString(),
			WalletID:    w.rec.ID,
			Amount:      initialBalance,
			Description: SeedDescription,
			ReferenceID: SeedReferenceID,
			CreatedAt:   now,
		})
	}

	s.mu.Lock()
	s.wallets[w.rec.ID] = w
	s.order = append(s.order, w.rec.ID)
	s.mu.Unlock()

	return w.rec, nil
}

func (s *inMemoryStore) GetWallet(_ context.Context, id string) (Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[id]
	if !ok {
		return Wallet{}, apperr.New(apperr.NotFound, "wallet %s not found", id)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec, nil
}

func (s *inMemoryStore) ListWallets(_ context.Context) ([]Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Wallet, 0, len(s.order))
	for _, id := range s.order {
		w := s.wallets[id]
		w.mu.Lock()
		out = append(out, w.rec)
		w.mu.Unlock()
	}
	return out, nil
}

func (s *inMemoryStore) SetWalletStatus(_ context.Context, id, status string) (Wallet, error) {
	if !ValidStatus(status) {
		return Wallet{}, apperr.New(apperr.InvalidArgument, "unknown wallet status %q", status)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[id]
	if !ok {
		return Wallet{}, apperr.New(apperr.NotFound, "wallet %s not found", id)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	// Setting the current status again is a no-op success.
	w.rec.Status = status
	return w.rec, nil
}

func (s *inMemoryStore) DeleteWallet(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok {
		return apperr.New(apperr.NotFound, "wallet %s not found", id)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rec.Status != StatusFrozen {
		return apperr.New(apperr.InvalidState, "wallet must be FROZEN to be deleted")
	}
	delete(s.wallets, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *inMemoryStore) AppendTransaction(_ context.Context, walletID string, amount decimal.Decimal, description, referenceID string) (Transaction, error) {
	// Holding the read lock for the whole call keeps the append from racing
	// a concurrent wallet deletion while leaving unrelated wallets free.
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return Transaction{}, apperr.New(apperr.NotFound, "wallet %s not found", walletID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	tx := Transaction{
		ID:          uuid.NewString(),
		WalletID:    walletID,
		Amount:      amount,
		Description: description,
		ReferenceID: referenceID,
		CreatedAt:   time.Now().UTC(),
	}
	w.txs = append(w.txs, tx)
	w.rec.Balance = w.rec.Balance.Add(amount)
	return tx, nil
}

func (s *inMemoryStore) DeleteTransaction(_ context.Context, id string) (Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.wallets {
		w.mu.Lock()
		for i, tx := range w.txs {
			if tx.ID != id {
				continue
			}
			if w.rec.Status != StatusFrozen {
				w.mu.Unlock()
				return Wallet{}, apperr.New(apperr.InvalidState, "wallet must be FROZEN to delete transactions")
			}
			w.txs = append(w.txs[:i], w.txs[i+1:]...)
			w.rec.Balance = sumAmounts(w.txs)
			rec := w.rec
			w.mu.Unlock()
			return rec, nil
		}
		w.mu.Unlock()
	}
	return Wallet{}, apperr.New(apperr.NotFound, "transaction %s not found", id)
}

func (s *inMemoryStore) DeleteAllTransactions(_ context.Context, walletID string) (Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return Wallet{}, apperr.New(apperr.NotFound, "wallet %s not found", walletID)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rec.Status != StatusFrozen {
		return Wallet{}, apperr.New(apperr.InvalidState, "wallet must be FROZEN to delete transactions")
	}
	w.txs = nil
	w.rec.Balance = decimal.Zero
	return w.rec, nil
}

func (s *inMemoryStore) QueryTransactions(_ context.Context, walletID string, q Query) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return Page{}, apperr.New(apperr.NotFound, "wallet %s not found", walletID)
	}

	w.mu.Lock()
	snapshot := make([]Transaction, len(w.txs))
	copy(snapshot, w.txs)
	w.mu.Unlock()

	sortTransactions(snapshot, q.Sort, q.Order)

	total := len(snapshot)
	if q.Skip >= total {
		return Page{Transactions: []Transaction{}, Total: total}, nil
	}
	end := q.Skip + q.Limit
	if end > total {
		end = total
	}
	return Page{Transactions: snapshot[q.Skip:end], Total: total}, nil
}

func (s *inMemoryStore) ListTransactions(_ context.Context, walletID string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "wallet %s not found", walletID)
	}

	w.mu.Lock()
	snapshot := make([]Transaction, len(w.txs))
	copy(snapshot, w.txs)
	w.mu.Unlock()

	sortTransactions(snapshot, SortByCreatedAt, OrderAsc)
	return snapshot, nil
}

func sumAmounts(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// sortTransactions orders txs by the sort field, then createdAt, then id so
// that pagination windows never overlap or reorder between requests.
func sortTransactions(txs []Transaction, field, order string) {
	less := func(a, b Transaction) bool {
		if field == SortByAmount && !a.Amount.Equal(b.Amount) {
			return a.Amount.LessThan(b.Amount)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	sort.Slice(txs, func(i, j int) bool {
		if order == OrderDesc {
			return less(txs[j], txs[i])
		}
		return less(txs[i], txs[j])
	})
}
