package ledger

import "github.com/shopspring/decimal"

// ForceBalance is a test helper that overwrites a wallet's stored balance in
// the in-memory store without touching its transactions. It exists to
// simulate drift so tests can verify that deletion recomputes the balance
// from the remaining transactions instead of trusting the stored value.
func ForceBalance(s Store, walletID string, balance decimal.Decimal) {
	mem, ok := s.(*inMemoryStore)
	if !ok {
		return
	}
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	if w, ok := mem.wallets[walletID]; ok {
		w.mu.Lock()
		w.rec.Balance = balance
		w.mu.Unlock()
	}
}
