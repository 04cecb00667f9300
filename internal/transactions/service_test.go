package transactions

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/walletgate/walletgate/internal/apperr"
	"github.com/walletgate/walletgate/internal/ledger"
	"github.com/walletgate/walletgate/internal/notification"
)

type testNotifier struct {
	messages []notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newFixture(t *testing.T) (ledger.Store, *Service, *testNotifier, ledger.Wallet) {
	t.Helper()
	store := ledger.NewInMemory()
	notifier := &testNotifier{}
	svc := NewService(store, notifier)
	w, err := store.CreateWallet(context.Background(), "alice", decimal.Zero)
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	return store, svc, notifier, w
}

func TestPostCreditAndDebit(t *testing.T) {
	store, svc, notifier, w := newFixture(t)
	ctx := context.Background()

	credit, err := svc.Post(ctx, PostInput{WalletID: w.ID, Amount: dec("50"), Description: "Credit transaction", ReferenceID: "TX_1"})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if TypeOf(credit.Amount) != TypeCredit {
		t.Fatalf("expected credit type, got %s", TypeOf(credit.Amount))
	}

	if _, err := svc.Post(ctx, PostInput{WalletID: w.ID, Amount: dec("-30"), Description: "Debit transaction", ReferenceID: "TX_2"}); err != nil {
		t.Fatalf("debit: %v", err)
	}

	got, _ := store.GetWallet(ctx, w.ID)
	if !got.Balance.Equal(dec("20")) {
		t.Fatalf("expected balance 20, got %s", got.Balance)
	}
	if len(notifier.messages) != 2 || notifier.messages[0].Kind != notification.KindTransactionPosted {
		t.Fatalf("expected posted events, got %+v", notifier.messages)
	}
}

func TestPostRejectsZeroAmount(t *testing.T) {
	_, svc, notifier, w := newFixture(t)

	if _, err := svc.Post(context.Background(), PostInput{WalletID: w.ID, Amount: decimal.Zero}); !apperr.Is(err, apperr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("no event expected for rejected post")
	}
}

func TestPostUnknownWallet(t *testing.T) {
	_, svc, _, _ := newFixture(t)

	if _, err := svc.Post(context.Background(), PostInput{WalletID: "missing", Amount: dec("1")}); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeleteRecomputesBalance(t *testing.T) {
	store, svc, _, w := newFixture(t)
	ctx := context.Background()

	svc.Post(ctx, PostInput{WalletID: w.ID, Amount: dec("70")})
	victim, _ := svc.Post(ctx, PostInput{WalletID: w.ID, Amount: dec("30")})

	if _, err := svc.Delete(ctx, victim.ID); !apperr.Is(err, apperr.InvalidState) {
		t.Fatalf("expected InvalidState while ACTIVE, got %v", err)
	}

	store.SetWalletStatus(ctx, w.ID, ledger.StatusFrozen)
	updated, err := svc.Delete(ctx, victim.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !updated.Balance.Equal(dec("70")) {
		t.Fatalf("expected balance 70, got %s", updated.Balance)
	}
}

func TestDeleteAllNotifies(t *testing.T) {
	store, svc, notifier, w := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.Post(ctx, PostInput{WalletID: w.ID, Amount: dec("10")})
	}
	store.SetWalletStatus(ctx, w.ID, ledger.StatusFrozen)

	updated, err := svc.DeleteAll(ctx, w.ID)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if !updated.Balance.Equal(decimal.Zero) {
		t.Fatalf("expected balance 0, got %s", updated.Balance)
	}
	last := notifier.messages[len(notifier.messages)-1]
	if last.Kind != notification.KindTransactionsPurged {
		t.Fatalf("expected purge event, got %+v", last)
	}
}

func TestQueryAppliesDefaults(t *testing.T) {
	_, svc, _, w := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		svc.Post(ctx, PostInput{WalletID: w.ID, Amount: dec("1")})
	}

	page, q, err := svc.Query(ctx, w.ID, QueryParams{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if q.Skip != 0 || q.Limit != DefaultLimit || q.Sort != ledger.SortByCreatedAt || q.Order != ledger.OrderDesc {
		t.Fatalf("unexpected defaults: %+v", q)
	}
	if len(page.Transactions) != DefaultLimit || page.Total != 15 {
		t.Fatalf("expected %d of 15, got %d of %d", DefaultLimit, len(page.Transactions), page.Total)
	}
}

func TestQueryRejectsInvalidParameters(t *testing.T) {
	_, svc, _, w := newFixture(t)
	ctx := context.Background()

	cases := []QueryParams{
		{Skip: "-1"},
		{Limit: "0"},
		{Limit: "abc"},
		{Skip: "one"},
		{Sort: "description"},
		{Order: "UP"},
	}
	for _, p := range cases {
		if _, _, err := svc.Query(ctx, w.ID, p); !apperr.Is(err, apperr.InvalidArgument) {
			t.Fatalf("expected InvalidArgument for %+v, got %v", p, err)
		}
	}
}

func TestQueryCapsLimit(t *testing.T) {
	_, svc, _, w := newFixture(t)

	_, q, err := svc.Query(context.Background(), w.ID, QueryParams{Limit: "100000"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if q.Limit != MaxLimit {
		t.Fatalf("expected limit capped at %d, got %d", MaxLimit, q.Limit)
	}
}

func TestExportChronologicalRows(t *testing.T) {
	_, svc, _, w := newFixture(t)
	ctx := context.Background()

	svc.Post(ctx, PostInput{WalletID: w.ID, Amount: dec("100"), Description: "Credit transaction"})
	svc.Post(ctx, PostInput{WalletID: w.ID, Amount: dec("-40"), Description: "Debit transaction"})

	rows, err := svc.Export(ctx, w.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Type != TypeCredit || rows[1].Type != TypeDebit {
		t.Fatalf("unexpected types: %+v", rows)
	}
	if rows[1].Date.Before(rows[0].Date) {
		t.Fatalf("rows not chronological: %+v", rows)
	}
	if !rows[1].Amount.Equal(dec("-40")) || rows[1].Description != "Debit transaction" {
		t.Fatalf("unexpected row: %+v", rows[1])
	}

	if _, err := svc.Export(ctx, "missing"); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
