package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/walletgate/walletgate/internal/apperr"
)

// PostgresStore persists wallets and transactions in PostgreSQL. The wallet
// row lock (SELECT ... FOR UPDATE) is the per-wallet serialization scope;
// amounts are stored as NUMERIC and travel as text to preserve decimal
// precision.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed store.
func NewPostgres(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const walletColumns = `id, name, balance::text, status, created_at`

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w       Wallet
		id      uuid.UUID
		balance string
	)
	if err := row.Scan(&id, &w.Name, &balance, &w.Status, &w.CreatedAt); err != nil {
		return Wallet{}, err
	}
	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse balance: %w", err)
	}
	w.ID = id.String()
	w.Balance = amount
	w.CreatedAt = w.CreatedAt.UTC()
	return w, nil
}

const transactionColumns = `id, wallet_id, amount::text, description, reference_id, created_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		t        Transaction
		id       uuid.UUID
		walletID uuid.UUID
		amount   string
	)
	if err := row.Scan(&id, &walletID, &amount, &t.Description, &t.ReferenceID, &t.CreatedAt); err != nil {
		return Transaction{}, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	t.ID = id.String()
	t.WalletID = walletID.String()
	t.Amount = parsed
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func parseWalletID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.NotFound, "wallet %s not found", id)
	}
	return parsed, nil
}

func (s *PostgresStore) CreateWallet(ctx context.Context, name string, initialBalance decimal.Decimal) (Wallet, error) {
	if name == "" {
		return Wallet{}, apperr.New(apperr.InvalidArgument, "wallet name is required")
	}
	if initialBalance.IsNegative() {
		return Wallet{}, apperr.New(apperr.InvalidArgument, "initial balance must not be negative")
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Wallet{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	walletID := uuid.New()
	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `INSERT INTO wallets (id, name, balance, status, created_at)
        VALUES ($1, $2, $3::numeric, $4, $5)`, walletID, name, initialBalance.String(), StatusActive, now); err != nil {
		return Wallet{}, err
	}

	if initialBalance.IsPositive() {
		if _, err := tx.Exec(ctx, `INSERT INTO transactions (id, wallet_id, amount, description, reference_id, created_at)
            VALUES ($1, $2, $3::numeric, $4, $5, $6)`,
			uuid.New(), walletID, initialBalance.String(), SeedDescription, SeedReferenceID, now); err != nil {
			return Wallet{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Wallet{}, err
	}

	return Wallet{ID: walletID.String(), Name: name, Balance: initialBalance, Status: StatusActive, CreatedAt: now}, nil
}

func (s *PostgresStore) GetWallet(ctx context.Context, id string) (Wallet, error) {
	walletID, err := parseWalletID(id)
	if err != nil {
		return Wallet{}, err
	}
	w, err := scanWallet(s.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, walletID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, apperr.New(apperr.NotFound, "wallet %s not found", id)
	}
	return w, err
}

func (s *PostgresStore) ListWallets(ctx context.Context) ([]Wallet, error) {
	rows, err := s.db.Query(ctx, `SELECT `+walletColumns+` FROM wallets ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wallets := []Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (s *PostgresStore) SetWalletStatus(ctx context.Context, id, status string) (Wallet, error) {
	if !ValidStatus(status) {
		return Wallet{}, apperr.New(apperr.InvalidArgument, "unknown wallet status %q", status)
	}
	walletID, err := parseWalletID(id)
	if err != nil {
		return Wallet{}, err
	}
	w, err := scanWallet(s.db.QueryRow(ctx, `UPDATE wallets SET status = $2 WHERE id = $1
        RETURNING `+walletColumns, walletID, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, apperr.New(apperr.NotFound, "wallet %s not found", id)
	}
	return w, err
}

func (s *PostgresStore) DeleteWallet(ctx context.Context, id string) error {
	walletID, err := parseWalletID(id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	status, err := lockWallet(ctx, tx, walletID)
	if err != nil {
		return err
	}
	if status != StatusFrozen {
		return apperr.New(apperr.InvalidState, "wallet must be FROZEN to be deleted")
	}

	// transactions rows are removed by ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, `DELETE FROM wallets WHERE id = $1`, walletID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) AppendTransaction(ctx context.Context, walletID string, amount decimal.Decimal, description, referenceID string) (Transaction, error) {
	wid, err := parseWalletID(walletID)
	if err != nil {
		return Transaction{}, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := lockWallet(ctx, tx, wid); err != nil {
		return Transaction{}, err
	}

	record := Transaction{
		ID:          uuid.NewString(),
		WalletID:    walletID,
		Amount:      amount,
		Description: description,
		ReferenceID: referenceID,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := tx.Exec(ctx, `INSERT INTO transactions (id, wallet_id, amount, description, reference_id, created_at)
        VALUES ($1, $2, $3::numeric, $4, $5, $6)`,
		uuid.MustParse(record.ID), wid, amount.String(), description, referenceID, record.CreatedAt); err != nil {
		return Transaction{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = balance + $2::numeric WHERE id = $1`, wid, amount.String()); err != nil {
		return Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}
	return record, nil
}

func (s *PostgresStore) DeleteTransaction(ctx context.Context, id string) (Wallet, error) {
	txID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, apperr.New(apperr.NotFound, "transaction %s not found", id)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Wallet{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var walletID uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT wallet_id FROM transactions WHERE id = $1`, txID).Scan(&walletID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, apperr.New(apperr.NotFound, "transaction %s not found", id)
		}
		return Wallet{}, err
	}

	status, err := lockWallet(ctx, tx, walletID)
	if err != nil {
		return Wallet{}, err
	}
	if status != StatusFrozen {
		return Wallet{}, apperr.New(apperr.InvalidState, "wallet must be FROZEN to delete transactions")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, txID); err != nil {
		return Wallet{}, err
	}
	w, err := recomputeBalance(ctx, tx, walletID)
	if err != nil {
		return Wallet{}, err
	}
	return w, tx.Commit(ctx)
}

func (s *PostgresStore) DeleteAllTransactions(ctx context.Context, walletID string) (Wallet, error) {
	wid, err := parseWalletID(walletID)
	if err != nil {
		return Wallet{}, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Wallet{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	status, err := lockWallet(ctx, tx, wid)
	if err != nil {
		return Wallet{}, err
	}
	if status != StatusFrozen {
		return Wallet{}, apperr.New(apperr.InvalidState, "wallet must be FROZEN to delete transactions")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE wallet_id = $1`, wid); err != nil {
		return Wallet{}, err
	}
	w, err := recomputeBalance(ctx, tx, wid)
	if err != nil {
		return Wallet{}, err
	}
	return w, tx.Commit(ctx)
}

func (s *PostgresStore) QueryTransactions(ctx context.Context, walletID string, q Query) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}
	wid, err := parseWalletID(walletID)
	if err != nil {
		return Page{}, err
	}

	// One transaction so the count and the page see the same snapshot.
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return Page{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE id = $1)`, wid).Scan(&exists); err != nil {
		return Page{}, err
	}
	if !exists {
		return Page{}, apperr.New(apperr.NotFound, "wallet %s not found", walletID)
	}

	var total int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`, wid).Scan(&total); err != nil {
		return Page{}, err
	}

	// q passed Validate, so both identifiers are from the whitelist.
	column := "created_at"
	if q.Sort == SortByAmount {
		column = "amount"
	}
	direction := "ASC"
	if q.Order == OrderDesc {
		direction = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE wallet_id = $1
        ORDER BY %s %s, created_at %s, id %s LIMIT $2 OFFSET $3`,
		transactionColumns, column, direction, direction, direction)

	rows, err := tx.Query(ctx, query, wid, q.Limit, q.Skip)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	page := Page{Transactions: []Transaction{}, Total: total}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return Page{}, err
		}
		page.Transactions = append(page.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}
	return page, tx.Commit(ctx)
}

func (s *PostgresStore) ListTransactions(ctx context.Context, walletID string) ([]Transaction, error) {
	wid, err := parseWalletID(walletID)
	if err != nil {
		return nil, err
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE id = $1)`, wid).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.New(apperr.NotFound, "wallet %s not found", walletID)
	}

	rows, err := s.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions
        WHERE wallet_id = $1 ORDER BY created_at, id`, wid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// lockWallet takes the wallet row lock and returns the current status. Every
// mutating operation on a wallet goes through it, which serializes writers
// per wallet without blocking unrelated wallets.
func lockWallet(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (string, error) {
	var status string
	if err := tx.QueryRow(ctx, `SELECT status FROM wallets WHERE id = $1 FOR UPDATE`, walletID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.New(apperr.NotFound, "wallet %s not found", walletID)
		}
		return "", err
	}
	return status, nil
}

// recomputeBalance resets the balance to the sum of the remaining
// transactions rather than subtracting the deleted amounts, so any prior
// drift is corrected instead of carried forward.
func recomputeBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (Wallet, error) {
	return scanWallet(tx.QueryRow(ctx, `UPDATE wallets
        SET balance = COALESCE((SELECT SUM(amount) FROM transactions WHERE wallet_id = $1), 0)
        WHERE id = $1 RETURNING `+walletColumns, walletID))
}
