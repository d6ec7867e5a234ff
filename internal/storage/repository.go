// Package storage is the snapshot store: persisted transaction and order
// history plus the once-per-day portfolio snapshots, backed by SQLite.
//
// The store owns the persisted records. Callers only insert new history
// (never overwriting what exists) and replace whole snapshot days; all
// derived figures are computed elsewhere.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finboard/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SnapshotDateLayout keys snapshots by calendar day.
const SnapshotDateLayout = "2006-01-02"

// ErrNoSnapshots is returned when the store holds no snapshot yet.
var ErrNoSnapshots = errors.New("no snapshots stored")

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// KnownTransactionIDs returns which of the given provider ids are already
// persisted.
func (r *Repository) KnownTransactionIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	return r.knownIDs(ctx, "transactions", ids)
}

// KnownOrderIDs returns which of the given order ids are already
// persisted.
func (r *Repository) KnownOrderIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	return r.knownIDs(ctx, "orders", ids)
}

func (r *Repository) knownIDs(ctx context.Context, table string, ids []string) (map[string]struct{}, error) {
	known := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return known, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf("SELECT id FROM %s WHERE id IN (%s)", table, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select known ids from %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		known[id] = struct{}{}
	}
	return known, rows.Err()
}

// InsertTransactions persists feed items in one database transaction.
// Existing rows are never overwritten, so a re-fetch that slips past the
// ingestor's dedup stays harmless.
func (r *Repository) InsertTransactions(ctx context.Context, accountUID string, transactions []core.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert transactions: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions
			(id, account_uid, settled_at, direction, amount_minor, currency, category, counterparty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range transactions {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transaction %q: %w", t.ID, err)
		}
		var settledAt any
		if !t.Timestamp.IsZero() {
			settledAt = t.Timestamp.UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx, t.ID, accountUID, settledAt,
			string(t.Direction), t.Amount.MinorUnits, t.Currency, t.Category, t.Counterparty); err != nil {
			return fmt.Errorf("insert transaction %q: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions persisted",
		"account_uid", accountUID,
		"count", len(transactions))
	return nil
}

// InsertOrders persists brokerage fills, never overwriting existing rows.
func (r *Repository) InsertOrders(ctx context.Context, orders []core.Order) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert orders: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO orders (id, ticker, side, cash_minor, filled_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		if _, err := stmt.ExecContext(ctx, o.ID, o.Ticker, string(o.Side),
			o.CashImpact.MinorUnits, o.FilledAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert order %q: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert orders: %w", err)
	}

	slog.InfoContext(ctx, "Orders persisted", "count", len(orders))
	return nil
}

// NetDeposit aggregates the cumulative cash contributed to the brokerage
// account over the whole stored history: buys count positive, sells flip
// sign.
func (r *Repository) NetDeposit(ctx context.Context) (core.Money, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN side = 'SELL' THEN -cash_minor ELSE cash_minor END), 0)
		FROM orders`).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("aggregate net deposit: %w", err)
	}
	return core.Money{MinorUnits: total}, nil
}

// ReplaceSnapshot writes the snapshot for its calendar day, deleting any
// prior entry for the same day first. Delete and insert run in one
// database transaction and the date column is unique, so concurrent
// writers racing on the same day cannot leave two records.
func (r *Repository) ReplaceSnapshot(ctx context.Context, snapshot core.PortfolioSnapshot) error {
	day := snapshot.Date.UTC().Format(SnapshotDateLayout)

	holdings, err := json.Marshal(snapshot.Holdings)
	if err != nil {
		return fmt.Errorf("encode holdings: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE snapshot_date = ?`, day); err != nil {
		return fmt.Errorf("delete prior snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (snapshot_date, net_deposit, portfolio_value, savings_total, net_worth, holdings_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		day,
		snapshot.NetDeposit.String(),
		snapshot.PortfolioValue.String(),
		snapshot.SavingsTotal.String(),
		snapshot.NetWorth.String(),
		string(holdings)); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot stored",
		"date", day,
		"net_worth", snapshot.NetWorth.String())
	return nil
}

// LatestSnapshots returns up to limit snapshots, most recent day first.
func (r *Repository) LatestSnapshots(ctx context.Context, limit int) ([]core.PortfolioSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT snapshot_date, net_deposit, portfolio_value, savings_total, net_worth, holdings_json
		FROM snapshots
		ORDER BY snapshot_date DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []core.PortfolioSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// LatestSnapshot returns the most recent stored snapshot, or
// ErrNoSnapshots when the store is empty.
func (r *Repository) LatestSnapshot(ctx context.Context) (core.PortfolioSnapshot, error) {
	snapshots, err := r.LatestSnapshots(ctx, 1)
	if err != nil {
		return core.PortfolioSnapshot{}, err
	}
	if len(snapshots) == 0 {
		return core.PortfolioSnapshot{}, ErrNoSnapshots
	}
	return snapshots[0], nil
}

func scanSnapshot(rows *sql.Rows) (core.PortfolioSnapshot, error) {
	var (
		snapshot                                     core.PortfolioSnapshot
		day, deposit, value, savings, worth, payload string
	)
	if err := rows.Scan(&day, &deposit, &value, &savings, &worth, &payload); err != nil {
		return snapshot, fmt.Errorf("scan snapshot: %w", err)
	}

	date, err := time.ParseInLocation(SnapshotDateLayout, day, time.UTC)
	if err != nil {
		return snapshot, fmt.Errorf("parse snapshot date %q: %w", day, err)
	}
	snapshot.Date = date

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&snapshot.NetDeposit, deposit},
		{&snapshot.PortfolioValue, value},
		{&snapshot.SavingsTotal, savings},
		{&snapshot.NetWorth, worth},
	} {
		d, err := decimal.NewFromString(field.src)
		if err != nil {
			return snapshot, fmt.Errorf("parse snapshot amount %q: %w", field.src, err)
		}
		*field.dst = d
	}

	if err := json.Unmarshal([]byte(payload), &snapshot.Holdings); err != nil {
		return snapshot, fmt.Errorf("decode holdings: %w", err)
	}
	return snapshot, nil
}
