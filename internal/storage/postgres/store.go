// Package postgres хранит документ в jsonb и дублирует журнал в ledger_transactions.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Spok95/stock-tracker/internal/domain/inventory"
	"github.com/Spok95/stock-tracker/internal/infra/db"
	"github.com/Spok95/stock-tracker/internal/storage"
)

type Store struct{ pool *pgxpool.Pool }

func New(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// Open подключается и применяет миграции.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() { _ = sqlDB.Close() }()
	if _, err := db.Migrate(ctx, sqlDB, goose.DialectPostgres, "postgres"); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool), nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Load(ctx context.Context) (*storage.Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM ledger_state WHERE id = 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	doc, err := storage.Decode(raw)
	if err != nil {
		return nil, storage.Corrupt("postgres:ledger_state", err)
	}
	return doc, nil
}

// Save заменяет документ и дописывает новые записи журнала в одной транзакции.
func (s *Store) Save(ctx context.Context, doc *storage.Document) error {
	b, err := storage.Encode(doc)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `
		INSERT INTO ledger_state (id, version, doc, saved_at)
		VALUES (1, $1, $2::jsonb, $3)
		ON CONFLICT (id)
		DO UPDATE SET version = EXCLUDED.version, doc = EXCLUDED.doc, saved_at = EXCLUDED.saved_at
	`, doc.Version, string(b), doc.SavedAt); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	var last int64
	if err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM ledger_transactions`).Scan(&last); err != nil {
		return fmt.Errorf("mirror position: %w", err)
	}
	if err = mirror(ctx, tx, doc.Transactions, last); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func mirror(ctx context.Context, tx pgx.Tx, txs []inventory.Transaction, after int64) error {
	batch := &pgx.Batch{}
	for _, t := range txs {
		if t.ID <= after {
			continue
		}
		batch.Queue(`
			INSERT INTO ledger_transactions
				(id, created_at, effective_date, kind, parent_id, variant_id, quantity, weight, channel, order_ref, notes)
			VALUES ($1, $2, $3::date, $4, $5, NULLIF($6, ''), $7::numeric, $8::numeric, NULLIF($9, ''), NULLIF($10, ''), $11)
			ON CONFLICT (id) DO NOTHING
		`, t.ID, t.CreatedAt, t.EffectiveDate.String(), string(t.Kind), string(t.ParentID), string(t.VariantID),
			t.Quantity.String(), t.Weight.String(), string(t.Channel), t.OrderRef, t.Notes)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("mirror transactions: %w", err)
	}
	return nil
}
