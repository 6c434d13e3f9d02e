// Package sqlite хранит документ в одной строке таблицы SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/Spok95/stock-tracker/internal/infra/db"
	"github.com/Spok95/stock-tracker/internal/storage"
)

type Store struct {
	db   *sql.DB
	path string
}

// Open открывает (или создаёт) базу и применяет миграции.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)
	if _, err := db.Migrate(ctx, sqlDB, goose.DialectSQLite3, "sqlite"); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Store{db: sqlDB, path: path}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Load(ctx context.Context) (*storage.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM ledger_state WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	doc, err := storage.Decode([]byte(raw))
	if err != nil {
		return nil, storage.Corrupt("sqlite:"+s.path, err)
	}
	return doc, nil
}

func (s *Store) Save(ctx context.Context, doc *storage.Document) error {
	b, err := storage.Encode(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ledger_state (id, version, doc, saved_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET version = excluded.version, doc = excluded.doc, saved_at = excluded.saved_at
	`, doc.Version, string(b), doc.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
