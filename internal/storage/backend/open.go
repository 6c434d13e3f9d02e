// Package backend выбирает хранилище по конфигурации.
package backend

import (
	"context"
	"fmt"

	"github.com/Spok95/stock-tracker/internal/storage"
	"github.com/Spok95/stock-tracker/internal/storage/file"
	"github.com/Spok95/stock-tracker/internal/storage/postgres"
	"github.com/Spok95/stock-tracker/internal/storage/sqlite"
)

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver string
	Path   string
	DSN    string
}

// Open возвращает хранилище и функцию закрытия.
func Open(ctx context.Context, o Options) (storage.Store, func() error, error) {
	noop := func() error { return nil }
	switch o.Driver {
	case DriverFile, "":
		if o.Path == "" {
			return nil, nil, fmt.Errorf("storage.path is required for driver %q", DriverFile)
		}
		return file.New(o.Path), noop, nil
	case DriverSQLite:
		if o.Path == "" {
			return nil, nil, fmt.Errorf("storage.path is required for driver %q", DriverSQLite)
		}
		s, err := sqlite.Open(ctx, o.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case DriverPostgres:
		if o.DSN == "" {
			return nil, nil, fmt.Errorf("postgres.dsn is required for driver %q", DriverPostgres)
		}
		s, err := postgres.Open(ctx, o.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", o.Driver)
}
