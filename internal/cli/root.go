// Package cli содержит служебные команды stockctl поверх того же состояния, что и бот.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Spok95/stock-tracker/internal/config"
	"github.com/Spok95/stock-tracker/internal/storage"
	"github.com/Spok95/stock-tracker/internal/storage/backend"
	"github.com/Spok95/stock-tracker/internal/tracker"
)

var errNoState = errors.New("no saved state, run 'stockctl init' first")

type app struct {
	configPath string
	driver     string
	path       string
	dsn        string
}

func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Inspect and maintain the stock ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f := root.PersistentFlags()
	f.StringVarP(&a.configPath, "config", "c", "", "path to YAML config")
	f.StringVar(&a.driver, "driver", "", "storage driver override: file, sqlite or postgres")
	f.StringVar(&a.path, "path", "", "storage path override")
	f.StringVar(&a.dsn, "dsn", "", "postgres DSN override")

	root.AddCommand(
		a.initCmd(),
		a.summaryCmd(),
		a.alertsCmd(),
		a.salesCmd(),
		a.verifyCmd(),
		a.exportCmd(),
	)
	return root
}

func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) config() (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return cfg, err
	}
	if a.driver != "" {
		cfg.Storage.Driver = a.driver
	}
	if a.path != "" {
		cfg.Storage.Path = a.path
	}
	if a.dsn != "" {
		cfg.Postgres.DSN = a.dsn
	}
	return cfg, nil
}

// openStore открывает хранилище из конфигурации; close обязателен.
func (a *app) openStore(ctx context.Context) (config.Config, storage.Store, func() error, error) {
	cfg, err := a.config()
	if err != nil {
		return cfg, nil, nil, err
	}
	store, closeFn, err := backend.Open(ctx, backend.Options{
		Driver: cfg.Storage.Driver,
		Path:   cfg.Storage.Path,
		DSN:    cfg.Postgres.DSN,
	})
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return cfg, store, closeFn, nil
}

// withTracker открывает существующее состояние. Отсутствующее не создаётся.
func (a *app) withTracker(ctx context.Context, fn func(*tracker.Tracker) error) error {
	cfg, store, closeFn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	o := trackerOptions(cfg, false)
	o.Existing = true
	tr, err := tracker.Open(ctx, store, o)
	if errors.Is(err, storage.ErrNotFound) {
		return errNoState
	}
	if err != nil {
		return err
	}
	return fn(tr)
}

func trackerOptions(cfg config.Config, seed bool) tracker.Options {
	th, _ := cfg.Thresholds()
	loc, _ := cfg.Location()
	return tracker.Options{Seed: seed, Thresholds: th, Location: loc}
}
