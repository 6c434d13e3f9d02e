package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Spok95/stock-tracker/internal/bot"
	"github.com/Spok95/stock-tracker/internal/config"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
	httpx "github.com/Spok95/stock-tracker/internal/infra/http"
	"github.com/Spok95/stock-tracker/internal/infra/logger"
	"github.com/Spok95/stock-tracker/internal/infra/metrics"
	"github.com/Spok95/stock-tracker/internal/report"
	"github.com/Spok95/stock-tracker/internal/storage/backend"
	"github.com/Spok95/stock-tracker/internal/tracker"
)

func main() {
	cfgPath := flag.String("config", "config/example.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.App.Env)
	if err := run(cfg, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := backend.Open(ctx, backend.Options{
		Driver: cfg.Storage.Driver,
		Path:   cfg.Storage.Path,
		DSN:    cfg.Postgres.DSN,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	log.Info("storage ready", "driver", cfg.Storage.Driver)

	thresholds, _ := cfg.Thresholds()
	loc, _ := cfg.Location()
	tr, err := tracker.Open(ctx, store, tracker.Options{
		Seed:       cfg.Storage.Seed,
		Thresholds: thresholds,
		Location:   loc,
		Metrics:    metrics.New(prometheus.DefaultRegisterer),
		Logger:     log,
	})
	if err != nil {
		return err
	}
	log.Info("state loaded", "products", len(tr.Products()), "today", tr.Today().String())

	export := func(w io.Writer) error {
		return report.Write(w, report.Collect(tr, inventory.Filter{}, tr.Now()))
	}
	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, tr, export, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	if cfg.Telegram.Token == "" {
		log.Warn("telegram.token is empty, bot disabled")
		<-ctx.Done()
	} else {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return err
		}
		log.Info("bot authorized", "username", api.Self.UserName)
		b := bot.New(api, log, tr, cfg.Telegram.AdminChatID)
		if err := b.Run(ctx, cfg.Telegram.UpdateTimeout); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("bot stopped", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
	return nil
}
