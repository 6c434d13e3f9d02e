// Package tracker владеет состоянием склада. Один писатель, снимки для чтения,
// каждая мутация сохраняется до того, как станет видна.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/analytics"
	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
	"github.com/Spok95/stock-tracker/internal/storage"
)

type Options struct {
	// Seed: при отсутствии сохранённого состояния начать с демонстрационного каталога.
	Seed       bool
	// Existing: не создавать состояние, а вернуть storage.ErrNotFound.
	Existing   bool
	Thresholds analytics.Thresholds
	Location   *time.Location
	Clock      func() time.Time
	Metrics    Metrics
	Logger     *slog.Logger
}

type Tracker struct {
	mu    sync.RWMutex
	state *State

	store      storage.Store
	log        *slog.Logger
	metrics    Metrics
	now        func() time.Time
	thresholds analytics.Thresholds
}

// Open загружает состояние. Отсутствующее состояние создаётся (пустое или демо) и сразу сохраняется;
// повреждённое: ошибка, ничего не подменяется.
func Open(ctx context.Context, store storage.Store, o Options) (*Tracker, error) {
	t := &Tracker{
		store:      store,
		log:        o.Logger,
		metrics:    o.Metrics,
		thresholds: o.Thresholds,
	}
	if t.log == nil {
		t.log = slog.New(slog.DiscardHandler)
	}
	if t.metrics == nil {
		t.metrics = nopMetrics{}
	}
	if t.thresholds == (analytics.Thresholds{}) {
		t.thresholds = analytics.DefaultThresholds
	}
	clock, loc := o.Clock, o.Location
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	t.now = func() time.Time { return clock().In(loc) }
	opts := []inventory.Option{inventory.WithClock(t.now)}

	doc, err := store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound) && o.Existing:
		return nil, err
	case errors.Is(err, storage.ErrNotFound):
		cat := catalog.New()
		if o.Seed {
			cat = catalog.Seed()
		}
		st := NewState(cat, opts...)
		if err := t.save(ctx, st); err != nil {
			return nil, fmt.Errorf("initialize state: %w", err)
		}
		t.state = st
		t.log.Info("state initialized", "seed", o.Seed, "products", len(cat.Products()))
	case err != nil:
		return nil, err
	default:
		st, err := StateFromDocument(doc, opts...)
		if err != nil {
			return nil, storage.Corrupt("document", err)
		}
		t.state = st
		t.log.Info("state loaded",
			"products", len(st.Catalog.Products()),
			"transactions", st.Ledger.Len(),
			"saved_at", doc.SavedAt)
	}
	t.publish(t.state)
	return t, nil
}

// mutate применяет fn к копии состояния, сохраняет и только потом публикует.
func (t *Tracker) mutate(ctx context.Context, op string, fn func(*State) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.state.Clone()
	if err := fn(next); err != nil {
		t.metrics.ObserveOp(op, err)
		return err
	}
	if err := t.save(ctx, next); err != nil {
		t.metrics.ObserveOp(op, err)
		t.log.Error("state not saved, operation rolled back", "op", op, "err", err)
		return fmt.Errorf("%s: save state: %w", op, err)
	}
	t.state = next
	t.metrics.ObserveOp(op, nil)
	t.publish(next)
	return nil
}

func (t *Tracker) save(ctx context.Context, st *State) error {
	start := time.Now()
	err := t.store.Save(ctx, st.Document(t.now().UTC()))
	t.metrics.ObserveSave(time.Since(start), err)
	return err
}

func (t *Tracker) publish(st *State) {
	t.metrics.SetValuation(analytics.Valuation(st.Ledger.StockRecords(), st.Catalog))
	t.metrics.SetTransactions(st.Ledger.Len())
}

// current: опубликованное состояние; вызывающий только читает.
func (t *Tracker) current() *State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Snapshot: независимая копия для произвольного чтения.
func (t *Tracker) Snapshot() *State { return t.current().Clone() }

// Now: текущее время по часам трекера в его часовом поясе.
func (t *Tracker) Now() time.Time { return t.now() }

func (t *Tracker) Today() inventory.Date { return inventory.DateOf(t.now()) }

func (t *Tracker) Thresholds() analytics.Thresholds { return t.thresholds }

// --- каталог

func (t *Tracker) RegisterProduct(ctx context.Context, name, category string, unit catalog.Unit) (catalog.ParentItem, error) {
	var p catalog.ParentItem
	err := t.mutate(ctx, "register_product", func(s *State) error {
		id, err := s.Catalog.RegisterProduct(name, category, unit)
		if err != nil {
			return err
		}
		s.Ledger.Open(id)
		p, err = s.Catalog.Product(id)
		return err
	})
	if err == nil {
		t.log.Info("product registered", "id", p.ID, "name", p.Name)
	}
	return p, err
}

func (t *Tracker) AddVariant(ctx context.Context, parentID catalog.ProductID, variantID catalog.VariantID, weightPerUnit decimal.Decimal, description string, unitPrice decimal.Decimal) (catalog.PacketVariant, error) {
	var v catalog.PacketVariant
	err := t.mutate(ctx, "add_variant", func(s *State) error {
		var err error
		v, err = s.Catalog.AddVariant(parentID, variantID, weightPerUnit, description, unitPrice)
		return err
	})
	return v, err
}

func (t *Tracker) UpdateVariant(ctx context.Context, parentID catalog.ProductID, variantID catalog.VariantID, description string, unitPrice decimal.Decimal) (catalog.PacketVariant, error) {
	var v catalog.PacketVariant
	err := t.mutate(ctx, "update_variant", func(s *State) error {
		var err error
		v, err = s.Catalog.UpdateVariant(parentID, variantID, description, unitPrice)
		return err
	})
	return v, err
}

func (t *Tracker) Product(id catalog.ProductID) (catalog.ParentItem, error) {
	return t.current().Catalog.Product(id)
}

func (t *Tracker) FindProduct(ref string) (catalog.ParentItem, error) {
	return t.current().Catalog.FindProduct(ref)
}

func (t *Tracker) Products() []catalog.ParentItem { return t.current().Catalog.Products() }

func (t *Tracker) Variant(parentID catalog.ProductID, variantID catalog.VariantID) (catalog.PacketVariant, error) {
	return t.current().Catalog.Variant(parentID, variantID)
}

func (t *Tracker) Variants(parentID catalog.ProductID) ([]catalog.PacketVariant, error) {
	return t.current().Catalog.Variants(parentID)
}

// --- журнал

func (t *Tracker) RecordInward(ctx context.Context, parentID catalog.ProductID, weight decimal.Decimal, date inventory.Date, notes string) (inventory.Transaction, error) {
	var tx inventory.Transaction
	err := t.mutate(ctx, string(inventory.KindInward), func(s *State) error {
		var err error
		tx, err = s.Ledger.RecordInward(parentID, weight, date, notes)
		return err
	})
	return tx, err
}

func (t *Tracker) RecordPacking(ctx context.Context, parentID catalog.ProductID, variantID catalog.VariantID, count int64, date inventory.Date, notes string) (inventory.Transaction, error) {
	var tx inventory.Transaction
	err := t.mutate(ctx, string(inventory.KindPack), func(s *State) error {
		var err error
		tx, err = s.Ledger.RecordPacking(parentID, variantID, count, date, notes)
		return err
	})
	return tx, err
}

func (t *Tracker) RecordSale(ctx context.Context, parentID catalog.ProductID, variantID catalog.VariantID, kind inventory.SaleKind, units int64, date inventory.Date, orderRef, notes string) (inventory.Transaction, error) {
	var tx inventory.Transaction
	err := t.mutate(ctx, string(inventory.KindSale), func(s *State) error {
		var err error
		tx, err = s.Ledger.RecordSale(parentID, variantID, kind, units, date, orderRef, notes)
		return err
	})
	return tx, err
}

func (t *Tracker) MaxPackable(parentID catalog.ProductID, variantID catalog.VariantID) (int64, error) {
	return t.current().Ledger.MaxPackable(parentID, variantID)
}

func (t *Tracker) Stock(parentID catalog.ProductID) inventory.StockRecord {
	return t.current().Ledger.Stock(parentID)
}

func (t *Tracker) Transactions(f inventory.Filter) iter.Seq[inventory.Transaction] {
	return t.current().Ledger.Transactions(f)
}

// Verify сверяет опубликованные остатки со свёрткой журнала.
func (t *Tracker) Verify() error { return t.current().Ledger.Verify() }

// --- аналитика

func (t *Tracker) Summary() []analytics.ProductSummary {
	s := t.current()
	return analytics.Summarize(s.Ledger.StockRecords(), s.Catalog)
}

func (t *Tracker) Valuation() decimal.Decimal {
	s := t.current()
	return analytics.Valuation(s.Ledger.StockRecords(), s.Catalog)
}

func (t *Tracker) ValueLines() []analytics.ValueLine {
	s := t.current()
	return analytics.ValueLines(s.Ledger.StockRecords(), s.Catalog)
}

func (t *Tracker) Alerts() []analytics.Alert {
	s := t.current()
	return analytics.LowStockAlerts(s.Ledger.StockRecords(), s.Catalog, t.thresholds)
}

// AlertsFor: алерты одного товара, для уведомлений после операции.
func (t *Tracker) AlertsFor(parentID catalog.ProductID) []analytics.Alert {
	s := t.current()
	return analytics.AlertsFor(s.Ledger.Stock(parentID), s.Catalog, t.thresholds)
}

func (t *Tracker) DailySales(f inventory.Filter) []analytics.DaySales {
	return analytics.DailySales(t.Transactions(f))
}

func (t *Tracker) SalesByProduct(f inventory.Filter) []analytics.ProductSales {
	s := t.current()
	return analytics.SalesByProduct(s.Ledger.Transactions(f), s.Catalog)
}

func (t *Tracker) Movements(f inventory.Filter) analytics.Movement {
	return analytics.Movements(t.Transactions(f))
}
