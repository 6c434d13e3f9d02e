package inventory

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
)

// Catalog: то, что журналу нужно знать о товарах.
type Catalog interface {
	Product(id catalog.ProductID) (catalog.ParentItem, error)
	Variant(parentID catalog.ProductID, variantID catalog.VariantID) (catalog.PacketVariant, error)
}

// Ledger: остатки и журнал операций. Каждая операция либо целиком применяется
// и добавляет ровно одну запись, либо возвращает ошибку без изменений.
// Не потокобезопасен.
type Ledger struct {
	catalog Catalog
	stock   map[catalog.ProductID]StockRecord
	txs     []Transaction
	now     func() time.Time
}

type Option func(*Ledger)

// WithClock задаёт источник времени (и "сегодня" для операций без даты).
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(cat Catalog, opts ...Option) *Ledger {
	l := &Ledger{
		catalog: cat,
		stock:   map[catalog.ProductID]StockRecord{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Restore поднимает журнал из сохранённых данных. Записи проверяются по схеме,
// ID должны идти подряд с 1, а остатки: совпадать со сверткой журнала.
func Restore(cat Catalog, records map[catalog.ProductID]StockRecord, txs []Transaction, opts ...Option) (*Ledger, error) {
	l := NewLedger(cat, opts...)

	for id, r := range records {
		if r.ParentID != id {
			return nil, fmt.Errorf("%w: key %q holds record for %q", ErrInvalidRecord, id, r.ParentID)
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, err := cat.Product(id); err != nil {
			return nil, fmt.Errorf("stock record: %w", err)
		}
		for vid := range r.Packed {
			if _, err := cat.Variant(id, vid); err != nil {
				return nil, fmt.Errorf("stock record: %w", err)
			}
		}
		l.stock[id] = r.Clone()
	}

	replayed, err := Replay(cat, txs)
	if err != nil {
		return nil, err
	}
	if err := compare(l.stock, replayed); err != nil {
		return nil, err
	}
	l.txs = slices.Clone(txs)
	return l, nil
}

// Clone: независимая копия поверх другого (обычно тоже склонированного) каталога.
func (l *Ledger) Clone(cat Catalog) *Ledger {
	out := &Ledger{
		catalog: cat,
		stock:   make(map[catalog.ProductID]StockRecord, len(l.stock)),
		txs:     slices.Clone(l.txs),
		now:     l.now,
	}
	for id, r := range l.stock {
		out.stock[id] = r.Clone()
	}
	return out
}

// Open заводит пустую запись остатков для нового товара.
func (l *Ledger) Open(parentID catalog.ProductID) {
	if _, ok := l.stock[parentID]; ok {
		return
	}
	r := NewStockRecord(parentID)
	r.LastUpdated = l.now().UTC()
	l.stock[parentID] = r
}

// Today: текущая бизнес-дата по часам журнала.
func (l *Ledger) Today() Date { return DateOf(l.now()) }

func (l *Ledger) RecordInward(parentID catalog.ProductID, weight decimal.Decimal, date Date, notes string) (Transaction, error) {
	if _, err := l.catalog.Product(parentID); err != nil {
		return Transaction{}, err
	}
	w := catalog.RoundWeight(weight)
	if !w.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: weight %s", ErrInvalidQuantity, weight)
	}

	rec := l.record(parentID)
	rec.Loose = rec.Loose.Add(w)
	return l.commit(rec, Transaction{
		EffectiveDate: date,
		Kind:          KindInward,
		ParentID:      parentID,
		Quantity:      w,
		Weight:        w,
		Notes:         notes,
	}), nil
}

func (l *Ledger) RecordPacking(parentID catalog.ProductID, variantID catalog.VariantID, count int64, date Date, notes string) (Transaction, error) {
	v, err := l.catalog.Variant(parentID, variantID)
	if err != nil {
		return Transaction{}, err
	}
	if count <= 0 {
		return Transaction{}, fmt.Errorf("%w: count %d", ErrInvalidQuantity, count)
	}

	rec := l.record(parentID)
	required := v.WeightPerUnit.Mul(decimal.NewFromInt(count))
	if rec.Loose.LessThan(required) {
		return Transaction{}, &InsufficientStockError{
			Kind:      KindPack,
			ParentID:  parentID,
			VariantID: variantID,
			Available: rec.Loose,
			Requested: required,
			MaxUnits:  maxUnits(rec.Loose, v.WeightPerUnit),
		}
	}

	rec.Loose = rec.Loose.Sub(required)
	rec.Packed[variantID] += count
	return l.commit(rec, Transaction{
		EffectiveDate: date,
		Kind:          KindPack,
		ParentID:      parentID,
		VariantID:     variantID,
		Quantity:      decimal.NewFromInt(count),
		Weight:        required,
		Notes:         notes,
	}), nil
}

func (l *Ledger) RecordSale(parentID catalog.ProductID, variantID catalog.VariantID, kind SaleKind, units int64, date Date, orderRef, notes string) (Transaction, error) {
	v, err := l.catalog.Variant(parentID, variantID)
	if err != nil {
		return Transaction{}, err
	}
	kind, err = ParseSaleKind(string(kind))
	if err != nil {
		return Transaction{}, err
	}
	if units <= 0 {
		return Transaction{}, fmt.Errorf("%w: units %d", ErrInvalidQuantity, units)
	}

	rec := l.record(parentID)
	have := rec.Packed[variantID]
	if have < units {
		return Transaction{}, &InsufficientStockError{
			Kind:      KindSale,
			ParentID:  parentID,
			VariantID: variantID,
			Available: decimal.NewFromInt(have),
			Requested: decimal.NewFromInt(units),
			MaxUnits:  have,
		}
	}

	rec.Packed[variantID] = have - units
	return l.commit(rec, Transaction{
		EffectiveDate: date,
		Kind:          KindSale,
		ParentID:      parentID,
		VariantID:     variantID,
		Quantity:      decimal.NewFromInt(units),
		Weight:        v.WeightPerUnit.Mul(decimal.NewFromInt(units)),
		Channel:       kind,
		OrderRef:      orderRef,
		Notes:         composeSaleNotes(kind, orderRef, notes),
	}), nil
}

// MaxPackable: сколько упаковок можно собрать из текущей россыпи.
func (l *Ledger) MaxPackable(parentID catalog.ProductID, variantID catalog.VariantID) (int64, error) {
	v, err := l.catalog.Variant(parentID, variantID)
	if err != nil {
		return 0, err
	}
	return maxUnits(l.stock[parentID].Loose, v.WeightPerUnit), nil
}

// Stock возвращает копию остатков товара (пустую, если движений не было).
func (l *Ledger) Stock(parentID catalog.ProductID) StockRecord {
	if r, ok := l.stock[parentID]; ok {
		return r.Clone()
	}
	return NewStockRecord(parentID)
}

func (l *Ledger) StockRecords() map[catalog.ProductID]StockRecord {
	out := make(map[catalog.ProductID]StockRecord, len(l.stock))
	for id, r := range l.stock {
		out[id] = r.Clone()
	}
	return out
}

// Transactions отдаёт записи по возрастанию ID. Каждый вызов итерирует свой снимок журнала.
func (l *Ledger) Transactions(f Filter) iter.Seq[Transaction] {
	snapshot := slices.Clip(l.txs)
	return func(yield func(Transaction) bool) {
		for _, tx := range snapshot {
			if !f.Match(tx) {
				continue
			}
			if !yield(tx) {
				return
			}
		}
	}
}

func (l *Ledger) Len() int { return len(l.txs) }

// Verify пересчитывает остатки по журналу и сверяет с текущими.
func (l *Ledger) Verify() error {
	replayed, err := Replay(l.catalog, l.txs)
	if err != nil {
		return err
	}
	return compare(l.stock, replayed)
}

func (l *Ledger) record(parentID catalog.ProductID) StockRecord {
	if r, ok := l.stock[parentID]; ok {
		return r.Clone()
	}
	return NewStockRecord(parentID)
}

// commit вызывается только после всех проверок.
func (l *Ledger) commit(rec StockRecord, tx Transaction) Transaction {
	now := l.now()
	if tx.EffectiveDate.IsZero() {
		tx.EffectiveDate = DateOf(now)
	}
	tx.ID = int64(len(l.txs)) + 1
	tx.CreatedAt = now.UTC()
	rec.LastUpdated = tx.CreatedAt
	l.stock[rec.ParentID] = rec
	l.txs = append(l.txs, tx)
	return tx
}

func maxUnits(loose, weightPerUnit decimal.Decimal) int64 {
	if !weightPerUnit.IsPositive() || !loose.IsPositive() {
		return 0
	}
	return loose.Div(weightPerUnit).Floor().IntPart()
}

func compare(stored, replayed map[catalog.ProductID]StockRecord) error {
	ids := slices.Sorted(maps.Keys(stored))
	for id := range replayed {
		if _, ok := stored[id]; !ok {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		a, ok := stored[id]
		if !ok {
			a = NewStockRecord(id)
		}
		b, ok := replayed[id]
		if !ok {
			b = NewStockRecord(id)
		}
		if !Equivalent(a, b) {
			return fmt.Errorf("%w: %s: stored loose %s packed %v, log gives loose %s packed %v",
				ErrLedgerMismatch, id, a.Loose, a.Packed, b.Loose, b.Packed)
		}
	}
	return nil
}
