package inventory

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
)

type Kind string

const (
	KindInward Kind = "inward"
	KindPack   Kind = "pack"
	KindSale   Kind = "sale"
)

func (k Kind) Valid() bool {
	switch k {
	case KindInward, KindPack, KindSale:
		return true
	}
	return false
}

// Label: подпись для отчётов.
func (k Kind) Label() string {
	switch k {
	case KindInward:
		return "Stock Inward"
	case KindPack:
		return "Packing"
	case KindSale:
		return "Sale"
	}
	return string(k)
}

// SaleKind: канал продажи.
type SaleKind string

const (
	SaleFBA          SaleKind = "FBA Sale"
	SaleFBABulk      SaleKind = "FBA Sale (Bulk)"
	SaleEasyShip     SaleKind = "Easy Ship Sale"
	SaleEasyShipBulk SaleKind = "Easy Ship Sale (Bulk)"
)

var SaleKinds = []SaleKind{SaleFBA, SaleFBABulk, SaleEasyShip, SaleEasyShipBulk}

// ParseSaleKind принимает точное название или короткую форму (fba, fba-bulk, easyship, easyship-bulk).
// Пустая строка: FBA Sale.
func ParseSaleKind(s string) (SaleKind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SaleFBA, nil
	}
	for _, k := range SaleKinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	switch strings.ToLower(strings.NewReplacer("_", "-", " ", "-").Replace(s)) {
	case "fba":
		return SaleFBA, nil
	case "fba-bulk":
		return SaleFBABulk, nil
	case "easyship", "easy-ship":
		return SaleEasyShip, nil
	case "easyship-bulk", "easy-ship-bulk":
		return SaleEasyShipBulk, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSaleKind, s)
}

// StockRecord хранит остатки товара: россыпь (в единицах товара) и упакованные штуки по упаковкам.
type StockRecord struct {
	ParentID    catalog.ProductID           `json:"parent_id"`
	Loose       decimal.Decimal             `json:"loose_quantity"`
	Packed      map[catalog.VariantID]int64 `json:"packed_quantities"`
	LastUpdated time.Time                   `json:"last_updated"`
}

func NewStockRecord(parentID catalog.ProductID) StockRecord {
	return StockRecord{ParentID: parentID, Loose: decimal.Zero, Packed: map[catalog.VariantID]int64{}}
}

func (r StockRecord) Clone() StockRecord {
	r.Packed = maps.Clone(r.Packed)
	if r.Packed == nil {
		r.Packed = map[catalog.VariantID]int64{}
	}
	return r
}

func (r StockRecord) PackedUnits(v catalog.VariantID) int64 { return r.Packed[v] }

func (r StockRecord) Validate() error {
	if r.ParentID == "" {
		return fmt.Errorf("%w: stock record without product", ErrInvalidRecord)
	}
	if r.Loose.IsNegative() {
		return fmt.Errorf("%w: %s: negative loose stock %s", ErrInvalidRecord, r.ParentID, r.Loose)
	}
	for v, n := range r.Packed {
		if n < 0 {
			return fmt.Errorf("%w: %s/%s: negative packed stock %d", ErrInvalidRecord, r.ParentID, v, n)
		}
	}
	return nil
}

// Equivalent сравнивает остатки, считая отсутствующую упаковку равной нулю. LastUpdated не учитывается.
func Equivalent(a, b StockRecord) bool {
	if a.ParentID != b.ParentID || !a.Loose.Equal(b.Loose) {
		return false
	}
	for v, n := range a.Packed {
		if b.Packed[v] != n {
			return false
		}
	}
	for v, n := range b.Packed {
		if a.Packed[v] != n {
			return false
		}
	}
	return true
}

// Transaction: неизменяемая запись журнала.
type Transaction struct {
	ID            int64             `json:"id"`
	CreatedAt     time.Time         `json:"created_at"`
	EffectiveDate Date              `json:"effective_date"`
	Kind          Kind              `json:"kind"`
	ParentID      catalog.ProductID `json:"parent_id"`
	VariantID     catalog.VariantID `json:"variant_id,omitempty"`
	Quantity      decimal.Decimal   `json:"quantity"`
	Weight        decimal.Decimal   `json:"weight"`
	Channel       SaleKind          `json:"channel,omitempty"`
	OrderRef      string            `json:"order_ref,omitempty"`
	Notes         string            `json:"notes"`
}

// Validate: проверка схемы записи (при загрузке состояния).
func (t Transaction) Validate() error {
	if t.ID < 1 {
		return fmt.Errorf("%w: id %d", ErrInvalidTransaction, t.ID)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %d: kind %q", ErrInvalidTransaction, t.ID, t.Kind)
	}
	if t.ParentID == "" {
		return fmt.Errorf("%w: %d: no product", ErrInvalidTransaction, t.ID)
	}
	if t.EffectiveDate.IsZero() {
		return fmt.Errorf("%w: %d: no effective date", ErrInvalidTransaction, t.ID)
	}
	if !t.Quantity.IsPositive() || !t.Weight.IsPositive() {
		return fmt.Errorf("%w: %d: quantity and weight must be positive", ErrInvalidTransaction, t.ID)
	}
	switch t.Kind {
	case KindInward:
		if t.VariantID != "" {
			return fmt.Errorf("%w: %d: inward with variant", ErrInvalidTransaction, t.ID)
		}
		if !t.Quantity.Equal(t.Weight) {
			return fmt.Errorf("%w: %d: inward quantity differs from weight", ErrInvalidTransaction, t.ID)
		}
	case KindPack, KindSale:
		if t.VariantID == "" {
			return fmt.Errorf("%w: %d: %s without variant", ErrInvalidTransaction, t.ID, t.Kind)
		}
		if !t.Quantity.IsInteger() {
			return fmt.Errorf("%w: %d: fractional unit count %s", ErrInvalidTransaction, t.ID, t.Quantity)
		}
	}
	return nil
}

// Units: количество штук для pack/sale.
func (t Transaction) Units() int64 { return t.Quantity.IntPart() }

// composeSaleNotes: "FBA Sale | Order: 123 | заметка", пустые части пропускаются.
func composeSaleNotes(kind SaleKind, orderRef, notes string) string {
	parts := []string{string(kind)}
	if ref := strings.TrimSpace(orderRef); ref != "" {
		parts = append(parts, "Order: "+ref)
	}
	if n := strings.TrimSpace(notes); n != "" {
		parts = append(parts, n)
	}
	return strings.Join(parts, " | ")
}
