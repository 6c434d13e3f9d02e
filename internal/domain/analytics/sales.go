package analytics

import (
	"iter"
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
)

// DaySales: продажи за бизнес-дату.
type DaySales struct {
	Date   inventory.Date  `json:"date"`
	Units  int64           `json:"units"`
	Weight decimal.Decimal `json:"weight"`
	Orders int             `json:"orders"`
}

// DailySales группирует продажи по дате (по возрастанию). Прочие записи игнорируются.
func DailySales(txs iter.Seq[inventory.Transaction]) []DaySales {
	byDay := map[inventory.Date]*DaySales{}
	for tx := range txs {
		if tx.Kind != inventory.KindSale {
			continue
		}
		d, ok := byDay[tx.EffectiveDate]
		if !ok {
			d = &DaySales{Date: tx.EffectiveDate, Weight: decimal.Zero}
			byDay[tx.EffectiveDate] = d
		}
		d.Units += tx.Units()
		d.Weight = d.Weight.Add(tx.Weight)
		d.Orders++
	}
	out := make([]DaySales, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	slices.SortFunc(out, func(a, b DaySales) int { return a.Date.Time().Compare(b.Date.Time()) })
	return out
}

// ProductSales: итог продаж по товару, с разбивкой по каналам.
type ProductSales struct {
	ProductID   catalog.ProductID            `json:"product_id"`
	ProductName string                       `json:"product_name"`
	Units       int64                        `json:"units"`
	Weight      decimal.Decimal              `json:"weight"`
	Revenue     decimal.Decimal              `json:"revenue"`
	ByChannel   map[inventory.SaleKind]int64 `json:"by_channel"`
}

// SalesByProduct: продажи по товарам, от больших к меньшим по весу.
// Выручка считается по текущей цене упаковки; неизвестные упаковки дают 0.
func SalesByProduct(txs iter.Seq[inventory.Transaction], cat Catalog) []ProductSales {
	by := map[catalog.ProductID]*ProductSales{}
	for tx := range txs {
		if tx.Kind != inventory.KindSale {
			continue
		}
		s, ok := by[tx.ParentID]
		if !ok {
			s = &ProductSales{
				ProductID:   tx.ParentID,
				ProductName: string(tx.ParentID),
				Weight:      decimal.Zero,
				Revenue:     decimal.Zero,
				ByChannel:   map[inventory.SaleKind]int64{},
			}
			if p, err := cat.Product(tx.ParentID); err == nil {
				s.ProductName = p.Name
			}
			by[tx.ParentID] = s
		}
		s.Units += tx.Units()
		s.Weight = s.Weight.Add(tx.Weight)
		s.ByChannel[tx.Channel] += tx.Units()
		if v, err := cat.Variant(tx.ParentID, tx.VariantID); err == nil {
			s.Revenue = s.Revenue.Add(v.UnitPrice.Mul(tx.Quantity))
		}
	}
	out := make([]ProductSales, 0, len(by))
	for _, id := range slices.Sorted(maps.Keys(by)) {
		out = append(out, *by[id])
	}
	slices.SortStableFunc(out, func(a, b ProductSales) int { return b.Weight.Cmp(a.Weight) })
	return out
}

// Movement: суммарные движения за период по видам операций.
type Movement struct {
	Inward decimal.Decimal `json:"inward"`
	Packed decimal.Decimal `json:"packed"`
	Sold   decimal.Decimal `json:"sold"`
	Count  int             `json:"count"`
}

func Movements(txs iter.Seq[inventory.Transaction]) Movement {
	m := Movement{Inward: decimal.Zero, Packed: decimal.Zero, Sold: decimal.Zero}
	for tx := range txs {
		m.Count++
		switch tx.Kind {
		case inventory.KindInward:
			m.Inward = m.Inward.Add(tx.Weight)
		case inventory.KindPack:
			m.Packed = m.Packed.Add(tx.Weight)
		case inventory.KindSale:
			m.Sold = m.Sold.Add(tx.Weight)
		}
	}
	return m
}

