// Package analytics собирает чистые функции над снимком каталога и журнала.
package analytics

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
)

type Catalog interface {
	Product(id catalog.ProductID) (catalog.ParentItem, error)
	Variant(parentID catalog.ProductID, variantID catalog.VariantID) (catalog.PacketVariant, error)
	Variants(parentID catalog.ProductID) ([]catalog.PacketVariant, error)
}

type ProductSummary struct {
	ProductID    catalog.ProductID `json:"product_id"`
	ProductName  string            `json:"product_name"`
	Category     string            `json:"category"`
	Unit         catalog.Unit      `json:"unit"`
	Loose        decimal.Decimal   `json:"loose_quantity"`
	PackedUnits  int64             `json:"packed_units"`
	PackedWeight decimal.Decimal   `json:"packed_weight"`
	TotalWeight  decimal.Decimal   `json:"total_weight"`
	LastUpdated  time.Time         `json:"last_updated"`
}

// Summarize: сводка по товарам (по возрастанию ID). Товары вне каталога
// и упаковки, которых нет в каталоге, пропускаются.
func Summarize(records map[catalog.ProductID]inventory.StockRecord, cat Catalog) []ProductSummary {
	out := make([]ProductSummary, 0, len(records))
	for _, id := range slices.Sorted(maps.Keys(records)) {
		p, err := cat.Product(id)
		if err != nil {
			continue
		}
		rec := records[id]
		s := ProductSummary{
			ProductID:    id,
			ProductName:  p.Name,
			Category:     p.Category,
			Unit:         p.Unit,
			Loose:        rec.Loose,
			PackedWeight: decimal.Zero,
			LastUpdated:  rec.LastUpdated,
		}
		for vid, n := range rec.Packed {
			v, err := cat.Variant(id, vid)
			if err != nil || n <= 0 {
				continue
			}
			s.PackedUnits += n
			s.PackedWeight = s.PackedWeight.Add(v.WeightPerUnit.Mul(decimal.NewFromInt(n)))
		}
		s.TotalWeight = s.Loose.Add(s.PackedWeight)
		out = append(out, s)
	}
	return out
}

// ValueLine: стоимость упакованного остатка одной упаковки.
type ValueLine struct {
	ProductID catalog.ProductID `json:"product_id"`
	VariantID catalog.VariantID `json:"variant_id"`
	Label     string            `json:"label"`
	Units     int64             `json:"units"`
	UnitPrice decimal.Decimal   `json:"unit_price"`
	Value     decimal.Decimal   `json:"value"`
}

// ValueLines раскладывает оценку по упаковкам с ненулевым остатком.
func ValueLines(records map[catalog.ProductID]inventory.StockRecord, cat Catalog) []ValueLine {
	var out []ValueLine
	for _, id := range slices.Sorted(maps.Keys(records)) {
		p, err := cat.Product(id)
		if err != nil {
			continue
		}
		rec := records[id]
		for _, vid := range slices.Sorted(maps.Keys(rec.Packed)) {
			n := rec.Packed[vid]
			v, err := cat.Variant(id, vid)
			if err != nil || n <= 0 {
				continue
			}
			out = append(out, ValueLine{
				ProductID: id,
				VariantID: vid,
				Label:     catalog.Label(p, v),
				Units:     n,
				UnitPrice: v.UnitPrice,
				Value:     v.UnitPrice.Mul(decimal.NewFromInt(n)),
			})
		}
	}
	return out
}

// Valuation: Σ упакованных штук × цена. Россыпь не оценивается.
func Valuation(records map[catalog.ProductID]inventory.StockRecord, cat Catalog) decimal.Decimal {
	total := decimal.Zero
	for _, l := range ValueLines(records, cat) {
		total = total.Add(l.Value)
	}
	return total
}
