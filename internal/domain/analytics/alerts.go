package analytics

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
)

type AlertKind string

const (
	AlertLowLoose  AlertKind = "Low Loose Stock"
	AlertLowPacked AlertKind = "Low Packed Stock"
)

// Thresholds независимы: россыпь в единицах товара, упаковки в штуках.
type Thresholds struct {
	Loose  decimal.Decimal
	Packed int64
}

var DefaultThresholds = Thresholds{Loose: decimal.NewFromInt(10), Packed: 5}

type Alert struct {
	Kind         AlertKind         `json:"kind"`
	ProductID    catalog.ProductID `json:"product_id"`
	VariantID    catalog.VariantID `json:"variant_id,omitempty"`
	ProductLabel string            `json:"product"`
	CurrentStock decimal.Decimal   `json:"current_stock"`
	Threshold    decimal.Decimal   `json:"threshold"`
	Unit         string            `json:"unit"`
}

// LowStockAlerts: по одному алерту на товар с россыпью ниже порога и на каждую
// упаковку каталога, у которой штук меньше порога (отсутствующая запись = 0).
func LowStockAlerts(records map[catalog.ProductID]inventory.StockRecord, cat Catalog, th Thresholds) []Alert {
	var out []Alert
	packedThr := decimal.NewFromInt(th.Packed)
	for _, id := range slices.Sorted(maps.Keys(records)) {
		p, err := cat.Product(id)
		if err != nil {
			continue
		}
		rec := records[id]
		if rec.Loose.LessThan(th.Loose) {
			out = append(out, Alert{
				Kind:         AlertLowLoose,
				ProductID:    id,
				ProductLabel: p.Name,
				CurrentStock: rec.Loose,
				Threshold:    th.Loose,
				Unit:         string(p.Unit),
			})
		}
		vs, err := cat.Variants(id)
		if err != nil {
			continue
		}
		for _, v := range vs {
			n := rec.Packed[v.ID]
			if n >= th.Packed {
				continue
			}
			out = append(out, Alert{
				Kind:         AlertLowPacked,
				ProductID:    id,
				VariantID:    v.ID,
				ProductLabel: catalog.Label(p, v),
				CurrentStock: decimal.NewFromInt(n),
				Threshold:    packedThr,
				Unit:         "units",
			})
		}
	}
	return out
}

// AlertsFor: алерты по одному товару (для уведомления после операции).
func AlertsFor(rec inventory.StockRecord, cat Catalog, th Thresholds) []Alert {
	return LowStockAlerts(map[catalog.ProductID]inventory.StockRecord{rec.ParentID: rec}, cat, th)
}
