package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
)

// Replay сворачивает журнал с нуля и возвращает остатки по товарам.
// Проверяются порядок ID, схема записей, существование товаров/упаковок,
// вес упаковки и то, что остатки ни на одном шаге не уходят в минус.
func Replay(cat Catalog, txs []Transaction) (map[catalog.ProductID]StockRecord, error) {
	out := map[catalog.ProductID]StockRecord{}
	for i, tx := range txs {
		if tx.ID != int64(i)+1 {
			return nil, fmt.Errorf("%w: position %d holds id %d", ErrInvalidTransaction, i+1, tx.ID)
		}
		if err := tx.Validate(); err != nil {
			return nil, err
		}
		if _, err := cat.Product(tx.ParentID); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", tx.ID, err)
		}

		rec, ok := out[tx.ParentID]
		if !ok {
			rec = NewStockRecord(tx.ParentID)
		}

		switch tx.Kind {
		case KindInward:
			rec.Loose = rec.Loose.Add(tx.Weight)
		case KindPack, KindSale:
			v, err := cat.Variant(tx.ParentID, tx.VariantID)
			if err != nil {
				return nil, fmt.Errorf("transaction %d: %w", tx.ID, err)
			}
			if want := v.WeightPerUnit.Mul(tx.Quantity); !want.Equal(tx.Weight) {
				return nil, fmt.Errorf("%w: transaction %d weighs %s, %s units of %s weigh %s",
					ErrLedgerMismatch, tx.ID, tx.Weight, tx.Quantity, tx.VariantID, want)
			}
			units := tx.Units()
			if tx.Kind == KindPack {
				rec.Loose = rec.Loose.Sub(tx.Weight)
				rec.Packed[tx.VariantID] += units
			} else {
				rec.Packed[tx.VariantID] -= units
			}
		}

		if rec.Loose.IsNegative() || rec.Packed[tx.VariantID] < 0 {
			return nil, fmt.Errorf("%w: transaction %d drives %s below zero", ErrLedgerMismatch, tx.ID, tx.ParentID)
		}
		rec.LastUpdated = tx.CreatedAt
		out[tx.ParentID] = rec
	}
	return out, nil
}

// NetWeight: приход минус продажи по журналу для товара (упаковка вес не меняет).
func NetWeight(txs []Transaction, parentID catalog.ProductID) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.ParentID != parentID {
			continue
		}
		switch tx.Kind {
		case KindInward:
			total = total.Add(tx.Weight)
		case KindSale:
			total = total.Sub(tx.Weight)
		}
	}
	return total
}
