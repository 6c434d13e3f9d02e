// Package report выгружает остатки и журнал в Excel.
package report

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/stock-tracker/internal/domain/analytics"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
)

const (
	SheetSummary      = "Summary"
	SheetValuation    = "Valuation"
	SheetTransactions = "Transactions"
	SheetAlerts       = "Alerts"
)

type Source interface {
	Summary() []analytics.ProductSummary
	ValueLines() []analytics.ValueLine
	Valuation() decimal.Decimal
	Alerts() []analytics.Alert
	Transactions(f inventory.Filter) iter.Seq[inventory.Transaction]
}

type Data struct {
	GeneratedAt  time.Time
	Summary      []analytics.ProductSummary
	Values       []analytics.ValueLine
	Valuation    decimal.Decimal
	Transactions []inventory.Transaction
	Alerts       []analytics.Alert
}

func Collect(src Source, f inventory.Filter, now time.Time) Data {
	return Data{
		GeneratedAt:  now,
		Summary:      src.Summary(),
		Values:       src.ValueLines(),
		Valuation:    src.Valuation(),
		Transactions: slices.Collect(src.Transactions(f)),
		Alerts:       src.Alerts(),
	}
}

func num(d decimal.Decimal) float64 { return d.InexactFloat64() }

// Write строит книгу из четырёх листов и пишет её в w.
func Write(w io.Writer, d Data) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(first, SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetValuation, SheetTransactions, SheetAlerts} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	summary := [][]any{{"product_id", "product_name", "category", "unit", "loose", "packed_units", "packed_weight", "total_weight", "last_updated"}}
	for _, s := range d.Summary {
		summary = append(summary, []any{
			string(s.ProductID), s.ProductName, s.Category, string(s.Unit),
			num(s.Loose), s.PackedUnits, num(s.PackedWeight), num(s.TotalWeight),
			s.LastUpdated.Format(time.DateTime),
		})
	}

	values := [][]any{{"product_id", "variant_id", "label", "units", "unit_price", "value"}}
	for _, v := range d.Values {
		values = append(values, []any{string(v.ProductID), string(v.VariantID), v.Label, v.Units, num(v.UnitPrice), num(v.Value)})
	}
	values = append(values, []any{"", "", "Total", "", "", num(d.Valuation)})

	txs := [][]any{{"id", "created_at", "effective_date", "type", "product_id", "variant_id", "quantity", "weight", "channel", "order_ref", "notes"}}
	for _, tx := range d.Transactions {
		txs = append(txs, []any{
			tx.ID, tx.CreatedAt.Format(time.DateTime), tx.EffectiveDate.String(), tx.Kind.Label(),
			string(tx.ParentID), string(tx.VariantID), num(tx.Quantity), num(tx.Weight),
			string(tx.Channel), tx.OrderRef, tx.Notes,
		})
	}

	alerts := [][]any{{"type", "product", "current_stock", "threshold", "unit"}}
	for _, a := range d.Alerts {
		alerts = append(alerts, []any{string(a.Kind), a.ProductLabel, num(a.CurrentStock), num(a.Threshold), a.Unit})
	}

	for sheet, rows := range map[string][][]any{
		SheetSummary:      summary,
		SheetValuation:    values,
		SheetTransactions: txs,
		SheetAlerts:       alerts,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Stock report",
		Created: d.GeneratedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
