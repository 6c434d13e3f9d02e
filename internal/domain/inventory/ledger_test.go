package inventory

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
)

var fixedNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func riceLedger(t *testing.T) (*catalog.Catalog, *Ledger, catalog.ProductID) {
	t.Helper()
	c := catalog.New()
	id, err := c.RegisterProduct("Rice", "Rice", catalog.UnitKg)
	require.NoError(t, err)
	_, err = c.AddVariant(id, "V1KG", dec("1"), "", dec("100"))
	require.NoError(t, err)
	l := NewLedger(c, WithClock(func() time.Time { return fixedNow }))
	l.Open(id)
	return c, l, id
}

func TestScenario_InwardPackSell(t *testing.T) {
	_, l, rice := riceLedger(t)

	_, err := l.RecordInward(rice, dec("50"), Date{}, "")
	require.NoError(t, err)
	assert.Equal(t, "50", l.Stock(rice).Loose.String())

	_, err = l.RecordPacking(rice, "V1KG", 10, Date{}, "")
	require.NoError(t, err)
	rec := l.Stock(rice)
	assert.Equal(t, "40", rec.Loose.String())
	assert.Equal(t, int64(10), rec.Packed["V1KG"])

	tx, err := l.RecordSale(rice, "V1KG", "", 3, Date{}, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(7), l.Stock(rice).Packed["V1KG"])
	assert.Equal(t, SaleFBA, tx.Channel)
	assert.Equal(t, "FBA Sale", tx.Notes)
	assert.Equal(t, int64(3), tx.ID)
	assert.Equal(t, NewDate(2025, time.March, 14), tx.EffectiveDate)
}

func TestRecordPacking_InsufficientLoose(t *testing.T) {
	_, l, rice := riceLedger(t)
	_, err := l.RecordInward(rice, dec("5"), Date{}, "")
	require.NoError(t, err)
	before := l.Stock(rice)

	_, err = l.RecordPacking(rice, "V1KG", 10, Date{}, "")
	require.ErrorIs(t, err, ErrInsufficientLooseStock)
	assert.NotErrorIs(t, err, ErrInsufficientPackedStock)

	var ise *InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(dec("5")))
	assert.True(t, ise.Requested.Equal(dec("10")))
	assert.Equal(t, int64(5), ise.MaxUnits)

	assert.Equal(t, before, l.Stock(rice))
	assert.Equal(t, 1, l.Len())
}

func TestRecordSale_InsufficientPacked(t *testing.T) {
	_, l, rice := riceLedger(t)
	_, err := l.RecordInward(rice, dec("2"), Date{}, "")
	require.NoError(t, err)
	_, err = l.RecordPacking(rice, "V1KG", 2, Date{}, "")
	require.NoError(t, err)

	_, err = l.RecordSale(rice, "V1KG", SaleEasyShip, 5, Date{}, "", "")
	require.ErrorIs(t, err, ErrInsufficientPackedStock)

	var ise *InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(dec("2")))
	assert.True(t, ise.Requested.Equal(dec("5")))
	assert.Equal(t, int64(2), l.Stock(rice).Packed["V1KG"])
	assert.Equal(t, 2, l.Len())
}

func TestOperations_Validation(t *testing.T) {
	_, l, rice := riceLedger(t)
	_, err := l.RecordInward(rice, dec("10"), Date{}, "")
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"inward unknown product", func() error {
			_, err := l.RecordInward("NOPE", dec("1"), Date{}, "")
			return err
		}, catalog.ErrUnknownProduct},
		{"inward zero", func() error {
			_, err := l.RecordInward(rice, decimal.Zero, Date{}, "")
			return err
		}, ErrInvalidQuantity},
		{"inward rounds to zero", func() error {
			_, err := l.RecordInward(rice, dec("0.0004"), Date{}, "")
			return err
		}, ErrInvalidQuantity},
		{"pack unknown variant", func() error {
			_, err := l.RecordPacking(rice, "V9KG", 1, Date{}, "")
			return err
		}, catalog.ErrUnknownVariant},
		{"pack negative", func() error {
			_, err := l.RecordPacking(rice, "V1KG", -1, Date{}, "")
			return err
		}, ErrInvalidQuantity},
		{"sale zero", func() error {
			_, err := l.RecordSale(rice, "V1KG", SaleFBA, 0, Date{}, "", "")
			return err
		}, ErrInvalidQuantity},
		{"sale bad kind", func() error {
			_, err := l.RecordSale(rice, "V1KG", "Shop Sale", 1, Date{}, "", "")
			return err
		}, ErrInvalidSaleKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, "10", l.Stock(rice).Loose.String())
}

func TestRecordSale_Notes(t *testing.T) {
	_, l, rice := riceLedger(t)
	_, err := l.RecordInward(rice, dec("3"), Date{}, "")
	require.NoError(t, err)
	_, err = l.RecordPacking(rice, "V1KG", 3, Date{}, "")
	require.NoError(t, err)

	tx, err := l.RecordSale(rice, "V1KG", "easyship-bulk", 2, NewDate(2025, time.March, 1), " 405-1 ", "late pickup")
	require.NoError(t, err)
	assert.Equal(t, SaleEasyShipBulk, tx.Channel)
	assert.Equal(t, "Easy Ship Sale (Bulk) | Order: 405-1 | late pickup", tx.Notes)
	assert.Equal(t, "2", tx.Weight.String())
	assert.Equal(t, "2025-03-01", tx.EffectiveDate.String())
}

func TestMaxPackable(t *testing.T) {
	c, l, rice := riceLedger(t)
	_, err := c.AddVariant(rice, "V5KG", dec("5"), "", dec("450"))
	require.NoError(t, err)
	_, err = l.RecordInward(rice, dec("12.5"), Date{}, "")
	require.NoError(t, err)

	n, err := l.MaxPackable(rice, "V5KG")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = l.MaxPackable(rice, "V1KG")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestTransactions_FilterAndRestart(t *testing.T) {
	_, l, rice := riceLedger(t)
	d1 := NewDate(2025, time.March, 1)
	d2 := NewDate(2025, time.March, 10)
	_, err := l.RecordInward(rice, dec("20"), d1, "first")
	require.NoError(t, err)
	_, err = l.RecordPacking(rice, "V1KG", 5, d2, "")
	require.NoError(t, err)
	_, err = l.RecordSale(rice, "V1KG", SaleFBA, 1, d2, "", "")
	require.NoError(t, err)

	seq := l.Transactions(Filter{From: d2})
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(2), first[0].ID)

	sales := slices.Collect(l.Transactions(Filter{Kinds: []Kind{KindSale}}))
	require.Len(t, sales, 1)
	assert.Equal(t, KindSale, sales[0].Kind)

	// снимок не видит записей, добавленных после вызова
	all := l.Transactions(Filter{})
	_, err = l.RecordInward(rice, dec("1"), d2, "")
	require.NoError(t, err)
	assert.Len(t, slices.Collect(all), 3)
	assert.Len(t, slices.Collect(l.Transactions(Filter{To: d1})), 1)

	// ранний выход
	n := 0
	for range l.Transactions(Filter{}) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestIDsStrictlyIncrease(t *testing.T) {
	_, l, rice := riceLedger(t)
	for i := 0; i < 5; i++ {
		_, err := l.RecordInward(rice, dec("1"), Date{}, "")
		require.NoError(t, err)
		_, err = l.RecordPacking(rice, "V1KG", 100, Date{}, "")
		require.Error(t, err)
	}
	var ids []int64
	for tx := range l.Transactions(Filter{}) {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
}

func TestCloneIsIndependent(t *testing.T) {
	c, l, rice := riceLedger(t)
	_, err := l.RecordInward(rice, dec("10"), Date{}, "")
	require.NoError(t, err)

	cp := l.Clone(c.Clone())
	_, err = cp.RecordPacking(rice, "V1KG", 4, Date{}, "")
	require.NoError(t, err)

	assert.Equal(t, "10", l.Stock(rice).Loose.String())
	assert.Zero(t, l.Stock(rice).Packed["V1KG"])
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 2, cp.Len())
}

func TestRestore(t *testing.T) {
	c, l, rice := riceLedger(t)
	_, err := l.RecordInward(rice, dec("10"), Date{}, "")
	require.NoError(t, err)
	_, err = l.RecordPacking(rice, "V1KG", 4, Date{}, "")
	require.NoError(t, err)

	txs := slices.Collect(l.Transactions(Filter{}))

	restored, err := Restore(c, l.StockRecords(), txs)
	require.NoError(t, err)
	require.NoError(t, restored.Verify())
	assert.Equal(t, 2, restored.Len())

	t.Run("mismatch", func(t *testing.T) {
		recs := l.StockRecords()
		r := recs[rice]
		r.Loose = dec("7")
		recs[rice] = r
		_, err := Restore(c, recs, txs)
		assert.ErrorIs(t, err, ErrLedgerMismatch)
	})

	t.Run("gap in ids", func(t *testing.T) {
		bad := slices.Clone(txs)
		bad[1].ID = 3
		_, err := Restore(c, l.StockRecords(), bad)
		assert.ErrorIs(t, err, ErrInvalidTransaction)
	})

	t.Run("negative record", func(t *testing.T) {
		recs := l.StockRecords()
		r := recs[rice]
		r.Packed["V1KG"] = -1
		recs[rice] = r
		_, err := Restore(c, recs, txs)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("unknown variant in log", func(t *testing.T) {
		bad := slices.Clone(txs)
		bad[1].VariantID = "GHOST"
		_, err := Restore(c, l.StockRecords(), bad)
		assert.ErrorIs(t, err, catalog.ErrUnknownVariant)
	})

	t.Run("missing record equals empty", func(t *testing.T) {
		_, err := Restore(c, nil, nil)
		assert.NoError(t, err)
	})
}

// Случайная последовательность операций: остатки не отрицательны,
// вес сохраняется, журнал сворачивается в те же остатки.
func TestRandomOperations_Invariants(t *testing.T) {
	c := catalog.Seed()
	l := NewLedger(c, WithClock(func() time.Time { return fixedNow }))
	r := rand.New(rand.NewPCG(7, 11))

	type pv struct {
		p catalog.ProductID
		v catalog.VariantID
	}
	var pairs []pv
	for _, p := range c.Products() {
		vs, err := c.Variants(p.ID)
		require.NoError(t, err)
		for _, v := range vs {
			pairs = append(pairs, pv{p.ID, v.ID})
		}
	}

	for i := 0; i < 2000; i++ {
		x := pairs[r.IntN(len(pairs))]
		switch r.IntN(3) {
		case 0:
			w := decimal.NewFromInt(int64(r.IntN(5000))).Div(decimal.NewFromInt(100))
			_, _ = l.RecordInward(x.p, w, Date{}, "")
		case 1:
			_, _ = l.RecordPacking(x.p, x.v, int64(r.IntN(6)), Date{}, "")
		case 2:
			_, _ = l.RecordSale(x.p, x.v, SaleKinds[r.IntN(len(SaleKinds))], int64(r.IntN(6)), Date{}, "", "")
		}

		rec := l.Stock(x.p)
		require.False(t, rec.Loose.IsNegative())
		for _, n := range rec.Packed {
			require.GreaterOrEqual(t, n, int64(0))
		}
	}

	txs := slices.Collect(l.Transactions(Filter{}))
	for _, p := range c.Products() {
		rec := l.Stock(p.ID)
		total := rec.Loose
		for vid, n := range rec.Packed {
			v, err := c.Variant(p.ID, vid)
			require.NoError(t, err)
			total = total.Add(v.WeightPerUnit.Mul(decimal.NewFromInt(n)))
		}
		assert.True(t, total.Equal(NetWeight(txs, p.ID)), "conservation for %s", p.ID)
	}
	require.NoError(t, l.Verify())
}

func TestParseSaleKind(t *testing.T) {
	tests := []struct {
		in   string
		want SaleKind
		err  bool
	}{
		{"", SaleFBA, false},
		{"fba sale", SaleFBA, false},
		{"FBA Sale (Bulk)", SaleFBABulk, false},
		{"fba_bulk", SaleFBABulk, false},
		{"easyship", SaleEasyShip, false},
		{"Easy Ship Bulk", SaleEasyShipBulk, false},
		{"retail", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSaleKind(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidSaleKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
