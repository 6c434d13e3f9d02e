package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
	"github.com/Spok95/stock-tracker/internal/storage"
)

func sampleDoc() *storage.Document {
	c := catalog.Seed()
	rec := inventory.NewStockRecord("RICE_BASMATI")
	rec.Loose = decimal.RequireFromString("12.5")
	return &storage.Document{
		SavedAt:        time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		ParentItems:    c.Items(),
		PacketVariants: c.VariantsByProduct(),
		StockRecords:   map[catalog.ProductID]inventory.StockRecord{"RICE_BASMATI": rec},
		Transactions: []inventory.Transaction{{
			ID:            1,
			CreatedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			EffectiveDate: inventory.NewDate(2025, 1, 2),
			Kind:          inventory.KindInward,
			ParentID:      "RICE_BASMATI",
			Quantity:      decimal.RequireFromString("12.5"),
			Weight:        decimal.RequireFromString("12.5"),
		}},
	}
}

func TestStore_Missing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "state.json"))
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s := New(path)

	require.NoError(t, s.Save(ctx, sampleDoc()))
	doc, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, storage.CurrentVersion, doc.Version)
	assert.Len(t, doc.ParentItems, 4)
	assert.Equal(t, "12.5", doc.StockRecords["RICE_BASMATI"].Loose.String())
	require.Len(t, doc.Transactions, 1)
	assert.Equal(t, "2025-01-02", doc.Transactions[0].EffectiveDate.String())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"parent_items":`), 0o600))

	_, err := New(path).Load(context.Background())
	require.ErrorIs(t, err, storage.ErrCorruptState)

	var ce *storage.CorruptStateError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, path, ce.Source)
}
