package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/stock-tracker/internal/domain/inventory"
	"github.com/Spok95/stock-tracker/internal/storage"
	"github.com/Spok95/stock-tracker/internal/storage/file"
	"github.com/Spok95/stock-tracker/internal/tracker"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// statePath: пустой каталог без .env, чтобы окружение разработчика не влияло.
func statePath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return filepath.Join(dir, "stock.json")
}

func seedWithSales(t *testing.T, path string) {
	t.Helper()
	_, err := run(t, "init", "--seed", "--path", path)
	require.NoError(t, err)

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	ctx := context.Background()
	tr, err := tracker.Open(ctx, file.New(path), tracker.Options{Location: loc})
	require.NoError(t, err)

	_, err = tr.RecordInward(ctx, "WHEAT_FLOUR", decimal.NewFromInt(25), inventory.Date{}, "")
	require.NoError(t, err)
	_, err = tr.RecordPacking(ctx, "WHEAT_FLOUR", "B07WHEAT5KG", 4, inventory.Date{}, "")
	require.NoError(t, err)
	_, err = tr.RecordSale(ctx, "WHEAT_FLOUR", "B07WHEAT5KG", inventory.SaleFBA, 1, inventory.Date{}, "A-1", "")
	require.NoError(t, err)
}

func TestInit(t *testing.T) {
	path := statePath(t)

	out, err := run(t, "init", "--seed", "--path", path)
	require.NoError(t, err)
	assert.Equal(t, "initialized: 4 products\n", out)
	assert.FileExists(t, path)

	_, err = run(t, "init", "--path", path)
	assert.EqualError(t, err, "state already exists")
}

func TestCommandsRequireState(t *testing.T) {
	path := statePath(t)
	for _, name := range []string{"summary", "alerts", "sales", "verify", "export"} {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, name, "--path", path)
			assert.ErrorIs(t, err, errNoState)
		})
	}
	assert.NoFileExists(t, path)
}

func TestSummaryAlertsSales(t *testing.T) {
	path := statePath(t)
	seedWithSales(t, path)

	out, err := run(t, "summary", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "WHEAT_FLOUR")
	assert.Regexp(t, `WHEAT_FLOUR\s+kg\s+5\s+3\s+15\s+20`, out)
	assert.Contains(t, out, "packed valuation: ₹660.00")

	out, err = run(t, "alerts", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Low Loose Stock")
	assert.Contains(t, out, "Wheat Flour Organic (5kg Wheat Flour Pack)")

	out, err = run(t, "sales", "today", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Today:")
	assert.Contains(t, out, "operations 3: inward 25, packed 20, sold 5")
	assert.Regexp(t, `WHEAT_FLOUR\s+1\s+5\s+₹220\.00`, out)

	_, err = run(t, "sales", "next-decade", "--path", path)
	assert.ErrorContains(t, err, "unknown date range")
}

func TestVerify(t *testing.T) {
	path := statePath(t)
	seedWithSales(t, path)

	out, err := run(t, "verify", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK: 4 products, 3 transactions")

	ctx := context.Background()
	store := file.New(path)
	doc, err := store.Load(ctx)
	require.NoError(t, err)
	rec := doc.StockRecords["WHEAT_FLOUR"]
	rec.Loose = rec.Loose.Add(decimal.NewFromInt(1))
	doc.StockRecords["WHEAT_FLOUR"] = rec
	require.NoError(t, store.Save(ctx, doc))

	_, err = run(t, "verify", "--path", path)
	assert.ErrorIs(t, err, inventory.ErrLedgerMismatch)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = run(t, "verify", "--path", path)
	assert.ErrorIs(t, err, storage.ErrCorruptState)
}

func TestExport(t *testing.T) {
	path := statePath(t)
	seedWithSales(t, path)
	target := filepath.Join(filepath.Dir(path), "report.xlsx")

	out, err := run(t, "export", "--path", path, "-o", target, "--from", "2020-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "written "+target)

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), b[:2])

	_, err = run(t, "export", "--path", path, "--to", "31/12/2020")
	assert.ErrorContains(t, err, "--to")
}

func TestUnknownDriver(t *testing.T) {
	statePath(t)
	_, err := run(t, "summary", "--driver", "mongo")
	assert.ErrorContains(t, err, `unknown storage driver "mongo"`)
}
