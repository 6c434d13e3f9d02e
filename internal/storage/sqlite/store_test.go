package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_LoadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := catalog.Seed()

	require.NoError(t, s.Save(ctx, &storage.Document{SavedAt: time.Now()}))
	require.NoError(t, s.Save(ctx, &storage.Document{
		SavedAt:        time.Now(),
		ParentItems:    c.Items(),
		PacketVariants: c.VariantsByProduct(),
	}))

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.ParentItems, 4)
	assert.Len(t, doc.PacketVariants["RICE_BASMATI"], 2)

	var rows int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM ledger_state`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestStore_Corrupt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.db.Exec(`INSERT INTO ledger_state (id, version, doc, saved_at) VALUES (1, 1, '{"version":1,', '')`)
	require.NoError(t, err)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrCorruptState)
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, &storage.Document{SavedAt: time.Now()}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Load(ctx)
	assert.NoError(t, err)
}
