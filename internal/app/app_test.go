package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovenline/pizzeria/internal/domain/menu"
	"github.com/ovenline/pizzeria/internal/storage/snapshotfile"
)

func TestLoadCatalog_MissingSeedsDefault(t *testing.T) {
	dir := t.TempDir()
	store := snapshotfile.NewInDir(dir)

	catalog := loadCatalog(context.Background(), zap.NewNop(), store)

	require.NotNil(t, catalog)
	assert.Len(t, catalog.Flavors(), 8)

	// The seed was persisted, so the next start loads it normally.
	snap, err := store.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Flavors, 8)
}

func TestLoadCatalog_CorruptDegradesToDefault(t *testing.T) {
	dir := t.TempDir()
	store := snapshotfile.NewInDir(dir)

	// Not gzip, not JSON: reading this must fail, starting up must not.
	path := filepath.Join(dir, snapshotfile.CatalogFile)
	require.NoError(t, os.WriteFile(path, []byte("{not a snapshot"), 0o644))

	catalog := loadCatalog(context.Background(), zap.NewNop(), store)

	require.NotNil(t, catalog)
	assert.Len(t, catalog.Flavors(), 8)
	assert.True(t, catalog.HasFlavor("Margherita"))

	// The corrupt file was replaced by the seed.
	snap, err := store.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Sizes, 4)
}

func TestLoadCatalog_RoundTripsStoredMenu(t *testing.T) {
	dir := t.TempDir()
	store := snapshotfile.NewInDir(dir)

	want := menu.Default()
	require.NoError(t, want.RemoveFlavor("Bacon"))
	require.NoError(t, store.SaveCatalog(context.Background(), want.Snapshot()))

	catalog := loadCatalog(context.Background(), zap.NewNop(), store)

	assert.Len(t, catalog.Flavors(), 7)
	assert.False(t, catalog.HasFlavor("Bacon"), "a stored menu is not re-seeded")
}

type brokenStore struct {
	*snapshotfile.Store
}

func (brokenStore) SaveCatalog(context.Context, menu.Snapshot) error {
	return errors.New("read-only volume")
}

func TestLoadCatalog_SeedSaveFailureIsNotFatal(t *testing.T) {
	store := brokenStore{Store: snapshotfile.NewInDir(t.TempDir())}

	catalog := loadCatalog(context.Background(), zap.NewNop(), store)

	require.NotNil(t, catalog, "an unpersistable seed still opens the shop")
	assert.Len(t, catalog.Flavors(), 8)
}
