package field

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quarryfs/quarry/pkg/catalog"
	"github.com/quarryfs/quarry/pkg/catalog/store/memory"
	"github.com/quarryfs/quarry/pkg/render"
	"github.com/quarryfs/quarry/pkg/staging"
)

const (
	testVolume        = "photos"
	testScratchVolume = "scratch"
)

// testElement is a minimal Element for tests.
type testElement struct {
	id      string
	context map[string]any
	assets  []uuid.UUID
}

func (e *testElement) ID() string { return e.id }

func (e *testElement) RenderContext() map[string]any {
	if e.context == nil {
		return map[string]any{}
	}
	return e.context
}

func (e *testElement) AssetIDs() []uuid.UUID       { return e.assets }
func (e *testElement) SetAssetIDs(ids []uuid.UUID) { e.assets = ids }

// newTestStore creates a memory store with a root folder for testVolume.
func newTestStore(t *testing.T) catalog.Store {
	t.Helper()

	store := memory.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	_, err := store.CreateRootFolder(context.Background(), testVolume)
	require.NoError(t, err)
	return store
}

func newTestResolver(t *testing.T, store catalog.Store) *FolderResolver {
	t.Helper()
	return NewFolderResolver(store, render.NewObjectRenderer(), false, nil)
}

func newTestStager(t *testing.T) *staging.Stager {
	t.Helper()
	stager, err := staging.NewStager(t.TempDir())
	require.NoError(t, err)
	return stager
}

func newTestField(t *testing.T, store catalog.Store, cfg FieldConfig) *Field {
	t.Helper()
	return NewField(7, "gallery", cfg, store, render.NewObjectRenderer(), newTestStager(t), testScratchVolume, nil)
}

// mustCreateAsset saves an asset directly into folder for test setup.
func mustCreateAsset(t *testing.T, store catalog.Store, folder *catalog.Folder, filename string) *catalog.Asset {
	t.Helper()

	asset := &catalog.Asset{
		FolderID: folder.ID,
		Filename: filename,
		Title:    catalog.TitleFromFilename(filename),
	}
	require.NoError(t, store.SaveAsset(context.Background(), asset))
	return asset
}
