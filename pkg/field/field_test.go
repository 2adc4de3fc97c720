package field

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarryfs/quarry/pkg/catalog"
)

func TestBeforeSave_IngestsInlineFile(t *testing.T) {
	store := newTestStore(t)
	f := newTestField(t, store, FieldConfig{
		UseSingleFolder: true,
		SingleVolumeID:  testVolume,
		SingleSubpath:   "inbox",
	})
	element := &testElement{id: "e-1"}

	rejected, err := f.BeforeSave(context.Background(), element, "user-1", PostedValue{
		InlineData: []string{inlineEntry("image/png", []byte("png-bytes"))},
	})
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, element.AssetIDs(), 1)

	asset, err := store.GetAsset(context.Background(), element.AssetIDs()[0])
	require.NoError(t, err)
	assert.Equal(t, "Uploaded_file.png", asset.Filename)
	assert.Equal(t, "Uploaded File", asset.Title)
	assert.Equal(t, testVolume, asset.VolumeID)

	folder, err := store.GetFolder(context.Background(), asset.FolderID)
	require.NoError(t, err)
	assert.Equal(t, "inbox/", folder.Path)
}

func TestBeforeSave_RejectionSuppressesIngestion(t *testing.T) {
	store := newTestStore(t)
	f := newTestField(t, store, FieldConfig{
		UseSingleFolder: true,
		SingleVolumeID:  testVolume,
		SingleSubpath:   "inbox",
		RestrictFiles:   true,
		AllowedKinds:    []string{"image"},
	})
	element := &testElement{id: "e-1"}

	rejected, err := f.BeforeSave(context.Background(), element, "user-1", PostedValue{
		InlineData: []string{
			inlineEntry("image/png", []byte("ok")),
			inlineEntry("application/pdf", []byte("doc")),
		},
		Filenames: []string{"pic.png", "doc.pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"doc.pdf"}, rejected)

	// No partial acceptance: the allowed png was not ingested either.
	assert.Empty(t, element.AssetIDs())
}

func TestBeforeSave_UnionsWithExistingSelection(t *testing.T) {
	store := newTestStore(t)
	f := newTestField(t, store, FieldConfig{
		UseSingleFolder: true,
		SingleVolumeID:  testVolume,
		SingleSubpath:   "inbox",
	})

	existing := uuid.New()
	element := &testElement{id: "e-1", assets: []uuid.UUID{existing}}

	_, err := f.BeforeSave(context.Background(), element, "user-1", PostedValue{
		InlineData: []string{inlineEntry("image/png", []byte("x"))},
	})
	require.NoError(t, err)

	require.Len(t, element.AssetIDs(), 2)
	assert.Equal(t, existing, element.AssetIDs()[0])
}

func TestBeforeSave_DuplicateFilenameGetsRenamed(t *testing.T) {
	store := newTestStore(t)
	f := newTestField(t, store, FieldConfig{
		UseSingleFolder: true,
		SingleVolumeID:  testVolume,
		SingleSubpath:   "inbox",
	})

	for range 2 {
		element := &testElement{id: "e-1"}
		_, err := f.BeforeSave(context.Background(), element, "user-1", PostedValue{
			InlineData: []string{inlineEntry("image/png", []byte("x"))},
			Filenames:  []string{"photo.png"},
		})
		require.NoError(t, err)
	}

	folder, err := store.FindFolder(context.Background(), catalog.FolderCriteria{
		VolumeID: testVolume,
		Path:     "inbox/",
	})
	require.NoError(t, err)

	first, err := store.FindAsset(context.Background(), catalog.AssetCriteria{FolderID: folder.ID, Filename: "photo.png"})
	require.NoError(t, err)
	second, err := store.FindAsset(context.Background(), catalog.AssetCriteria{FolderID: folder.ID, Filename: "photo_1.png"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAfterSave_SingleFolderMovesChangedAssets(t *testing.T) {
	store := newTestStore(t)
	f := newTestField(t, store, FieldConfig{
		UseSingleFolder: true,
		SingleVolumeID:  testVolume,
		SingleSubpath:   "galleries/{slug}",
	})

	// Asset parked somewhere else.
	resolver := newTestResolver(t, store)
	parked, err := resolver.Resolve(context.Background(), testVolume, "inbox", nil)
	require.NoError(t, err)
	asset := mustCreateAsset(t, store, parked, "photo.jpg")

	element := &testElement{
		id:      "e-1",
		context: map[string]any{"slug": "trip"},
		assets:  []uuid.UUID{asset.ID},
	}
	require.NoError(t, f.AfterSave(context.Background(), element))

	moved, err := store.GetAsset(context.Background(), asset.ID)
	require.NoError(t, err)
	target, err := store.GetFolder(context.Background(), moved.FolderID)
	require.NoError(t, err)
	assert.Equal(t, "galleries/trip/", target.Path)
	assert.Equal(t, "photo.jpg", moved.Filename)
}

func TestAfterSave_RenamesOnCollision(t *testing.T) {
	store := newTestStore(t)
	f := newTestField(t, store, FieldConfig{
		UseSingleFolder: true,
		SingleVolumeID:  testVolume,
		SingleSubpath:   "final",
	})

	resolver := newTestResolver(t, store)
	target, err := resolver.Resolve(context.Background(), testVolume, "final", nil)
	require.NoError(t, err)
	occupant := mustCreateAsset(t, store, target, "photo.jpg")

	parked, err := resolver.Resolve(context.Background(), testVolume, "inbox", nil)
	require.NoError(t, err)
	mover := mustCreateAsset(t, store, parked, "photo.jpg")

	element := &testElement{id: "e-1", assets: []uuid.UUID{mover.ID}}
	require.NoError(t, f.AfterSave(context.Background(), element))

	// The occupant is untouched and the mover was disambiguated.
	got, err := store.GetAsset(context.Background(), occupant.ID)
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", got.Filename)
	assert.Equal(t, target.ID, got.FolderID)

	moved, err := store.GetAsset(context.Background(), mover.ID)
	require.NoError(t, err)
	assert.Equal(t, "photo_1.jpg", moved.Filename)
	assert.Equal(t, target.ID, moved.FolderID)
}

func TestAfterSave_MultiFolderMovesOnlyScratchAssets(t *testing.T) {
	store := newTestStore(t)
	f := newTestField(t, store, FieldConfig{
		DefaultVolumeID: testVolume,
		DefaultSubpath:  "galleries/{slug}",
	})

	// A new element routed its upload to the scratch folder.
	newElement := &testElement{}
	_, err := f.BeforeSave(context.Background(), newElement, "user-1", PostedValue{
		InlineData: []string{inlineEntry("image/png", []byte("x"))},
		Filenames:  []string{"draft.png"},
	})
	require.NoError(t, err)
	require.Len(t, newElement.AssetIDs(), 1)
	scratchAssetID := newElement.AssetIDs()[0]

	// A settled asset already lives in the target volume.
	resolver := newTestResolver(t, store)
	settledFolder, err := resolver.Resolve(context.Background(), testVolume, "elsewhere", nil)
	require.NoError(t, err)
	settled := mustCreateAsset(t, store, settledFolder, "keep.jpg")

	element := &testElement{
		id:      "e-1",
		context: map[string]any{"slug": "trip"},
		assets:  []uuid.UUID{scratchAssetID, settled.ID},
	}
	require.NoError(t, f.AfterSave(context.Background(), element))

	moved, err := store.GetAsset(context.Background(), scratchAssetID)
	require.NoError(t, err)
	folder, err := store.GetFolder(context.Background(), moved.FolderID)
	require.NoError(t, err)
	assert.Equal(t, "galleries/trip/", folder.Path)
	assert.Equal(t, testVolume, moved.VolumeID)

	// The settled asset stayed put.
	kept, err := store.GetAsset(context.Background(), settled.ID)
	require.NoError(t, err)
	assert.Equal(t, settledFolder.ID, kept.FolderID)
}

func TestAfterSave_NoAssetsIsNoOp(t *testing.T) {
	store := newTestStore(t)
	f := newTestField(t, store, FieldConfig{
		DefaultVolumeID: testVolume,
		DefaultSubpath:  "galleries/{slug}",
	})

	// No candidates means the templated target is never resolved, so
	// an element with an unresolvable context still saves cleanly.
	element := &testElement{id: "e-1", context: map[string]any{}}
	require.NoError(t, f.AfterSave(context.Background(), element))
}

func TestValidate_ReportsRejectedAndExistingDisallowed(t *testing.T) {
	store := newTestStore(t)
	f := newTestField(t, store, FieldConfig{
		UseSingleFolder: true,
		SingleVolumeID:  testVolume,
		SingleSubpath:   "inbox",
		RestrictFiles:   true,
		AllowedKinds:    []string{"image"},
	})

	resolver := newTestResolver(t, store)
	folder, err := resolver.Resolve(context.Background(), testVolume, "inbox", nil)
	require.NoError(t, err)
	pdf := mustCreateAsset(t, store, folder, "old.pdf")
	img := mustCreateAsset(t, store, folder, "ok.jpg")

	element := &testElement{id: "e-1", assets: []uuid.UUID{pdf.ID, img.ID}}
	messages, err := f.Validate(context.Background(), element, []string{"new.doc"})
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Contains(t, messages[0], "new.doc")
	assert.Contains(t, messages[1], "old.pdf")
}

func TestResolveUploadFolder(t *testing.T) {
	store := newTestStore(t)
	f := newTestField(t, store, FieldConfig{
		DefaultVolumeID: testVolume,
		DefaultSubpath:  "inbox",
	})

	folder, err := f.ResolveUploadFolder(context.Background(), &testElement{id: "e-1"}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "inbox/", folder.Path)
}
