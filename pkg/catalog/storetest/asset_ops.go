package storetest

import (
	"testing"

	"github.com/google/uuid"

	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

// runAssetOpsTests runs asset CRUD and move conformance tests.
func runAssetOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("SaveAndGet", func(t *testing.T) { testSaveAndGet(t, factory) })
	t.Run("SaveConflict", func(t *testing.T) { testSaveConflict(t, factory) })
	t.Run("FindByFilename", func(t *testing.T) { testFindByFilename(t, factory) })
	t.Run("ListAssets", func(t *testing.T) { testListAssets(t, factory) })
	t.Run("Move", func(t *testing.T) { testMove(t, factory) })
	t.Run("MoveWithRename", func(t *testing.T) { testMoveWithRename(t, factory) })
	t.Run("MoveConflict", func(t *testing.T) { testMoveConflict(t, factory) })
}

func testSaveAndGet(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")
	asset := createTestAsset(t, store, root, "photo.jpg")

	if asset.ID == uuid.Nil {
		t.Fatal("SaveAsset did not assign an id")
	}

	got, err := store.GetAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if got.Filename != "photo.jpg" {
		t.Errorf("asset filename = %q, want %q", got.Filename, "photo.jpg")
	}
	if got.VolumeID != "images" {
		t.Errorf("asset volume = %q, want %q", got.VolumeID, "images")
	}
	if got.FolderID != root.ID {
		t.Errorf("asset folder = %v, want %v", got.FolderID, root.ID)
	}
	if got.NewFilePath != "" {
		t.Errorf("staging path leaked into stored asset: %q", got.NewFilePath)
	}
}

func testSaveConflict(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")
	createTestAsset(t, store, root, "photo.jpg")

	dup := &catalog.Asset{
		VolumeID: root.VolumeID,
		FolderID: root.ID,
		Filename: "photo.jpg",
	}
	if err := store.SaveAsset(ctx, dup); !catalogerrors.IsConflict(err) {
		t.Fatalf("duplicate SaveAsset: want AlreadyExists, got %v", err)
	}
}

func testFindByFilename(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")
	asset := createTestAsset(t, store, root, "photo.jpg")

	got, err := store.FindAsset(ctx, catalog.AssetCriteria{FolderID: root.ID, Filename: "photo.jpg"})
	if err != nil {
		t.Fatalf("FindAsset failed: %v", err)
	}
	if got.ID != asset.ID {
		t.Errorf("FindAsset id = %v, want %v", got.ID, asset.ID)
	}

	if _, err := store.FindAsset(ctx, catalog.AssetCriteria{FolderID: root.ID, Filename: "other.jpg"}); !catalogerrors.IsNotFound(err) {
		t.Fatalf("FindAsset for missing filename: want NotFound, got %v", err)
	}
}

func testListAssets(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")
	a := createTestAsset(t, store, root, "a.jpg")
	b := createTestAsset(t, store, root, "b.jpg")

	// Missing ids are skipped, order follows input.
	got, err := store.ListAssets(ctx, []uuid.UUID{b.ID, uuid.New(), a.ID})
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListAssets returned %d assets, want 2", len(got))
	}
	if got[0].ID != b.ID || got[1].ID != a.ID {
		t.Errorf("ListAssets order = [%v %v], want [%v %v]", got[0].ID, got[1].ID, b.ID, a.ID)
	}
}

func testMove(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")
	archive := createTestFolder(t, store, root, "archive")
	asset := createTestAsset(t, store, root, "photo.jpg")

	if err := store.MoveAsset(ctx, asset.ID, archive.ID, ""); err != nil {
		t.Fatalf("MoveAsset failed: %v", err)
	}

	got, err := store.GetAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAsset after move failed: %v", err)
	}
	if got.FolderID != archive.ID {
		t.Errorf("moved asset folder = %v, want %v", got.FolderID, archive.ID)
	}
	if got.Filename != "photo.jpg" {
		t.Errorf("move without rename changed filename to %q", got.Filename)
	}
}

func testMoveWithRename(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")
	archive := createTestFolder(t, store, root, "archive")
	asset := createTestAsset(t, store, root, "photo.jpg")

	if err := store.MoveAsset(ctx, asset.ID, archive.ID, "photo_1.jpg"); err != nil {
		t.Fatalf("MoveAsset with rename failed: %v", err)
	}

	got, err := store.GetAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAsset after move failed: %v", err)
	}
	if got.Filename != "photo_1.jpg" {
		t.Errorf("renamed asset filename = %q, want %q", got.Filename, "photo_1.jpg")
	}
}

func testMoveConflict(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")
	archive := createTestFolder(t, store, root, "archive")
	createTestAsset(t, store, archive, "photo.jpg")
	asset := createTestAsset(t, store, root, "photo.jpg")

	err := store.MoveAsset(ctx, asset.ID, archive.ID, "")
	if !catalogerrors.IsConflict(err) {
		t.Fatalf("conflicting MoveAsset: want AlreadyExists, got %v", err)
	}

	// The source asset is untouched after a failed move.
	got, err := store.GetAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAsset after failed move: %v", err)
	}
	if got.FolderID != root.ID {
		t.Errorf("failed move changed folder to %v", got.FolderID)
	}
}
