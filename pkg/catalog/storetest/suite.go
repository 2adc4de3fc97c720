package storetest

import (
	"testing"

	"github.com/google/uuid"

	"github.com/quarryfs/quarry/pkg/catalog"
)

// StoreFactory creates a fresh catalog.Store instance for each test.
// The factory receives *testing.T so it can use t.TempDir() for stores
// that need filesystem paths and t.Cleanup() for teardown.
type StoreFactory func(t *testing.T) catalog.Store

// RunConformanceSuite runs the full conformance test suite against the
// provided store factory. Each test gets a fresh store instance to ensure
// isolation.
//
// The suite covers two categories:
//   - FolderOps: root creation, find criteria, child creation, conflicts,
//     concurrent creation races
//   - AssetOps: save, lookup, listing, moves, rename-on-move, conflicts
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("FolderOps", func(t *testing.T) {
		runFolderOpsTests(t, factory)
	})

	t.Run("AssetOps", func(t *testing.T) {
		runAssetOpsTests(t, factory)
	})
}

// createTestRoot is a helper that creates a volume root for testing.
func createTestRoot(t *testing.T, store catalog.Store, volumeID string) *catalog.Folder {
	t.Helper()

	root, err := store.CreateRootFolder(t.Context(), volumeID)
	if err != nil {
		t.Fatalf("CreateRootFolder(%q) failed: %v", volumeID, err)
	}
	if root.ID == uuid.Nil {
		t.Fatalf("CreateRootFolder(%q) returned a folder without id", volumeID)
	}
	return root
}

// createTestFolder is a helper that creates a child folder.
func createTestFolder(t *testing.T, store catalog.Store, parent *catalog.Folder, name string) *catalog.Folder {
	t.Helper()

	folder := &catalog.Folder{
		ParentID: parent.ID,
		VolumeID: parent.VolumeID,
		Name:     name,
		Path:     parent.ChildPath(name),
	}
	if err := store.CreateFolder(t.Context(), folder); err != nil {
		t.Fatalf("CreateFolder(%q) failed: %v", name, err)
	}
	return folder
}

// createTestAsset is a helper that persists an asset record.
func createTestAsset(t *testing.T, store catalog.Store, folder *catalog.Folder, filename string) *catalog.Asset {
	t.Helper()

	asset := &catalog.Asset{
		VolumeID: folder.VolumeID,
		FolderID: folder.ID,
		Filename: filename,
		Title:    catalog.TitleFromFilename(filename),
	}
	if err := store.SaveAsset(t.Context(), asset); err != nil {
		t.Fatalf("SaveAsset(%q) failed: %v", filename, err)
	}
	return asset
}
