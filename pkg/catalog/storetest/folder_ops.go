package storetest

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

// runFolderOpsTests runs folder CRUD and race conformance tests.
func runFolderOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("RootFolder", func(t *testing.T) { testRootFolder(t, factory) })
	t.Run("RootFolderConflict", func(t *testing.T) { testRootFolderConflict(t, factory) })
	t.Run("CreateChild", func(t *testing.T) { testCreateChild(t, factory) })
	t.Run("CreateChildConflict", func(t *testing.T) { testCreateChildConflict(t, factory) })
	t.Run("FindByPath", func(t *testing.T) { testFindByPath(t, factory) })
	t.Run("FindByParentAndName", func(t *testing.T) { testFindByParentAndName(t, factory) })
	t.Run("NestedPaths", func(t *testing.T) { testNestedPaths(t, factory) })
	t.Run("ConcurrentCreate", func(t *testing.T) { testConcurrentCreate(t, factory) })
}

func testRootFolder(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	// Missing root
	if _, err := store.GetRootFolder(ctx, "images"); !catalogerrors.IsNotFound(err) {
		t.Fatalf("GetRootFolder on empty store: want NotFound, got %v", err)
	}

	created := createTestRoot(t, store, "images")
	if !created.IsRoot() {
		t.Errorf("root folder has parent id %v", created.ParentID)
	}
	if created.Path != "" {
		t.Errorf("root folder path = %q, want empty", created.Path)
	}

	got, err := store.GetRootFolder(ctx, "images")
	if err != nil {
		t.Fatalf("GetRootFolder failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetRootFolder id = %v, want %v", got.ID, created.ID)
	}
}

func testRootFolderConflict(t *testing.T, factory StoreFactory) {
	store := factory(t)

	createTestRoot(t, store, "images")

	_, err := store.CreateRootFolder(t.Context(), "images")
	if !catalogerrors.IsConflict(err) {
		t.Fatalf("second CreateRootFolder: want AlreadyExists, got %v", err)
	}
}

func testCreateChild(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")
	child := createTestFolder(t, store, root, "uploads")

	if child.ID == uuid.Nil {
		t.Fatal("CreateFolder did not assign an id")
	}
	if child.Path != "uploads/" {
		t.Errorf("child path = %q, want %q", child.Path, "uploads/")
	}

	got, err := store.GetFolder(ctx, child.ID)
	if err != nil {
		t.Fatalf("GetFolder failed: %v", err)
	}
	if got.ParentID != root.ID {
		t.Errorf("child parent = %v, want %v", got.ParentID, root.ID)
	}
	if got.VolumeID != "images" {
		t.Errorf("child volume = %q, want %q", got.VolumeID, "images")
	}
}

func testCreateChildConflict(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")
	createTestFolder(t, store, root, "uploads")

	dup := &catalog.Folder{
		ParentID: root.ID,
		VolumeID: root.VolumeID,
		Name:     "uploads",
		Path:     root.ChildPath("uploads"),
	}
	err := store.CreateFolder(ctx, dup)
	if !catalogerrors.IsConflict(err) {
		t.Fatalf("duplicate CreateFolder: want AlreadyExists, got %v", err)
	}

	// Same name under a different parent is fine.
	other := createTestFolder(t, store, root, "archive")
	nested := &catalog.Folder{
		ParentID: other.ID,
		VolumeID: other.VolumeID,
		Name:     "uploads",
		Path:     other.ChildPath("uploads"),
	}
	if err := store.CreateFolder(ctx, nested); err != nil {
		t.Fatalf("CreateFolder under different parent failed: %v", err)
	}
}

func testFindByPath(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")
	uploads := createTestFolder(t, store, root, "uploads")
	summer := createTestFolder(t, store, uploads, "summer")

	got, err := store.FindFolder(ctx, catalog.FolderCriteria{
		VolumeID: "images",
		Path:     "uploads/summer/",
	})
	if err != nil {
		t.Fatalf("FindFolder by path failed: %v", err)
	}
	if got.ID != summer.ID {
		t.Errorf("FindFolder id = %v, want %v", got.ID, summer.ID)
	}

	// Path lookups are volume-scoped.
	if _, err := store.FindFolder(ctx, catalog.FolderCriteria{
		VolumeID: "documents",
		Path:     "uploads/summer/",
	}); !catalogerrors.IsNotFound(err) {
		t.Fatalf("FindFolder in wrong volume: want NotFound, got %v", err)
	}
}

func testFindByParentAndName(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")
	uploads := createTestFolder(t, store, root, "uploads")

	got, err := store.FindFolder(ctx, catalog.FolderCriteria{
		ParentID: &root.ID,
		Name:     "uploads",
	})
	if err != nil {
		t.Fatalf("FindFolder by (parent, name) failed: %v", err)
	}
	if got.ID != uploads.ID {
		t.Errorf("FindFolder id = %v, want %v", got.ID, uploads.ID)
	}

	if _, err := store.FindFolder(ctx, catalog.FolderCriteria{
		ParentID: &root.ID,
		Name:     "missing",
	}); !catalogerrors.IsNotFound(err) {
		t.Fatalf("FindFolder for missing name: want NotFound, got %v", err)
	}
}

func testNestedPaths(t *testing.T, factory StoreFactory) {
	store := factory(t)

	root := createTestRoot(t, store, "images")

	// Materialize a three-level path and verify the path invariant at
	// every level: child.Path == parent.Path + name + "/".
	parent := root
	wantPath := ""
	for _, name := range []string{"a", "b", "c"} {
		child := createTestFolder(t, store, parent, name)
		wantPath += name + "/"
		if child.Path != wantPath {
			t.Errorf("folder %q path = %q, want %q", name, child.Path, wantPath)
		}
		parent = child
	}
}

// testConcurrentCreate verifies that concurrent creation of the same
// (parent, name) results in exactly one folder, with every loser receiving
// a typed conflict it can recover from.
func testConcurrentCreate(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	root := createTestRoot(t, store, "images")

	const writers = 8

	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			folder := &catalog.Folder{
				ParentID: root.ID,
				VolumeID: root.VolumeID,
				Name:     "contested",
				Path:     root.ChildPath("contested"),
			}
			errs[i] = store.CreateFolder(ctx, folder)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case catalogerrors.IsConflict(err):
			// expected for losers
		default:
			t.Errorf("concurrent CreateFolder returned unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("concurrent CreateFolder winners = %d, want 1", winners)
	}

	// All callers resolve to the same folder afterwards.
	got, err := store.FindFolder(ctx, catalog.FolderCriteria{
		ParentID: &root.ID,
		Name:     "contested",
	})
	if err != nil {
		t.Fatalf("FindFolder after race failed: %v", err)
	}
	if got.Path != "contested/" {
		t.Errorf("raced folder path = %q, want %q", got.Path, "contested/")
	}
}
