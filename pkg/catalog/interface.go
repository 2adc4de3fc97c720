package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence contract for the folder/asset catalog.
//
// Implementations must enforce two uniqueness constraints at the storage
// layer:
//   - one root folder per volume
//   - (ParentID, Name) unique among the children of a folder
//
// CreateFolder reports a violation of the second constraint as a
// *errors.StoreError with code ErrAlreadyExists. That conflict is the
// cooperation point for concurrent writers materializing the same path:
// callers treat it as "someone else won the race" and re-read the folder
// instead of failing.
//
// Lookup operations return a *errors.StoreError with code ErrNotFound when
// no entry matches; they never return (nil, nil).
type Store interface {
	// GetRootFolder returns the root folder of a volume.
	GetRootFolder(ctx context.Context, volumeID string) (*Folder, error)

	// CreateRootFolder creates the root folder for a volume. Conflicts map
	// to ErrAlreadyExists like any other folder creation.
	CreateRootFolder(ctx context.Context, volumeID string) (*Folder, error)

	// FindFolder returns the single folder matching the criteria.
	FindFolder(ctx context.Context, criteria FolderCriteria) (*Folder, error)

	// GetFolder returns a folder by id.
	GetFolder(ctx context.Context, id uuid.UUID) (*Folder, error)

	// CreateFolder persists a new folder and fills in its ID.
	// The folder's ParentID, VolumeID, Name and Path must be set.
	CreateFolder(ctx context.Context, folder *Folder) error

	// SaveAsset persists a new asset record and fills in its ID.
	SaveAsset(ctx context.Context, asset *Asset) error

	// GetAsset returns an asset by id.
	GetAsset(ctx context.Context, id uuid.UUID) (*Asset, error)

	// ListAssets returns the assets for the given ids, skipping ids that no
	// longer exist. Order follows the input ids.
	ListAssets(ctx context.Context, ids []uuid.UUID) ([]*Asset, error)

	// FindAsset returns the single asset matching the criteria.
	FindAsset(ctx context.Context, criteria AssetCriteria) (*Asset, error)

	// MoveAsset moves an asset into targetFolderID. When newFilename is
	// non-empty the asset is renamed as part of the move. The move is atomic
	// at the store boundary.
	MoveAsset(ctx context.Context, assetID, targetFolderID uuid.UUID, newFilename string) error

	// HealthCheck verifies the store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases store resources.
	Close() error
}
