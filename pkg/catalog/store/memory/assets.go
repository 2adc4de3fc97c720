package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

// ============================================================================
// Asset Operations
// ============================================================================

// SaveAsset persists a new asset record and fills in its ID.
func (s *MemoryStore) SaveAsset(ctx context.Context, asset *catalog.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if asset.Filename == "" {
		return catalogerrors.NewInvalidArgumentError("asset filename cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}

	folder, ok := s.folders[asset.FolderID]
	if !ok {
		return catalogerrors.NewNotFoundError(asset.FolderID.String(), "folder")
	}

	if s.findAssetLocked(asset.FolderID, asset.Filename) != nil {
		return catalogerrors.NewConflictError(folder.Path + asset.Filename)
	}

	asset.ID = uuid.New()
	if asset.VolumeID == "" {
		asset.VolumeID = folder.VolumeID
	}

	stored := copyAsset(asset)
	stored.NewFilePath = "" // staging path is transient, never stored
	s.assets[asset.ID] = stored

	return nil
}

// GetAsset returns an asset by id.
func (s *MemoryStore) GetAsset(ctx context.Context, id uuid.UUID) (*catalog.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	asset, ok := s.assets[id]
	if !ok {
		return nil, catalogerrors.NewNotFoundError(id.String(), "asset")
	}

	return copyAsset(asset), nil
}

// ListAssets returns the assets for the given ids, skipping missing ones.
func (s *MemoryStore) ListAssets(ctx context.Context, ids []uuid.UUID) ([]*catalog.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	result := make([]*catalog.Asset, 0, len(ids))
	for _, id := range ids {
		if asset, ok := s.assets[id]; ok {
			result = append(result, copyAsset(asset))
		}
	}

	return result, nil
}

// FindAsset returns the single asset matching the criteria.
func (s *MemoryStore) FindAsset(ctx context.Context, criteria catalog.AssetCriteria) (*catalog.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	if asset := s.findAssetLocked(criteria.FolderID, criteria.Filename); asset != nil {
		return copyAsset(asset), nil
	}

	return nil, catalogerrors.NewNotFoundError(criteria.Filename, "asset")
}

// MoveAsset moves an asset into targetFolderID, optionally renaming it.
func (s *MemoryStore) MoveAsset(ctx context.Context, assetID, targetFolderID uuid.UUID, newFilename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}

	asset, ok := s.assets[assetID]
	if !ok {
		return catalogerrors.NewNotFoundError(assetID.String(), "asset")
	}

	target, ok := s.folders[targetFolderID]
	if !ok {
		return catalogerrors.NewNotFoundError(targetFolderID.String(), "target folder")
	}

	filename := asset.Filename
	if newFilename != "" {
		filename = newFilename
	}

	if existing := s.findAssetLocked(targetFolderID, filename); existing != nil && existing.ID != assetID {
		return catalogerrors.NewConflictError(target.Path + filename)
	}

	asset.FolderID = targetFolderID
	asset.VolumeID = target.VolumeID
	asset.Filename = filename

	return nil
}

// findAssetLocked looks up an asset by (folder, filename).
// Must be called with at least a read lock held.
func (s *MemoryStore) findAssetLocked(folderID uuid.UUID, filename string) *catalog.Asset {
	for _, asset := range s.assets {
		if asset.FolderID == folderID && asset.Filename == filename {
			return asset
		}
	}
	return nil
}
