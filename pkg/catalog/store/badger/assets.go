package badger

import (
	"context"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

// ============================================================================
// Asset Operations
// ============================================================================

// SaveAsset persists a new asset record, enforcing (folder, filename)
// uniqueness through the filename index key.
func (s *BadgerStore) SaveAsset(ctx context.Context, asset *catalog.Asset) error {
	if asset.Filename == "" {
		return catalogerrors.NewInvalidArgumentError("asset filename cannot be empty")
	}

	id := uuid.New()

	err := s.update(ctx, func(txn *badgerdb.Txn) error {
		folder, err := getFolder(txn, asset.FolderID)
		if err != nil {
			if catalogerrors.IsNotFound(err) {
				return catalogerrors.NewNotFoundError(asset.FolderID.String(), "folder")
			}
			return err
		}

		nameKey := keyFilename(asset.FolderID, asset.Filename)
		_, err = txn.Get(nameKey)
		if err == nil {
			return catalogerrors.NewConflictError(folder.Path + asset.Filename)
		}
		if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return fmt.Errorf("failed to check filename entry: %w", err)
		}

		asset.ID = id
		if asset.VolumeID == "" {
			asset.VolumeID = folder.VolumeID
		}

		stored := *asset
		stored.NewFilePath = "" // staging path is transient, never stored

		data, err := encodeAsset(&stored)
		if err != nil {
			return err
		}
		if err := txn.Set(keyAsset(id), data); err != nil {
			return fmt.Errorf("failed to store asset: %w", err)
		}
		return txn.Set(nameKey, encodeID(id))
	})
	if err != nil {
		asset.ID = uuid.Nil
		return err
	}

	return nil
}

// GetAsset returns an asset by id.
func (s *BadgerStore) GetAsset(ctx context.Context, id uuid.UUID) (*catalog.Asset, error) {
	var result *catalog.Asset

	err := s.view(ctx, func(txn *badgerdb.Txn) error {
		var err error
		result, err = getAsset(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListAssets returns the assets for the given ids, skipping missing ones.
func (s *BadgerStore) ListAssets(ctx context.Context, ids []uuid.UUID) ([]*catalog.Asset, error) {
	result := make([]*catalog.Asset, 0, len(ids))

	err := s.view(ctx, func(txn *badgerdb.Txn) error {
		for _, id := range ids {
			asset, err := getAsset(txn, id)
			if catalogerrors.IsNotFound(err) {
				continue
			}
			if err != nil {
				return err
			}
			result = append(result, asset)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// FindAsset returns the single asset matching the criteria.
func (s *BadgerStore) FindAsset(ctx context.Context, criteria catalog.AssetCriteria) (*catalog.Asset, error) {
	var result *catalog.Asset

	err := s.view(ctx, func(txn *badgerdb.Txn) error {
		assetID, err := getID(txn, keyFilename(criteria.FolderID, criteria.Filename))
		if err != nil {
			if catalogerrors.IsNotFound(err) {
				return catalogerrors.NewNotFoundError(criteria.Filename, "asset")
			}
			return err
		}
		result, err = getAsset(txn, assetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// MoveAsset moves an asset into targetFolderID, optionally renaming it.
// The index rewrite and the record update commit atomically.
func (s *BadgerStore) MoveAsset(ctx context.Context, assetID, targetFolderID uuid.UUID, newFilename string) error {
	return s.update(ctx, func(txn *badgerdb.Txn) error {
		asset, err := getAsset(txn, assetID)
		if err != nil {
			return err
		}

		target, err := getFolder(txn, targetFolderID)
		if err != nil {
			if catalogerrors.IsNotFound(err) {
				return catalogerrors.NewNotFoundError(targetFolderID.String(), "target folder")
			}
			return err
		}

		filename := asset.Filename
		if newFilename != "" {
			filename = newFilename
		}

		newKey := keyFilename(targetFolderID, filename)
		if existingID, err := getID(txn, newKey); err == nil {
			if existingID != assetID {
				return catalogerrors.NewConflictError(target.Path + filename)
			}
		} else if !catalogerrors.IsNotFound(err) {
			return err
		}

		// Rewrite the filename index and the record together.
		if err := txn.Delete(keyFilename(asset.FolderID, asset.Filename)); err != nil {
			return fmt.Errorf("failed to remove old filename entry: %w", err)
		}

		asset.FolderID = targetFolderID
		asset.VolumeID = target.VolumeID
		asset.Filename = filename

		data, err := encodeAsset(asset)
		if err != nil {
			return err
		}
		if err := txn.Set(keyAsset(assetID), data); err != nil {
			return fmt.Errorf("failed to update asset: %w", err)
		}
		return txn.Set(newKey, encodeID(assetID))
	})
}

// getAsset reads and decodes an asset inside a transaction.
func getAsset(txn *badgerdb.Txn, id uuid.UUID) (*catalog.Asset, error) {
	item, err := txn.Get(keyAsset(id))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, catalogerrors.NewNotFoundError(id.String(), "asset")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	var asset *catalog.Asset
	err = item.Value(func(val []byte) error {
		asset, err = decodeAsset(val)
		return err
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}
