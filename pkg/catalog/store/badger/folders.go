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

// Compile-time interface check.
var _ catalog.Store = (*BadgerStore)(nil)

// ============================================================================
// Folder Operations
// ============================================================================

// GetRootFolder returns the root folder of a volume.
func (s *BadgerStore) GetRootFolder(ctx context.Context, volumeID string) (*catalog.Folder, error) {
	var result *catalog.Folder

	err := s.view(ctx, func(txn *badgerdb.Txn) error {
		rootID, err := getID(txn, keyRoot(volumeID))
		if err != nil {
			if catalogerrors.IsNotFound(err) {
				return catalogerrors.NewNotFoundError(volumeID, "volume root folder")
			}
			return err
		}
		result, err = getFolder(txn, rootID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CreateRootFolder creates the root folder for a volume.
func (s *BadgerStore) CreateRootFolder(ctx context.Context, volumeID string) (*catalog.Folder, error) {
	if volumeID == "" {
		return nil, catalogerrors.NewInvalidArgumentError("volume id cannot be empty")
	}

	root := &catalog.Folder{
		ID:       uuid.New(),
		ParentID: uuid.Nil,
		VolumeID: volumeID,
		Name:     "",
		Path:     "",
	}

	err := s.update(ctx, func(txn *badgerdb.Txn) error {
		// The root index key doubles as the uniqueness constraint.
		_, err := txn.Get(keyRoot(volumeID))
		if err == nil {
			return catalogerrors.NewConflictError(volumeID)
		}
		if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return fmt.Errorf("failed to check volume root: %w", err)
		}

		data, err := encodeFolder(root)
		if err != nil {
			return err
		}
		if err := txn.Set(keyFolder(root.ID), data); err != nil {
			return fmt.Errorf("failed to store root folder: %w", err)
		}
		return txn.Set(keyRoot(volumeID), encodeID(root.ID))
	})
	if err != nil {
		return nil, err
	}

	return root, nil
}

// GetFolder returns a folder by id.
func (s *BadgerStore) GetFolder(ctx context.Context, id uuid.UUID) (*catalog.Folder, error) {
	var result *catalog.Folder

	err := s.view(ctx, func(txn *badgerdb.Txn) error {
		var err error
		result, err = getFolder(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// FindFolder returns the single folder matching the criteria.
//
// (parent, name) criteria resolve through the children index; path criteria
// scan the folder namespace. Scans are acceptable here because resolution
// always narrows to one volume's tree and trees are shallow in practice.
func (s *BadgerStore) FindFolder(ctx context.Context, criteria catalog.FolderCriteria) (*catalog.Folder, error) {
	var result *catalog.Folder

	err := s.view(ctx, func(txn *badgerdb.Txn) error {
		// Fast path: children index lookup.
		if criteria.ParentID != nil && criteria.Name != "" {
			childID, err := getID(txn, keyChild(*criteria.ParentID, criteria.Name))
			if err != nil {
				if catalogerrors.IsNotFound(err) {
					return catalogerrors.NewNotFoundError(criteria.Name, "folder")
				}
				return err
			}
			folder, err := getFolder(txn, childID)
			if err != nil {
				return err
			}
			if criteria.VolumeID != "" && folder.VolumeID != criteria.VolumeID {
				return catalogerrors.NewNotFoundError(criteria.Name, "folder")
			}
			result = folder
			return nil
		}

		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchSize = 100
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixFolder)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var folder *catalog.Folder
			err := it.Item().Value(func(val []byte) error {
				f, err := decodeFolder(val)
				if err != nil {
					return nil // skip corrupted entries
				}
				folder = f
				return nil
			})
			if err != nil {
				return err
			}
			if folder == nil {
				continue
			}

			if criteria.VolumeID != "" && folder.VolumeID != criteria.VolumeID {
				continue
			}
			if criteria.Path != "" && folder.Path != criteria.Path {
				continue
			}
			if criteria.Name != "" && folder.Name != criteria.Name {
				continue
			}
			if criteria.ParentID != nil && folder.ParentID != *criteria.ParentID {
				continue
			}

			result = folder
			return nil
		}

		return catalogerrors.NewNotFoundError(criteria.Path, "folder")
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CreateFolder persists a new folder, enforcing (parent, name) uniqueness
// through the children index key.
func (s *BadgerStore) CreateFolder(ctx context.Context, folder *catalog.Folder) error {
	if folder.Name == "" {
		return catalogerrors.NewInvalidArgumentError("folder name cannot be empty")
	}
	if folder.ParentID == uuid.Nil {
		return catalogerrors.NewInvalidArgumentError("folder parent cannot be empty; use CreateRootFolder for roots")
	}

	id := uuid.New()

	err := s.update(ctx, func(txn *badgerdb.Txn) error {
		parent, err := getFolder(txn, folder.ParentID)
		if err != nil {
			if catalogerrors.IsNotFound(err) {
				return catalogerrors.NewNotFoundError(folder.ParentID.String(), "parent folder")
			}
			return err
		}

		childKey := keyChild(folder.ParentID, folder.Name)
		_, err = txn.Get(childKey)
		if err == nil {
			return catalogerrors.NewConflictError(parent.Path + folder.Name + "/")
		}
		if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return fmt.Errorf("failed to check child entry: %w", err)
		}

		folder.ID = id
		if folder.VolumeID == "" {
			folder.VolumeID = parent.VolumeID
		}
		if folder.Path == "" {
			folder.Path = parent.ChildPath(folder.Name)
		}

		data, err := encodeFolder(folder)
		if err != nil {
			return err
		}
		if err := txn.Set(keyFolder(id), data); err != nil {
			return fmt.Errorf("failed to store folder: %w", err)
		}
		return txn.Set(childKey, encodeID(id))
	})
	if err != nil {
		folder.ID = uuid.Nil
		return err
	}

	return nil
}

// ============================================================================
// Transaction Helpers
// ============================================================================

// getFolder reads and decodes a folder inside a transaction.
func getFolder(txn *badgerdb.Txn, id uuid.UUID) (*catalog.Folder, error) {
	item, err := txn.Get(keyFolder(id))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, catalogerrors.NewNotFoundError(id.String(), "folder")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	var folder *catalog.Folder
	err = item.Value(func(val []byte) error {
		folder, err = decodeFolder(val)
		return err
	})
	if err != nil {
		return nil, err
	}

	return folder, nil
}

// getID reads a uuid index value inside a transaction.
func getID(txn *badgerdb.Txn, key []byte) (uuid.UUID, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return uuid.Nil, catalogerrors.NewNotFoundError(string(key), "index entry")
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get index entry: %w", err)
	}

	var id uuid.UUID
	err = item.Value(func(val []byte) error {
		id, err = decodeID(val)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}
