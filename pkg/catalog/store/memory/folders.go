package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

// ============================================================================
// Folder Operations
// ============================================================================

// GetRootFolder returns the root folder of a volume.
func (s *MemoryStore) GetRootFolder(ctx context.Context, volumeID string) (*catalog.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rootID, ok := s.roots[volumeID]
	if !ok {
		return nil, catalogerrors.NewNotFoundError(volumeID, "volume root folder")
	}

	return copyFolder(s.folders[rootID]), nil
}

// CreateRootFolder creates the root folder for a volume.
func (s *MemoryStore) CreateRootFolder(ctx context.Context, volumeID string) (*catalog.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if volumeID == "" {
		return nil, catalogerrors.NewInvalidArgumentError("volume id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	if _, ok := s.roots[volumeID]; ok {
		return nil, catalogerrors.NewConflictError(volumeID)
	}

	root := &catalog.Folder{
		ID:       uuid.New(),
		ParentID: uuid.Nil,
		VolumeID: volumeID,
		Name:     "",
		Path:     "",
	}

	s.folders[root.ID] = root
	s.roots[volumeID] = root.ID

	return copyFolder(root), nil
}

// GetFolder returns a folder by id.
func (s *MemoryStore) GetFolder(ctx context.Context, id uuid.UUID) (*catalog.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	folder, ok := s.folders[id]
	if !ok {
		return nil, catalogerrors.NewNotFoundError(id.String(), "folder")
	}

	return copyFolder(folder), nil
}

// FindFolder returns the single folder matching the criteria.
func (s *MemoryStore) FindFolder(ctx context.Context, criteria catalog.FolderCriteria) (*catalog.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	// Fast path: children index lookup for (parent, name) criteria.
	if criteria.ParentID != nil && criteria.Name != "" {
		childID, ok := s.children[*criteria.ParentID][criteria.Name]
		if !ok {
			return nil, catalogerrors.NewNotFoundError(criteria.Name, "folder")
		}
		folder := s.folders[childID]
		if criteria.VolumeID != "" && folder.VolumeID != criteria.VolumeID {
			return nil, catalogerrors.NewNotFoundError(criteria.Name, "folder")
		}
		return copyFolder(folder), nil
	}

	for _, folder := range s.folders {
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
		return copyFolder(folder), nil
	}

	return nil, catalogerrors.NewNotFoundError(criteria.Path, "folder")
}

// CreateFolder persists a new folder, enforcing (parent, name) uniqueness.
func (s *MemoryStore) CreateFolder(ctx context.Context, folder *catalog.Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if folder.Name == "" {
		return catalogerrors.NewInvalidArgumentError("folder name cannot be empty")
	}
	if folder.ParentID == uuid.Nil {
		return catalogerrors.NewInvalidArgumentError("folder parent cannot be empty; use CreateRootFolder for roots")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}

	parent, ok := s.folders[folder.ParentID]
	if !ok {
		return catalogerrors.NewNotFoundError(folder.ParentID.String(), "parent folder")
	}

	// Uniqueness check and insert happen under one lock, so concurrent
	// creators of the same name see exactly one winner.
	if _, exists := s.children[folder.ParentID][folder.Name]; exists {
		return catalogerrors.NewConflictError(parent.Path + folder.Name + "/")
	}

	folder.ID = uuid.New()
	if folder.VolumeID == "" {
		folder.VolumeID = parent.VolumeID
	}
	if folder.Path == "" {
		folder.Path = parent.ChildPath(folder.Name)
	}

	s.folders[folder.ID] = copyFolder(folder)

	if s.children[folder.ParentID] == nil {
		s.children[folder.ParentID] = make(map[string]uuid.UUID)
	}
	s.children[folder.ParentID][folder.Name] = folder.ID

	return nil
}
