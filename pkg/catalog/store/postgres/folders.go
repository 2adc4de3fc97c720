package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

var _ catalog.Store = (*PostgresStore)(nil)

const folderColumns = "id, parent_id, volume_id, name, path"

// GetRootFolder returns the root folder for a volume.
func (s *PostgresStore) GetRootFolder(ctx context.Context, volumeID string) (*catalog.Folder, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE volume_id = $1 AND parent_id IS NULL",
		volumeID)

	folder, err := scanFolder(row)
	if err != nil {
		return nil, mapPgError(err, volumeID)
	}
	return folder, nil
}

// CreateRootFolder creates the root folder for a volume. The partial
// unique index on (volume_id) rejects a second root with a unique
// violation, which surfaces as ErrAlreadyExists.
func (s *PostgresStore) CreateRootFolder(ctx context.Context, volumeID string) (*catalog.Folder, error) {
	folder := &catalog.Folder{
		ID:       uuid.New(),
		VolumeID: volumeID,
		Name:     "",
		Path:     "",
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO folders (id, parent_id, volume_id, name, path) VALUES ($1, NULL, $2, $3, $4)",
		folder.ID, folder.VolumeID, folder.Name, folder.Path)
	if err != nil {
		return nil, mapPgError(err, volumeID)
	}
	return folder, nil
}

// GetFolder returns a folder by ID.
func (s *PostgresStore) GetFolder(ctx context.Context, folderID uuid.UUID) (*catalog.Folder, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE id = $1",
		folderID)

	folder, err := scanFolder(row)
	if err != nil {
		return nil, mapPgError(err, folderID.String())
	}
	return folder, nil
}

// FindFolder looks up a single folder matching the criteria.
func (s *PostgresStore) FindFolder(ctx context.Context, criteria catalog.FolderCriteria) (*catalog.Folder, error) {
	query := "SELECT " + folderColumns + " FROM folders WHERE volume_id = $1"
	args := []any{criteria.VolumeID}

	if criteria.ParentID != nil {
		args = append(args, *criteria.ParentID)
		query += " AND parent_id = $2"
		if criteria.Name != "" {
			args = append(args, criteria.Name)
			query += " AND name = $3"
		}
	} else if criteria.Path != "" {
		args = append(args, criteria.Path)
		query += " AND path = $2"
	}

	row := s.pool.QueryRow(ctx, query, args...)

	folder, err := scanFolder(row)
	if err != nil {
		return nil, mapPgError(err, criteria.Path)
	}
	return folder, nil
}

// CreateFolder creates a child folder under folder.ParentID. The
// (parent_id, name) unique index turns concurrent creates of the same
// name into exactly one winner; losers see ErrAlreadyExists.
func (s *PostgresStore) CreateFolder(ctx context.Context, folder *catalog.Folder) error {
	if folder.ParentID == uuid.Nil {
		return catalogerrors.NewInvalidArgumentError("folder must have a parent; use CreateRootFolder for roots")
	}
	if folder.Name == "" {
		return catalogerrors.NewInvalidArgumentError("folder name must not be empty")
	}

	parent, err := s.GetFolder(ctx, folder.ParentID)
	if err != nil {
		return err
	}

	folder.ID = uuid.New()
	folder.VolumeID = parent.VolumeID
	folder.Path = parent.ChildPath(folder.Name)

	_, err = s.pool.Exec(ctx,
		"INSERT INTO folders (id, parent_id, volume_id, name, path) VALUES ($1, $2, $3, $4, $5)",
		folder.ID, folder.ParentID, folder.VolumeID, folder.Name, folder.Path)
	if err != nil {
		folder.ID = uuid.Nil
		return mapPgError(err, folder.Path)
	}
	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (*catalog.Folder, error) {
	var folder catalog.Folder
	var parentID *uuid.UUID
	err := row.Scan(&folder.ID, &parentID, &folder.VolumeID, &folder.Name, &folder.Path)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		folder.ParentID = *parentID
	}
	return &folder, nil
}
