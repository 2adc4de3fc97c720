package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

const assetColumns = "id, volume_id, folder_id, filename, title"

// SaveAsset persists a new asset record. The (folder_id, filename)
// unique index rejects duplicate filenames within a folder.
func (s *PostgresStore) SaveAsset(ctx context.Context, asset *catalog.Asset) error {
	if asset.Filename == "" {
		return catalogerrors.NewInvalidArgumentError("asset filename must not be empty")
	}

	folder, err := s.GetFolder(ctx, asset.FolderID)
	if err != nil {
		return err
	}

	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	asset.VolumeID = folder.VolumeID
	asset.NewFilePath = ""

	_, err = s.pool.Exec(ctx,
		"INSERT INTO assets (id, volume_id, folder_id, filename, title) VALUES ($1, $2, $3, $4, $5)",
		asset.ID, asset.VolumeID, asset.FolderID, asset.Filename, asset.Title)
	if err != nil {
		return mapPgError(err, asset.Filename)
	}
	return nil
}

// GetAsset returns an asset by ID.
func (s *PostgresStore) GetAsset(ctx context.Context, assetID uuid.UUID) (*catalog.Asset, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+assetColumns+" FROM assets WHERE id = $1",
		assetID)

	asset, err := scanAsset(row)
	if err != nil {
		return nil, mapPgError(err, assetID.String())
	}
	return asset, nil
}

// ListAssets returns the assets for the given IDs in the given order.
// IDs with no matching record are skipped.
func (s *PostgresStore) ListAssets(ctx context.Context, assetIDs []uuid.UUID) ([]*catalog.Asset, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		"SELECT "+assetColumns+" FROM assets WHERE id = ANY($1)",
		assetIDs)
	if err != nil {
		return nil, mapPgError(err, "")
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*catalog.Asset, len(assetIDs))
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, mapPgError(err, "")
		}
		byID[asset.ID] = asset
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "")
	}

	assets := make([]*catalog.Asset, 0, len(byID))
	for _, id := range assetIDs {
		if asset, ok := byID[id]; ok {
			assets = append(assets, asset)
		}
	}
	return assets, nil
}

// FindAsset looks up an asset by folder and filename.
func (s *PostgresStore) FindAsset(ctx context.Context, criteria catalog.AssetCriteria) (*catalog.Asset, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+assetColumns+" FROM assets WHERE folder_id = $1 AND filename = $2",
		criteria.FolderID, criteria.Filename)

	asset, err := scanAsset(row)
	if err != nil {
		return nil, mapPgError(err, criteria.Filename)
	}
	return asset, nil
}

// MoveAsset relocates an asset to targetFolderID, optionally renaming
// it. An empty newFilename keeps the current name. A filename collision
// in the target folder fails with ErrAlreadyExists and leaves the
// asset untouched.
func (s *PostgresStore) MoveAsset(ctx context.Context, assetID uuid.UUID, targetFolderID uuid.UUID, newFilename string) error {
	target, err := s.GetFolder(ctx, targetFolderID)
	if err != nil {
		return err
	}

	var tag pgconn.CommandTag
	if newFilename == "" {
		tag, err = s.pool.Exec(ctx,
			"UPDATE assets SET folder_id = $1, volume_id = $2 WHERE id = $3",
			targetFolderID, target.VolumeID, assetID)
	} else {
		tag, err = s.pool.Exec(ctx,
			"UPDATE assets SET folder_id = $1, volume_id = $2, filename = $3 WHERE id = $4",
			targetFolderID, target.VolumeID, newFilename, assetID)
	}
	if err != nil {
		return mapPgError(err, newFilename)
	}
	if tag.RowsAffected() == 0 {
		return catalogerrors.NewNotFoundError(assetID.String(), "asset")
	}
	return nil
}

func scanAsset(row rowScanner) (*catalog.Asset, error) {
	var asset catalog.Asset
	err := row.Scan(&asset.ID, &asset.VolumeID, &asset.FolderID, &asset.Filename, &asset.Title)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}
