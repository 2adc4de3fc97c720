package field

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/quarryfs/quarry/internal/logger"
	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
	"github.com/quarryfs/quarry/pkg/metrics"
	"github.com/quarryfs/quarry/pkg/staging"
)

// AssetIngestor turns accepted incoming files into persisted asset
// records. Each file is staged to scratch storage, persisted through
// the catalog, and the scratch copy removed whether or not persistence
// succeeded.
type AssetIngestor struct {
	store   catalog.Store
	stager  *staging.Stager
	metrics metrics.FieldMetrics
}

// NewAssetIngestor creates an ingestor. metrics may be nil.
func NewAssetIngestor(store catalog.Store, stager *staging.Stager, m metrics.FieldMetrics) *AssetIngestor {
	return &AssetIngestor{store: store, stager: stager, metrics: m}
}

// Ingest persists each file into folder and returns the new asset ids.
//
// Files are processed in order; a failure aborts the remainder but
// already persisted assets stay (no cross-file transaction), so the
// returned ids are valid even when err is non-nil.
func (ai *AssetIngestor) Ingest(ctx context.Context, files []IncomingFile, folder *catalog.Folder) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(files))
	for _, file := range files {
		id, err := ai.ingestOne(ctx, file, folder)
		if err != nil {
			return ids, fmt.Errorf("failed to ingest %q: %w", file.Filename, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (ai *AssetIngestor) ingestOne(ctx context.Context, file IncomingFile, folder *catalog.Folder) (uuid.UUID, error) {
	staged, err := ai.stage(file)
	if err != nil {
		return uuid.Nil, err
	}
	defer ai.stager.Release(staged)

	asset := &catalog.Asset{
		FolderID:    folder.ID,
		VolumeID:    folder.VolumeID,
		Filename:    file.Filename,
		Title:       catalog.TitleFromFilename(file.Filename),
		NewFilePath: staged.Path,
	}

	err = ai.store.SaveAsset(ctx, asset)
	if catalogerrors.IsConflict(err) {
		// The folder already holds this filename; persist under a
		// disambiguated name instead.
		renamed, nameErr := catalog.NameReplacement(ctx, ai.store, folder.ID, file.Filename)
		if nameErr != nil {
			return uuid.Nil, nameErr
		}
		logger.Debug("filename taken in target folder, renaming",
			"folder", folder.Path,
			"filename", file.Filename,
			"renamed", renamed,
		)
		asset.Filename = renamed
		asset.Title = catalog.TitleFromFilename(renamed)
		asset.NewFilePath = staged.Path
		err = ai.store.SaveAsset(ctx, asset)
	}
	if err != nil {
		return uuid.Nil, err
	}

	if ai.metrics != nil {
		ai.metrics.RecordAssetIngested(string(file.Source))
	}
	return asset.ID, nil
}

// stage writes the file's payload to scratch storage: decoded bytes for
// inline files, a move of the received file for uploads.
func (ai *AssetIngestor) stage(file IncomingFile) (*staging.StagedFile, error) {
	if file.Source == SourceInline {
		return ai.stager.StageBytes(file.Data, file.Filename)
	}

	f, err := os.Open(file.TempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() { _ = f.Close() }()

	staged, err := ai.stager.StageReader(f, file.Filename)
	if err != nil {
		return nil, err
	}

	// The upload channel's copy is consumed by staging.
	if err := os.Remove(file.TempPath); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove uploaded source file", "path", file.TempPath, "error", err)
	}
	return staged, nil
}
