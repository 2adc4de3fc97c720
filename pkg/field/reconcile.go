package field

import (
	"context"
	"errors"
	"fmt"

	"github.com/quarryfs/quarry/internal/logger"
	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
	"github.com/quarryfs/quarry/pkg/metrics"
)

// PostSaveReconciler relocates assets to their final folder after the
// owning element is saved and its subpath templates can render.
//
// Moves are issued per asset with no cross-asset transaction: a failure
// on one asset leaves earlier moves applied. Resolution conflicts and
// creates are idempotent, so re-running reconciliation after a partial
// failure is safe.
type PostSaveReconciler struct {
	store           catalog.Store
	resolver        *FolderResolver
	scratchVolumeID string
	metrics         metrics.FieldMetrics
}

// NewPostSaveReconciler creates a reconciler. metrics may be nil.
func NewPostSaveReconciler(store catalog.Store, resolver *FolderResolver, scratchVolumeID string, m metrics.FieldMetrics) *PostSaveReconciler {
	return &PostSaveReconciler{
		store:           store,
		resolver:        resolver,
		scratchVolumeID: scratchVolumeID,
		metrics:         m,
	}
}

// Reconcile moves the element's assets that are not yet in their
// resolved folder.
//
// Single-folder mode moves every asset whose folder differs from the
// resolved target. Multi-folder mode only collects assets still parked
// in the scratch volume, and resolves the default target only when
// there are candidates.
func (pr *PostSaveReconciler) Reconcile(ctx context.Context, cfg FieldConfig, element Element) error {
	assets, err := pr.store.ListAssets(ctx, element.AssetIDs())
	if err != nil {
		return fmt.Errorf("failed to load field assets: %w", err)
	}
	if len(assets) == 0 {
		return nil
	}

	if cfg.UseSingleFolder {
		target, err := pr.resolver.Resolve(ctx, cfg.SingleVolumeID, cfg.SingleSubpath, element.RenderContext())
		if err != nil {
			return err
		}
		var candidates []*catalog.Asset
		for _, asset := range assets {
			if asset.FolderID != target.ID {
				candidates = append(candidates, asset)
			}
		}
		return pr.moveAll(ctx, candidates, target)
	}

	var candidates []*catalog.Asset
	for _, asset := range assets {
		if asset.VolumeID == "" || asset.VolumeID == pr.scratchVolumeID {
			candidates = append(candidates, asset)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	target, err := pr.resolver.Resolve(ctx, cfg.DefaultVolumeID, cfg.DefaultSubpath, element.RenderContext())
	if err != nil {
		return err
	}
	return pr.moveAll(ctx, candidates, target)
}

// moveAll issues one move per asset, renaming on filename collision.
// Failures are logged per asset and aggregated; completed moves are
// never rolled back.
func (pr *PostSaveReconciler) moveAll(ctx context.Context, assets []*catalog.Asset, target *catalog.Folder) error {
	var errs []error
	for _, asset := range assets {
		if err := pr.moveOne(ctx, asset, target); err != nil {
			logger.Error("failed to move asset to resolved folder",
				"asset", asset.ID,
				"filename", asset.Filename,
				"target", target.Path,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("move %q: %w", asset.Filename, err))
		}
	}
	return errors.Join(errs...)
}

func (pr *PostSaveReconciler) moveOne(ctx context.Context, asset *catalog.Asset, target *catalog.Folder) error {
	newFilename := ""

	_, err := pr.store.FindAsset(ctx, catalog.AssetCriteria{
		FolderID: target.ID,
		Filename: asset.Filename,
	})
	switch {
	case err == nil:
		newFilename, err = catalog.NameReplacement(ctx, pr.store, target.ID, asset.Filename)
		if err != nil {
			return err
		}
	case !catalogerrors.IsNotFound(err):
		return err
	}

	if err := pr.store.MoveAsset(ctx, asset.ID, target.ID, newFilename); err != nil {
		return err
	}
	if pr.metrics != nil {
		pr.metrics.RecordAssetMoved(newFilename != "")
	}
	return nil
}
