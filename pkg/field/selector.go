package field

import (
	"context"
	"fmt"

	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
	"github.com/quarryfs/quarry/pkg/render"
	"github.com/quarryfs/quarry/pkg/staging"
)

// UploadTargetSelector decides which folder a field's uploads land in
// for a given element state.
//
// Subpath templates often reference the element itself (its slug, its
// author), which does not exist for unsaved elements. In that case the
// selector routes uploads to a per-user scratch folder named
// "field_{fieldID}" under the actor's personal folder in the scratch
// volume; the post-save reconciler relocates them once the element has
// identity.
type UploadTargetSelector struct {
	store           catalog.Store
	resolver        *FolderResolver
	stager          *staging.Stager
	scratchVolumeID string
}

// NewUploadTargetSelector creates a selector. scratchVolumeID names the
// volume holding per-user scratch folders.
func NewUploadTargetSelector(store catalog.Store, resolver *FolderResolver, stager *staging.Stager, scratchVolumeID string) *UploadTargetSelector {
	return &UploadTargetSelector{
		store:           store,
		resolver:        resolver,
		stager:          stager,
		scratchVolumeID: scratchVolumeID,
	}
}

// SelectFolder resolves the upload target for cfg and element.
//
// Persisted elements always resolve the configured location. New
// elements resolve it only when the active subpath has no template
// tokens; otherwise they fall back to the scratch folder.
func (s *UploadTargetSelector) SelectFolder(ctx context.Context, cfg FieldConfig, fieldID int64, element Element, actorID string) (*catalog.Folder, error) {
	subpath := cfg.ActiveSubpath()

	if !IsNew(element) || !render.HasTokens(subpath) {
		return s.resolver.Resolve(ctx, cfg.ActiveVolumeID(), subpath, element.RenderContext())
	}

	return s.scratchFolder(ctx, fieldID, actorID)
}

// scratchFolder returns field_{fieldID} under the actor's personal
// folder, creating both levels if absent, and ensures the matching
// temp-storage directory exists.
func (s *UploadTargetSelector) scratchFolder(ctx context.Context, fieldID int64, actorID string) (*catalog.Folder, error) {
	if actorID == "" {
		return nil, fmt.Errorf("no actor available for scratch upload folder")
	}

	root, err := s.scratchRoot(ctx)
	if err != nil {
		return nil, err
	}

	userFolder, err := s.resolver.createSubfolderIfMissing(ctx, root, actorID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("field_%d", fieldID)
	folder, err := s.resolver.createSubfolderIfMissing(ctx, userFolder, name)
	if err != nil {
		return nil, err
	}

	if s.stager != nil {
		if _, err := s.stager.EnsureDir(name); err != nil {
			return nil, err
		}
	}
	return folder, nil
}

// scratchRoot loads the scratch volume root, creating it on first use.
func (s *UploadTargetSelector) scratchRoot(ctx context.Context) (*catalog.Folder, error) {
	root, err := s.store.GetRootFolder(ctx, s.scratchVolumeID)
	if err == nil {
		return root, nil
	}
	if !catalogerrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to load scratch volume root: %w", err)
	}

	root, err = s.store.CreateRootFolder(ctx, s.scratchVolumeID)
	if catalogerrors.IsConflict(err) {
		return s.store.GetRootFolder(ctx, s.scratchVolumeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch volume root: %w", err)
	}
	return root, nil
}
