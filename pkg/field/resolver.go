package field

import (
	"context"
	"fmt"
	"strings"

	"github.com/quarryfs/quarry/internal/logger"
	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
	"github.com/quarryfs/quarry/pkg/metrics"
	"github.com/quarryfs/quarry/pkg/render"
)

// FolderResolver maps a (volume, subpath template) pair to a catalog
// folder, creating missing path segments from the root down. Folder
// existence is re-queried fresh per call; nothing is cached across
// operations.
type FolderResolver struct {
	store          catalog.Store
	renderer       render.Renderer
	convertToASCII bool
	metrics        metrics.FieldMetrics
}

// NewFolderResolver creates a resolver. metrics may be nil.
func NewFolderResolver(store catalog.Store, renderer render.Renderer, convertToASCII bool, m metrics.FieldMetrics) *FolderResolver {
	return &FolderResolver{
		store:          store,
		renderer:       renderer,
		convertToASCII: convertToASCII,
		metrics:        m,
	}
}

// Resolve returns the folder at subpathTemplate within volumeID,
// rendering the template against renderContext and creating any missing
// segments. An empty template resolves to the volume root.
//
// Returns VolumeNotFoundError when the volume has no root folder and
// InvalidSubpathError when the template fails to render or renders to
// an unusable path. Neither creates any folders.
func (r *FolderResolver) Resolve(ctx context.Context, volumeID, subpathTemplate string, renderContext map[string]any) (*catalog.Folder, error) {
	root, err := r.store.GetRootFolder(ctx, volumeID)
	if err != nil {
		if catalogerrors.IsNotFound(err) {
			return nil, &VolumeNotFoundError{VolumeID: volumeID}
		}
		return nil, fmt.Errorf("failed to load root folder for volume %q: %w", volumeID, err)
	}

	template := strings.Trim(subpathTemplate, "/")
	if template == "" {
		return root, nil
	}

	rendered, err := r.renderer.Render(template, renderContext)
	if err != nil {
		return nil, &InvalidSubpathError{Template: subpathTemplate, Err: err}
	}
	if rendered != strings.Trim(rendered, "/") {
		return nil, &InvalidSubpathError{Template: subpathTemplate, Reason: "rendered with a leading or trailing slash"}
	}

	subpath, reason := normalizeSubpath(rendered, r.convertToASCII)
	if reason != "" {
		return nil, &InvalidSubpathError{Template: subpathTemplate, Reason: reason}
	}

	// Fast path: the full path already exists.
	folder, err := r.store.FindFolder(ctx, catalog.FolderCriteria{
		VolumeID: volumeID,
		Path:     subpath + "/",
	})
	if err == nil {
		return folder, nil
	}
	if !catalogerrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up folder %q: %w", subpath, err)
	}

	// Walk from the root, creating missing segments one at a time.
	current := root
	for _, segment := range strings.Split(subpath, "/") {
		next, err := r.createSubfolderIfMissing(ctx, current, segment)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// createSubfolderIfMissing returns the named child of parent, creating
// it when absent.
func (r *FolderResolver) createSubfolderIfMissing(ctx context.Context, parent *catalog.Folder, name string) (*catalog.Folder, error) {
	folder, err := r.store.FindFolder(ctx, catalog.FolderCriteria{
		VolumeID: parent.VolumeID,
		ParentID: &parent.ID,
		Name:     name,
	})
	if err == nil {
		return folder, nil
	}
	if !catalogerrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up folder %q: %w", name, err)
	}
	return r.createSubfolder(ctx, parent, name)
}

// createSubfolder persists a child of parent. A conflict means another
// writer created the same (parent, name) first; the existing folder is
// adopted as authoritative. Any other failure is fatal for the whole
// resolution.
func (r *FolderResolver) createSubfolder(ctx context.Context, parent *catalog.Folder, name string) (*catalog.Folder, error) {
	folder := &catalog.Folder{
		ParentID: parent.ID,
		VolumeID: parent.VolumeID,
		Name:     name,
		Path:     parent.ChildPath(name),
	}

	err := r.store.CreateFolder(ctx, folder)
	if err == nil {
		if r.metrics != nil {
			r.metrics.RecordFolderCreated(parent.VolumeID)
		}
		return folder, nil
	}

	if !catalogerrors.IsConflict(err) {
		return nil, fmt.Errorf("failed to create folder %q under %q: %w", name, parent.Path, err)
	}

	if r.metrics != nil {
		r.metrics.RecordFolderConflict(parent.VolumeID)
	}
	logger.Debug("folder create lost race, adopting existing folder",
		"volume", parent.VolumeID,
		"parent", parent.Path,
		"name", name,
	)

	existing, err := r.store.FindFolder(ctx, catalog.FolderCriteria{
		VolumeID: parent.VolumeID,
		ParentID: &parent.ID,
		Name:     name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load folder %q after create conflict: %w", name, err)
	}
	return existing, nil
}
