// Package field implements upload-target resolution and file ingestion
// for asset fields. A field decides which catalog folder uploads land
// in, stages and persists incoming files before its owning element is
// saved, and relocates assets to their final folder afterwards.
package field

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quarryfs/quarry/pkg/catalog"
	"github.com/quarryfs/quarry/pkg/metrics"
	"github.com/quarryfs/quarry/pkg/render"
	"github.com/quarryfs/quarry/pkg/staging"
)

// FieldConfig controls where a field's uploads go and which files it
// accepts. Immutable during a single resolution operation.
type FieldConfig struct {
	// UseSingleFolder forces every asset into one resolved folder.
	// When false, the default location only receives direct uploads
	// and assets may live anywhere.
	UseSingleFolder bool `mapstructure:"use_single_folder" yaml:"use_single_folder"`

	// DefaultVolumeID and DefaultSubpath locate the upload target in
	// multi-folder mode.
	DefaultVolumeID string `mapstructure:"default_volume"  yaml:"default_volume"`
	DefaultSubpath  string `mapstructure:"default_subpath" yaml:"default_subpath,omitempty"`

	// SingleVolumeID and SingleSubpath locate the upload target in
	// single-folder mode.
	SingleVolumeID string `mapstructure:"single_volume"  yaml:"single_volume,omitempty"`
	SingleSubpath  string `mapstructure:"single_subpath" yaml:"single_subpath,omitempty"`

	// RestrictFiles enables the AllowedKinds extension allow-list.
	RestrictFiles bool     `mapstructure:"restrict_files" yaml:"restrict_files"`
	AllowedKinds  []string `mapstructure:"allowed_kinds"  yaml:"allowed_kinds,omitempty"`

	// ConvertToASCII folds resolved subpaths to ASCII.
	ConvertToASCII bool `mapstructure:"convert_to_ascii" yaml:"convert_to_ascii"`
}

// ActiveVolumeID returns the volume the current mode uploads into.
func (c FieldConfig) ActiveVolumeID() string {
	if c.UseSingleFolder {
		return c.SingleVolumeID
	}
	return c.DefaultVolumeID
}

// ActiveSubpath returns the subpath template the current mode uses.
func (c FieldConfig) ActiveSubpath() string {
	if c.UseSingleFolder {
		return c.SingleSubpath
	}
	return c.DefaultSubpath
}

// Field wires the resolution and ingestion pipeline for one configured
// asset field.
type Field struct {
	// ID identifies the field; it names the per-user scratch folder
	// for unsaved elements.
	ID int64

	// Handle is the field's name in posted form data.
	Handle string

	Config FieldConfig

	store      catalog.Store
	resolver   *FolderResolver
	selector   *UploadTargetSelector
	intake     *FileIntake
	ingestor   *AssetIngestor
	reconciler *PostSaveReconciler
}

// NewField creates a field over the given collaborators. metrics may be
// nil to disable collection.
func NewField(
	id int64,
	handle string,
	cfg FieldConfig,
	store catalog.Store,
	renderer render.Renderer,
	stager *staging.Stager,
	scratchVolumeID string,
	m metrics.FieldMetrics,
) *Field {
	resolver := NewFolderResolver(store, renderer, cfg.ConvertToASCII, m)
	return &Field{
		ID:         id,
		Handle:     handle,
		Config:     cfg,
		store:      store,
		resolver:   resolver,
		selector:   NewUploadTargetSelector(store, resolver, stager, scratchVolumeID),
		intake:     NewFileIntake(m),
		ingestor:   NewAssetIngestor(store, stager, m),
		reconciler: NewPostSaveReconciler(store, resolver, scratchVolumeID, m),
	}
}

// BeforeSave collects the posted files for this field, resolves the
// upload target, and persists each accepted file as an asset. The
// resulting asset ids are unioned with the element's current selection
// and written back so downstream save logic observes the final set.
//
// Rejected filenames are returned for Validate to surface; any
// rejection suppresses ingestion entirely for this save.
func (f *Field) BeforeSave(ctx context.Context, element Element, actorID string, posted PostedValue) ([]string, error) {
	files, rejected := f.intake.Collect(posted, f.allowedExtensions())
	if len(rejected) > 0 {
		return rejected, nil
	}
	if len(files) == 0 {
		return nil, nil
	}

	folder, err := f.selector.SelectFolder(ctx, f.Config, f.ID, element, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload folder for field %q: %w", f.Handle, err)
	}

	newIDs, err := f.ingestor.Ingest(ctx, files, folder)

	// Ids persisted before a failure stay selected; the error still
	// propagates after the write-back.
	if len(newIDs) > 0 {
		element.SetAssetIDs(unionIDs(element.AssetIDs(), newIDs))
	}
	return nil, err
}

// AfterSave relocates assets whose resolved folder no longer matches
// their current folder. It must run after the element is durably saved
// so subpath templates referencing the element can render.
func (f *Field) AfterSave(ctx context.Context, element Element) error {
	return f.reconciler.Reconcile(ctx, f.Config, element)
}

// Validate returns the validation messages for the element's current
// selection plus any filenames rejected during BeforeSave. Existing
// assets are checked against the allow-list too.
func (f *Field) Validate(ctx context.Context, element Element, rejected []string) ([]string, error) {
	var messages []string
	for _, filename := range rejected {
		messages = append(messages, fmt.Sprintf("%q is not an allowed file type", filename))
	}

	allowed := f.allowedExtensions()
	if allowed == nil {
		return messages, nil
	}

	assets, err := f.store.ListAssets(ctx, element.AssetIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load selected assets: %w", err)
	}
	for _, asset := range assets {
		if !extensionAllowed(allowed, asset.Extension()) {
			messages = append(messages, fmt.Sprintf("%q is not an allowed file type", asset.Filename))
		}
	}
	return messages, nil
}

// ResolveUploadFolder returns the folder uploads for this field and
// element would currently land in. Used by UI collaborators to preview
// the target.
func (f *Field) ResolveUploadFolder(ctx context.Context, element Element, actorID string) (*catalog.Folder, error) {
	return f.selector.SelectFolder(ctx, f.Config, f.ID, element, actorID)
}

// allowedExtensions returns the permitted extension set, or nil when
// the field accepts everything.
func (f *Field) allowedExtensions() map[string]struct{} {
	if !f.Config.RestrictFiles || len(f.Config.AllowedKinds) == 0 {
		return nil
	}
	return allowedSetForKinds(f.Config.AllowedKinds)
}

// unionIDs appends ids to existing, dropping duplicates and preserving
// first-seen order.
func unionIDs(existing, added []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(existing)+len(added))
	result := make([]uuid.UUID, 0, len(existing)+len(added))
	for _, id := range existing {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	for _, id := range added {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result
}
