package field

import "github.com/google/uuid"

// Element is the capability the field needs from the record that owns
// it: a stable identity once saved, a context for rendering subpath
// templates, and access to the field's asset selection.
type Element interface {
	// ID returns the element's identity, or "" while unsaved.
	ID() string

	// RenderContext returns the values subpath templates resolve
	// against, e.g. {"slug": ..., "owner": {...}}.
	RenderContext() map[string]any

	// AssetIDs returns the assets currently selected in this field.
	AssetIDs() []uuid.UUID

	// SetAssetIDs replaces the field's selection.
	SetAssetIDs(ids []uuid.UUID)
}

// IsNew reports whether the element has not been persisted yet.
func IsNew(element Element) bool {
	return element.ID() == ""
}
