// Package catalog defines the folder/asset catalog: the tree of persisted
// folders inside each volume and the asset records that live in them.
//
// The catalog is the single source of truth for folder and asset existence.
// Callers never cache folders or assets across operations; every resolution
// re-queries the store so two concurrent writers only have to cooperate at
// the store's uniqueness boundary.
package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// Folder is a node in a per-volume folder tree.
//
// Path is slash-terminated and relative to the volume root; the root folder
// has Path == "". For every non-root folder the invariant
// Path == parent.Path + Name + "/" holds, and (ParentID, Name) is unique
// within a volume.
type Folder struct {
	// ID is uuid.Nil until the folder has been persisted.
	ID uuid.UUID `json:"id"`

	// ParentID is uuid.Nil for a volume root.
	ParentID uuid.UUID `json:"parent_id"`

	// VolumeID names the volume this folder belongs to.
	VolumeID string `json:"volume_id"`

	Name string `json:"name"`
	Path string `json:"path"`
}

// IsRoot reports whether the folder is a volume root.
func (f *Folder) IsRoot() bool {
	return f.ParentID == uuid.Nil
}

// ChildPath returns the canonical path of a child with the given name.
func (f *Folder) ChildPath(name string) string {
	return f.Path + name + "/"
}

// Asset is a tracked file record inside a folder.
type Asset struct {
	// ID is uuid.Nil until the asset has been persisted.
	ID uuid.UUID `json:"id"`

	VolumeID string    `json:"volume_id"`
	FolderID uuid.UUID `json:"folder_id"`

	Filename string `json:"filename"`
	Title    string `json:"title"`

	// NewFilePath points at the staged payload while the asset is pending
	// persistence. It is never stored.
	NewFilePath string `json:"-"`
}

// Extension returns the lowercased filename extension without the dot,
// or "" when the filename has none.
func (a *Asset) Extension() string {
	return ExtensionOf(a.Filename)
}

// ExtensionOf returns the lowercased extension of filename without the dot.
func ExtensionOf(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// FolderCriteria selects a single folder. Zero-valued fields are ignored;
// ParentID is a pointer so "children of the root" can be expressed.
type FolderCriteria struct {
	VolumeID string
	ParentID *uuid.UUID
	Name     string
	Path     string
}

// AssetCriteria selects a single asset by filename within a folder.
type AssetCriteria struct {
	FolderID uuid.UUID
	Filename string
}
