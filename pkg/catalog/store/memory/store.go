// Package memory provides an in-memory catalog store.
//
// All state is held in maps guarded by a single RWMutex, which makes every
// operation atomic: the uniqueness checks and the insert happen under one
// lock. The store is intended for tests and single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

// MemoryStore is an in-memory implementation of catalog.Store.
type MemoryStore struct {
	mu     sync.RWMutex
	closed bool

	folders map[uuid.UUID]*catalog.Folder
	assets  map[uuid.UUID]*catalog.Asset

	// children indexes folder children: parent id -> child name -> child id.
	children map[uuid.UUID]map[string]uuid.UUID

	// roots maps volume id -> root folder id.
	roots map[string]uuid.UUID
}

// Compile-time interface check.
var _ catalog.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory catalog store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		folders:  make(map[uuid.UUID]*catalog.Folder),
		assets:   make(map[uuid.UUID]*catalog.Asset),
		children: make(map[uuid.UUID]map[string]uuid.UUID),
		roots:    make(map[string]uuid.UUID),
	}
}

// HealthCheck verifies the store is usable.
func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return &catalogerrors.StoreError{Code: catalogerrors.ErrClosed, Message: "store is closed"}
	}
	return nil
}

// Close marks the store as closed. Subsequent operations fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// checkOpen returns an error if the store has been closed.
// Must be called with at least a read lock held.
func (s *MemoryStore) checkOpen() error {
	if s.closed {
		return &catalogerrors.StoreError{Code: catalogerrors.ErrClosed, Message: "store is closed"}
	}
	return nil
}

// copyFolder returns a copy so callers cannot mutate internal state.
func copyFolder(f *catalog.Folder) *catalog.Folder {
	cp := *f
	return &cp
}

// copyAsset returns a copy so callers cannot mutate internal state.
func copyAsset(a *catalog.Asset) *catalog.Asset {
	cp := *a
	return &cp
}
