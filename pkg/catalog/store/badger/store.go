// Package badger provides a BadgerDB-backed catalog store.
//
// BadgerDB transactions give the store its uniqueness guarantee: every
// create checks the index key inside the same transaction that writes it,
// and concurrent transactions touching the same index key are serialized by
// Badger's conflict detection. A commit-time conflict is reported with the
// same ErrAlreadyExists code as a read-time duplicate, so callers recover
// from both identically.
package badger

import (
	"context"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/quarryfs/quarry/internal/logger"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

// BadgerStoreConfig holds BadgerDB-specific configuration.
type BadgerStoreConfig struct {
	// Path is the directory for the BadgerDB files.
	Path string `mapstructure:"path" yaml:"path"`

	// InMemory runs BadgerDB without touching disk. Useful for tests.
	InMemory bool `mapstructure:"in_memory" yaml:"in_memory"`

	// SyncWrites forces an fsync on every commit.
	SyncWrites bool `mapstructure:"sync_writes" yaml:"sync_writes"`
}

// BadgerStore is a BadgerDB implementation of catalog.Store.
type BadgerStore struct {
	db *badgerdb.DB
}

// NewBadgerStore opens (or creates) a BadgerDB catalog store.
func NewBadgerStore(ctx context.Context, cfg BadgerStoreConfig) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !cfg.InMemory && cfg.Path == "" {
		return nil, catalogerrors.NewInvalidArgumentError("badger store requires a path")
	}

	opts := badgerdb.DefaultOptions(cfg.Path)
	opts.InMemory = cfg.InMemory
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = newBadgerLogger()

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger catalog at %q: %w", cfg.Path, err)
	}

	logger.Debug("badger catalog store opened", "path", cfg.Path, "in_memory", cfg.InMemory)

	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreWithDefaults opens a BadgerDB catalog store at path with
// default options.
func NewBadgerStoreWithDefaults(ctx context.Context, path string) (*BadgerStore, error) {
	return NewBadgerStore(ctx, BadgerStoreConfig{Path: path})
}

// HealthCheck verifies the database is open.
func (s *BadgerStore) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.db.IsClosed() {
		return &catalogerrors.StoreError{Code: catalogerrors.ErrClosed, Message: "store is closed"}
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// update runs fn in a read-write transaction, translating Badger's
// commit-time serialization conflicts into the catalog conflict code.
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badgerdb.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(fn)
	if errors.Is(err, badgerdb.ErrConflict) {
		return catalogerrors.NewConflictError("")
	}
	return err
}

// view runs fn in a read-only transaction.
func (s *BadgerStore) view(ctx context.Context, fn func(txn *badgerdb.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

// badgerLogger routes BadgerDB's internal logging through our logger at
// debug level so it never drowns out application logs.
type badgerLogger struct{}

func newBadgerLogger() badgerLogger { return badgerLogger{} }

func (badgerLogger) Errorf(format string, args ...any)   { logger.Errorf("badger: "+format, args...) }
func (badgerLogger) Warningf(format string, args ...any) { logger.Warnf("badger: "+format, args...) }
func (badgerLogger) Infof(format string, args ...any)    { logger.Debugf("badger: "+format, args...) }
func (badgerLogger) Debugf(format string, args ...any)   { logger.Debugf("badger: "+format, args...) }
