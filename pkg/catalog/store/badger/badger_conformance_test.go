//go:build integration

package badger_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/quarryfs/quarry/pkg/catalog"
	"github.com/quarryfs/quarry/pkg/catalog/store/badger"
	"github.com/quarryfs/quarry/pkg/catalog/storetest"
)

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) catalog.Store {
		dbPath := filepath.Join(t.TempDir(), "catalog.db")
		store, err := badger.NewBadgerStoreWithDefaults(context.Background(), dbPath)
		if err != nil {
			t.Fatalf("NewBadgerStoreWithDefaults() failed: %v", err)
		}
		t.Cleanup(func() {
			store.Close()
		})
		return store
	})
}
