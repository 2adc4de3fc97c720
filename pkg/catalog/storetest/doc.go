// Package storetest provides a conformance test suite for catalog store
// implementations.
//
// All catalog backends (memory, badger, postgres) should pass these tests.
// The suite verifies that every store satisfies the catalog.Store behavioral
// contract — in particular the conflict semantics of CreateFolder that the
// folder resolver's race recovery depends on.
//
// Usage:
//
//	func TestConformance(t *testing.T) {
//	    storetest.RunConformanceSuite(t, func(t *testing.T) catalog.Store {
//	        return memory.NewMemoryStore()
//	    })
//	}
//
// The factory function receives *testing.T so it can call t.TempDir() for
// stores that need filesystem paths (e.g., BadgerDB) and t.Cleanup for
// teardown.
package storetest
