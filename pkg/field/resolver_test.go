package field

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarryfs/quarry/pkg/catalog"
)

func TestResolve_EmptySubpathReturnsRoot(t *testing.T) {
	store := newTestStore(t)
	resolver := newTestResolver(t, store)

	folder, err := resolver.Resolve(context.Background(), testVolume, "", nil)
	require.NoError(t, err)
	assert.True(t, folder.IsRoot())
	assert.Equal(t, "", folder.Path)

	// Slash-only templates behave like empty ones.
	folder, err = resolver.Resolve(context.Background(), testVolume, "/", nil)
	require.NoError(t, err)
	assert.True(t, folder.IsRoot())
}

func TestResolve_MissingVolume(t *testing.T) {
	store := newTestStore(t)
	resolver := newTestResolver(t, store)

	_, err := resolver.Resolve(context.Background(), "nope", "uploads", nil)
	require.Error(t, err)
	assert.True(t, IsVolumeNotFound(err))
}

func TestResolve_CreatesMissingSegments(t *testing.T) {
	store := newTestStore(t)
	resolver := newTestResolver(t, store)

	folder, err := resolver.Resolve(context.Background(), testVolume, "a/b/c", nil)
	require.NoError(t, err)
	assert.Equal(t, "c", folder.Name)
	assert.Equal(t, "a/b/c/", folder.Path)

	// Intermediate segments were materialized.
	mid, err := store.FindFolder(context.Background(), catalog.FolderCriteria{
		VolumeID: testVolume,
		Path:     "a/b/",
	})
	require.NoError(t, err)
	assert.Equal(t, "b", mid.Name)
}

func TestResolve_Idempotent(t *testing.T) {
	store := newTestStore(t)
	resolver := newTestResolver(t, store)

	first, err := resolver.Resolve(context.Background(), testVolume, "uploads/photos", nil)
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), testVolume, "uploads/photos", nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestResolve_RendersTemplate(t *testing.T) {
	store := newTestStore(t)
	resolver := newTestResolver(t, store)

	ctx := map[string]any{"slug": "summer-trip"}
	folder, err := resolver.Resolve(context.Background(), testVolume, "galleries/{slug}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "galleries/summer-trip/", folder.Path)
}

func TestResolve_InvalidSubpath(t *testing.T) {
	store := newTestStore(t)
	resolver := newTestResolver(t, store)

	tests := []struct {
		name     string
		template string
		context  map[string]any
	}{
		{"unresolved token", "galleries/{missing}", map[string]any{}},
		{"renders to empty", "{slug}", map[string]any{"slug": ""}},
		{"renders with slash", "{slug}", map[string]any{"slug": "/leading"}},
		{"adjacent separators", "a//b", nil},
		{"token renders adjacent separators", "a/{slug}/b", map[string]any{"slug": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(context.Background(), testVolume, tt.template, tt.context)
			require.Error(t, err)

			var subpathErr *InvalidSubpathError
			require.ErrorAs(t, err, &subpathErr)
			assert.Equal(t, tt.template, subpathErr.Template)
		})
	}

	// Failed resolutions create no folders.
	_, err := store.FindFolder(context.Background(), catalog.FolderCriteria{
		VolumeID: testVolume,
		Path:     "a/",
	})
	require.Error(t, err)
}

func TestResolve_ConcurrentSamePath(t *testing.T) {
	store := newTestStore(t)

	const goroutines = 8
	ids := make([]uuid.UUID, goroutines)
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resolver := newTestResolver(t, store)
			folder, err := resolver.Resolve(context.Background(), testVolume, "shared/deep/path", nil)
			if err != nil {
				t.Errorf("resolve failed: %v", err)
				return
			}
			ids[i] = folder.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Equal(t, ids[0], ids[i], "all resolvers must agree on the folder id")
	}
}
