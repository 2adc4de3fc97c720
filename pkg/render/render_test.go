package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasTokens(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     bool
	}{
		{"plain path", "uploads/photos", false},
		{"empty", "", false},
		{"simple token", "{slug}", true},
		{"token in path", "uploads/{slug}/gallery", true},
		{"nested token", "{owner.id}/drafts", true},
		{"braces without identifier", "{}", false},
		{"unclosed brace", "uploads/{slug", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasTokens(tt.template))
		})
	}
}

func TestObjectRenderer_Render(t *testing.T) {
	renderer := NewObjectRenderer()

	context := map[string]any{
		"slug": "summer-trip",
		"id":   42,
		"owner": map[string]any{
			"id": "u-7",
		},
	}

	t.Run("substitutes tokens", func(t *testing.T) {
		out, err := renderer.Render("uploads/{slug}/{id}", context)
		require.NoError(t, err)
		assert.Equal(t, "uploads/summer-trip/42", out)
	})

	t.Run("nested path", func(t *testing.T) {
		out, err := renderer.Render("{owner.id}/drafts", context)
		require.NoError(t, err)
		assert.Equal(t, "u-7/drafts", out)
	})

	t.Run("token-free template passes through", func(t *testing.T) {
		out, err := renderer.Render("plain/path", context)
		require.NoError(t, err)
		assert.Equal(t, "plain/path", out)
	})

	t.Run("unresolved token fails with original template", func(t *testing.T) {
		_, err := renderer.Render("uploads/{missing}", context)
		require.Error(t, err)

		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, "uploads/{missing}", renderErr.Template)
		assert.Equal(t, "missing", renderErr.Token)
	})

	t.Run("nil intermediate fails", func(t *testing.T) {
		_, err := renderer.Render("{owner.name}", context)
		require.Error(t, err)
	})

	t.Run("non-map intermediate fails", func(t *testing.T) {
		_, err := renderer.Render("{slug.inner}", context)
		require.Error(t, err)
	})
}
