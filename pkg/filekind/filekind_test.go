package filekind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensionsForKinds(t *testing.T) {
	set := ExtensionsForKinds([]string{"image", "pdf"})

	assert.Contains(t, set, "jpg")
	assert.Contains(t, set, "png")
	assert.Contains(t, set, "pdf")
	assert.NotContains(t, set, "mp3")
}

func TestExtensionsForKinds_UnknownKind(t *testing.T) {
	set := ExtensionsForKinds([]string{"hologram"})
	assert.Empty(t, set)
}

func TestExtensionsForKinds_CaseInsensitiveKind(t *testing.T) {
	set := ExtensionsForKinds([]string{"Image"})
	assert.Contains(t, set, "jpg")
}

func TestIsAllowed(t *testing.T) {
	allowed := ExtensionsForKinds([]string{"image"})

	assert.True(t, IsAllowed(allowed, "jpg"))
	assert.True(t, IsAllowed(allowed, ".jpg"))
	assert.True(t, IsAllowed(allowed, "JPG"))
	assert.False(t, IsAllowed(allowed, "pdf"))
	assert.False(t, IsAllowed(allowed, ""))
}

func TestExtensionByMIME(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
		ok       bool
	}{
		{"image/jpeg", "jpg", true},
		{"image/png", "png", true},
		{"application/pdf", "pdf", true},
		{"text/plain; charset=utf-8", "txt", true},
		{"application/x-quarry-unknown", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			ext, ok := ExtensionByMIME(tt.mimeType)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, ext)
			}
		})
	}
}
