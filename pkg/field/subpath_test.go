package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSubpath(t *testing.T) {
	tests := []struct {
		name       string
		rendered   string
		want       string
		wantReject bool
	}{
		{"simple", "uploads", "uploads", false},
		{"nested", "uploads/photos", "uploads/photos", false},
		{"leading slash trimmed", "/uploads", "uploads", false},
		{"trailing slash trimmed", "uploads/", "uploads", false},
		{"both trimmed", "/uploads/photos/", "uploads/photos", false},
		{"empty", "", "", true},
		{"single slash", "/", "", true},
		{"slashes only", "///", "", true},
		{"adjacent separators", "uploads//photos", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := normalizeSubpath(tt.rendered, false)
			if tt.wantReject {
				assert.NotEmpty(t, reason)
				return
			}
			assert.Empty(t, reason)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSubpath_ASCIIFolding(t *testing.T) {
	got, reason := normalizeSubpath("café/über", true)
	assert.Empty(t, reason)
	assert.Equal(t, "cafe/uber", got)

	// Folding disabled keeps the original runes.
	got, reason = normalizeSubpath("café", false)
	assert.Empty(t, reason)
	assert.Equal(t, "café", got)
}

func TestNormalizeSubpath_FoldingLeavesNothing(t *testing.T) {
	// A segment of only non-ASCII runes folds to emptiness.
	_, reason := normalizeSubpath("写真", true)
	assert.NotEmpty(t, reason)
}
