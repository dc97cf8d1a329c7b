package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCanonicalTag tests tag normalisation
func TestCanonicalTag(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercase passthrough", "privacy", "privacy"},
		{"uppercase folded", "GDPR", "gdpr"},
		{"mixed case", "Data-Protection", "data-protection"},
		{"surrounding whitespace", "  privacy \t", "privacy"},
		{"whitespace only", "   ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalTag(tt.raw))
		})
	}
}

// TestCanonicalTag_AliasesConverge tests that aliases normalising to the
// same string resolve to one canonical form.
func TestCanonicalTag_AliasesConverge(t *testing.T) {
	assert.Equal(t, CanonicalTag("Privacy"), CanonicalTag("  PRIVACY"))
}

// TestNormalizeFolderPath tests folder path normalisation
func TestNormalizeFolderPath(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"plain relative", "raw/legal", "raw/legal", nil},
		{"backslashes", "raw\\legal", "raw/legal", nil},
		{"redundant elements", "raw//legal/./x", "raw/legal/x", nil},
		{"trailing slash", "raw/legal/", "raw/legal", nil},
		{"leading dot slash", "./raw/legal", "raw/legal", nil},
		{"parent escape", "../outside", "", ErrUnsafePath},
		{"nested escape", "raw/../../outside", "", ErrUnsafePath},
		{"absolute", "/etc/passwd", "", ErrUnsafePath},
		{"empty", "", "", ErrInvalidInput},
		{"dot only", ".", "", ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeFolderPath(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestVocabEntry_Validate tests import-boundary validation
func TestVocabEntry_Validate(t *testing.T) {
	valid := VocabEntry{
		Canonical: "Privacy",
		Aliases:   []string{"gdpr"},
		Folders:   []FolderRef{{Path: "raw/legal", Weight: 0.8}},
	}
	assert.NoError(t, valid.Validate())

	empty := VocabEntry{Canonical: "  "}
	assert.ErrorIs(t, empty.Validate(), ErrInvalidInput)

	unsafe := VocabEntry{
		Canonical: "privacy",
		Folders:   []FolderRef{{Path: "../escape"}},
	}
	assert.ErrorIs(t, unsafe.Validate(), ErrUnsafePath)
}
