package domain

import (
	"path"
	"strings"
)

// DefaultWeight is the folder-term link weight when none is given.
const DefaultWeight = 1.0

// Term is a canonical tag in the workspace taxonomy.
// No two terms normalise to the same canonical string; aliases merge
// into an existing term rather than creating a duplicate.
type Term struct {
	// ID is the store-assigned identifier.
	ID int64

	// Canonical is the normalised form: lowercase, trimmed, unique.
	Canonical string
}

// Folder is a normalised relative path within the workspace.
type Folder struct {
	// ID is the store-assigned identifier.
	ID int64

	// Path is the normalised relative path (forward slashes, no "..").
	Path string
}

// FolderTerm is a weighted link between a folder and a term.
// The link is unique per (folder, term) pair; re-ingestion upserts
// the weight instead of duplicating the row.
type FolderTerm struct {
	FolderID int64
	TermID   int64
	Weight   float64
}

// FolderRef associates a folder path with an optional weight
// inside a vocabulary source entry.
type FolderRef struct {
	Path   string
	Weight float64
}

// VocabEntry is one parsed entry of the human-authored vocabulary
// source: a canonical tag, zero or more aliases, zero or more folder
// associations. Aliases merge into the canonical term in memory during
// import; they are never persisted as separate rows.
type VocabEntry struct {
	Canonical string
	Aliases   []string
	Folders   []FolderRef
}

// TermMeta is the runtime enrichment metadata loaded for a canonical term.
type TermMeta struct {
	// Canonical is the normalised term.
	Canonical string

	// Folders maps normalised folder paths to link weights.
	Folders map[string]float64
}

// Vocabulary is the canonical-term to metadata mapping used for
// runtime enrichment. An empty map is the legitimate "no enrichment
// configured" state.
type Vocabulary map[string]TermMeta

// CanonicalTag normalises a raw tag to its canonical form:
// lowercase and trimmed of surrounding whitespace.
func CanonicalTag(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeFolderPath normalises a workspace-relative folder path:
// forward slashes, no leading "./", cleaned of redundant elements.
// Returns ErrUnsafePath if the path escapes the workspace root.
func NormalizeFolderPath(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	if p == "." {
		return "", ErrInvalidInput
	}
	if path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") {
		return "", ErrUnsafePath
	}
	return p, nil
}

// Validate checks a vocabulary entry at the import boundary.
func (e VocabEntry) Validate() error {
	if CanonicalTag(e.Canonical) == "" {
		return ErrInvalidInput
	}
	for _, f := range e.Folders {
		if _, err := NormalizeFolderPath(f.Path); err != nil {
			return err
		}
	}
	return nil
}
