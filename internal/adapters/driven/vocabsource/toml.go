// Package vocabsource reads human-authored vocabulary source files.
// The source format is TOML: a list of [[term]] tables, each with a
// canonical tag, optional aliases and optional weighted folder links.
package vocabsource

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

// sourceFile is the on-disk TOML shape.
type sourceFile struct {
	Terms []sourceEntry `toml:"term"`
}

type sourceEntry struct {
	Canonical string         `toml:"canonical"`
	Aliases   []string       `toml:"aliases"`
	Folders   []sourceFolder `toml:"folders"`
}

type sourceFolder struct {
	Path   string  `toml:"path"`
	Weight float64 `toml:"weight"`
}

// Parse decodes a vocabulary source document. Syntactically invalid
// TOML fails with domain.ErrMalformedSource; per-entry semantic
// validation is left to the import service.
func Parse(data []byte) ([]domain.VocabEntry, error) {
	var src sourceFile
	if err := toml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("parsing vocabulary source: %w: %v", domain.ErrMalformedSource, err)
	}

	entries := make([]domain.VocabEntry, 0, len(src.Terms))
	for _, t := range src.Terms {
		entry := domain.VocabEntry{
			Canonical: t.Canonical,
			Aliases:   t.Aliases,
		}
		for _, f := range t.Folders {
			entry.Folders = append(entry.Folders, domain.FolderRef{
				Path:   f.Path,
				Weight: f.Weight,
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReadFile loads and parses a vocabulary source file from disk.
func ReadFile(path string) ([]domain.VocabEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary source: %w", err)
	}
	return Parse(data)
}
