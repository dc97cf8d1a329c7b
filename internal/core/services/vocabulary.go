package services

import (
	"context"
	"fmt"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driving"
	"github.com/docbase-labs/docbase-cli/internal/logger"
)

// Ensure VocabularyService implements the interface.
var _ driving.VocabularyService = (*VocabularyService)(nil)

// VocabularyService is the single source of truth for the tag
// taxonomy at runtime. The human-authored source format is import-only.
type VocabularyService struct {
	store driven.VocabularyStore
}

// NewVocabularyService creates a new vocabulary service.
func NewVocabularyService(store driven.VocabularyStore) *VocabularyService {
	return &VocabularyService{store: store}
}

// Import ingests parsed vocabulary entries. The whole source is
// validated before the first write, so a malformed source fails fast
// with no partial writes. Import is idempotent: running the same
// source twice produces no duplicate rows and no row-count growth.
func (s *VocabularyService) Import(
	ctx context.Context, entries []domain.VocabEntry,
) (*driving.ImportStats, error) {
	logger.Section("Vocabulary Import")
	logger.Debug("Entries: %d", len(entries))

	// Validate everything up front; no writes on malformed input.
	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w: %w", i, entry.Canonical, domain.ErrMalformedSource, err)
		}
	}

	if err := s.store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	// Existing canonicals participate in alias-conflict detection.
	existing, err := s.store.LoadVocabulary(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	canonicals := make(map[string]bool, len(existing)+len(entries))
	for canonical := range existing {
		canonicals[canonical] = true
	}
	for _, entry := range entries {
		canonicals[domain.CanonicalTag(entry.Canonical)] = true
	}

	stats := &driving.ImportStats{Entries: len(entries)}

	for _, entry := range entries {
		canonical := domain.CanonicalTag(entry.Canonical)

		term, err := s.store.UpsertTerm(ctx, canonical)
		if err != nil {
			return nil, fmt.Errorf("upsert term %q: %w", canonical, err)
		}

		// Aliases merge into the canonical term in memory only; they
		// are never persisted as rows. An alias colliding with another
		// term's canonical form is a duplicate-term conflict: logged,
		// not silently dropped.
		for _, alias := range entry.Aliases {
			a := domain.CanonicalTag(alias)
			if a == "" || a == canonical {
				continue
			}
			if canonicals[a] {
				stats.AliasConflicts++
				logger.Warn("Alias %q of term %q collides with canonical term %q", alias, canonical, a)
			}
		}

		for _, ref := range entry.Folders {
			path, err := domain.NormalizeFolderPath(ref.Path)
			if err != nil {
				return nil, fmt.Errorf("folder %q: %w", ref.Path, err)
			}

			folder, err := s.store.UpsertFolder(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("upsert folder %q: %w", path, err)
			}

			weight := ref.Weight
			if weight == 0 {
				weight = domain.DefaultWeight
			}

			link := domain.FolderTerm{FolderID: folder.ID, TermID: term.ID, Weight: weight}
			if err := s.store.UpsertFolderTerm(ctx, link); err != nil {
				return nil, fmt.Errorf("upsert folder-term %q/%q: %w", path, canonical, err)
			}
		}
	}

	stats.Terms, stats.Folders, stats.Links, err = s.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}

	logger.Info("Import complete: %d terms, %d folders, %d links, %d alias conflicts",
		stats.Terms, stats.Folders, stats.Links, stats.AliasConflicts)

	return stats, nil
}

// Load returns the canonical-term to metadata mapping for runtime
// enrichment. An absent or empty store yields an empty mapping; a
// corrupt store is an error and fails fast.
func (s *VocabularyService) Load(ctx context.Context) (domain.Vocabulary, error) {
	vocab, err := s.store.LoadVocabulary(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	return vocab, nil
}
