package driving

import (
	"context"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

// ImportStats reports the outcome of a vocabulary import.
type ImportStats struct {
	// Entries is how many source entries were processed.
	Entries int

	// Terms, Folders, Links are the row counts after the import.
	Terms   int64
	Folders int64
	Links   int64

	// AliasConflicts counts aliases that collided with another term's
	// canonical form. Conflicts are logged, not silently dropped.
	AliasConflicts int
}

// VocabularyService manages the tag taxonomy.
type VocabularyService interface {
	// Import ingests parsed vocabulary entries into the store.
	// Import is idempotent: the same source twice produces no row growth.
	Import(ctx context.Context, entries []domain.VocabEntry) (*ImportStats, error)

	// Load returns the canonical-term to metadata mapping for
	// runtime enrichment.
	Load(ctx context.Context) (domain.Vocabulary, error)
}
