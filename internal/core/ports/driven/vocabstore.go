package driven

import (
	"context"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

// VocabularyStore persists the tag taxonomy: terms, folders and their
// weighted links. Backed by SQLite. All write operations use upsert
// semantics so that re-ingestion never duplicates rows.
type VocabularyStore interface {
	// EnsureSchema idempotently creates the taxonomy structures and
	// supporting indexes if absent. Must not wipe existing data.
	EnsureSchema(ctx context.Context) error

	// UpsertTerm creates the term if its canonical form is new and
	// returns its identity either way.
	UpsertTerm(ctx context.Context, canonical string) (domain.Term, error)

	// UpsertFolder creates the folder if its path is new and returns
	// its identity either way.
	UpsertFolder(ctx context.Context, path string) (domain.Folder, error)

	// UpsertFolderTerm creates or updates the weighted link. The link
	// is unique per (folder, term) pair; the weight is upserted.
	UpsertFolderTerm(ctx context.Context, link domain.FolderTerm) error

	// LoadVocabulary returns the canonical-term to metadata mapping.
	// An absent or empty store yields an empty map; a corrupt store is
	// an error.
	LoadVocabulary(ctx context.Context) (domain.Vocabulary, error)

	// Counts returns (terms, folders, folderTerms) row counts for
	// idempotency verification and KPI reporting.
	Counts(ctx context.Context) (terms, folders, folderTerms int64, err error)
}
