package driving

import (
	"context"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

// IndexReport is the per-document indexing outcome, used for
// KPI/progress reporting.
type IndexReport struct {
	// SourceID identifies the document.
	SourceID string

	// ChunksTotal is how many chunks the document split into.
	ChunksTotal int

	// Inserted is the number of rows actually inserted (not attempted).
	Inserted int

	// EmbedFailures counts chunks persisted with zero embeddings after
	// provider failure.
	EmbedFailures int
}

// Indexer converts documents into searchable, provenance-tracked
// chunks with embeddings.
type Indexer interface {
	// IndexDocument chunks, embeds and persists one document.
	// Re-indexing unchanged content inserts nothing.
	IndexDocument(ctx context.Context, doc *domain.Document) (*IndexReport, error)

	// IndexBatch indexes documents across a bounded worker pool.
	// Reports are returned in input document order regardless of
	// execution order.
	IndexBatch(ctx context.Context, docs []*domain.Document) ([]IndexReport, error)
}
