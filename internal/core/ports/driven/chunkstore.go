package driven

import (
	"context"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

// ChunkStore persists documents, chunks and embeddings with full
// provenance (source document -> chunk -> embedding). Backed by SQLite.
type ChunkStore interface {
	// EnsureSchema idempotently creates the chunk/embedding structures
	// if absent. Must not wipe existing data.
	EnsureSchema(ctx context.Context) error

	// SaveDocument stores or updates a document row keyed by source_id.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// HasChunk reports whether a chunk with the identical
	// (source_id, chunk_index, content_hash) identity already exists.
	HasChunk(ctx context.Context, sourceID string, index int, contentHash string) (bool, error)

	// InsertChunk persists a chunk row and its embedding row as a
	// single logical unit. Returns false when the chunk identity
	// already existed and nothing was inserted.
	InsertChunk(ctx context.Context, chunk domain.Chunk, emb domain.Embedding) (inserted bool, err error)

	// ListCandidates loads up to limit chunks starting at offset,
	// deterministically ordered by (source_id, chunk_index).
	// Embedding vectors are populated from the latest model version.
	ListCandidates(ctx context.Context, limit, offset int) ([]domain.Chunk, error)

	// Counts returns (documents, chunks, embeddings) row counts.
	Counts(ctx context.Context) (documents, chunks, embeddings int64, err error)
}
