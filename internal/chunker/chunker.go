// Package chunker provides a deterministic fixed-size text chunking
// strategy. The same document content always yields the same chunk
// boundaries, chunk_index values and chunk IDs, which is what makes
// re-indexing restartable and idempotent.
package chunker

import (
	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping bytes.
const DefaultChunkOverlap = 200

// Chunker splits document content into fixed-size chunks with stable
// boundaries.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave the window moving forward.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Split chunks the document content. Chunk IDs are derived from
// (source_id, chunk_index, content_hash), so identical content always
// produces identical chunks.
func (c *Chunker) Split(doc *domain.Document) []domain.Chunk {
	if doc.Content == "" {
		return nil
	}

	content := doc.Content
	contentLen := len(content)

	estimated := (contentLen / (c.chunkSize - c.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	index := 0
	start := 0

	for start < contentLen {
		end := start + c.chunkSize
		if end > contentLen {
			end = contentLen
		}

		text := content[start:end]
		hash := domain.HashContent(text)

		chunks = append(chunks, domain.Chunk{
			ID:          domain.ChunkID(doc.SourceID, index, hash),
			SourceID:    doc.SourceID,
			Index:       index,
			Content:     text,
			ContentHash: hash,
		})
		index++

		start += c.chunkSize - c.overlap
	}

	return chunks
}
