package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// chunkNamespace is the UUIDv5 namespace for deterministic chunk IDs.
// Derived once from a fixed URL so the same chunk identity always
// yields the same ID across runs and machines.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://docbase.dev/chunk"))

// Document is a source artifact: a converted Markdown file derived
// from an original PDF input.
type Document struct {
	// SourceID is the stable identifier for the original input.
	SourceID string

	// Path is the workspace-relative path of the converted file.
	Path string

	// Content is the full document text after conversion/enrichment.
	Content string

	// Metadata carries enriched frontmatter from the conversion subsystem.
	Metadata map[string]any
}

// Chunk is a contiguous slice of a document's text, the unit of
// retrieval. The back-reference to SourceID is provenance, not an
// ownership pointer.
type Chunk struct {
	// ID is the deterministic chunk identifier, derived from
	// (source_id, chunk_index, content_hash).
	ID string

	// SourceID links back to the document that produced this chunk.
	SourceID string

	// Index is the ordinal position within the document.
	Index int

	// Content is the chunk text.
	Content string

	// ContentHash is the hex-encoded SHA-256 of Content.
	ContentHash string

	// Embedding is the vector representation. Zero-length when the
	// provider failed for this chunk at index time.
	Embedding []float32
}

// Embedding is the persisted vector row for a chunk. One embedding
// per chunk per model version.
type Embedding struct {
	// ID is the store-assigned identifier.
	ID string

	// ChunkID is the owning chunk.
	ChunkID string

	// Model identifies the embedding model.
	Model string

	// Version is the creation date-stamp (YYYY-MM-DD).
	Version string

	// Vector is the embedding itself; empty when the provider failed.
	Vector []float32
}

// HashContent returns the hex-encoded SHA-256 of the given text.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ChunkID derives the deterministic identifier for a chunk identity.
// The same (sourceID, index, contentHash) always yields the same ID.
func ChunkID(sourceID string, index int, contentHash string) string {
	name := sourceID + "|" + strconv.Itoa(index) + "|" + contentHash
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}

// EmbeddingVersion returns the date-stamp version for embeddings
// created at the given time.
func EmbeddingVersion(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
