package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// chunkKey is the idempotency identity of a chunk.
type chunkKey struct {
	sourceID    string
	index       int
	contentHash string
}

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu         sync.RWMutex
	documents  map[string]domain.Document
	chunks     map[chunkKey]domain.Chunk
	embeddings map[string]domain.Embedding

	// FailSchema forces EnsureSchema to fail, for fatal-path tests.
	FailSchema error
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		documents:  make(map[string]domain.Document),
		chunks:     make(map[chunkKey]domain.Chunk),
		embeddings: make(map[string]domain.Embedding),
	}
}

// EnsureSchema is a no-op unless FailSchema is set.
func (s *ChunkStore) EnsureSchema(_ context.Context) error {
	return s.FailSchema
}

// SaveDocument stores or updates a document keyed by source_id.
func (s *ChunkStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc.SourceID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.SourceID] = *doc
	return nil
}

// HasChunk reports whether the chunk identity already exists.
func (s *ChunkStore) HasChunk(
	_ context.Context, sourceID string, index int, contentHash string,
) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chunks[chunkKey{sourceID, index, contentHash}]
	return ok, nil
}

// InsertChunk persists a chunk and its embedding as one unit.
func (s *ChunkStore) InsertChunk(
	_ context.Context, chunk domain.Chunk, emb domain.Embedding,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := chunkKey{chunk.SourceID, chunk.Index, chunk.ContentHash}
	if _, ok := s.chunks[key]; ok {
		return false, nil
	}

	chunk.Embedding = emb.Vector
	s.chunks[key] = chunk
	s.embeddings[emb.ID] = emb
	return true, nil
}

// ListCandidates loads chunks ordered by (source_id, chunk_index).
func (s *ChunkStore) ListCandidates(_ context.Context, limit, offset int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Chunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		all = append(all, chunk)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].SourceID != all[j].SourceID {
			return all[i].SourceID < all[j].SourceID
		}
		return all[i].Index < all[j].Index
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Counts returns lineage row counts.
func (s *ChunkStore) Counts(_ context.Context) (documents, chunks, embeddings int64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.documents)), int64(len(s.chunks)), int64(len(s.embeddings)), nil
}
