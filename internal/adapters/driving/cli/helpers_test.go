package cli

import (
	"context"

	"github.com/docbase-labs/docbase-cli/internal/adapters/driven/storage/memory"
	"github.com/docbase-labs/docbase-cli/internal/chunker"
	"github.com/docbase-labs/docbase-cli/internal/core/services"
)

// stubEmbedder implements driven.EmbeddingService with a fixed vector.
type stubEmbedder struct {
	embedding []float32
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return s.embedding, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = s.embedding
	}
	return result, nil
}

func (s *stubEmbedder) Dimensions() int { return len(s.embedding) }

func (s *stubEmbedder) ModelName() string { return "stub-embed" }

func (s *stubEmbedder) Ping(_ context.Context) error { return nil }

func (s *stubEmbedder) Close() error { return nil }

// setupTestServices swaps in memory-backed services and returns a
// cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldVocab := vocabService
	oldIndexer := indexerService
	oldRetrieval := retrievalService
	oldVocabStore := vocabStore
	oldChunkStore := chunkStore

	vs := memory.NewVocabularyStore()
	cs := memory.NewChunkStore()
	ms := memory.NewManifestStore()
	embedder := &stubEmbedder{embedding: []float32{0.1, 0.2}}
	split := chunker.New(chunker.WithChunkSize(50), chunker.WithOverlap(0))

	vocabStore = vs
	chunkStore = cs
	vocabService = services.NewVocabularyService(vs)
	indexerService = services.NewIndexerService(cs, embedder, split)
	retrievalService = services.NewRetrievalService(cs, embedder, ms)

	return func() {
		vocabService = oldVocab
		indexerService = oldIndexer
		retrievalService = oldRetrieval
		vocabStore = oldVocabStore
		chunkStore = oldChunkStore
	}
}
