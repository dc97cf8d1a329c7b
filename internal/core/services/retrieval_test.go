package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbase-labs/docbase-cli/internal/adapters/driven/storage/memory"
	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

// stepClock returns a time advancing by step on every call.
type stepClock struct {
	current time.Time
	step    time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{
		current: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		step:    step,
	}
}

func (c *stepClock) now() time.Time {
	t := c.current
	c.current = c.current.Add(c.step)
	return t
}

// failingManifestStore always fails writes, for fatal-path tests.
type failingManifestStore struct {
	err error
}

func (s *failingManifestStore) Write(_ context.Context, _ *domain.EvidenceManifest) error {
	return s.err
}

func (s *failingManifestStore) Read(_ context.Context, _ string) (*domain.EvidenceManifest, error) {
	return nil, domain.ErrNotFound
}

// seedChunk inserts one chunk with the given embedding directly.
func seedChunk(t *testing.T, store *memory.ChunkStore, sourceID string, index int, vec []float32) domain.Chunk {
	t.Helper()
	hash := domain.HashContent("content-" + sourceID)
	chunk := domain.Chunk{
		ID:          domain.ChunkID(sourceID, index, hash),
		SourceID:    sourceID,
		Index:       index,
		Content:     "content-" + sourceID,
		ContentHash: hash,
	}
	emb := domain.Embedding{
		ID:      chunk.ID + "-emb",
		ChunkID: chunk.ID,
		Model:   "mock-embed",
		Version: "2026-08-30",
		Vector:  vec,
	}
	inserted, err := store.InsertChunk(context.Background(), chunk, emb)
	require.NoError(t, err)
	require.True(t, inserted)
	chunk.Embedding = vec
	return chunk
}

func TestRetrievalService_Retrieve_RanksBySimilarity(t *testing.T) {
	store := memory.NewChunkStore()
	manifests := memory.NewManifestStore()
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewRetrievalService(store, embedder, manifests)

	best := seedChunk(t, store, "doc-best", 0, []float32{1, 0})
	mid := seedChunk(t, store, "doc-mid", 0, []float32{1, 1})
	seedChunk(t, store, "doc-far", 0, []float32{0, 1})

	result, err := svc.Retrieve(context.Background(), "find things", domain.RetrievalOptions{K: 2})
	require.NoError(t, err)

	require.Len(t, result.Evidence, 2)
	assert.False(t, result.BudgetHit)

	assert.Equal(t, 1, result.Evidence[0].Rank)
	assert.Equal(t, best.ID, result.Evidence[0].ChunkID)
	assert.InDelta(t, 1.0, result.Evidence[0].Score, 1e-6)

	assert.Equal(t, 2, result.Evidence[1].Rank)
	assert.Equal(t, mid.ID, result.Evidence[1].ChunkID)
}

func TestRetrievalService_Retrieve_TieBreakByChunkIndex(t *testing.T) {
	store := memory.NewChunkStore()
	manifests := memory.NewManifestStore()
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewRetrievalService(store, embedder, manifests)

	// Identical vectors, identical scores. Lower chunk_index wins.
	later := seedChunk(t, store, "doc-a", 2, []float32{1, 0})
	earlier := seedChunk(t, store, "doc-a", 1, []float32{1, 0})

	result, err := svc.Retrieve(context.Background(), "q", domain.RetrievalOptions{K: 2})
	require.NoError(t, err)

	require.Len(t, result.Evidence, 2)
	assert.Equal(t, earlier.ID, result.Evidence[0].ChunkID)
	assert.Equal(t, later.ID, result.Evidence[1].ChunkID)
}

func TestRetrievalService_Retrieve_TieBreakBySourceID(t *testing.T) {
	store := memory.NewChunkStore()
	manifests := memory.NewManifestStore()
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewRetrievalService(store, embedder, manifests)

	second := seedChunk(t, store, "doc-b", 0, []float32{1, 0})
	first := seedChunk(t, store, "doc-a", 0, []float32{1, 0})

	result, err := svc.Retrieve(context.Background(), "q", domain.RetrievalOptions{K: 2})
	require.NoError(t, err)

	require.Len(t, result.Evidence, 2)
	assert.Equal(t, first.ID, result.Evidence[0].ChunkID)
	assert.Equal(t, second.ID, result.Evidence[1].ChunkID)
}

func TestRetrievalService_Retrieve_ZeroEmbeddingsNeverOutrank(t *testing.T) {
	store := memory.NewChunkStore()
	manifests := memory.NewManifestStore()
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewRetrievalService(store, embedder, manifests)

	// A chunk persisted after an embedding failure carries no vector;
	// it scores zero and sorts below any real match.
	seedChunk(t, store, "doc-failed", 0, nil)
	real := seedChunk(t, store, "doc-real", 0, []float32{1, 1})

	result, err := svc.Retrieve(context.Background(), "q", domain.RetrievalOptions{K: 1})
	require.NoError(t, err)

	require.Len(t, result.Evidence, 1)
	assert.Equal(t, real.ID, result.Evidence[0].ChunkID)
}

func TestRetrievalService_Retrieve_FewerThanK(t *testing.T) {
	store := memory.NewChunkStore()
	manifests := memory.NewManifestStore()
	embedder := &mockEmbeddingService{embedding: []float32{1}}
	svc := NewRetrievalService(store, embedder, manifests)

	seedChunk(t, store, "doc-only", 0, []float32{1})

	result, err := svc.Retrieve(context.Background(), "q", domain.RetrievalOptions{K: 5})
	require.NoError(t, err)

	// Fewer than k is a valid outcome, not an error.
	assert.Len(t, result.Evidence, 1)
	assert.False(t, result.BudgetHit)
}

func TestRetrievalService_Retrieve_EmptyStoreTinyBudget(t *testing.T) {
	store := memory.NewChunkStore()
	manifests := memory.NewManifestStore()
	embedder := &mockEmbeddingService{embedding: []float32{1}}

	// Every clock read advances 10ms against a 5ms budget, so the
	// budget is spent before the first candidate fetch.
	clock := newStepClock(10 * time.Millisecond)
	svc := NewRetrievalService(store, embedder, manifests, WithRetrievalClock(clock.now))

	result, err := svc.Retrieve(context.Background(), "q", domain.RetrievalOptions{
		K:             3,
		LatencyBudget: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	// Budget exhaustion is signalled, never an error.
	assert.True(t, result.BudgetHit)
	assert.Empty(t, result.Evidence)

	manifest, err := manifests.Read(context.Background(), result.ResponseID)
	require.NoError(t, err)
	assert.True(t, manifest.BudgetHit)
	assert.Equal(t, 0, manifest.SelectedCount)
}

func TestRetrievalService_Retrieve_BudgetHitMidFetch(t *testing.T) {
	store := memory.NewChunkStore()
	manifests := memory.NewManifestStore()
	embedder := &mockEmbeddingService{embedding: []float32{1}}

	for i := 0; i < 5; i++ {
		seedChunk(t, store, "doc", i, []float32{1})
	}

	// One candidate page per ms; deadline passes between the first and
	// second page.
	clock := newStepClock(time.Millisecond)
	svc := NewRetrievalService(store, embedder, manifests,
		WithRetrievalClock(clock.now), WithFetchBatch(1))

	result, err := svc.Retrieve(context.Background(), "q", domain.RetrievalOptions{
		K:             5,
		LatencyBudget: 1500 * time.Microsecond,
	})
	require.NoError(t, err)

	assert.True(t, result.BudgetHit)
	assert.Len(t, result.Evidence, 1)
}

func TestRetrievalService_Retrieve_AutoByBudget(t *testing.T) {
	store := memory.NewChunkStore()
	manifests := memory.NewManifestStore()
	embedder := &mockEmbeddingService{embedding: []float32{1}}

	for i := 0; i < 20; i++ {
		seedChunk(t, store, "doc", i, []float32{1})
	}

	clock := newStepClock(time.Millisecond)
	svc := NewRetrievalService(store, embedder, manifests, WithRetrievalClock(clock.now))

	result, err := svc.Retrieve(context.Background(), "q", domain.RetrievalOptions{
		K:              20,
		CandidateLimit: 100,
		LatencyBudget:  3 * time.Millisecond,
		AutoByBudget:   true,
	})
	require.NoError(t, err)

	// One millisecond of remaining budget sizes the candidate set well
	// below the configured limit.
	assert.Less(t, len(result.Evidence), 20)
	assert.NotEmpty(t, result.Evidence)
}

func TestRetrievalService_Retrieve_NoEmbedder(t *testing.T) {
	svc := NewRetrievalService(memory.NewChunkStore(), nil, memory.NewManifestStore())

	_, err := svc.Retrieve(context.Background(), "q", domain.RetrievalOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRetrievalService_Retrieve_EmbedFailureFatal(t *testing.T) {
	embedder := &mockEmbeddingService{embedErr: errors.New("provider down")}
	svc := NewRetrievalService(memory.NewChunkStore(), embedder, memory.NewManifestStore())

	_, err := svc.Retrieve(context.Background(), "q", domain.RetrievalOptions{})
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestRetrievalService_Retrieve_ManifestWriteFatal(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1}}
	manifests := &failingManifestStore{err: errors.New("disk full")}
	svc := NewRetrievalService(memory.NewChunkStore(), embedder, manifests)

	_, err := svc.Retrieve(context.Background(), "q", domain.RetrievalOptions{})
	assert.ErrorContains(t, err, "write manifest")
}

func TestRetrievalService_Retrieve_ManifestContents(t *testing.T) {
	store := memory.NewChunkStore()
	manifests := memory.NewManifestStore()
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewRetrievalService(store, embedder, manifests)

	chunk := seedChunk(t, store, "doc-1", 0, []float32{1, 0})

	result, err := svc.Retrieve(context.Background(), "a confidential query", domain.RetrievalOptions{K: 3})
	require.NoError(t, err)

	manifest, err := manifests.Read(context.Background(), result.ResponseID)
	require.NoError(t, err)

	assert.Equal(t, result.ResponseID, manifest.ResponseID)
	assert.Equal(t, 3, manifest.K)
	assert.Equal(t, 1, manifest.SelectedCount)
	require.Len(t, manifest.Evidence, 1)

	// Identifiers and scores only: no query text, no chunk content.
	ev := manifest.Evidence[0]
	assert.Equal(t, 1, ev.Rank)
	assert.Equal(t, "doc-1", ev.SourceID)
	assert.Equal(t, chunk.ID, ev.ChunkID)
}

func TestRetrievalService_Retrieve_DefaultOptions(t *testing.T) {
	store := memory.NewChunkStore()
	manifests := memory.NewManifestStore()
	embedder := &mockEmbeddingService{embedding: []float32{1}}
	svc := NewRetrievalService(store, embedder, manifests)

	for i := 0; i < 10; i++ {
		seedChunk(t, store, "doc", i, []float32{1})
	}

	result, err := svc.Retrieve(context.Background(), "q", domain.RetrievalOptions{})
	require.NoError(t, err)

	// Zero-valued options fall back to the documented defaults.
	assert.Len(t, result.Evidence, domain.DefaultK)
}
