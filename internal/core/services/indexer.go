package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docbase-labs/docbase-cli/internal/chunker"
	"github.com/docbase-labs/docbase-cli/internal/core/domain"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driving"
	"github.com/docbase-labs/docbase-cli/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.Indexer = (*IndexerService)(nil)

// DefaultWorkers is the default worker count for batch indexing.
const DefaultWorkers = 4

// IndexerService converts enriched documents into searchable,
// provenance-tracked chunks with embeddings.
type IndexerService struct {
	store    driven.ChunkStore
	embedder driven.EmbeddingService
	splitter *chunker.Chunker
	workers  int

	// Schema initialisation happens once per indexing run, not once
	// per file.
	schemaOnce sync.Once
	schemaErr  error

	// now is overridable for deterministic embedding versions in tests.
	now func() time.Time
}

// IndexerOption configures the indexer service.
type IndexerOption func(*IndexerService)

// WithWorkers sets the worker count for batch indexing.
func WithWorkers(n int) IndexerOption {
	return func(s *IndexerService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithClock overrides the time source. Useful for testing.
func WithClock(now func() time.Time) IndexerOption {
	return func(s *IndexerService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewIndexerService creates a new indexer. The embedder may be nil;
// chunks are then persisted with zero embeddings and counted as
// embedding failures.
func NewIndexerService(
	store driven.ChunkStore,
	embedder driven.EmbeddingService,
	splitter *chunker.Chunker,
	opts ...IndexerOption,
) *IndexerService {
	s := &IndexerService{
		store:    store,
		embedder: embedder,
		splitter: splitter,
		workers:  DefaultWorkers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexDocument chunks, embeds and persists one document. The report
// counts rows actually inserted, not attempted, so callers can compute
// accurate progress figures. Re-indexing unchanged content inserts
// zero new rows.
func (s *IndexerService) IndexDocument(
	ctx context.Context, doc *domain.Document,
) (*driving.IndexReport, error) {
	s.schemaOnce.Do(func() {
		s.schemaErr = s.store.EnsureSchema(ctx)
	})
	if s.schemaErr != nil {
		return nil, fmt.Errorf("ensure schema: %w", s.schemaErr)
	}

	if doc.SourceID == "" {
		return nil, fmt.Errorf("document %q: %w", doc.Path, domain.ErrInvalidInput)
	}

	logger.Debug("Indexing %s (%d bytes)", doc.SourceID, len(doc.Content))

	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document %s: %w", doc.SourceID, err)
	}

	chunks := s.splitter.Split(doc)
	report := &driving.IndexReport{SourceID: doc.SourceID, ChunksTotal: len(chunks)}
	version := domain.EmbeddingVersion(s.now())

	for _, chunk := range chunks {
		exists, err := s.store.HasChunk(ctx, chunk.SourceID, chunk.Index, chunk.ContentHash)
		if err != nil {
			return nil, fmt.Errorf("check chunk %s/%d: %w", chunk.SourceID, chunk.Index, err)
		}
		if exists {
			continue
		}

		// A provider failure is recoverable per-chunk: log it, record
		// zero embeddings, keep going. It must not abort the run.
		vector, model := s.embedChunk(ctx, chunk, report)

		emb := domain.Embedding{
			ID:      uuid.New().String(),
			ChunkID: chunk.ID,
			Model:   model,
			Version: version,
			Vector:  vector,
		}
		chunk.Embedding = vector

		inserted, err := s.store.InsertChunk(ctx, chunk, emb)
		if err != nil {
			return nil, fmt.Errorf("insert chunk %s/%d: %w", chunk.SourceID, chunk.Index, err)
		}
		if inserted {
			report.Inserted++
		}
	}

	logger.Info("Indexed %s: %d chunks, %d inserted, %d embed failures",
		doc.SourceID, report.ChunksTotal, report.Inserted, report.EmbedFailures)

	return report, nil
}

// embedChunk requests an embedding for one chunk. On failure it logs
// source_id, chunk_id and stage, bumps the failure count and returns a
// zero vector.
func (s *IndexerService) embedChunk(
	ctx context.Context, chunk domain.Chunk, report *driving.IndexReport,
) ([]float32, string) {
	if s.embedder == nil {
		report.EmbedFailures++
		logger.Warn("No embedding service: source_id=%s chunk_id=%s stage=index", chunk.SourceID, chunk.ID)
		return nil, "none"
	}

	vector, err := s.embedder.Embed(ctx, chunk.Content)
	if err != nil {
		report.EmbedFailures++
		logger.Warn("Embedding failed: source_id=%s chunk_id=%s stage=index err=%v",
			chunk.SourceID, chunk.ID, err)
		return nil, s.embedder.ModelName()
	}

	return vector, s.embedder.ModelName()
}

// IndexBatch indexes documents across a bounded worker pool. Reports
// are aggregated in input document order even when execution completes
// out of order; the ordering guarantee is on reporting, not execution.
func (s *IndexerService) IndexBatch(
	ctx context.Context, docs []*domain.Document,
) ([]driving.IndexReport, error) {
	logger.Section("Batch Indexing")
	logger.Debug("Documents: %d, workers: %d", len(docs), s.workers)

	if len(docs) == 0 {
		return nil, nil
	}

	workers := s.workers
	if workers > len(docs) {
		workers = len(docs)
	}

	type job struct {
		pos int
		doc *domain.Document
	}

	jobs := make(chan job)
	reports := make([]driving.IndexReport, len(docs))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				report, err := s.IndexDocument(runCtx, j.doc)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("index %s: %w", j.doc.SourceID, err)
						cancel()
					}
					mu.Unlock()
					continue
				}
				reports[j.pos] = *report
			}
		}()
	}

	for pos, doc := range docs {
		select {
		case <-runCtx.Done():
		case jobs <- job{pos: pos, doc: doc}:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	var inserted int
	for i := range reports {
		inserted += reports[i].Inserted
	}
	logger.Info("Batch complete: %d documents, %d rows inserted", len(docs), inserted)

	return reports, nil
}
