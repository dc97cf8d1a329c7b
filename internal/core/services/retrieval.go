package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driving"
	"github.com/docbase-labs/docbase-cli/internal/logger"
	"github.com/docbase-labs/docbase-cli/internal/vector"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultFetchBatch is the candidate page size for incremental loading.
const DefaultFetchBatch = 50

// autoCandidatesPerMilli sizes the candidate limit from the remaining
// budget in auto mode.
const autoCandidatesPerMilli = 8

// RetrievalService answers a query against the indexed chunk set
// within a bounded latency budget, producing a ranked, explainable
// evidence set and a write-once audit manifest.
//
// Per-query state machine:
// STARTED -> EMBEDDED -> CANDIDATES_FETCHED -> EVIDENCE_SELECTED -> MANIFEST_WRITTEN.
type RetrievalService struct {
	store     driven.ChunkStore
	embedder  driven.EmbeddingService
	manifests driven.ManifestStore

	fetchBatch int

	// now is overridable for deterministic budget tests.
	now func() time.Time
}

// RetrievalOption configures the retrieval service.
type RetrievalOption func(*RetrievalService)

// WithFetchBatch sets the incremental candidate page size.
func WithFetchBatch(n int) RetrievalOption {
	return func(s *RetrievalService) {
		if n > 0 {
			s.fetchBatch = n
		}
	}
}

// WithRetrievalClock overrides the time source. Useful for testing.
func WithRetrievalClock(now func() time.Time) RetrievalOption {
	return func(s *RetrievalService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(
	store driven.ChunkStore,
	embedder driven.EmbeddingService,
	manifests driven.ManifestStore,
	opts ...RetrievalOption,
) *RetrievalService {
	s := &RetrievalService{
		store:      store,
		embedder:   embedder,
		manifests:  manifests,
		fetchBatch: DefaultFetchBatch,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// scoredCandidate holds a candidate with its similarity score before
// selection.
type scoredCandidate struct {
	chunk domain.Chunk
	score float64
}

// Retrieve runs the full retrieval state machine. Budget exhaustion is
// a signalled, non-fatal outcome: callers get a partial (possibly
// empty) result with BudgetHit set. A query-time embedding failure is
// fatal.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query string, opts domain.RetrievalOptions,
) (*domain.RetrievalResult, error) {
	// STARTED. Log the query length only, never the text.
	start := s.now()
	responseID := uuid.New().String()

	logger.Section("Retrieval")
	logger.Debug("Stage %s: response_id=%s query_len=%d", domain.StageStarted, responseID, len(query))

	if opts.K <= 0 {
		opts.K = domain.DefaultK
	}
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = domain.DefaultCandidateLimit
	}
	if opts.LatencyBudget <= 0 {
		opts.LatencyBudget = domain.DefaultLatencyBudget
	}
	deadline := start.Add(opts.LatencyBudget)

	// EMBEDDED. No embedding means no meaningful candidate fetch.
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w: %w", domain.ErrProvider, err)
	}
	logger.Debug("Stage %s: %d dimensions", domain.StageEmbedded, len(queryVec))

	// CANDIDATES_FETCHED.
	candidates, budgetHit, err := s.fetchCandidates(ctx, opts, deadline)
	if err != nil {
		return nil, err
	}
	logger.Debug("Stage %s: %d candidates, budget_hit=%t",
		domain.StageCandidatesFetched, len(candidates), budgetHit)

	// EVIDENCE_SELECTED.
	evidence := s.selectEvidence(queryVec, candidates, opts.K)
	logger.Debug("Stage %s: selected %d of k=%d", domain.StageEvidenceSelected, len(evidence), opts.K)

	// MANIFEST_WRITTEN. The manifest records which evidence was used,
	// never what it said.
	manifest := &domain.EvidenceManifest{
		ResponseID:    responseID,
		K:             opts.K,
		SelectedCount: len(evidence),
		BudgetHit:     budgetHit,
		CreatedAt:     s.now().UTC(),
		Evidence:      evidence,
	}
	if err := s.manifests.Write(ctx, manifest); err != nil {
		return nil, fmt.Errorf("write manifest %s: %w", responseID, err)
	}

	elapsed := s.now().Sub(start)
	logger.Info("Stage %s: response_id=%s selected=%d budget_hit=%t elapsed=%s",
		domain.StageManifestWritten, responseID, len(evidence), budgetHit, elapsed)

	return &domain.RetrievalResult{
		ResponseID: responseID,
		Evidence:   evidence,
		BudgetHit:  budgetHit,
		Elapsed:    elapsed,
	}, nil
}

// fetchCandidates loads candidates incrementally, checking the budget
// before the fetch and between pages. Budget exhaustion returns
// whatever is loaded so far with budgetHit set, never an error.
func (s *RetrievalService) fetchCandidates(
	ctx context.Context, opts domain.RetrievalOptions, deadline time.Time,
) ([]domain.Chunk, bool, error) {
	limit := opts.CandidateLimit
	if opts.AutoByBudget {
		remaining := deadline.Sub(s.now())
		limit = int(remaining.Milliseconds()) * autoCandidatesPerMilli
		if limit > opts.CandidateLimit {
			limit = opts.CandidateLimit
		}
		logger.Debug("Auto candidate limit: %d", limit)
	}

	// Fail fast on budget before issuing the fetch.
	if !s.now().Before(deadline) || limit <= 0 {
		return nil, true, nil
	}

	var candidates []domain.Chunk
	offset := 0

	for offset < limit {
		page := s.fetchBatch
		if offset+page > limit {
			page = limit - offset
		}

		chunks, err := s.store.ListCandidates(ctx, page, offset)
		if err != nil {
			return nil, false, fmt.Errorf("list candidates: %w", err)
		}
		candidates = append(candidates, chunks...)
		offset += len(chunks)

		if len(chunks) < page {
			// Store exhausted.
			return candidates, false, nil
		}
		if !s.now().Before(deadline) {
			return candidates, true, nil
		}
	}

	return candidates, false, nil
}

// selectEvidence ranks candidates by similarity, applies the
// deterministic tie-break and selects the top k. Fewer than k
// candidates is a valid outcome, not an error.
func (s *RetrievalService) selectEvidence(
	queryVec []float32, candidates []domain.Chunk, k int,
) []domain.Evidence {
	scored := make([]scoredCandidate, len(candidates))
	for i, chunk := range candidates {
		scored[i] = scoredCandidate{
			chunk: chunk,
			score: vector.CosineSimilarity(queryVec, chunk.Embedding),
		}
	}

	// Tie-break on identical scores: lower chunk_index first, then
	// lexicographic source_id. Reproducible across runs.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].chunk.Index != scored[j].chunk.Index {
			return scored[i].chunk.Index < scored[j].chunk.Index
		}
		return scored[i].chunk.SourceID < scored[j].chunk.SourceID
	})

	if k > len(scored) {
		k = len(scored)
	}

	evidence := make([]domain.Evidence, k)
	for i := 0; i < k; i++ {
		evidence[i] = domain.Evidence{
			Rank:     i + 1,
			Score:    scored[i].score,
			SourceID: scored[i].chunk.SourceID,
			ChunkID:  scored[i].chunk.ID,
		}
	}

	return evidence
}
