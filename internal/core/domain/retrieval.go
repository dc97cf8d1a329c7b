package domain

import "time"

// Retrieval defaults.
const (
	DefaultK              = 5
	DefaultCandidateLimit = 200
	DefaultLatencyBudget  = 2 * time.Second
)

// RetrievalStage identifies a stage in the per-query state machine.
type RetrievalStage string

// Retrieval stages, in order. Terminal states are StageManifestWritten
// on success or an early exit at any stage on fatal error.
const (
	StageStarted           RetrievalStage = "STARTED"
	StageEmbedded          RetrievalStage = "EMBEDDED"
	StageCandidatesFetched RetrievalStage = "CANDIDATES_FETCHED"
	StageEvidenceSelected  RetrievalStage = "EVIDENCE_SELECTED"
	StageManifestWritten   RetrievalStage = "MANIFEST_WRITTEN"
)

// RetrievalOptions configures a retrieval call.
type RetrievalOptions struct {
	// K is the number of evidence items to select.
	K int

	// CandidateLimit caps how many chunks are loaded as candidates.
	CandidateLimit int

	// LatencyBudget bounds the whole retrieval call. Exhaustion is a
	// signalled outcome (BudgetHit), not an error.
	LatencyBudget time.Duration

	// AutoByBudget derives the candidate limit from the remaining
	// budget instead of using CandidateLimit as a fixed constant.
	AutoByBudget bool
}

// Evidence is one selected candidate in the final evidence set.
type Evidence struct {
	// Rank is the 1-based position in the selection.
	Rank int `json:"rank"`

	// Score is the similarity score.
	Score float64 `json:"score"`

	// SourceID identifies the origin document.
	SourceID string `json:"source_id,omitempty"`

	// ChunkID identifies the selected chunk.
	ChunkID string `json:"chunk_id,omitempty"`
}

// EvidenceManifest is the write-once, privacy-safe audit record of
// which evidence answered a query. It never contains chunk text or
// query text.
type EvidenceManifest struct {
	// ResponseID is the unique identifier for this retrieval call.
	ResponseID string `json:"response_id"`

	// K is the requested evidence count.
	K int `json:"k"`

	// SelectedCount is how many items were actually selected.
	// SelectedCount < K is a valid, signalled outcome.
	SelectedCount int `json:"selected_count"`

	// BudgetHit is true when the latency budget was exhausted before
	// candidate retrieval completed.
	BudgetHit bool `json:"budget_hit"`

	// CreatedAt is the manifest creation time.
	CreatedAt time.Time `json:"created_at"`

	// Evidence is the ordered selection.
	Evidence []Evidence `json:"evidence"`
}

// RetrievalResult is what a retrieval call returns to its caller.
type RetrievalResult struct {
	// ResponseID matches the persisted manifest.
	ResponseID string

	// Evidence is the ranked selection, best first.
	Evidence []Evidence

	// BudgetHit signals partial results due to budget exhaustion.
	BudgetHit bool

	// Elapsed is the total retrieval duration.
	Elapsed time.Duration
}
