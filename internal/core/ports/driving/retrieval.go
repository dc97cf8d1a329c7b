package driving

import (
	"context"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

// RetrievalService answers queries against the indexed chunk set
// within a bounded latency budget.
type RetrievalService interface {
	// Retrieve embeds the query, fetches candidates, selects top-k
	// evidence and persists an audit manifest. Callers see either a
	// complete result, a partial result with BudgetHit set, or a
	// fatal typed error.
	Retrieve(ctx context.Context, query string, opts domain.RetrievalOptions) (*domain.RetrievalResult, error)
}
