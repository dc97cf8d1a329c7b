package driven

import (
	"context"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

// ManifestStore persists evidence manifests for audit, not for
// runtime lookup. Manifests are write-once: writing an existing
// response_id returns domain.ErrAlreadyExists.
type ManifestStore interface {
	// Write persists the manifest keyed by its response_id.
	Write(ctx context.Context, manifest *domain.EvidenceManifest) error

	// Read loads a manifest by response_id.
	Read(ctx context.Context, responseID string) (*domain.EvidenceManifest, error)
}
