package memory

import (
	"context"
	"sync"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driven"
)

// Ensure ManifestStore implements the interface.
var _ driven.ManifestStore = (*ManifestStore)(nil)

// ManifestStore is an in-memory implementation of driven.ManifestStore.
type ManifestStore struct {
	mu        sync.RWMutex
	manifests map[string]domain.EvidenceManifest
}

// NewManifestStore creates a new in-memory manifest store.
func NewManifestStore() *ManifestStore {
	return &ManifestStore{
		manifests: make(map[string]domain.EvidenceManifest),
	}
}

// Write persists the manifest. Manifests are write-once.
func (s *ManifestStore) Write(_ context.Context, manifest *domain.EvidenceManifest) error {
	if manifest.ResponseID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.manifests[manifest.ResponseID]; ok {
		return domain.ErrAlreadyExists
	}
	s.manifests[manifest.ResponseID] = *manifest
	return nil
}

// Read loads a manifest by response_id.
func (s *ManifestStore) Read(_ context.Context, responseID string) (*domain.EvidenceManifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	manifest, ok := s.manifests[responseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &manifest, nil
}
