// Package manifest provides a file-based evidence manifest store.
// Each manifest is one JSON file under the workspace manifests
// directory, keyed by response_id, written once and never mutated.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-cli/internal/workspace"
)

// Ensure FileStore implements the interface.
var _ driven.ManifestStore = (*FileStore)(nil)

// FileStore persists manifests as JSON files.
type FileStore struct {
	dir string
}

// NewFileStore creates a manifest store under the workspace's
// manifests directory.
func NewFileStore(ws *workspace.Workspace) (*FileStore, error) {
	dir, err := ws.ManifestsDir()
	if err != nil {
		return nil, fmt.Errorf("resolving manifests dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Write persists the manifest keyed by its response_id. An existing
// file for the same response_id is never overwritten.
func (s *FileStore) Write(_ context.Context, manifest *domain.EvidenceManifest) error {
	if manifest.ResponseID == "" {
		return domain.ErrInvalidInput
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}

	path := s.path(manifest.ResponseID)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("manifest %s: %w", manifest.ResponseID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("creating manifest file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Read loads a manifest by response_id.
func (s *FileStore) Read(_ context.Context, responseID string) (*domain.EvidenceManifest, error) {
	data, err := os.ReadFile(s.path(responseID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var manifest domain.EvidenceManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("unmarshalling manifest: %w", err)
	}
	return &manifest, nil
}

// path returns the file path for a response_id.
func (s *FileStore) path(responseID string) string {
	return filepath.Join(s.dir, responseID+".json")
}
