// Package workspace resolves the workspace root and provides the
// path-safety primitives shared by every component. All store handles
// are derived through a validated Workspace, never from ad hoc
// re-derived paths.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

// Well-known workspace-relative locations.
const (
	// SemanticDir holds the embedded store and derived semantic data.
	SemanticDir = ".docbase/semantic"

	// ManifestDir holds per-response evidence manifests.
	ManifestDir = ".docbase/manifests"

	// ConfigDir holds the TOML configuration.
	ConfigDir = ".docbase"
)

// Workspace is a validated workspace root. The zero value is unusable;
// construct with New.
type Workspace struct {
	root string
}

// New validates dir as a workspace root and returns a Workspace.
// If dir is empty, the current working directory is used.
func New(dir string) (*Workspace, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("checking workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s: %w", abs, domain.ErrInvalidInput)
	}

	return &Workspace{root: abs}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// Resolve joins rel onto the workspace root and verifies the result
// stays inside the workspace boundary. Escapes fail with
// domain.ErrUnsafePath before any I/O is attempted.
func (w *Workspace) Resolve(rel string) (string, error) {
	joined := filepath.Join(w.root, filepath.FromSlash(rel))
	cleaned := filepath.Clean(joined)

	relToRoot, err := filepath.Rel(w.root, cleaned)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", rel, domain.ErrUnsafePath)
	}
	if relToRoot == ".." || strings.HasPrefix(relToRoot, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("resolving %s: %w", rel, domain.ErrUnsafePath)
	}

	return cleaned, nil
}

// EnsureDir resolves rel, creates the directory if absent and returns
// the absolute path.
func (w *Workspace) EnsureDir(rel string) (string, error) {
	abs, err := w.Resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return "", fmt.Errorf("creating %s: %w", rel, err)
	}
	return abs, nil
}

// SemanticDataDir resolves and creates the semantic-data directory.
func (w *Workspace) SemanticDataDir() (string, error) {
	return w.EnsureDir(SemanticDir)
}

// ManifestsDir resolves and creates the manifests directory.
func (w *Workspace) ManifestsDir() (string, error) {
	return w.EnsureDir(ManifestDir)
}
