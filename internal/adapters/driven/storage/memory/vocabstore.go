// Package memory provides in-memory implementations of the storage
// ports. They mirror the SQLite adapters' semantics and back the
// service tests.
package memory

import (
	"context"
	"sync"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driven"
)

// Ensure VocabularyStore implements the interface.
var _ driven.VocabularyStore = (*VocabularyStore)(nil)

// VocabularyStore is an in-memory implementation of driven.VocabularyStore.
type VocabularyStore struct {
	mu      sync.RWMutex
	nextID  int64
	terms   map[string]domain.Term
	folders map[string]domain.Folder
	links   map[[2]int64]domain.FolderTerm
}

// NewVocabularyStore creates a new in-memory vocabulary store.
func NewVocabularyStore() *VocabularyStore {
	return &VocabularyStore{
		nextID:  1,
		terms:   make(map[string]domain.Term),
		folders: make(map[string]domain.Folder),
		links:   make(map[[2]int64]domain.FolderTerm),
	}
}

// EnsureSchema is a no-op for the in-memory store.
func (s *VocabularyStore) EnsureSchema(_ context.Context) error {
	return nil
}

// UpsertTerm creates the term if its canonical form is new.
func (s *VocabularyStore) UpsertTerm(_ context.Context, canonical string) (domain.Term, error) {
	if canonical == "" {
		return domain.Term{}, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if term, ok := s.terms[canonical]; ok {
		return term, nil
	}

	term := domain.Term{ID: s.nextID, Canonical: canonical}
	s.nextID++
	s.terms[canonical] = term
	return term, nil
}

// UpsertFolder creates the folder if its path is new.
func (s *VocabularyStore) UpsertFolder(_ context.Context, path string) (domain.Folder, error) {
	if path == "" {
		return domain.Folder{}, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if folder, ok := s.folders[path]; ok {
		return folder, nil
	}

	folder := domain.Folder{ID: s.nextID, Path: path}
	s.nextID++
	s.folders[path] = folder
	return folder, nil
}

// UpsertFolderTerm creates or updates the weighted link.
func (s *VocabularyStore) UpsertFolderTerm(_ context.Context, link domain.FolderTerm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.links[[2]int64{link.FolderID, link.TermID}] = link
	return nil
}

// LoadVocabulary returns the canonical-term to metadata mapping.
func (s *VocabularyStore) LoadVocabulary(_ context.Context) (domain.Vocabulary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folderByID := make(map[int64]string, len(s.folders))
	for path, folder := range s.folders {
		folderByID[folder.ID] = path
	}

	vocab := make(domain.Vocabulary, len(s.terms))
	for canonical, term := range s.terms {
		meta := domain.TermMeta{
			Canonical: canonical,
			Folders:   make(map[string]float64),
		}
		for key, link := range s.links {
			if key[1] == term.ID {
				meta.Folders[folderByID[key[0]]] = link.Weight
			}
		}
		vocab[canonical] = meta
	}

	return vocab, nil
}

// Counts returns taxonomy row counts.
func (s *VocabularyStore) Counts(_ context.Context) (terms, folders, folderTerms int64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.terms)), int64(len(s.folders)), int64(len(s.links)), nil
}
