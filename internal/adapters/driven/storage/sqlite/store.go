package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docbase-labs/docbase-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/docbase-labs/docbase-cli/internal/core/domain"
	"github.com/docbase-labs/docbase-cli/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-cli/internal/workspace"
)

// StoreFile is the database file name under the semantic-data directory.
const StoreFile = "knowledge.db"

// Store is a unified SQLite-based storage that provides access to the
// vocabulary and chunk store interfaces through wrapper types. All
// components share this single path-safety-validated handle.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the knowledge base store inside the
// workspace's semantic-data directory. The path is validated against
// the workspace boundary before any file is touched.
func NewStore(ws *workspace.Workspace) (*Store, error) {
	dataDir, err := ws.SemanticDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving semantic data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, StoreFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptStore, err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptStore, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// VocabularyStore returns a VocabularyStore interface backed by this store.
func (s *Store) VocabularyStore() driven.VocabularyStore {
	return &vocabStore{store: s}
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version,
		); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vocabulary Store ====================

// vocabStore implements driven.VocabularyStore.
type vocabStore struct {
	store *Store
}

var _ driven.VocabularyStore = (*vocabStore)(nil)

// EnsureSchema idempotently re-applies pending migrations. Existing
// rows are never wiped.
func (s *vocabStore) EnsureSchema(_ context.Context) error {
	if err := s.store.migrate(migrations.FS); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCorruptStore, err)
	}
	return nil
}

// UpsertTerm creates the term if new and returns its identity.
func (s *vocabStore) UpsertTerm(ctx context.Context, canonical string) (domain.Term, error) {
	if canonical == "" {
		return domain.Term{}, domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO terms (canonical) VALUES (?)
		ON CONFLICT(canonical) DO NOTHING
	`, canonical)
	if err != nil {
		return domain.Term{}, fmt.Errorf("inserting term: %w", err)
	}

	var term domain.Term
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, canonical FROM terms WHERE canonical = ?", canonical)
	if err := row.Scan(&term.ID, &term.Canonical); err != nil {
		return domain.Term{}, fmt.Errorf("scanning term: %w", err)
	}

	return term, nil
}

// UpsertFolder creates the folder if its path is new and returns its identity.
func (s *vocabStore) UpsertFolder(ctx context.Context, path string) (domain.Folder, error) {
	if path == "" {
		return domain.Folder{}, domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO folders (path) VALUES (?)
		ON CONFLICT(path) DO NOTHING
	`, path)
	if err != nil {
		return domain.Folder{}, fmt.Errorf("inserting folder: %w", err)
	}

	var folder domain.Folder
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, path FROM folders WHERE path = ?", path)
	if err := row.Scan(&folder.ID, &folder.Path); err != nil {
		return domain.Folder{}, fmt.Errorf("scanning folder: %w", err)
	}

	return folder, nil
}

// UpsertFolderTerm creates or updates the weighted link.
func (s *vocabStore) UpsertFolderTerm(ctx context.Context, link domain.FolderTerm) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO folder_terms (folder_id, term_id, weight)
		VALUES (?, ?, ?)
		ON CONFLICT(folder_id, term_id) DO UPDATE SET
			weight = excluded.weight
	`, link.FolderID, link.TermID, link.Weight)
	if err != nil {
		return fmt.Errorf("upserting folder term: %w", err)
	}
	return nil
}

// LoadVocabulary returns the canonical-term to metadata mapping.
func (s *vocabStore) LoadVocabulary(ctx context.Context) (domain.Vocabulary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT t.canonical, f.path, ft.weight
		FROM terms t
		LEFT JOIN folder_terms ft ON ft.term_id = t.id
		LEFT JOIN folders f ON f.id = ft.folder_id
		ORDER BY t.canonical, f.path
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptStore, err)
	}
	defer rows.Close()

	vocab := make(domain.Vocabulary)
	for rows.Next() {
		var canonical string
		var path sql.NullString
		var weight sql.NullFloat64
		if err := rows.Scan(&canonical, &path, &weight); err != nil {
			return nil, fmt.Errorf("scanning vocabulary row: %w", err)
		}

		meta, ok := vocab[canonical]
		if !ok {
			meta = domain.TermMeta{
				Canonical: canonical,
				Folders:   make(map[string]float64),
			}
		}
		if path.Valid {
			w := domain.DefaultWeight
			if weight.Valid {
				w = weight.Float64
			}
			meta.Folders[path.String] = w
		}
		vocab[canonical] = meta
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vocabulary: %w", err)
	}

	return vocab, nil
}

// Counts returns taxonomy row counts.
func (s *vocabStore) Counts(ctx context.Context) (terms, folders, folderTerms int64, err error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM terms),
			(SELECT COUNT(*) FROM folders),
			(SELECT COUNT(*) FROM folder_terms)
	`)
	if err := row.Scan(&terms, &folders, &folderTerms); err != nil {
		return 0, 0, 0, fmt.Errorf("counting taxonomy rows: %w", err)
	}
	return terms, folders, folderTerms, nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// EnsureSchema idempotently re-applies pending migrations.
func (s *chunkStore) EnsureSchema(_ context.Context) error {
	if err := s.store.migrate(migrations.FS); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCorruptStore, err)
	}
	return nil
}

// SaveDocument stores or updates a document row keyed by source_id.
func (s *chunkStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.SourceID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (source_id, path, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			path = excluded.path,
			updated_at = excluded.updated_at
	`, doc.SourceID, doc.Path, now, now)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// HasChunk reports whether the chunk identity already exists.
func (s *chunkStore) HasChunk(
	ctx context.Context, sourceID string, index int, contentHash string,
) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chunks
		WHERE source_id = ? AND chunk_index = ? AND content_hash = ?
	`, sourceID, index, contentHash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking chunk: %w", err)
	}
	return count > 0, nil
}

// InsertChunk persists a chunk and its embedding in one transaction.
// Returns false when the chunk identity already existed.
func (s *chunkStore) InsertChunk(
	ctx context.Context, chunk domain.Chunk, emb domain.Embedding,
) (bool, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		INSERT INTO chunks (id, source_id, chunk_index, content, content_hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_id, chunk_index, content_hash) DO NOTHING
	`, chunk.ID, chunk.SourceID, chunk.Index, chunk.Content, chunk.ContentHash)
	if err != nil {
		return false, fmt.Errorf("inserting chunk: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking insert result: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	embeddingBlob := float32SliceToBytes(emb.Vector)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO embeddings (id, chunk_id, model, version, vector)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id, model, version) DO NOTHING
	`, emb.ID, emb.ChunkID, emb.Model, emb.Version, embeddingBlob)
	if err != nil {
		return false, fmt.Errorf("inserting embedding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}
	return true, nil
}

// ListCandidates loads chunks deterministically ordered by
// (source_id, chunk_index), with the latest embedding per chunk.
func (s *chunkStore) ListCandidates(ctx context.Context, limit, offset int) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.source_id, c.chunk_index, c.content, c.content_hash, e.vector
		FROM chunks c
		LEFT JOIN embeddings e ON e.id = (
			SELECT id FROM embeddings
			WHERE chunk_id = c.id
			ORDER BY version DESC, model
			LIMIT 1
		)
		ORDER BY c.source_id, c.chunk_index
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.SourceID, &chunk.Index,
			&chunk.Content, &chunk.ContentHash, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// Counts returns lineage row counts.
func (s *chunkStore) Counts(ctx context.Context) (documents, chunks, embeddings int64, err error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM chunks),
			(SELECT COUNT(*) FROM embeddings)
	`)
	if err := row.Scan(&documents, &chunks, &embeddings); err != nil {
		return 0, 0, 0, fmt.Errorf("counting lineage rows: %w", err)
	}
	return documents, chunks, embeddings, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
