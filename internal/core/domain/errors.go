package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// The manifest store returns this when a response_id would be overwritten.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Configuration errors. Always fatal, never silently downgraded.

	// ErrUnsafePath indicates a path resolves outside the workspace boundary.
	ErrUnsafePath = errors.New("path outside workspace")

	// ErrCorruptStore indicates the embedded store exists but is unreadable.
	// An absent store is a legitimate empty state; a corrupt one is not.
	ErrCorruptStore = errors.New("store unreadable or corrupt")

	// Import errors. Fatal for the import call; no partial writes.

	// ErrMalformedSource indicates the vocabulary source could not be parsed.
	ErrMalformedSource = errors.New("malformed vocabulary source")

	// Provider errors.

	// ErrProvider indicates an embedding-provider failure.
	// Recoverable per-chunk at index time; fatal at query time.
	ErrProvider = errors.New("embedding provider failure")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
