// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - VocabularyStore: tag taxonomy persistence (terms, folders, weighted links)
//   - ChunkStore: document/chunk/embedding persistence with provenance
//   - ManifestStore: write-once evidence manifest persistence
//   - ConfigStore: application configuration
//   - EmbeddingService: vector embedding generation. Indexing degrades
//     per-chunk without it; retrieval fails fatally.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: any adapter package
package driven
