// Package domain contains the core business entities for docbase:
// the tag vocabulary (terms, folders, weighted links), indexed
// documents with their provenance-tracked chunks and embeddings,
// and the retrieval types (options, evidence, manifests).
//
// Domain types have no dependencies on adapters or infrastructure.
package domain
