// Package sqlite provides the embedded relational store for the
// workspace knowledge base: the tag taxonomy and the chunk/embedding
// lineage tables live in one database file under the workspace's
// semantic-data directory.
//
// The store serialises writes (single connection, transaction per
// logical upsert) and uses upsert semantics throughout, so concurrent
// imports against the same store cannot corrupt state.
package sqlite
