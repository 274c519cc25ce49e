// Package index turns persisted tag-set files into a queryable vector
// index. Tag sets are flattened to text, embedded in fixed-size chunks, and
// upserted into a VectorIndex keyed by derived item id.
//
// The VectorIndex interface treats the similarity service as a black box;
// MemoryIndex is a self-contained implementation with JSON snapshot
// persistence, sufficient for corpora that fit in memory.
package index
