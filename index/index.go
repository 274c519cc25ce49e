package index

import "context"

// Record is one embedded tag-set ready for upsert.
type Record struct {
	// ID is the derived item id the vector belongs to.
	ID string `json:"id"`

	// Vector is the embedding, normalized to unit length.
	Vector []float32 `json:"vector"`
}

// Match is one similarity hit.
type Match struct {
	// ID is the derived item id of the matched record.
	ID string

	// Score is the cosine similarity to the query vector.
	Score float32
}

// VectorIndex is the similarity-search collaborator. The pipeline treats it
// as a black box: upsert vectors keyed by item id, query by vector for the
// nearest ids. Implementations must be thread-safe for concurrent use.
type VectorIndex interface {
	// Upsert inserts or replaces records by id.
	Upsert(ctx context.Context, records []Record) error

	// Query returns up to topK records most similar to the vector, ordered
	// by descending score.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}
