// Package vector defines the contract for the external vector index holding
// the pre-populated Aven knowledge base.
package vector

import "context"

// SearchResult is a single match from a similarity search. The passage body
// lives in Metadata under the "text" key; matches without it are tolerated
// and dropped later during context assembly.
type SearchResult struct {
	ID       string
	Score    float32
	Metadata map[string]string
}

// Repository provides top-k similarity search over the knowledge-base index.
// The index is populated out of band; this service only queries it.
type Repository interface {
	// Search returns the topK most similar entries, ranked by the index,
	// descending. The result may be shorter than topK or empty.
	Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)
	// Close releases resources.
	Close() error
}
