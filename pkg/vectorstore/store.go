package vectorstore

import "context"

// SearchResult is one retrieved chunk with its similarity score.
type SearchResult struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// VectorStore is the contract for the retrieval backend. Collections are
// created on first upsert and merged into afterwards; queries never create
// collections.
type VectorStore interface {
	// ListCollections returns the names of all existing collections.
	ListCollections(ctx context.Context) ([]string, error)

	// Upsert stores vectors with their source texts under the collection,
	// creating the collection if it does not exist yet. vectors and texts
	// must be the same length.
	Upsert(ctx context.Context, collection string, vectors [][]float32, texts []string) error

	// Search returns the topK most similar chunks to the query vector,
	// ranked best first.
	Search(ctx context.Context, collection string, query []float32, topK int) ([]SearchResult, error)
}
