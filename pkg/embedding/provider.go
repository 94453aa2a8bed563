package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// The same provider instance embeds both stored chunks and search queries so
// the two always share one vector space.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
