package vectorstore

import (
	"fmt"

	"gorm.io/gorm"
)

// NewVectorStore selects the retrieval backend by configuration.
func NewVectorStore(provider, faissURL string, db *gorm.DB) (VectorStore, error) {
	switch provider {
	case "faiss":
		if faissURL == "" {
			faissURL = "http://localhost:8004" // Default
		}
		return NewFaissStore(faissURL), nil
	case "pgvector":
		if db == nil {
			return nil, fmt.Errorf("pgvector store requires a database connection")
		}
		return NewPgVectorStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", provider)
	}
}
