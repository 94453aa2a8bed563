package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// ChunkEmbedding is the pgvector-backed row for one stored chunk.
type ChunkEmbedding struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Collection string          `gorm:"type:varchar(255);index;not null"`
	Text       string          `gorm:"type:text;not null"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt  time.Time
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}

// PgVectorStore keeps collections in a single pgvector table. It is the
// alternative retrieval backend for deployments without the FAISS service.
type PgVectorStore struct {
	db *gorm.DB
}

var _ VectorStore = &PgVectorStore{}

func NewPgVectorStore(db *gorm.DB) *PgVectorStore {
	return &PgVectorStore{db: db}
}

func (s *PgVectorStore) ListCollections(ctx context.Context) ([]string, error) {
	var collections []string
	err := s.db.WithContext(ctx).
		Model(&ChunkEmbedding{}).
		Distinct("collection").
		Pluck("collection", &collections).Error
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}

func (s *PgVectorStore) Upsert(ctx context.Context, collection string, vectors [][]float32, texts []string) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("vectors/texts length mismatch: %d vs %d", len(vectors), len(texts))
	}
	if len(vectors) == 0 {
		return nil
	}

	rows := make([]*ChunkEmbedding, len(vectors))
	for i := range vectors {
		rows[i] = &ChunkEmbedding{
			Id:         uuid.New(),
			Collection: collection,
			Text:       texts[i],
			Embedding:  pgvector.NewVector(vectors[i]),
		}
	}

	return s.db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

func (s *PgVectorStore) Search(ctx context.Context, collection string, query []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	queryVector := pgvector.NewVector(query)

	// Cosine distance is 1 - cosine_similarity, so similarity = 1 - distance.
	type row struct {
		Text       string
		Similarity float64
	}
	var rows []row

	err := s.db.WithContext(ctx).
		Table("chunk_embeddings").
		Select("text, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("collection = ?", collection).
		Order("similarity DESC").
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]SearchResult, len(rows))
	for i, r := range rows {
		results[i] = SearchResult{Text: r.Text, Score: r.Similarity}
	}
	return results, nil
}
