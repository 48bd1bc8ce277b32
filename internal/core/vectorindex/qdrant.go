package vectorindex

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores/qdrant"

	"github.com/genserve-ai/rag-ingestion/internal/core"
	"github.com/genserve-ai/rag-ingestion/internal/models"
)

// QdrantIndex wraps the Qdrant vector store as the indexing sink. Chunks go
// in with their tenancy metadata; retrieval filters on user_id and chat_id
// live in a separate query service.
type QdrantIndex struct {
	store qdrant.Store
}

var _ core.VectorIndex = (*QdrantIndex)(nil)

func NewQdrantIndex(rawURL, collection, apiKey string, embedder embeddings.Embedder) (*QdrantIndex, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant url: %w", err)
	}

	opts := []qdrant.Option{
		qdrant.WithURL(*u),
		qdrant.WithCollectionName(collection),
		qdrant.WithEmbedder(embedder),
	}
	if apiKey != "" {
		opts = append(opts, qdrant.WithAPIKey(apiKey))
	}

	store, err := qdrant.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create qdrant store: %w", err)
	}

	return &QdrantIndex{store: store}, nil
}

// AddChunks submits all of one file's chunks as a single batch. Zero chunks
// is a no-op, not an error.
func (q *QdrantIndex) AddChunks(ctx context.Context, chunks []models.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	docs := make([]schema.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = schema.Document{
			PageContent: c.Text,
			Metadata: map[string]any{
				"filename":     c.Filename,
				"storage_path": c.StoragePath,
				"blob_url":     c.BlobURL,
				"user_id":      c.UserID,
				"chat_id":      c.ChatID,
				"chunk_index":  c.Index,
			},
		}
	}

	if _, err := q.store.AddDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("add documents to vector store: %w", err)
	}
	return len(docs), nil
}
