package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/genserve-ai/rag-ingestion/internal/auth"
	"github.com/genserve-ai/rag-ingestion/internal/config"
	"github.com/genserve-ai/rag-ingestion/internal/core/chunker"
	"github.com/genserve-ai/rag-ingestion/internal/core/extract"
	"github.com/genserve-ai/rag-ingestion/internal/core/llm"
	objectclient "github.com/genserve-ai/rag-ingestion/internal/core/object-client"
	"github.com/genserve-ai/rag-ingestion/internal/core/vectorindex"
	"github.com/genserve-ai/rag-ingestion/internal/services"
)

type App struct {
	ObjectClient *objectclient.S3Client
	VectorIndex  *vectorindex.QdrantIndex
	Ingestor     *services.FileIngestor
	Server       *Server
}

// NewApp constructs every client explicitly and confirms the upload bucket
// exists before the server takes traffic. No package-level state, no
// init-time side effects.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	if err := objClient.EnsureBucket(appCtx); err != nil {
		return nil, fmt.Errorf("ensure upload bucket: %w", err)
	}
	log.Println("Object client initialized and upload bucket ready.")

	embedder, err := llm.NewEmbedder(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	index, err := vectorindex.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantCollection, cfg.QdrantAPIKey, embedder)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the vector index: %w", err)
	}
	log.Println("Vector index client initialized and ready.")

	ingestor, err := services.NewFileIngestor(
		objClient,
		index,
		extract.NewFileExtractor(),
		chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		cfg.PoolSize,
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the ingestor: %w", err)
	}

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTAudience)
	server := NewServer(cfg, verifier, ingestor)

	return &App{
		ObjectClient: objClient,
		VectorIndex:  index,
		Ingestor:     ingestor,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.Ingestor != nil {
		a.Ingestor.Release()
	}
}
