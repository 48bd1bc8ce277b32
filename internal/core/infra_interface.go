package core

import (
	"context"

	"github.com/genserve-ai/rag-ingestion/internal/models"
)

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	// EnsureBucket confirms the upload bucket exists, creating it if absent.
	// Called once during process startup, never per request.
	EnsureBucket(ctx context.Context) error

	// UploadFile writes data under key, overwriting any existing object,
	// and returns the object's URL.
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (url string, err error)

	// ObjectURL returns the stable URL an object at key will have. No I/O;
	// safe to call before the upload has completed.
	ObjectURL(key string) string
}

// VectorIndex is the chunk store. It is consumed as an opaque semantic
// search service; this pipeline only ever adds documents.
type VectorIndex interface {
	AddChunks(ctx context.Context, chunks []models.Chunk) (count int, err error)
}

// Extractor converts one uploaded file into plain text, dispatching on the
// filename extension. Failures come back as error values; implementations
// must not panic past this boundary.
type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Chunker splits extracted text into bounded, overlapping pieces in source
// order.
type Chunker interface {
	Chunk(text string) ([]string, error)
}
