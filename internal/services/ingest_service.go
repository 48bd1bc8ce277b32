package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/genserve-ai/rag-ingestion/internal/core"
	"github.com/genserve-ai/rag-ingestion/internal/models"
)

const (
	successMessage = "File uploaded and processed successfully"
	previewRunes   = 100
)

// Ingestor is the orchestration surface consumed by the HTTP layer.
type Ingestor interface {
	IngestFiles(ctx context.Context, userID, chatID string, files []models.UploadedFile) ([]models.IngestionResult, error)
}

// FileIngestor coordinates per-file ingestion. For every uploaded file it
// runs two branches concurrently on a shared bounded worker pool:
//
//	branch U: upload the raw bytes to object storage
//	branch E: extract text, chunk it, index the chunks
//
// Both branches always run to completion before their outcomes merge into
// one result, and one file's failure never aborts its siblings. The
// orchestrating goroutines only wait; all blocking work happens on the pool.
type FileIngestor struct {
	obj       core.ObjectClient
	index     core.VectorIndex
	extractor core.Extractor
	chunker   core.Chunker
	pool      *ants.Pool
}

var _ Ingestor = (*FileIngestor)(nil)

func NewFileIngestor(obj core.ObjectClient, index core.VectorIndex, extractor core.Extractor, chunker core.Chunker, poolSize int) (*FileIngestor, error) {
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &FileIngestor{
		obj:       obj,
		index:     index,
		extractor: extractor,
		chunker:   chunker,
		pool:      pool,
	}, nil
}

// Release frees the worker pool. Call once during shutdown.
func (s *FileIngestor) Release() {
	s.pool.Release()
}

// IngestFiles fans out one task per file and returns one result per file in
// input order. The returned error is non-nil only when the scheduler itself
// fails; per-file errors are folded into the corresponding result.
func (s *FileIngestor) IngestFiles(ctx context.Context, userID, chatID string, files []models.UploadedFile) ([]models.IngestionResult, error) {
	results := make([]models.IngestionResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i := range files {
		i := i
		file := files[i]
		g.Go(func() error {
			res, err := s.ingestOne(gctx, userID, chatID, file)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingestion fan-out: %w", err)
	}

	return results, nil
}

type uploadOutcome struct {
	url string
	err error
}

type indexOutcome struct {
	chunks     []string
	extractErr error
	indexErr   error
}

func (s *FileIngestor) ingestOne(ctx context.Context, userID, chatID string, file models.UploadedFile) (models.IngestionResult, error) {
	// The storage path is fixed before either branch starts: the uuid makes
	// it collision-free even for repeated filenames in one chat, and the
	// derived URL can go into chunk metadata before the upload finishes.
	storagePath := fmt.Sprintf("%s/%s/%s_%s", userID, chatID, uuid.NewString(), filepath.Base(file.Filename))
	blobURL := s.obj.ObjectURL(storagePath)

	var (
		wg  sync.WaitGroup
		up  uploadOutcome
		idx indexOutcome
	)
	branches := []func(){
		func() { up = s.uploadBranch(ctx, storagePath, file) },
		func() { idx = s.indexBranch(ctx, userID, chatID, storagePath, blobURL, file) },
	}
	for _, branch := range branches {
		branch := branch
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			branch()
		}); err != nil {
			wg.Done()
			wg.Wait() // join whatever was already submitted
			return models.IngestionResult{}, fmt.Errorf("submit ingestion task: %w", err)
		}
	}
	wg.Wait()

	return mergeOutcome(userID, chatID, file.Filename, storagePath, up, idx), nil
}

func (s *FileIngestor) uploadBranch(ctx context.Context, storagePath string, file models.UploadedFile) uploadOutcome {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := s.obj.UploadFile(ctx, storagePath, file.Content, contentType)
	if err != nil {
		log.Printf("ingest: blob upload failed for %q: %v", file.Filename, err)
		return uploadOutcome{err: err}
	}
	return uploadOutcome{url: url}
}

func (s *FileIngestor) indexBranch(ctx context.Context, userID, chatID, storagePath, blobURL string, file models.UploadedFile) indexOutcome {
	text, err := s.extractor.Extract(ctx, file.Filename, file.Content)
	if err != nil {
		log.Printf("ingest: extraction failed for %q: %v", file.Filename, err)
		return indexOutcome{extractErr: err}
	}

	pieces, err := s.chunker.Chunk(text)
	if err != nil {
		// splitter failure means malformed configuration; treat it like a
		// failed extraction since no chunks exist to index
		log.Printf("ingest: chunking failed for %q: %v", file.Filename, err)
		return indexOutcome{extractErr: fmt.Errorf("chunking failed: %w", err)}
	}
	log.Printf("ingest: chunked %q into %d chunks", file.Filename, len(pieces))

	chunks := make([]models.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = models.Chunk{
			Text:        p,
			Filename:    file.Filename,
			StoragePath: storagePath,
			BlobURL:     blobURL,
			UserID:      userID,
			ChatID:      chatID,
			Index:       i,
		}
	}

	if _, err := s.index.AddChunks(ctx, chunks); err != nil {
		log.Printf("ingest: could not index %q: %v", file.Filename, err)
		return indexOutcome{chunks: pieces, indexErr: err}
	}
	return indexOutcome{chunks: pieces}
}

// mergeOutcome folds both branch outcomes into one result. When upload and
// extraction both fail, the extraction message wins and the upload error
// stays in the logs.
func mergeOutcome(userID, chatID, filename, storagePath string, up uploadOutcome, idx indexOutcome) models.IngestionResult {
	res := models.IngestionResult{
		Filename: filename,
		UserID:   userID,
		ChatID:   chatID,
	}

	if up.err != nil {
		res.Error = fmt.Sprintf("Failed to upload file to blob storage: %v", up.err)
	} else {
		res.BlobURL = up.url
	}

	switch {
	case idx.extractErr != nil:
		res.Error = idx.extractErr.Error()
	case idx.indexErr != nil:
		res.Error = fmt.Sprintf("Failed to store in vector database: %v", idx.indexErr)
		res.TextExtracted = true
	case up.err == nil:
		count := len(idx.chunks)
		preview := ""
		if count > 0 {
			preview = firstChunkPreview(idx.chunks[0])
		}
		res.Message = successMessage
		res.Filename = storagePath
		res.ChunksCount = &count
		res.FirstChunkPreview = &preview
	}

	return res
}

// firstChunkPreview returns the leading runes of the chunk with a trailing
// ellipsis, the short summary chat clients render per file.
func firstChunkPreview(chunk string) string {
	r := []rune(chunk)
	if len(r) > previewRunes {
		r = r[:previewRunes]
	}
	return string(r) + "..."
}
