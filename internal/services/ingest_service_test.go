package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genserve-ai/rag-ingestion/internal/core/chunker"
	"github.com/genserve-ai/rag-ingestion/internal/models"
)

const (
	testUserID = "7f8a1f8e-8f56-4c59-9d54-2b1a1a9f3c11"
	testChatID = "chat-42"
)

// fakeObject records uploads and derives URLs the way the real client does.
// Keys containing failSubstr fail their upload.
type fakeObject struct {
	mu         sync.Mutex
	failSubstr string
	uploaded   []string
}

func (f *fakeObject) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeObject) UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.failSubstr != "" && strings.Contains(key, f.failSubstr) {
		return "", errors.New("connection reset")
	}
	f.mu.Lock()
	f.uploaded = append(f.uploaded, key)
	f.mu.Unlock()
	return f.ObjectURL(key), nil
}

func (f *fakeObject) ObjectURL(key string) string {
	return "https://uploads.example.com/" + key
}

type fakeIndex struct {
	mu      sync.Mutex
	failErr error
	batches [][]models.Chunk
}

func (f *fakeIndex) AddChunks(ctx context.Context, chunks []models.Chunk) (int, error) {
	if f.failErr != nil {
		return 0, f.failErr
	}
	f.mu.Lock()
	f.batches = append(f.batches, chunks)
	f.mu.Unlock()
	return len(chunks), nil
}

// fakeExtractor returns the file content as text, or a canned error for
// filenames listed in failFor.
type fakeExtractor struct {
	failFor map[string]error
}

func (f *fakeExtractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	if err, ok := f.failFor[filename]; ok {
		return "", err
	}
	return string(data), nil
}

func newTestIngestor(t *testing.T, obj *fakeObject, index *fakeIndex, ext *fakeExtractor) *FileIngestor {
	t.Helper()
	if ext == nil {
		ext = &fakeExtractor{}
	}
	ing, err := NewFileIngestor(obj, index, ext, chunker.New(2000, 200), 4)
	require.NoError(t, err)
	t.Cleanup(ing.Release)
	return ing
}

func TestIngestFilesResultsFollowInputOrder(t *testing.T) {
	obj := &fakeObject{}
	index := &fakeIndex{}
	ext := &fakeExtractor{failFor: map[string]error{
		"bad.txt": errors.New("Unsupported file extension: .xyz"),
	}}
	ing := newTestIngestor(t, obj, index, ext)

	files := []models.UploadedFile{
		{Filename: "a.txt", Content: []byte("alpha body")},
		{Filename: "bad.txt", Content: []byte("ignored")},
		{Filename: "c.txt", Content: []byte("gamma body")},
	}
	results, err := ing.IngestFiles(context.Background(), testUserID, testChatID, files)
	require.NoError(t, err)
	require.Len(t, results, 3)

	first := results[0]
	assert.Equal(t, "File uploaded and processed successfully", first.Message)
	assert.Contains(t, first.Filename, "_a.txt")
	assert.True(t, strings.HasPrefix(first.Filename, testUserID+"/"+testChatID+"/"))
	assert.Equal(t, testUserID, first.UserID)
	assert.Equal(t, testChatID, first.ChatID)
	assert.NotEmpty(t, first.BlobURL)
	require.NotNil(t, first.ChunksCount)
	assert.Equal(t, 1, *first.ChunksCount)
	require.NotNil(t, first.FirstChunkPreview)
	assert.Equal(t, "alpha body...", *first.FirstChunkPreview)
	assert.Empty(t, first.Error)

	second := results[1]
	assert.Equal(t, "Unsupported file extension: .xyz", second.Error)
	assert.Equal(t, "bad.txt", second.Filename)
	assert.Empty(t, second.Message)
	assert.Nil(t, second.ChunksCount)
	assert.Nil(t, second.FirstChunkPreview)
	assert.False(t, second.TextExtracted)
	// the raw bytes still land in object storage even when extraction fails
	assert.NotEmpty(t, second.BlobURL)

	third := results[2]
	assert.Equal(t, "File uploaded and processed successfully", third.Message)
	assert.Contains(t, third.Filename, "_c.txt")
}

func TestIngestFilesIndexFailure(t *testing.T) {
	obj := &fakeObject{}
	index := &fakeIndex{failErr: errors.New("qdrant unavailable")}
	ing := newTestIngestor(t, obj, index, nil)

	results, err := ing.IngestFiles(context.Background(), testUserID, testChatID, []models.UploadedFile{
		{Filename: "doc.txt", Content: []byte("some document text")},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "Failed to store in vector database: qdrant unavailable", res.Error)
	assert.True(t, res.TextExtracted)
	assert.Empty(t, res.Message)
	assert.Nil(t, res.ChunksCount)
	// extraction succeeded, so the original filename stays attached
	assert.Equal(t, "doc.txt", res.Filename)
	assert.NotEmpty(t, res.BlobURL)
}

func TestIngestFilesUploadFailure(t *testing.T) {
	obj := &fakeObject{failSubstr: "_doc.txt"}
	index := &fakeIndex{}
	ing := newTestIngestor(t, obj, index, nil)

	results, err := ing.IngestFiles(context.Background(), testUserID, testChatID, []models.UploadedFile{
		{Filename: "doc.txt", Content: []byte("some document text")},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "Failed to upload file to blob storage: connection reset", res.Error)
	assert.Empty(t, res.BlobURL)
	assert.Empty(t, res.Message)
	// indexing is independent of the upload and still ran
	require.Len(t, index.batches, 1)
}

func TestIngestFilesDuplicateFilenamesGetDistinctPaths(t *testing.T) {
	obj := &fakeObject{}
	index := &fakeIndex{}
	ing := newTestIngestor(t, obj, index, nil)

	files := []models.UploadedFile{
		{Filename: "report.txt", Content: []byte("first copy")},
		{Filename: "report.txt", Content: []byte("second copy")},
	}
	results, err := ing.IngestFiles(context.Background(), testUserID, testChatID, files)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, obj.uploaded, 2)

	assert.NotEqual(t, obj.uploaded[0], obj.uploaded[1])
	for _, key := range obj.uploaded {
		assert.True(t, strings.HasPrefix(key, testUserID+"/"+testChatID+"/"))
		assert.True(t, strings.HasSuffix(key, "_report.txt"))
	}
}

func TestIngestFilesZeroChunksStillSucceeds(t *testing.T) {
	obj := &fakeObject{}
	index := &fakeIndex{}
	ing := newTestIngestor(t, obj, index, nil)

	results, err := ing.IngestFiles(context.Background(), testUserID, testChatID, []models.UploadedFile{
		{Filename: "empty.txt", Content: []byte("   \n  ")},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "File uploaded and processed successfully", res.Message)
	require.NotNil(t, res.ChunksCount)
	assert.Equal(t, 0, *res.ChunksCount)
	require.NotNil(t, res.FirstChunkPreview)
	assert.Equal(t, "", *res.FirstChunkPreview)
}

func TestIngestFilesPreviewTruncation(t *testing.T) {
	obj := &fakeObject{}
	index := &fakeIndex{}
	ing := newTestIngestor(t, obj, index, nil)

	content := strings.Repeat("é", 300)
	results, err := ing.IngestFiles(context.Background(), testUserID, testChatID, []models.UploadedFile{
		{Filename: "long.txt", Content: []byte(content)},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NotNil(t, results[0].FirstChunkPreview)
	preview := *results[0].FirstChunkPreview
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.Equal(t, strings.Repeat("é", 100)+"...", preview)
}

func TestIngestFilesChunkMetadata(t *testing.T) {
	obj := &fakeObject{}
	index := &fakeIndex{}
	ing := newTestIngestor(t, obj, index, nil)

	var body strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&body, "Paragraph %02d carries enough text that the splitter has to break the document apart into more than one chunk.\n\n", i)
	}
	results, err := ing.IngestFiles(context.Background(), testUserID, testChatID, []models.UploadedFile{
		{Filename: "big.txt", Content: []byte(body.String())},
	})
	require.NoError(t, err)
	require.NotNil(t, results[0].ChunksCount)
	require.Greater(t, *results[0].ChunksCount, 1)

	require.Len(t, index.batches, 1)
	batch := index.batches[0]
	require.Len(t, batch, *results[0].ChunksCount)
	for i, c := range batch {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "big.txt", c.Filename)
		assert.Equal(t, testUserID, c.UserID)
		assert.Equal(t, testChatID, c.ChatID)
		assert.True(t, strings.HasSuffix(c.StoragePath, "_big.txt"))
		assert.Equal(t, obj.ObjectURL(c.StoragePath), c.BlobURL)
		assert.NotEmpty(t, c.Text)
	}
}
