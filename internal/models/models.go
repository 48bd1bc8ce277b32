package models

// UploadedFile is one file part decoded from the multipart request. It lives
// only for the duration of the request; its durable forms are the blob object
// and the indexed chunks.
type UploadedFile struct {
	Filename    string
	Content     []byte
	Size        int64
	ContentType string
}

// Chunk is one bounded piece of extracted document text together with the
// tenancy metadata stored alongside it in the vector index.
type Chunk struct {
	Text        string
	Filename    string // original client-supplied name
	StoragePath string
	BlobURL     string
	UserID      string
	ChatID      string
	Index       int // zero-based position within the source document
}

// IngestionResult is the per-file element of the upload response. Optional
// fields are omitted when unset so callers detect partial failure by field
// presence, not by HTTP status. ChunksCount and FirstChunkPreview are
// pointers so a successful zero-chunk file still serializes them.
type IngestionResult struct {
	Message           string  `json:"message,omitempty"`
	Filename          string  `json:"filename"`
	UserID            string  `json:"user_id"`
	ChatID            string  `json:"chat_id"`
	BlobURL           string  `json:"blob_url,omitempty"`
	ChunksCount       *int    `json:"chunks_count,omitempty"`
	FirstChunkPreview *string `json:"first_chunk_preview,omitempty"`
	Error             string  `json:"error,omitempty"`
	TextExtracted     bool    `json:"text_extracted,omitempty"`
}
