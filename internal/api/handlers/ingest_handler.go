package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	middleware "github.com/genserve-ai/rag-ingestion/internal/api/middlewares"
	"github.com/genserve-ai/rag-ingestion/internal/models"
	"github.com/genserve-ai/rag-ingestion/internal/services"
)

type IngestHandler struct {
	ingestor       services.Ingestor
	maxUploadBytes int64
}

func NewIngestHandler(ingestor services.Ingestor, maxUploadBytes int64) *IngestHandler {
	return &IngestHandler{ingestor: ingestor, maxUploadBytes: maxUploadBytes}
}

// UploadFiles ingests one or more multipart "file" parts for the chat named
// by "chat_id". The response is always a JSON array with one element per
// file; callers check each element's error field rather than the status.
func (h *IngestHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Missing Authorization header")
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid form data: %v. Must include file and chat_id.", err))
		return
	}

	chatID := r.FormValue("chat_id")
	parts := r.MultipartForm.File["file"]
	if len(parts) == 0 || chatID == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing file or chat_id in request.")
		return
	}

	files := make([]models.UploadedFile, 0, len(parts))
	for _, fh := range parts {
		f, err := fh.Open()
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid form data: %v. Must include file and chat_id.", err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid form data: %v. Must include file and chat_id.", err))
			return
		}

		files = append(files, models.UploadedFile{
			Filename:    fh.Filename,
			Content:     data,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	results, err := h.ingestor.IngestFiles(ctx, identity.UserID, chatID, files)
	if err != nil {
		log.Printf("ingest handler: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
