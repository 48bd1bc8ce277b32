package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/extrame/xls"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/xuri/excelize/v2"

	"github.com/genserve-ai/rag-ingestion/internal/core"
)

// Error is a typed extraction failure. Callers inspect it as a value;
// nothing in this package raises past Extract.
type Error struct {
	Filename string
	Ext      string
	Message  string
}

func (e *Error) Error() string { return e.Message }

// FileExtractor converts raw uploaded bytes into plain text, dispatching on
// the lowercase extension after the last dot of the filename.
type FileExtractor struct{}

var _ core.Extractor = (*FileExtractor)(nil)

func NewFileExtractor() *FileExtractor { return &FileExtractor{} }

const maxXLSRows = 1 << 20

func (e *FileExtractor) Extract(ctx context.Context, filename string, data []byte) (text string, err error) {
	dot := strings.LastIndex(filename, ".")
	if strings.TrimSpace(filename) == "" || dot < 0 {
		return "", &Error{Filename: filename, Message: "Filename is missing in the uploaded file."}
	}
	ext := strings.ToLower(filename[dot+1:])

	// Extraction libraries parse attacker-supplied bytes; a panic in any of
	// them must surface as this file's error, not kill sibling uploads.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &Error{Filename: filename, Ext: ext, Message: fmt.Sprintf("extraction failed for .%s: %v", ext, r)}
		}
	}()

	switch ext {
	case "pdf":
		return e.extractPDF(ctx, filename, data)
	case "xlsx":
		return e.extractXLSX(filename, data)
	case "xls":
		return e.extractXLS(filename, data)
	case "csv":
		return e.extractCSV(filename, data)
	case "txt", "py", "sql":
		return e.extractPlain(filename, ext, data)
	case "html":
		return e.extractHTML(filename, data)
	case "jpg", "jpeg", "png", "bmp", "tiff":
		return e.extractImage(filename, ext, data)
	default:
		return "", &Error{Filename: filename, Ext: ext, Message: fmt.Sprintf("Unsupported file extension: .%s", ext)}
	}
}

// extractPDF joins per-page text with newlines, preserving page order.
func (e *FileExtractor) extractPDF(ctx context.Context, filename string, data []byte) (string, error) {
	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	docs, err := loader.Load(ctx)
	if err != nil {
		return "", &Error{Filename: filename, Ext: "pdf", Message: fmt.Sprintf("failed to parse pdf: %v", err)}
	}
	pages := make([]string, 0, len(docs))
	for _, d := range docs {
		pages = append(pages, d.PageContent)
	}
	return strings.Join(pages, "\n"), nil
}

// extractXLSX reads the first sheet and re-serializes it as CSV text so the
// chunker sees a line-oriented form of the table.
func (e *FileExtractor) extractXLSX(filename string, data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", &Error{Filename: filename, Ext: "xlsx", Message: fmt.Sprintf("failed to parse xlsx: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", &Error{Filename: filename, Ext: "xlsx", Message: fmt.Sprintf("failed to read xlsx rows: %v", err)}
	}
	return rowsToCSV(filename, "xlsx", rows)
}

func (e *FileExtractor) extractXLS(filename string, data []byte) (string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", &Error{Filename: filename, Ext: "xls", Message: fmt.Sprintf("failed to parse xls: %v", err)}
	}
	rows := wb.ReadAllCells(maxXLSRows)
	return rowsToCSV(filename, "xls", rows)
}

// extractCSV parses and re-serializes so malformed input fails here rather
// than downstream, and so csv/xls/xlsx all yield the same textual form.
func (e *FileExtractor) extractCSV(filename string, data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return "", &Error{Filename: filename, Ext: "csv", Message: fmt.Sprintf("failed to parse csv: %v", err)}
	}
	return rowsToCSV(filename, "csv", rows)
}

func (e *FileExtractor) extractPlain(filename, ext string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &Error{Filename: filename, Ext: ext, Message: fmt.Sprintf("file .%s is not valid UTF-8 text", ext)}
	}
	return string(data), nil
}

// extractHTML keeps visible text nodes and discards markup.
func (e *FileExtractor) extractHTML(filename string, data []byte) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), "text/html", false)
	if err != nil {
		return "", &Error{Filename: filename, Ext: "html", Message: fmt.Sprintf("failed to parse html: %v", err)}
	}
	return res.Body, nil
}

// extractImage runs OCR over a raster image. Output quality depends on the
// source image; this is the only non-deterministic extraction path.
func (e *FileExtractor) extractImage(filename, ext string, data []byte) (string, error) {
	body, _, err := docconv.ConvertImage(bytes.NewReader(data))
	if err != nil {
		return "", &Error{Filename: filename, Ext: ext, Message: fmt.Sprintf("ocr failed for .%s: %v", ext, err)}
	}
	return body, nil
}

func rowsToCSV(filename, ext string, rows [][]string) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.WriteAll(rows); err != nil {
		return "", &Error{Filename: filename, Ext: ext, Message: fmt.Sprintf("failed to serialize table: %v", err)}
	}
	return sb.String(), nil
}
