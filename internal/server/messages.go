package server

import (
	"encoding/json"

	"github.com/joseph-ayodele/legaldocs/internal/ingest"
)

type AnalyzeRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Filename   string `json:"filename"`
	MediaType  string `json:"media_type"`
	Content    []byte `json:"content"` // base64 on the wire
	Force      bool   `json:"force,omitempty"`
}

type AnalyzeResponse struct {
	RecordID      string          `json:"record_id"`
	DocumentID    string          `json:"document_id"`
	Filename      string          `json:"filename"`
	MediaType     string          `json:"media_type"`
	Method        string          `json:"method"`
	Pages         int             `json:"pages"`
	ExtractedText string          `json:"extracted_text"`
	FailureKind   string          `json:"failure_kind,omitempty"`
	Deduplicated  bool            `json:"deduplicated,omitempty"`
	Report        json.RawMessage `json:"report"`
	CreatedAt     string          `json:"created_at"`
}

type Progress struct {
	DocumentID string `json:"document_id"`
	Percent    int    `json:"percent"`
}

// AnalyzeEvent carries either a progress update or the final result.
type AnalyzeEvent struct {
	Progress *Progress        `json:"progress,omitempty"`
	Result   *AnalyzeResponse `json:"result,omitempty"`
}

type ListAnalysesRequest struct {
	FromDate     string `json:"from_date,omitempty"` // YYYY-MM-DD
	ToDate       string `json:"to_date,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

type ListAnalysesResponse struct {
	Analyses []*AnalyzeResponse `json:"analyses"`
}

type GetAnalysisRequest struct {
	ID string `json:"id"`
}

type ExportAnalysesResponse struct {
	XLSX []byte `json:"xlsx"`
}

type IngestFileRequest struct {
	Path  string `json:"path"`
	Force bool   `json:"force,omitempty"`
}

type IngestDirectoryRequest struct {
	RootPath   string `json:"root_path"`
	SkipHidden bool   `json:"skip_hidden"`
	Force      bool   `json:"force,omitempty"`
}

type IngestFileResult struct {
	Path         string `json:"path"`
	DocumentID   string `json:"document_id,omitempty"`
	ContentHash  string `json:"content_hash,omitempty"`
	Queued       bool   `json:"queued"`
	Deduplicated bool   `json:"deduplicated,omitempty"`
	Error        string `json:"error,omitempty"`
}

type IngestDirectoryResponse struct {
	Results []IngestFileResult `json:"results"`
	Stats   ingest.DirStats    `json:"stats"`
}
