package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord is a stored extraction plus its report.
type AnalysisRecord struct {
	ID            uuid.UUID       `json:"id"`
	DocumentID    uuid.UUID       `json:"document_id"`
	Filename      string          `json:"filename"`
	MediaType     string          `json:"media_type"`
	Size          int64           `json:"size"`
	ContentHash   string          `json:"content_hash"`
	Method        string          `json:"method"`
	Pages         int             `json:"pages"`
	FailureKind   string          `json:"failure_kind,omitempty"`
	ExtractedText string          `json:"extracted_text"`
	DocumentType  string          `json:"document_type"`
	Authenticity  string          `json:"authenticity"`
	Confidence    float64         `json:"confidence"`
	Report        json.RawMessage `json:"report"`
	Status        string          `json:"status"`
	DurationMS    int64           `json:"duration_ms"`
	CreatedAt     time.Time       `json:"created_at"`
}
