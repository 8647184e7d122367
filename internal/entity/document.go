package entity

import (
	"github.com/google/uuid"
)

// UploadedFile is the immutable input to extraction.
type UploadedFile struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	MediaType   string    `json:"media_type"`
	Size        int64     `json:"size"`
	Content     []byte    `json:"-"`
	ContentHash string    `json:"content_hash,omitempty"` // sha256 hex
	SourcePath  string    `json:"source_path,omitempty"`
}
