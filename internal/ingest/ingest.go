package ingest

import (
	"context"

	"github.com/joseph-ayodele/legaldocs/internal/entity"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	File         entity.UploadedFile
	Deduplicated bool // same content, media type and filename seen earlier in the walk
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32 `json:"scanned"`
	Matched      uint32 `json:"matched"`
	Succeeded    uint32 `json:"succeeded"`
	Deduplicated uint32 `json:"deduplicated"`
	Failed       uint32 `json:"failed"`
}

// Ingestor is the behavior the pipeline and commands depend on.
type Ingestor interface {
	// IngestPath reads a single file into an UploadedFile.
	IngestPath(ctx context.Context, path string) (entity.UploadedFile, error)
	// IngestDirectory ingests all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
