package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/legaldocs/constants"
	"github.com/joseph-ayodele/legaldocs/internal/common"
	"github.com/joseph-ayodele/legaldocs/internal/entity"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	MaxFileSize int64               // 0 -> unlimited
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> constants.AllowedExtensions
	logger      *slog.Logger
}

func NewFSIngestor(maxFileSize int64, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{
		MaxFileSize: maxFileSize,
		logger:      logger,
	}
}

// IngestPath reads path, hashes it and declares its media type from the extension.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (entity.UploadedFile, error) {
	var out entity.UploadedFile
	if err := ctx.Err(); err != nil {
		return out, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path error", "path", path, "error", err)
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !i.allowed(ext) {
		i.logger.Warn("unsupported or missing extension", "path", abs, "ext", ext)
		return out, common.NewAppError("UNSUPPORTED_FILE", fmt.Sprintf("unsupported or missing extension %q", ext), common.ErrUnsupported)
	}

	info, err := os.Stat(abs)
	if err != nil {
		i.logger.Error("stat error", "path", abs, "error", err)
		return out, err
	}
	if info.IsDir() {
		return out, common.NewAppError("INVALID_PATH", "path is a directory", common.ErrInvalidInput)
	}
	if i.MaxFileSize > 0 && info.Size() > i.MaxFileSize {
		i.logger.Warn("file too large", "path", abs, "size", info.Size(), "max", i.MaxFileSize)
		return out, common.NewAppError("FILE_TOO_LARGE",
			fmt.Sprintf("%s is %d bytes, limit is %d", filepath.Base(abs), info.Size(), i.MaxFileSize), common.ErrTooLarge)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		i.logger.Error("read error", "path", abs, "error", err)
		return out, err
	}
	sum := sha256.Sum256(content)

	out = entity.UploadedFile{
		ID:          uuid.New(),
		Filename:    filepath.Base(abs),
		MediaType:   constants.MediaTypeForExt(ext),
		Size:        int64(len(content)),
		Content:     content,
		ContentHash: hex.EncodeToString(sum[:]),
		SourcePath:  abs,
	}
	i.logger.Debug("file ingested", "path", abs, "media_type", out.MediaType, "size", out.Size)
	return out, nil
}

func (i *FSIngestor) allowed(ext string) bool {
	if i.AllowedExts == nil {
		return AllowedExt(ext)
	}
	_, ok := i.AllowedExts[constants.NormalizeExt(ext)]
	return ok
}
