package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/legaldocs/constants"
)

func isHEIC(mediaType string) bool {
	return constants.IsHEICMediaType(mediaType)
}

// convertHEICtoPNG converts HEIC/HEIF bytes to PNG bytes using the chosen converter.
// converter: "magick" | "heif-convert" | "sips"
// magick streams over stdin/stdout, the others need temp files.
func convertHEICtoPNG(ctx context.Context, r Runner, logger *slog.Logger, converter string, in []byte) ([]byte, []string, error) {
	if converter == "magick" {
		out, errb, err := r.Run(ctx, in, "magick", "heic:-", "png:-")
		if err != nil {
			return nil, []string{string(errb)}, fmt.Errorf("magick convert failed: %w", err)
		}
		if len(out) == 0 {
			return nil, nil, fmt.Errorf("HEIC conversion produced no output")
		}
		logger.Debug("converted heic to png", "converter", converter, "bytes", len(out))
		return out, nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "ld-heic-*")
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()
	src := filepath.Join(tmpDir, "page.heic")
	out := filepath.Join(tmpDir, "page.png")
	if err := os.WriteFile(src, in, 0o600); err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(converter) {
	case "heif-convert":
		if _, errb, err2 := r.Run(ctx, nil, "heif-convert", src, out); err2 != nil {
			return nil, []string{string(errb)}, fmt.Errorf("heif-convert failed: %w", err2)
		}
	case "sips":
		if _, errb, err2 := r.Run(ctx, nil, "sips", "-s", "format", "png", src, "--out", out); err2 != nil {
			return nil, []string{string(errb)}, fmt.Errorf("sips convert failed: %w", err2)
		}
	default:
		return nil, nil, fmt.Errorf("%w: set HEIC_CONVERTER to one of: heif-convert | magick | sips", ErrUnsupportedFormat)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		return nil, nil, fmt.Errorf("HEIC conversion produced no output: %v", err)
	}
	logger.Debug("converted heic to png", "converter", converter, "bytes", len(b))
	return b, nil, nil
}
