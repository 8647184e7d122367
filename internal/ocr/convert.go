package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/legaldocs/constants"
)

// needsReencode reports formats that are decoded in-process and handed to tesseract as PNG.
func needsReencode(mediaType string) bool {
	switch strings.ToLower(mediaType) {
	case constants.MediaTypeWEBP, constants.MediaTypeBMP, constants.MediaTypeTIFF, "image/x-ms-bmp":
		return true
	}
	return false
}

func reencodePNG(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode %s as png: %w", format, err)
	}
	return buf.Bytes(), nil
}
