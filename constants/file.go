package constants

import "strings"

// Media types the dispatcher routes on.
const (
	MediaTypePlainText = "text/plain"
	MediaTypePDF       = "application/pdf"
	MediaTypeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeMSWord    = "application/msword"
	MediaTypeImagePfx  = "image/"
	MediaTypeOctet     = "application/octet-stream"
)

// Image media types that need conversion before OCR.
const (
	MediaTypeHEIC = "image/heic"
	MediaTypeHEIF = "image/heif"
	MediaTypeWEBP = "image/webp"
	MediaTypeBMP  = "image/bmp"
	MediaTypeTIFF = "image/tiff"
)

// MaxUploadSize mirrors the upload form limit (10MB per file).
const MaxUploadSize int64 = 10 << 20

// AllowedExtensions holds the default extensions picked up by directory ingest and the watcher.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
	"bmp":  {},
	"tif":  {},
	"tiff": {},
	"heic": {},
	"heif": {},
	"docx": {},
	"doc":  {},
}

var extMediaTypes = map[string]string{
	"txt":  MediaTypePlainText,
	"pdf":  MediaTypePDF,
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": MediaTypeWEBP,
	"bmp":  MediaTypeBMP,
	"tif":  MediaTypeTIFF,
	"tiff": MediaTypeTIFF,
	"heic": MediaTypeHEIC,
	"heif": MediaTypeHEIF,
	"docx": MediaTypeDOCX,
	"doc":  MediaTypeMSWord,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MediaTypeForExt returns the media type a browser would declare for ext,
// or "" when the extension is unknown.
func MediaTypeForExt(ext string) string {
	return extMediaTypes[NormalizeExt(ext)]
}

// IsHEICMediaType reports whether mt is a HEIC/HEIF image.
func IsHEICMediaType(mt string) bool {
	mt = strings.ToLower(mt)
	return mt == MediaTypeHEIC || mt == MediaTypeHEIF
}
