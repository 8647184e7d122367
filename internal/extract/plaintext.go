package extract

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var errBinaryContent = errors.New("content is not text")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func hasBOM(b []byte) bool {
	return bytes.HasPrefix(b, bomUTF8) || bytes.HasPrefix(b, bomUTF16LE) || bytes.HasPrefix(b, bomUTF16BE)
}

// decodeText decodes b like a browser reading a text file: a BOM selects
// UTF-8 or UTF-16, otherwise UTF-8 with invalid sequences replaced.
func decodeText(b []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func extractPlainText(b []byte) Result {
	txt, err := decodeText(b)
	if err != nil {
		res := FailureResult(ReadError, "Failed to read text file")
		res.Method = MethodPlainText
		return res
	}
	res := TextResult(txt)
	res.Method = MethodPlainText
	return res
}

// extractFallback is the last resort for unknown types. It refuses content
// that does not look like text instead of returning replacement characters.
func extractFallback(b []byte) Result {
	txt, err := decodeFallback(b)
	if err != nil {
		res := FailureResult(ReadError, "Failed to read file")
		res.Method = MethodFallback
		return res
	}
	res := TextResult(txt)
	res.Method = MethodFallback
	return res
}

func decodeFallback(b []byte) (string, error) {
	if hasBOM(b) {
		return decodeText(b)
	}
	if !utf8.Valid(b) || bytes.IndexByte(b, 0) >= 0 {
		return "", errBinaryContent
	}
	return string(b), nil
}
