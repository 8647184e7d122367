package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	noWordText      = "No text found in Word document."
	wordMainPart    = "word/document.xml"
	wordprocessingN = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

var errNoMainPart = errors.New("could not find main document part, are you sure this is a valid .docx file")

// extractWord pulls raw text out of an Office Open XML package.
func extractWord(b []byte, logger *slog.Logger) (res Result) {
	defer recoverAs(&res, ParseError, "Error processing Word document: ", MethodDOCXText)

	txt, warnings, err := docxRawText(b)
	if err != nil {
		res = FailureResult(ParseError, "Error processing Word document: "+err.Error())
		res.Method = MethodDOCXText
		return res
	}
	for _, w := range warnings {
		logger.Debug("word extraction warning", "warning", w)
	}

	txt = strings.TrimSpace(txt)
	if txt == "" {
		txt = noWordText
	}
	res = TextResult(txt)
	res.Method = MethodDOCXText
	res.Warnings = warnings
	return res
}

func docxRawText(b []byte) (string, []string, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", nil, err
	}
	var main *zip.File
	for _, f := range zr.File {
		if f.Name == wordMainPart {
			main = f
			break
		}
	}
	if main == nil {
		return "", nil, errNoMainPart
	}
	rc, err := main.Open()
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()
	return documentText(rc)
}

// documentText walks document.xml. Paragraphs end with a blank line,
// tabs and breaks are kept, drawings and embedded objects are skipped.
func documentText(r io.Reader) (string, []string, error) {
	dec := xml.NewDecoder(r)
	var (
		out      strings.Builder
		warnings []string
		warned   = map[string]bool{}
		inText   bool
	)
	warn := func(kind string) {
		if !warned[kind] {
			warned[kind] = true
			warnings = append(warnings, fmt.Sprintf("skipped embedded %s", kind))
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", warnings, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordprocessingN {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			case "drawing", "pict":
				warn("drawing")
				if err := dec.Skip(); err != nil {
					return "", warnings, err
				}
			case "object":
				warn("object")
				if err := dec.Skip(); err != nil {
					return "", warnings, err
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordprocessingN {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return out.String(), warnings, nil
}
