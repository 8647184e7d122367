package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

const noPDFText = "No text found in PDF document."

// extractPDF appends a banner per page in page order.
func extractPDF(b []byte) (res Result) {
	defer recoverAs(&res, ParseError, "Error processing PDF: ", MethodPDFText)

	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		res = FailureResult(ParseError, "Error processing PDF: "+err.Error())
		res.Method = MethodPDFText
		return res
	}

	n := r.NumPage()
	var acc strings.Builder
	for i := 1; i <= n; i++ {
		items, err := pageTextItems(r.Page(i))
		if err != nil {
			res = FailureResult(ParseError, fmt.Sprintf("Error processing PDF: page %d: %v", i, err))
			res.Method = MethodPDFText
			return res
		}
		fmt.Fprintf(&acc, "\n--- Page %d ---\n%s\n", i, joinItems(items))
	}

	txt := strings.TrimSpace(acc.String())
	if txt == "" {
		txt = noPDFText
	}
	res = TextResult(txt)
	res.Method = MethodPDFText
	res.Pages = n
	return res
}

// pageTextItems adapts the library's rows into PageTextItem values, top row first.
func pageTextItems(p pdf.Page) ([]PageTextItem, error) {
	if p.V.IsNull() {
		return nil, nil
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, err
	}
	var items []PageTextItem
	for _, row := range rows {
		for _, t := range row.Content {
			items = append(items, PageTextItem{Str: t.S})
		}
	}
	return items, nil
}

func joinItems(items []PageTextItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Str
	}
	return strings.Join(parts, " ")
}
