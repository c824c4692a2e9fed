// Package pdftext renders PDF payloads as plain text for terminal previews.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxPages bounds how much of a long document a preview decodes
const DefaultMaxPages = 20

// Extractor implements ports.PDFTextExtractor
type Extractor struct {
	MaxPages int
}

func NewExtractor(maxPages int) *Extractor {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Extractor{MaxPages: maxPages}
}

// ExtractText returns the plain text of the first MaxPages pages.
// Pages that cannot be decoded are skipped rather than failing the preview.
func (e *Extractor) ExtractText(data []byte) (out string, err error) {
	// ledongthuc/pdf panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("new pdf reader: %w", err)
	}

	total := doc.NumPage()
	limit := total
	if e.MaxPages > 0 && limit > e.MaxPages {
		limit = e.MaxPages
	}

	var b strings.Builder
	for n := 1; n <= limit; n++ {
		p := doc.Page(n)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			fmt.Fprintf(&b, "\n── page %d ──\n", n)
		}
		b.WriteString(strings.TrimRight(content, "\n"))
	}

	if limit < total {
		fmt.Fprintf(&b, "\n\n… %d more pages", total-limit)
	}
	return b.String(), nil
}
