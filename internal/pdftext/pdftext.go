// Package pdftext extracts the linear text stream of a PDF document.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"GtnPortal/internal/apperr"
)

var (
	ErrUnreadableDocument = apperr.New(apperr.KindUnreadableDocument, "document is corrupt or password protected")
	ErrNoExtractableText  = apperr.New(apperr.KindNoExtractableText, "document contains no extractable text")
)

// Extract returns the text of every page in page order. Rows within a page are
// separated by newlines and pages by a single newline, so a block that runs
// across a page break reads as contiguous lines. No column inference is done.
//
// The pdf library panics on some malformed inputs; those are reported as
// ErrUnreadableDocument.
func Extract(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = apperr.Wrap(apperr.KindUnreadableDocument, ErrUnreadableDocument.Message, fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnreadableDocument, ErrUnreadableDocument.Message, err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", apperr.Wrapf(apperr.KindUnreadableDocument, err, "page %d", i)
		}
		pages = append(pages, joinRows(rows))
	}

	text = strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return "", ErrNoExtractableText
	}
	return text, nil
}

func joinRows(rows pdf.Rows) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if line := joinRow(row.Content); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// joinRow glues the text runs of one row, inserting a space where the gap to
// the previous run is wider than a fraction of the font size.
func joinRow(runs pdf.TextHorizontal) string {
	var b strings.Builder
	var prevEnd float64
	for i, t := range runs {
		if t.S == "" {
			continue
		}
		if i > 0 && b.Len() > 0 && t.X-prevEnd > 0.15*t.FontSize && !strings.HasSuffix(b.String(), " ") {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
