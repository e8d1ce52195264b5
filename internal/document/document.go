// Package document opens a (possibly encrypted) PDF byte stream and exposes
// it as pages of positioned text lines. It is the only package that touches
// the PDF library; everything downstream works on Document values.
//
// Decrypted content lives in memory for the lifetime of one extraction
// request and is never written anywhere.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/fundsight/casextract/internal/cas"
)

// Word is a run of text with its horizontal position on the page, in PDF
// points. Glyph fragments closer than fragmentGap are merged into one word.
type Word struct {
	Text string
	X    float64
	W    float64
}

// Line is one visual row of text, top to bottom within a page.
type Line struct {
	Y     float64
	Words []Word
	Text  string
}

// Page holds the text lines of one page, in reading order.
type Page struct {
	Number int
	Lines  []Line
}

// Document is a decrypted, page-addressable statement.
type Document struct {
	Pages []Page
}

// Glyph runs closer than this (in points) belong to the same word.
const fragmentGap = 1.2

// Open decrypts and reads a PDF from raw bytes. A wrong password yields
// cas.ErrDecryption; bytes that are not a readable PDF yield
// cas.ErrCorruptDocument. Pages whose text cannot be extracted come back
// empty with a warning instead of failing the document.
func Open(data []byte, password string) (*Document, []cas.Warning, error) {
	if len(data) < 5 || !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, nil, fmt.Errorf("%w: missing %%PDF header", cas.ErrCorruptDocument)
	}

	// One-shot password callback: the library calls it repeatedly until it
	// returns "", so offer the password exactly once.
	tried := false
	pw := func() string {
		if tried {
			return ""
		}
		tried = true
		return password
	}

	reader, err := pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), pw)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, nil, fmt.Errorf("%w: %v", cas.ErrDecryption, err)
		}
		return nil, nil, fmt.Errorf("%w: %v", cas.ErrCorruptDocument, err)
	}

	doc := &Document{Pages: make([]Page, 0, reader.NumPage())}
	var warnings []cas.Warning

	for i := 1; i <= reader.NumPage(); i++ {
		page := Page{Number: i}
		p := reader.Page(i)
		if p.V.IsNull() {
			warnings = append(warnings, cas.Warningf(cas.WarnPageUnreadable,
				cas.Location{Page: i}, "page %d has no content", i))
			doc.Pages = append(doc.Pages, page)
			continue
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			warnings = append(warnings, cas.Warningf(cas.WarnPageUnreadable,
				cas.Location{Page: i}, "page %d text extraction failed: %v", i, err))
			doc.Pages = append(doc.Pages, page)
			continue
		}

		for _, row := range rows {
			line := buildLine(float64(row.Position), row.Content)
			if line.Text != "" {
				page.Lines = append(page.Lines, line)
			}
		}
		doc.Pages = append(doc.Pages, page)
	}

	return doc, warnings, nil
}

// buildLine merges the raw text fragments of one row into words and joins
// them into the line's text.
func buildLine(y float64, fragments []pdf.Text) Line {
	frags := make([]pdf.Text, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.S) != "" {
			frags = append(frags, f)
		}
	}
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

	line := Line{Y: y}
	for _, f := range frags {
		s := strings.TrimSpace(f.S)
		n := len(line.Words)
		if n > 0 && f.X-(line.Words[n-1].X+line.Words[n-1].W) < fragmentGap {
			line.Words[n-1].Text += s
			line.Words[n-1].W = f.X + f.W - line.Words[n-1].X
			continue
		}
		line.Words = append(line.Words, Word{Text: s, X: f.X, W: f.W})
	}

	parts := make([]string, len(line.Words))
	for i, w := range line.Words {
		parts[i] = w.Text
	}
	line.Text = strings.Join(parts, " ")
	return line
}

// NewLine assembles a Line from words, computing the joined text. Used by
// downstream packages to build documents in tests and merges.
func NewLine(y float64, words ...Word) Line {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return Line{Y: y, Words: words, Text: strings.Join(parts, " ")}
}

// TextOfFirstPages joins the text of up to n leading pages, for format
// fingerprinting.
func (d *Document) TextOfFirstPages(n int) string {
	var sb strings.Builder
	for i, p := range d.Pages {
		if i >= n {
			break
		}
		for _, ln := range p.Lines {
			sb.WriteString(ln.Text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
