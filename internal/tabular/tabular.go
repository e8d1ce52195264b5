// Package tabular recovers section-tagged rows of raw text cells from a
// statement document. CAMS and NSDL lay their tables out differently, so
// each registrar has its own SectionExtractor; both share the output
// contract and the column-splitting machinery.
package tabular

import (
	"context"
	"fmt"
	"strings"

	"github.com/fundsight/casextract/internal/cas"
	"github.com/fundsight/casextract/internal/document"
)

// SectionKind tags what a raw row describes.
type SectionKind string

const (
	SectionFolioHeader  SectionKind = "folio_header"
	SectionSchemeHeader SectionKind = "scheme_header"
	SectionTransaction  SectionKind = "transaction"
	SectionSummary      SectionKind = "summary"
)

// Summary row tags. A summary row's first cell names what the remaining
// cells carry; the assembler dispatches on it.
const (
	SummaryOpening = "opening" // [opening, units]
	SummaryClosing = "closing" // [closing, units, nav, value, cost]
	SummaryPeriod  = "period"  // [period, from, to]
	SummaryName    = "name"    // [name, investor name]
	SummaryPAN     = "pan"     // [pan, value]
	SummaryAddress = "address" // [address, one address line]
	SummaryEmail   = "email"   // [email, value]
	SummaryMobile  = "mobile"  // [mobile, value]
	SummaryAdvisor = "advisor" // [advisor, ARN code]
	SummaryRTA     = "rta"     // [rta, registrar code]
)

// RawRow is one extracted table row: cells of raw text plus where it came
// from. Raw keeps the full line for diagnostics.
type RawRow struct {
	Page    int
	Line    int
	Section SectionKind
	Cells   []string
	Raw     string
}

// SectionExtractor walks a document and emits its rows in source order.
// Extraction never fails as a whole: rows that cannot be shaped are skipped
// with a warning.
type SectionExtractor interface {
	Registrar() cas.Registrar
	ExtractSections(ctx context.Context, doc *document.Document) ([]RawRow, []cas.Warning, error)
}

// ForRegistrar selects the extraction strategy for a detected registrar.
func ForRegistrar(r cas.Registrar) (SectionExtractor, error) {
	switch r {
	case cas.RegistrarCAMS:
		return &camsExtractor{}, nil
	case cas.RegistrarNSDL:
		return &nsdlExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: no extractor for registrar %q", cas.ErrUnsupportedFormat, r)
	}
}

// Column boundaries are word gaps. A gap of columnGap points or more splits
// cells on the first attempt; a mismatched row is retried once with the
// tolerance loosened toward the expected count, then skipped.
const (
	columnGap       = 10.0
	columnGapNarrow = 6.0
	columnGapWide   = 14.0
)

// splitCells groups a line's words into cells at gaps of at least minGap.
func splitCells(ln document.Line, minGap float64) []string {
	var cells []string
	var cell []string
	var prevEnd float64
	for i, w := range ln.Words {
		if i > 0 && w.X-prevEnd >= minGap {
			cells = append(cells, strings.Join(cell, " "))
			cell = nil
		}
		cell = append(cell, w.Text)
		prevEnd = w.X + w.W
	}
	if len(cell) > 0 {
		cells = append(cells, strings.Join(cell, " "))
	}
	return cells
}

// splitWithRetry shapes a line into exactly want cells: one strict pass,
// then one retry with the gap tolerance relaxed in the direction of the
// mismatch. No open-ended retrying.
func splitWithRetry(ln document.Line, want int) ([]string, bool) {
	cells := splitCells(ln, columnGap)
	if len(cells) == want {
		return cells, true
	}
	retryGap := columnGapWide
	if len(cells) < want {
		retryGap = columnGapNarrow
	}
	cells = splitCells(ln, retryGap)
	return cells, len(cells) == want
}

// shapeWarning records a row skipped because its cell count never matched
// the section template.
func shapeWarning(reg cas.Registrar, page, line, got, want int, raw string) cas.Warning {
	return cas.Warningf(cas.WarnRowShape, cas.Location{Page: page, Line: line},
		"%s row has %d columns, expected %d: %q", reg, got, want, snippet(raw))
}

// snippet truncates raw line text for diagnostics so warnings stay readable
// and never carry a full statement line.
func snippet(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
