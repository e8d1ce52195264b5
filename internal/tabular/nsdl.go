package tabular

import (
	"context"
	"regexp"
	"strings"

	"github.com/fundsight/casextract/internal/cas"
	"github.com/fundsight/casextract/internal/document"
)

// nsdlExtractor parses the NSDL CAS template. Holdings live in a titled
// "Mutual Fund Folios" section as ISIN-led rows; per-scheme transaction
// tables, when the statement carries them, use date-led rows like CAMS but
// in NSDL's column order.
type nsdlExtractor struct{}

const (
	// An NSDL holding row: ISIN, scheme name, units, NAV, value.
	nsdlHoldingColumns = 5
	// An NSDL transaction row: date, description, amount, units, NAV, balance.
	nsdlTxnColumns = 6
)

var (
	nsdlSectionStartRe = regexp.MustCompile(`(?i)MUTUAL FUND (FOLIOS|UNITS HELD)`)
	nsdlSectionEndRe   = regexp.MustCompile(`(?i)(DEMAT ACCOUNT|NOTES|STATEMENT OF TRANSACTIONS? IN DEMAT)`)
	nsdlFolioRe        = regexp.MustCompile(`(?i)Folio No\.?\s*:?\s*([\w/ -]+)`)
	nsdlISINRe         = regexp.MustCompile(`^IN[A-Z0-9]{9}[0-9]$`)
	nsdlDateRe         = regexp.MustCompile(`^\d{2}-[A-Za-z]{3}-\d{4}$`)
	nsdlPeriodRe       = regexp.MustCompile(`(?i)(\d{2}-[A-Za-z]{3}-\d{4})\s+to\s+(\d{2}-[A-Za-z]{3}-\d{4})`)
	nsdlPANRe          = regexp.MustCompile(`(?i)^(?:(.*\S)\s+)?PAN\s*:\s*([A-Z0-9Xx*]{10})\s*$`)
)

func (e *nsdlExtractor) Registrar() cas.Registrar { return cas.RegistrarNSDL }

func (e *nsdlExtractor) ExtractSections(ctx context.Context, doc *document.Document) ([]RawRow, []cas.Warning, error) {
	var rows []RawRow
	var warnings []cas.Warning

	// Section context survives page breaks until a terminator title shows.
	inMutualFunds := false
	lastAMC := ""
	periodSeen := false

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		for lineNo, ln := range page.Lines {
			text := ln.Text

			if !periodSeen {
				if m := nsdlPeriodRe.FindStringSubmatch(text); m != nil {
					rows = append(rows, summaryRow(page.Number, lineNo, SummaryPeriod, m[1], m[2]))
					periodSeen = true
					continue
				}
			}
			if m := nsdlPANRe.FindStringSubmatch(text); m != nil {
				if m[1] != "" {
					rows = append(rows, summaryRow(page.Number, lineNo, SummaryName, m[1]))
				}
				rows = append(rows, summaryRow(page.Number, lineNo, SummaryPAN, m[2]))
				continue
			}

			if nsdlSectionStartRe.MatchString(text) {
				inMutualFunds = true
				continue
			}
			if inMutualFunds && nsdlSectionEndRe.MatchString(text) {
				inMutualFunds = false
				continue
			}
			if !inMutualFunds {
				continue
			}

			if strings.Contains(text, "Mutual Fund") && !nsdlFolioRe.MatchString(text) {
				lastAMC = strings.TrimSpace(text)
			}

			if m := nsdlFolioRe.FindStringSubmatch(text); m != nil {
				rows = append(rows, RawRow{
					Page: page.Number, Line: lineNo, Section: SectionFolioHeader,
					Cells: []string{strings.TrimSpace(m[1]), lastAMC}, Raw: text,
				})
				continue
			}

			if len(ln.Words) == 0 {
				continue
			}

			if nsdlISINRe.MatchString(ln.Words[0].Text) {
				cells, ok := splitWithRetry(ln, nsdlHoldingColumns)
				if !ok {
					warnings = append(warnings, shapeWarning(cas.RegistrarNSDL,
						page.Number, lineNo, len(cells), nsdlHoldingColumns, text))
					continue
				}
				// Emit the holding as a scheme header followed by its
				// closing summary so the assembler sees one contract for
				// both registrars.
				rows = append(rows, RawRow{
					Page: page.Number, Line: lineNo, Section: SectionSchemeHeader,
					Cells: []string{cells[1], cells[0], ""}, Raw: text,
				})
				rows = append(rows, RawRow{
					Page: page.Number, Line: lineNo, Section: SectionSummary,
					Cells: []string{SummaryClosing, cells[2], cells[3], cells[4], ""}, Raw: text,
				})
				continue
			}

			if nsdlDateRe.MatchString(ln.Words[0].Text) {
				cells, ok := splitWithRetry(ln, nsdlTxnColumns)
				if !ok {
					warnings = append(warnings, shapeWarning(cas.RegistrarNSDL,
						page.Number, lineNo, len(cells), nsdlTxnColumns, text))
					continue
				}
				rows = append(rows, RawRow{
					Page: page.Number, Line: lineNo, Section: SectionTransaction,
					Cells: cells, Raw: text,
				})
			}
		}
	}

	return rows, warnings, nil
}
