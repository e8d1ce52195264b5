package tabular

import (
	"context"
	"regexp"
	"strings"

	"github.com/fundsight/casextract/internal/cas"
	"github.com/fundsight/casextract/internal/document"
)

// camsExtractor parses the CAMS statement template: folios are introduced by
// "Folio No :" lines under an AMC heading, schemes by lines carrying an
// "ISIN:" marker, and each scheme is bracketed by opening/closing unit
// balance summary lines with date-led transaction rows between them.
type camsExtractor struct{}

// A CAMS transaction row: date, description, amount, units, price, balance.
const camsTxnColumns = 6

// The investor address is printed as free lines between the PAN line and the
// first folio anchor; cap how many are collected.
const camsMaxAddressLines = 4

var (
	camsFolioRe   = regexp.MustCompile(`(?i)^Folio No\s*:?\s*([\w/ -]+)`)
	camsKYCRe     = regexp.MustCompile(`(?i)\s*KYC.*$`)
	camsISINRe    = regexp.MustCompile(`(?i)ISIN\s*:\s*([A-Z0-9]+)`)
	camsCodeRe    = regexp.MustCompile(`^([A-Z0-9]{4,12})-(.+)$`)
	camsAdvisorRe = regexp.MustCompile(`ARN-\d+`)
	camsRTARe     = regexp.MustCompile(`(?i)Registrar\s*:?\s*(CAMS|KFINTECH)`)
	camsOpeningRe = regexp.MustCompile(`(?i)Opening Unit Balance`)
	camsClosingRe = regexp.MustCompile(`(?i)Closing Unit Balance`)
	camsCostRe    = regexp.MustCompile(`(?i)Cost\s*:?[^0-9]*([0-9][0-9,]*\.[0-9]+)`)
	camsPeriodRe  = regexp.MustCompile(`(?i)(\d{2}-[A-Za-z]{3}-\d{4})\s+to\s+(\d{2}-[A-Za-z]{3}-\d{4})`)
	camsPANRe     = regexp.MustCompile(`(?i)^(?:(.*\S)\s+)?PAN\s*:\s*([A-Z0-9Xx*]{10})\s*$`)
	camsEmailRe   = regexp.MustCompile(`(?i)Email\s*(?:Id)?\s*:\s*([^\s@]+@[^\s@]+\.[A-Za-z]{2,})`)
	camsMobileRe  = regexp.MustCompile(`(?i)Mobile\s*:?\s*(\+?\d[\d -]{8,}\d)`)
	camsDateRe    = regexp.MustCompile(`^\d{2}-[A-Za-z]{3}-\d{4}$`)

	// decimalRe matches amounts the way CAMS prints them, requiring a
	// decimal point so date fragments never match.
	decimalRe = regexp.MustCompile(`\(?[0-9][0-9,]*\.[0-9]+\)?-?`)
)

func (e *camsExtractor) Registrar() cas.Registrar { return cas.RegistrarCAMS }

// ExtractSections walks all pages in order. Folio and scheme context carries
// across page boundaries until a new anchor appears.
func (e *camsExtractor) ExtractSections(ctx context.Context, doc *document.Document) ([]RawRow, []cas.Warning, error) {
	var rows []RawRow
	var warnings []cas.Warning

	// AMC headings precede their folio line; remember the latest one seen.
	lastAMC := ""
	folioOpen := false
	periodSeen := false
	var prevText string

	// Address lines follow the PAN line until the next anchor.
	addrOpen := false
	var addrParts []string
	var addrPage, addrLine int

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		for lineNo, ln := range page.Lines {
			text := ln.Text

			if !periodSeen {
				if m := camsPeriodRe.FindStringSubmatch(text); m != nil {
					rows = append(rows, summaryRow(page.Number, lineNo, SummaryPeriod, m[1], m[2]))
					periodSeen = true
					prevText = text
					continue
				}
			}
			if m := camsPANRe.FindStringSubmatch(text); m != nil {
				if m[1] != "" {
					rows = append(rows, summaryRow(page.Number, lineNo, SummaryName, m[1]))
				}
				rows = append(rows, summaryRow(page.Number, lineNo, SummaryPAN, m[2]))
				addrOpen = true
				addrParts = nil
				prevText = text
				continue
			}
			if addrOpen {
				if !camsAddressStop(text) && len(addrParts) < camsMaxAddressLines {
					if t := strings.TrimSpace(text); t != "" {
						if len(addrParts) == 0 {
							addrPage, addrLine = page.Number, lineNo
						}
						addrParts = append(addrParts, t)
					}
					prevText = text
					continue
				}
				addrOpen = false
				if len(addrParts) > 0 {
					rows = append(rows, summaryRow(addrPage, addrLine, SummaryAddress, strings.Join(addrParts, ", ")))
				}
			}
			if m := camsEmailRe.FindStringSubmatch(text); m != nil {
				rows = append(rows, summaryRow(page.Number, lineNo, SummaryEmail, m[1]))
			}
			if m := camsMobileRe.FindStringSubmatch(text); m != nil {
				rows = append(rows, summaryRow(page.Number, lineNo, SummaryMobile, m[1]))
			}

			if strings.Contains(text, "Mutual Fund") && !camsISINRe.MatchString(text) {
				lastAMC = strings.TrimSpace(text)
			}

			if m := camsFolioRe.FindStringSubmatch(text); m != nil {
				number := strings.TrimSpace(camsKYCRe.ReplaceAllString(m[1], ""))
				rows = append(rows, RawRow{
					Page: page.Number, Line: lineNo, Section: SectionFolioHeader,
					Cells: []string{number, lastAMC}, Raw: text,
				})
				folioOpen = true
				prevText = text
				continue
			}

			if m := camsISINRe.FindStringSubmatch(text); m != nil {
				name, code := camsSchemeName(text, prevText)
				rows = append(rows, RawRow{
					Page: page.Number, Line: lineNo, Section: SectionSchemeHeader,
					Cells: []string{name, m[1], code}, Raw: text,
				})
				if folioOpen {
					if arn := camsAdvisorRe.FindString(text); arn != "" {
						rows = append(rows, summaryRow(page.Number, lineNo, SummaryAdvisor, arn))
					}
				}
				prevText = text
				continue
			}

			if folioOpen {
				if arn := camsAdvisorRe.FindString(text); arn != "" {
					rows = append(rows, summaryRow(page.Number, lineNo, SummaryAdvisor, arn))
				}
				if m := camsRTARe.FindStringSubmatch(text); m != nil {
					rows = append(rows, summaryRow(page.Number, lineNo, SummaryRTA, strings.ToUpper(m[1])))
				}
			}

			if camsOpeningRe.MatchString(text) {
				nums := decimalRe.FindAllString(text, 1)
				if len(nums) == 1 {
					rows = append(rows, summaryRow(page.Number, lineNo, SummaryOpening, nums[0]))
				}
				prevText = text
				continue
			}

			if camsClosingRe.MatchString(text) {
				rows = append(rows, camsClosingRow(page.Number, lineNo, text))
				prevText = text
				continue
			}

			if len(ln.Words) > 0 && camsDateRe.MatchString(ln.Words[0].Text) {
				cells, ok := splitWithRetry(ln, camsTxnColumns)
				if !ok {
					warnings = append(warnings, shapeWarning(cas.RegistrarCAMS,
						page.Number, lineNo, len(cells), camsTxnColumns, text))
					prevText = text
					continue
				}
				rows = append(rows, RawRow{
					Page: page.Number, Line: lineNo, Section: SectionTransaction,
					Cells: cells, Raw: text,
				})
			}

			prevText = text
		}
	}

	if addrOpen && len(addrParts) > 0 {
		rows = append(rows, summaryRow(addrPage, addrLine, SummaryAddress, strings.Join(addrParts, ", ")))
	}

	return rows, warnings, nil
}

// camsAddressStop reports whether a line ends the investor address block
// that follows the PAN line.
func camsAddressStop(text string) bool {
	if camsFolioRe.MatchString(text) || camsISINRe.MatchString(text) ||
		camsEmailRe.MatchString(text) || camsMobileRe.MatchString(text) ||
		camsOpeningRe.MatchString(text) || camsClosingRe.MatchString(text) ||
		strings.Contains(text, "Mutual Fund") {
		return true
	}
	fields := strings.Fields(text)
	return len(fields) > 0 && camsDateRe.MatchString(fields[0])
}

// camsSchemeName pulls the scheme name (and optional scheme code prefix)
// from an ISIN line. The name precedes the "ISIN:" marker on the same line;
// older templates put it on the line above.
func camsSchemeName(text, prevText string) (name, code string) {
	before := text
	if idx := camsISINRe.FindStringIndex(text); idx != nil {
		before = text[:idx[0]]
	}
	name = strings.Trim(strings.TrimSpace(before), "- ")
	if name == "" {
		name = strings.TrimSpace(prevText)
	}
	if m := camsCodeRe.FindStringSubmatch(name); m != nil {
		code = m[1]
		name = strings.TrimSpace(m[2])
	}
	return name, code
}

// camsClosingRow shapes a "Closing Unit Balance" line into a closing summary
// row: units, then NAV, valuation and cost when the template prints them.
// The cost amount is excluded from the positional slots by where it sits in
// the line, not by value, so a valuation equal to cost still lands.
func camsClosingRow(page, line int, text string) RawRow {
	cells := []string{SummaryClosing, "", "", "", ""}
	costStart := -1
	if m := camsCostRe.FindStringSubmatchIndex(text); m != nil {
		cells[4] = text[m[2]:m[3]]
		costStart = m[2]
	}
	slot := 1
	for _, idx := range decimalRe.FindAllStringIndex(text, -1) {
		if slot > 3 {
			break
		}
		if costStart >= 0 && idx[0] >= costStart {
			continue
		}
		cells[slot] = text[idx[0]:idx[1]]
		slot++
	}
	return RawRow{Page: page, Line: line, Section: SectionSummary, Cells: cells, Raw: text}
}

func summaryRow(page, line int, tag string, values ...string) RawRow {
	cells := append([]string{tag}, values...)
	return RawRow{Page: page, Line: line, Section: SectionSummary, Cells: cells, Raw: tag}
}
