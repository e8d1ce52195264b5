// Package normalize converts raw statement cells into typed values: dates,
// exact decimals, cleaned identifiers and classified transaction types.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"

	"github.com/fundsight/casextract/internal/cas"
)

// Candidate date layouts in match order; registrars favour DD-MMM-YYYY but
// older templates drift across separators and month spellings.
var dateLayouts = []string{
	"02-Jan-2006",
	"02-Jan-06",
	"02 Jan 2006",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
	"02.01.2006",
}

// ParseDate tries each candidate layout in order; the first match wins.
func ParseDate(s string) (cas.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return cas.Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return cas.DateOf(t), nil
		}
	}
	// Month names are sometimes printed fully upper- or lower-case, which
	// time.Parse rejects. Retry with the month token title-cased.
	if fixed := titleCaseMonth(s); fixed != s {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, fixed); err == nil {
				return cas.DateOf(t), nil
			}
		}
	}
	return cas.Date{}, fmt.Errorf("unrecognized date %q", s)
}

var monthToken = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\b`)

func titleCaseMonth(s string) string {
	return monthToken.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ToUpper(m[:1]) + strings.ToLower(m[1:])
	})
}

var currencyResidue = strings.NewReplacer("Rs.", "", "Rs", "", "INR", "", "₹", "", " ", "")

// ParseDecimal parses an amount or unit count as printed by the registrars:
// Indian-style digit grouping ("1,23,456.78"), currency residue, and a
// parenthesized or trailing-minus negative convention.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty number")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSuffix(s, "-")
	}

	s = currencyResidue.Replace(s)
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid number %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanIdentifier trims an identifier cell and collapses internal whitespace.
func CleanIdentifier(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// isinPattern is the standard 12-character shape: 2-letter country prefix,
// 9 alphanumerics, 1 check digit.
var isinPattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// ValidISIN reports whether s has the standard ISIN shape. Malformed ISINs
// are kept as printed; callers record a warning instead of dropping them.
func ValidISIN(s string) bool {
	return isinPattern.MatchString(s)
}

// typeRules map description keywords to transaction types, most specific
// first: "SIP Purchase" must classify before plain "Purchase", "Switch Out"
// before the redemption it is often worded as.
var typeRules = []struct {
	keywords []string
	txType   cas.TransactionType
}{
	{[]string{"switch out", "switch-out", "switchover out"}, cas.TypeSwitchOut},
	{[]string{"switch in", "switch-in", "switchover in"}, cas.TypeSwitchIn},
	{[]string{"dividend reinvest", "div reinvest", "reinvestment"}, cas.TypeDividendReinvest},
	{[]string{"dividend", "idcw"}, cas.TypeDividendPayout},
	{[]string{"redemption", "redeem"}, cas.TypeRedemption},
	{[]string{"sip", "systematic"}, cas.TypePurchaseSIP},
	{[]string{"purchase", "subscription"}, cas.TypePurchase},
}

// Classify derives the transaction type from the raw registrar description.
// Every rule gets a substring pass before any fuzzy matching, so an exact
// keyword in a later rule ("Systematic Investment" → SIP) always beats an
// approximate hit in an earlier one. The fuzzy fallback only exists for
// truncated renderings ("Redemptn"), so a token must share the keyword's
// leading characters to be considered.
func Classify(description string) cas.TransactionType {
	desc := strings.ToLower(description)

	for _, rule := range typeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.txType
			}
		}
	}

	tokens := strings.Fields(desc)
	for _, rule := range typeRules {
		for _, kw := range rule.keywords {
			if strings.ContainsRune(kw, ' ') {
				continue // multi-word keywords match on substring only
			}
			for _, tok := range tokens {
				if len(tok) < 3 || !strings.HasPrefix(kw, tok[:3]) {
					continue
				}
				if rank := fuzzy.RankMatchNormalizedFold(tok, kw); rank >= 0 && rank <= 3 {
					return rule.txType
				}
			}
		}
	}
	return cas.TypeMisc
}

// Outflow reports whether t moves units out of the scheme.
func Outflow(t cas.TransactionType) bool {
	return t == cas.TypeRedemption || t == cas.TypeSwitchOut
}

// Payout descriptions carry the declared per-unit rate inline, e.g.
// "IDCW Payout @ Rs.1.50 per unit" or "Dividend Reinvested @ 0.75".
var dividendRateRe = regexp.MustCompile(`(?i)@\s*(?:Rs\.?\s*|₹\s*)?([0-9]+(?:\.[0-9]+)?)`)

// DividendRate extracts the per-unit rate from a dividend description.
// The second return is false when the description states no rate.
func DividendRate(description string) (decimal.Decimal, bool) {
	m := dividendRateRe.FindStringSubmatch(description)
	if m == nil {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
