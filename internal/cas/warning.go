package cas

import "fmt"

// WarningCode categorizes warnings by pipeline stage.
// W1xxx = extraction, W2xxx = normalization, W3xxx = structure, W4xxx = validation.
type WarningCode string

const (
	WarnRowShape       WarningCode = "W1001" // column count mismatch after relaxed retry
	WarnPageUnreadable WarningCode = "W1002" // page text could not be extracted

	WarnBadDate   WarningCode = "W2001" // unparseable date, row dropped
	WarnBadNumber WarningCode = "W2002" // unparseable amount/units/NAV, row dropped
	WarnBadISIN   WarningCode = "W2003" // malformed ISIN, value kept as printed

	WarnOrphanRow      WarningCode = "W3001" // transaction row with no open scheme
	WarnOrphanScheme   WarningCode = "W3002" // scheme header with no open folio
	WarnMissingClosing WarningCode = "W3003" // scheme closed without a closing balance

	WarnBalanceMismatch WarningCode = "W4001" // running balance disagrees with stated balance
	WarnDateOrder       WarningCode = "W4002" // transaction dates not non-decreasing
	WarnNegativeBalance WarningCode = "W4003" // closing balance below zero
	WarnSignMismatch    WarningCode = "W4004" // amount and units signs disagree
)

// Location points a warning at the row that produced it. Zero fields mean
// the context was not known at that stage.
type Location struct {
	Folio  string `json:"folio,omitempty"`
	Scheme string `json:"scheme,omitempty"`
	Page   int    `json:"page,omitempty"`
	Line   int    `json:"line,omitempty"`
}

// Warning is a non-fatal defect found during extraction. Warnings ride along
// on the statement; they are never raised as errors.
type Warning struct {
	Code     WarningCode `json:"code"`
	Message  string      `json:"message"`
	Location Location    `json:"location"`
}

// Warningf builds a Warning with a formatted message.
func Warningf(code WarningCode, loc Location, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...), Location: loc}
}
