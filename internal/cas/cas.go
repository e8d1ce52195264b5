// Package cas defines the canonical data model produced by the extraction
// engine: a statement of folios, schemes and transactions recovered from a
// CAMS or NSDL consolidated account statement PDF.
//
// All monetary and unit quantities use shopspring/decimal so values survive
// serialization as exact decimal strings. Entities are assembled once and
// never mutated afterwards; nothing in this package is shared between
// extraction requests.
package cas

import (
	"github.com/shopspring/decimal"
)

// Registrar identifies which transfer agency issued the statement.
type Registrar string

const (
	RegistrarCAMS Registrar = "CAMS"
	RegistrarNSDL Registrar = "NSDL"
)

// Period is the date range a statement covers.
type Period struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// Investor holds the statement holder's details. PAN may arrive masked
// (e.g. "ABCDExxxxF"); it is preserved as printed.
type Investor struct {
	Name    string `json:"name,omitempty"`
	PAN     string `json:"pan,omitempty"`
	Email   string `json:"email,omitempty"`
	Mobile  string `json:"mobile,omitempty"`
	Address string `json:"address,omitempty"`
}

// CASStatement is the root of the canonical model.
type CASStatement struct {
	Registrar Registrar `json:"registrar"`
	Period    Period    `json:"statement_period"`
	Investor  Investor  `json:"investor"`
	Folios    []Folio   `json:"folios"`
	Warnings  []Warning `json:"warnings,omitempty"`
}

// Folio groups the schemes held under one account with a single AMC.
// Folio numbers are unique within a statement; rows for a folio seen again
// on a later page merge into the folio already assembled.
type Folio struct {
	Number        string   `json:"folio_number"`
	AMC           string   `json:"amc,omitempty"`
	RegistrarCode string   `json:"registrar_code,omitempty"`
	Advisor       string   `json:"advisor,omitempty"`
	Schemes       []Scheme `json:"schemes"`
}

// Scheme is a single fund holding within a folio.
type Scheme struct {
	Name         string           `json:"scheme_name"`
	Code         string           `json:"scheme_code,omitempty"`
	ISIN         string           `json:"isin,omitempty"`
	OpeningUnits decimal.Decimal  `json:"opening_units"`
	ClosingUnits decimal.Decimal  `json:"closing_units"`
	ClosingNAV   *decimal.Decimal `json:"closing_nav,omitempty"`
	MarketValue  *decimal.Decimal `json:"market_value,omitempty"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
	Gain         *Gain            `json:"gain,omitempty"`
	Transactions []Transaction    `json:"transactions"`
}

// Gain is the unrealized gain on a scheme, derived from market value and
// cost when the statement prints both. Percent is relative to cost,
// rounded to two places.
type Gain struct {
	Absolute decimal.Decimal `json:"absolute"`
	Percent  decimal.Decimal `json:"percent"`
}

// TransactionType classifies a transaction from its registrar description.
type TransactionType string

const (
	TypePurchase         TransactionType = "PURCHASE"
	TypePurchaseSIP      TransactionType = "PURCHASE_SIP"
	TypeRedemption       TransactionType = "REDEMPTION"
	TypeSwitchIn         TransactionType = "SWITCH_IN"
	TypeSwitchOut        TransactionType = "SWITCH_OUT"
	TypeDividendPayout   TransactionType = "DIVIDEND_PAYOUT"
	TypeDividendReinvest TransactionType = "DIVIDEND_REINVEST"
	TypeMisc             TransactionType = "MISC"
)

// Transaction is one row of a scheme's transaction table. Amount and Units
// are signed: outflows (redemptions, switch-outs) are negative. Rows keep
// the order the registrar printed them in; the engine never re-sorts.
type Transaction struct {
	Date         Date             `json:"date"`
	Description  string           `json:"description"`
	Type         TransactionType  `json:"type"`
	Amount       decimal.Decimal  `json:"amount"`
	Units        decimal.Decimal  `json:"units"`
	NAV          decimal.Decimal  `json:"nav"`
	BalanceUnits decimal.Decimal  `json:"balance_units"`
	DividendRate *decimal.Decimal `json:"dividend_rate,omitempty"`
}

// SchemeCount returns the number of schemes across all folios.
func (s *CASStatement) SchemeCount() int {
	n := 0
	for _, f := range s.Folios {
		n += len(f.Schemes)
	}
	return n
}

// TransactionCount returns the number of transactions across all schemes.
func (s *CASStatement) TransactionCount() int {
	n := 0
	for _, f := range s.Folios {
		for _, sc := range f.Schemes {
			n += len(sc.Transactions)
		}
	}
	return n
}
