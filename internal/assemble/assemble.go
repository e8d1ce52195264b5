// Package assemble folds the extractor's raw row stream into the canonical
// folio → scheme → transaction hierarchy in a single forward pass.
//
// Build state (the folio and scheme currently open) is scoped to one call;
// the returned statement is never mutated afterwards.
package assemble

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fundsight/casextract/internal/cas"
	"github.com/fundsight/casextract/internal/normalize"
	"github.com/fundsight/casextract/internal/tabular"
)

type builder struct {
	stmt      *cas.CASStatement
	folioIdx  map[string]int
	curFolio  int
	curScheme int
	// closed marks, by (folio, scheme) index, transaction tables whose
	// closing balance line has arrived (or whose absence was already
	// flagged). Folios interleave across pages, so a bool on the builder
	// would forget schemes left open in another folio.
	closed   map[[2]int]bool
	warnings []cas.Warning
}

// Assemble builds a statement from extracted rows. Row-level defects are
// recorded as warnings and the row dropped; only a statement with zero
// folios fails, with cas.ErrEmptyStatement.
func Assemble(registrar cas.Registrar, rows []tabular.RawRow) (*cas.CASStatement, []cas.Warning, error) {
	b := &builder{
		stmt:      &cas.CASStatement{Registrar: registrar, Folios: []cas.Folio{}},
		folioIdx:  make(map[string]int),
		curFolio:  -1,
		curScheme: -1,
		closed:    make(map[[2]int]bool),
	}

	for _, row := range rows {
		switch row.Section {
		case tabular.SectionFolioHeader:
			b.openFolio(row)
		case tabular.SectionSchemeHeader:
			b.openScheme(row)
		case tabular.SectionSummary:
			b.applySummary(row)
		case tabular.SectionTransaction:
			b.addTransaction(row)
		}
	}

	b.finishScheme()

	if len(b.stmt.Folios) == 0 {
		return nil, b.warnings, fmt.Errorf("%w: %s extractor produced %d rows but no folio opened",
			cas.ErrEmptyStatement, registrar, len(rows))
	}
	return b.stmt, b.warnings, nil
}

func (b *builder) loc(row tabular.RawRow) cas.Location {
	loc := cas.Location{Page: row.Page, Line: row.Line}
	if b.curFolio >= 0 {
		loc.Folio = b.stmt.Folios[b.curFolio].Number
		if b.curScheme >= 0 {
			loc.Scheme = b.stmt.Folios[b.curFolio].Schemes[b.curScheme].Name
		}
	}
	return loc
}

// openFolio starts a new folio or, for a folio number already seen (a
// continuation on a later page), re-opens it with its last scheme current.
func (b *builder) openFolio(row tabular.RawRow) {
	number := normalize.CleanIdentifier(cell(row, 0))
	if number == "" {
		b.warnings = append(b.warnings, cas.Warningf(cas.WarnOrphanScheme, b.loc(row),
			"folio header without a folio number"))
		return
	}

	if idx, ok := b.folioIdx[number]; ok {
		if idx != b.curFolio {
			b.finishScheme()
		}
		b.curFolio = idx
		b.curScheme = len(b.stmt.Folios[idx].Schemes) - 1
		return
	}

	b.finishScheme()
	b.stmt.Folios = append(b.stmt.Folios, cas.Folio{
		Number:  number,
		AMC:     normalize.CleanIdentifier(cell(row, 1)),
		Schemes: []cas.Scheme{},
	})
	b.curFolio = len(b.stmt.Folios) - 1
	b.folioIdx[number] = b.curFolio
	b.curScheme = -1
}

func (b *builder) openScheme(row tabular.RawRow) {
	if b.curFolio < 0 {
		b.warnings = append(b.warnings, cas.Warningf(cas.WarnOrphanScheme, b.loc(row),
			"scheme header with no open folio: %q", cell(row, 0)))
		return
	}

	b.finishScheme()

	scheme := cas.Scheme{
		Name:         normalize.CleanIdentifier(cell(row, 0)),
		ISIN:         normalize.CleanIdentifier(cell(row, 1)),
		Code:         normalize.CleanIdentifier(cell(row, 2)),
		Transactions: []cas.Transaction{},
	}

	folio := &b.stmt.Folios[b.curFolio]
	folio.Schemes = append(folio.Schemes, scheme)
	b.curScheme = len(folio.Schemes) - 1

	// Warn after the scheme is current so the location names it, not the
	// scheme just finished.
	if scheme.ISIN != "" && !normalize.ValidISIN(scheme.ISIN) {
		b.warnings = append(b.warnings, cas.Warningf(cas.WarnBadISIN, b.loc(row),
			"ISIN %q does not match the 12-character standard shape", scheme.ISIN))
	}
}

// finishScheme flags the scheme being left behind if its transaction table
// never reached a closing balance line. A scheme is flagged at most once,
// even when its folio is re-opened later.
func (b *builder) finishScheme() {
	sc := b.scheme()
	if sc == nil || len(sc.Transactions) == 0 {
		return
	}
	key := [2]int{b.curFolio, b.curScheme}
	if b.closed[key] {
		return
	}
	b.closed[key] = true
	b.warnings = append(b.warnings, cas.Warningf(cas.WarnMissingClosing,
		cas.Location{Folio: b.stmt.Folios[b.curFolio].Number, Scheme: sc.Name},
		"transaction table ended without a closing balance line"))
}

func (b *builder) scheme() *cas.Scheme {
	if b.curFolio < 0 || b.curScheme < 0 {
		return nil
	}
	return &b.stmt.Folios[b.curFolio].Schemes[b.curScheme]
}

func (b *builder) applySummary(row tabular.RawRow) {
	switch cell(row, 0) {
	case tabular.SummaryOpening:
		if sc := b.scheme(); sc != nil {
			if d, ok := b.number(row, 1, "opening balance"); ok {
				sc.OpeningUnits = d
			}
		}

	case tabular.SummaryClosing:
		sc := b.scheme()
		if sc == nil {
			return
		}
		b.closed[[2]int{b.curFolio, b.curScheme}] = true
		if d, ok := b.number(row, 1, "closing balance"); ok {
			sc.ClosingUnits = d
		}
		if d, ok := b.optionalNumber(row, 2, "closing NAV"); ok && d.IsPositive() {
			sc.ClosingNAV = &d
		}
		if d, ok := b.optionalNumber(row, 3, "market value"); ok {
			sc.MarketValue = &d
		}
		if d, ok := b.optionalNumber(row, 4, "cost"); ok {
			sc.Cost = &d
		}
		if sc.MarketValue != nil && sc.Cost != nil && sc.Cost.IsPositive() {
			abs := sc.MarketValue.Sub(*sc.Cost)
			sc.Gain = &cas.Gain{
				Absolute: abs,
				Percent:  abs.Div(*sc.Cost).Mul(decimal.NewFromInt(100)).Round(2),
			}
		}

	case tabular.SummaryPeriod:
		from, err1 := normalize.ParseDate(cell(row, 1))
		to, err2 := normalize.ParseDate(cell(row, 2))
		if err1 != nil || err2 != nil {
			b.warnings = append(b.warnings, cas.Warningf(cas.WarnBadDate, b.loc(row),
				"statement period dates unparseable: %q to %q", cell(row, 1), cell(row, 2)))
			return
		}
		b.stmt.Period = cas.Period{From: from, To: to}

	case tabular.SummaryName:
		if b.stmt.Investor.Name == "" {
			b.stmt.Investor.Name = normalize.CleanIdentifier(cell(row, 1))
		}
	case tabular.SummaryPAN:
		if b.stmt.Investor.PAN == "" {
			b.stmt.Investor.PAN = normalize.CleanIdentifier(cell(row, 1))
		}
	case tabular.SummaryAddress:
		if b.stmt.Investor.Address == "" {
			b.stmt.Investor.Address = normalize.CleanIdentifier(cell(row, 1))
		}
	case tabular.SummaryEmail:
		if b.stmt.Investor.Email == "" {
			b.stmt.Investor.Email = cell(row, 1)
		}
	case tabular.SummaryMobile:
		if b.stmt.Investor.Mobile == "" {
			b.stmt.Investor.Mobile = normalize.CleanIdentifier(cell(row, 1))
		}

	case tabular.SummaryAdvisor:
		if b.curFolio >= 0 && b.stmt.Folios[b.curFolio].Advisor == "" {
			b.stmt.Folios[b.curFolio].Advisor = cell(row, 1)
		}
	case tabular.SummaryRTA:
		if b.curFolio >= 0 && b.stmt.Folios[b.curFolio].RegistrarCode == "" {
			b.stmt.Folios[b.curFolio].RegistrarCode = cell(row, 1)
		}
	}
}

// addTransaction normalizes one transaction row. Any unparseable field drops
// the row with a warning; extraction continues.
func (b *builder) addTransaction(row tabular.RawRow) {
	sc := b.scheme()
	if sc == nil {
		b.warnings = append(b.warnings, cas.Warningf(cas.WarnOrphanRow, b.loc(row),
			"transaction row with no open scheme: %q", cell(row, 0)))
		return
	}

	date, err := normalize.ParseDate(cell(row, 0))
	if err != nil {
		b.warnings = append(b.warnings, cas.Warningf(cas.WarnBadDate, b.loc(row),
			"transaction date: %v", err))
		return
	}

	fields := [4]decimal.Decimal{}
	names := [4]string{"amount", "units", "NAV", "balance"}
	for i := range fields {
		d, err := normalize.ParseDecimal(cell(row, 2+i))
		if err != nil {
			b.warnings = append(b.warnings, cas.Warningf(cas.WarnBadNumber, b.loc(row),
				"transaction %s: %v", names[i], err))
			return
		}
		fields[i] = d
	}

	desc := normalize.CleanIdentifier(cell(row, 1))
	txType := normalize.Classify(desc)

	amount, units := fields[0], fields[1]
	// Registrars print outflow magnitudes unsigned unless parenthesized;
	// the canonical model keeps redemptions and switch-outs negative.
	if normalize.Outflow(txType) {
		amount = amount.Abs().Neg()
		units = units.Abs().Neg()
	}

	var rate *decimal.Decimal
	if txType == cas.TypeDividendPayout || txType == cas.TypeDividendReinvest {
		if r, ok := normalize.DividendRate(desc); ok {
			rate = &r
		}
	}

	sc.Transactions = append(sc.Transactions, cas.Transaction{
		Date:         date,
		Description:  desc,
		Type:         txType,
		Amount:       amount,
		Units:        units,
		NAV:          fields[2],
		BalanceUnits: fields[3],
		DividendRate: rate,
	})
}

func (b *builder) number(row tabular.RawRow, idx int, what string) (decimal.Decimal, bool) {
	d, err := normalize.ParseDecimal(cell(row, idx))
	if err != nil {
		b.warnings = append(b.warnings, cas.Warningf(cas.WarnBadNumber, b.loc(row),
			"%s: %v", what, err))
		return decimal.Decimal{}, false
	}
	return d, true
}

// optionalNumber is number for cells the template may leave empty; an empty
// cell is not a defect.
func (b *builder) optionalNumber(row tabular.RawRow, idx int, what string) (decimal.Decimal, bool) {
	if cell(row, idx) == "" {
		return decimal.Decimal{}, false
	}
	return b.number(row, idx, what)
}

func cell(row tabular.RawRow, idx int) string {
	if idx < 0 || idx >= len(row.Cells) {
		return ""
	}
	return row.Cells[idx]
}
