// Package validate runs post-assembly consistency checks. All checks are
// advisory by default: violations become warnings on the statement, never
// errors, unless the caller asks for strict balance auditing.
package validate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fundsight/casextract/internal/cas"
)

// Strictness controls whether balance-continuity violations stay advisory.
type Strictness int

const (
	// Lenient records continuity mismatches as warnings. The default.
	Lenient Strictness = iota
	// Strict escalates a continuity mismatch to cas.ErrBalanceMismatch,
	// for financial-auditing callers.
	Strict
)

// Config tunes the validator.
type Config struct {
	Strictness Strictness
	// Tolerance is the maximum absolute difference accepted between a
	// recomputed running balance and the stated one. Zero means exact.
	Tolerance decimal.Decimal
}

// Validate checks every scheme of an assembled statement and returns the
// warnings found. A statement with zero schemes across all folios is the
// one structural defect that escalates, as cas.ErrEmptyStatement.
func Validate(stmt *cas.CASStatement, cfg Config) ([]cas.Warning, error) {
	if stmt.SchemeCount() == 0 {
		return nil, fmt.Errorf("%w: %d folios but no schemes", cas.ErrEmptyStatement, len(stmt.Folios))
	}

	var warnings []cas.Warning
	for fi := range stmt.Folios {
		folio := &stmt.Folios[fi]
		for si := range folio.Schemes {
			ws, err := checkScheme(folio, &folio.Schemes[si], cfg)
			warnings = append(warnings, ws...)
			if err != nil {
				return warnings, err
			}
		}
	}
	return warnings, nil
}

func checkScheme(folio *cas.Folio, sc *cas.Scheme, cfg Config) ([]cas.Warning, error) {
	var warnings []cas.Warning
	loc := cas.Location{Folio: folio.Number, Scheme: sc.Name}

	if sc.ClosingUnits.IsNegative() {
		warnings = append(warnings, cas.Warningf(cas.WarnNegativeBalance, loc,
			"closing balance %s is negative", sc.ClosingUnits))
	}

	running := sc.OpeningUnits
	var prevDate cas.Date
	for i, tx := range sc.Transactions {
		if i > 0 && tx.Date.Before(prevDate.Time) {
			warnings = append(warnings, cas.Warningf(cas.WarnDateOrder, loc,
				"transaction %d dated %s precedes %s", i+1, tx.Date, prevDate))
		}
		prevDate = tx.Date

		if tx.Amount.Sign()*tx.Units.Sign() < 0 {
			warnings = append(warnings, cas.Warningf(cas.WarnSignMismatch, loc,
				"transaction %d: amount %s and units %s disagree in sign", i+1, tx.Amount, tx.Units))
		}

		running = running.Add(tx.Units)
		if !withinTolerance(running, tx.BalanceUnits, cfg.Tolerance) {
			warnings = append(warnings, cas.Warningf(cas.WarnBalanceMismatch, loc,
				"transaction %d: running balance %s, statement says %s", i+1, running, tx.BalanceUnits))
			// Trust the stated balance from here so one bad row does not
			// cascade a warning onto every row after it.
			running = tx.BalanceUnits
		}
	}

	if len(sc.Transactions) > 0 && !withinTolerance(running, sc.ClosingUnits, cfg.Tolerance) {
		w := cas.Warningf(cas.WarnBalanceMismatch, loc,
			"computed closing balance %s, statement says %s", running, sc.ClosingUnits)
		if cfg.Strictness == Strict {
			return append(warnings, w), fmt.Errorf("%w: folio %s scheme %q: computed %s, stated %s",
				cas.ErrBalanceMismatch, folio.Number, sc.Name, running, sc.ClosingUnits)
		}
		warnings = append(warnings, w)
	}

	return warnings, nil
}

func withinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}
