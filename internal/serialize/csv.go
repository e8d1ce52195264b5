package serialize

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/fundsight/casextract/internal/cas"
	"github.com/fundsight/casextract/internal/normalize"
)

// TransactionRecord is one flattened row: a transaction with its folio and
// scheme context repeated, so the table can be re-grouped losslessly.
type TransactionRecord struct {
	FolioNumber  string `csv:"folio_number"`
	AMC          string `csv:"amc"`
	SchemeName   string `csv:"scheme_name"`
	ISIN         string `csv:"isin"`
	Date         string `csv:"date"`
	Description  string `csv:"description"`
	Type         string `csv:"type"`
	Amount       string `csv:"amount"`
	Units        string `csv:"units"`
	NAV          string `csv:"nav"`
	BalanceUnits string `csv:"balance_units"`
	DividendRate string `csv:"dividend_rate"`
}

// Flatten produces one record per transaction, in statement order.
func Flatten(stmt *cas.CASStatement) []TransactionRecord {
	var records []TransactionRecord
	for _, f := range stmt.Folios {
		for _, sc := range f.Schemes {
			for _, tx := range sc.Transactions {
				rate := ""
				if tx.DividendRate != nil {
					rate = tx.DividendRate.String()
				}
				records = append(records, TransactionRecord{
					FolioNumber:  f.Number,
					AMC:          f.AMC,
					SchemeName:   sc.Name,
					ISIN:         sc.ISIN,
					Date:         tx.Date.String(),
					Description:  tx.Description,
					Type:         string(tx.Type),
					Amount:       tx.Amount.String(),
					Units:        tx.Units.String(),
					NAV:          tx.NAV.String(),
					BalanceUnits: tx.BalanceUnits.String(),
					DividendRate: rate,
				})
			}
		}
	}
	return records
}

// ToCSV writes the flattened transaction table.
func ToCSV(stmt *cas.CASStatement, w io.Writer) error {
	records := Flatten(stmt)
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("encode transaction table: %w", err)
	}
	return nil
}

// Regroup reconstructs the folio → scheme → transaction grouping from
// flattened records, preserving first-seen order. It inverts Flatten for
// everything the flat form carries.
func Regroup(records []TransactionRecord) ([]cas.Folio, error) {
	var folios []cas.Folio
	folioIdx := make(map[string]int)
	schemeIdx := make(map[string]int) // folio number + "\x00" + scheme name

	for i, r := range records {
		fi, ok := folioIdx[r.FolioNumber]
		if !ok {
			folios = append(folios, cas.Folio{Number: r.FolioNumber, AMC: r.AMC})
			fi = len(folios) - 1
			folioIdx[r.FolioNumber] = fi
		}

		key := r.FolioNumber + "\x00" + r.SchemeName
		si, ok := schemeIdx[key]
		if !ok {
			folios[fi].Schemes = append(folios[fi].Schemes, cas.Scheme{
				Name: r.SchemeName,
				ISIN: r.ISIN,
			})
			si = len(folios[fi].Schemes) - 1
			schemeIdx[key] = si
		}

		tx, err := recordTransaction(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		folios[fi].Schemes[si].Transactions = append(folios[fi].Schemes[si].Transactions, tx)
	}
	return folios, nil
}

func recordTransaction(r TransactionRecord) (cas.Transaction, error) {
	date, err := normalize.ParseDate(r.Date)
	if err != nil {
		return cas.Transaction{}, err
	}
	tx := cas.Transaction{
		Date:        date,
		Description: r.Description,
		Type:        cas.TransactionType(r.Type),
	}
	if tx.Amount, err = normalize.ParseDecimal(r.Amount); err != nil {
		return cas.Transaction{}, err
	}
	if tx.Units, err = normalize.ParseDecimal(r.Units); err != nil {
		return cas.Transaction{}, err
	}
	if tx.NAV, err = normalize.ParseDecimal(r.NAV); err != nil {
		return cas.Transaction{}, err
	}
	if tx.BalanceUnits, err = normalize.ParseDecimal(r.BalanceUnits); err != nil {
		return cas.Transaction{}, err
	}
	if r.DividendRate != "" {
		rate, err := normalize.ParseDecimal(r.DividendRate)
		if err != nil {
			return cas.Transaction{}, err
		}
		tx.DividendRate = &rate
	}
	return tx, nil
}
