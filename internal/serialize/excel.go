package serialize

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/fundsight/casextract/internal/cas"
	"github.com/fundsight/casextract/pkg/money"
)

// Workbook sheet names, mirroring the statement's structure: investor
// details, one row per scheme holding, one row per transaction.
const (
	sheetInvestor     = "Investor Info"
	sheetHoldings     = "Holdings"
	sheetTransactions = "Transactions"
)

// ToExcel writes the statement as an xlsx workbook. Decimal cells are
// written as strings so spreadsheet software cannot round them.
func ToExcel(stmt *cas.CASStatement, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeInvestorSheet(f, stmt); err != nil {
		return err
	}
	if err := writeHoldingsSheet(f, stmt); err != nil {
		return err
	}
	if err := writeTransactionsSheet(f, stmt); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeInvestorSheet(f *excelize.File, stmt *cas.CASStatement) error {
	// Rename the default sheet rather than leaving an empty "Sheet1".
	if err := f.SetSheetName("Sheet1", sheetInvestor); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}

	totalValue := decimal.Zero
	for _, folio := range stmt.Folios {
		for _, sc := range folio.Schemes {
			if sc.MarketValue != nil {
				totalValue = totalValue.Add(*sc.MarketValue)
			}
		}
	}

	rows := [][]any{
		{"Registrar", string(stmt.Registrar)},
		{"Statement Period", stmt.Period.From.String() + " to " + stmt.Period.To.String()},
		{"Name", stmt.Investor.Name},
		{"PAN", stmt.Investor.PAN},
		{"Email", stmt.Investor.Email},
		{"Mobile", stmt.Investor.Mobile},
		{"Address", stmt.Investor.Address},
		{"Folios", len(stmt.Folios)},
		{"Schemes", stmt.SchemeCount()},
		{"Transactions", stmt.TransactionCount()},
		{"Total Value", money.FromDecimal(totalValue).Display()},
	}
	return writeRows(f, sheetInvestor, rows)
}

func writeHoldingsSheet(f *excelize.File, stmt *cas.CASStatement) error {
	if _, err := f.NewSheet(sheetHoldings); err != nil {
		return fmt.Errorf("create %s sheet: %w", sheetHoldings, err)
	}

	rows := [][]any{{
		"Folio", "AMC", "Scheme", "ISIN", "Opening Units", "Closing Units",
		"Closing NAV", "Market Value", "Cost", "Gain", "Gain %",
	}}
	for _, folio := range stmt.Folios {
		for _, sc := range folio.Schemes {
			gain, gainPct := "", ""
			if sc.Gain != nil {
				gain = sc.Gain.Absolute.String()
				gainPct = sc.Gain.Percent.String()
			}
			rows = append(rows, []any{
				folio.Number, folio.AMC, sc.Name, sc.ISIN,
				sc.OpeningUnits.String(), sc.ClosingUnits.String(),
				optionalString(sc.ClosingNAV), optionalString(sc.MarketValue),
				optionalString(sc.Cost), gain, gainPct,
			})
		}
	}
	return writeRows(f, sheetHoldings, rows)
}

func writeTransactionsSheet(f *excelize.File, stmt *cas.CASStatement) error {
	if _, err := f.NewSheet(sheetTransactions); err != nil {
		return fmt.Errorf("create %s sheet: %w", sheetTransactions, err)
	}

	rows := [][]any{{
		"Folio", "Scheme", "Date", "Description", "Type", "Amount", "Units",
		"NAV", "Balance Units", "Dividend Rate",
	}}
	for _, rec := range Flatten(stmt) {
		rows = append(rows, []any{
			rec.FolioNumber, rec.SchemeName, rec.Date, rec.Description,
			rec.Type, rec.Amount, rec.Units, rec.NAV, rec.BalanceUnits,
			rec.DividendRate,
		})
	}
	return writeRows(f, sheetTransactions, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func optionalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
