package tabular_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/casextract/internal/assemble"
	"github.com/fundsight/casextract/internal/cas"
	"github.com/fundsight/casextract/internal/document"
	"github.com/fundsight/casextract/internal/tabular"
	"github.com/fundsight/casextract/internal/validate"
)

// assertDecimal compares by value so exponent differences between "125"
// and "125.000" never matter.
func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}

// fixtureLine lays a row out with positioned words: a 4pt gap inside a
// column, a 26pt gap between columns, so the splitter sees one cell per
// argument.
func fixtureLine(y float64, cols ...string) document.Line {
	var words []document.Word
	x := 40.0
	for _, col := range cols {
		for _, tok := range strings.Fields(col) {
			w := float64(len(tok)) * 5
			words = append(words, document.Word{Text: tok, X: x, W: w})
			x += w + 4
		}
		x += 26
	}
	return document.NewLine(y, words...)
}

// camsFixture is a two-page statement: two folios, two schemes, four
// transactions, with the first scheme's table continuing onto page two
// before its closing line. The investor address sits between the PAN
// line and the contact lines, the way the template prints it.
func camsFixture() *document.Document {
	page1 := document.Page{Number: 1, Lines: []document.Line{
		fixtureLine(800, "CAMS - CONSOLIDATED ACCOUNT STATEMENT"),
		fixtureLine(780, "01-Jan-2023 to 31-Mar-2023"),
		fixtureLine(760, "Ravi Kumar PAN: ABCDE1234F"),
		fixtureLine(750, "Flat 12B, Lake View Apartments"),
		fixtureLine(745, "Mumbai 400001"),
		fixtureLine(740, "Email Id: ravi@example.com"),
		fixtureLine(720, "Mobile: +919876543210"),
		fixtureLine(690, "Axis Mutual Fund"),
		fixtureLine(670, "Folio No : 91095687 / 0 KYC: OK"),
		fixtureLine(650, "128TSDGG-Axis ELSS Tax Saver Fund - Growth - ISIN: INF846K01EW2 (Advisor: ARN-1234)"),
		fixtureLine(630, "Registrar : CAMS"),
		fixtureLine(610, "Opening Unit Balance: 100.000"),
		fixtureLine(590, "01-Feb-2023", "SIP Purchase - Instalment 2/24", "5,000.00", "20.000", "250.00", "120.000"),
		fixtureLine(570, "01-Mar-2023", "Redemption - NAV based", "(1,250.00)", "(5.000)", "250.00", "115.000"),
	}}

	page2 := document.Page{Number: 2, Lines: []document.Line{
		fixtureLine(800, "15-Mar-2023", "Purchase", "2,500.00", "10.000", "250.00", "125.000"),
		fixtureLine(780, "Closing Unit Balance: 125.000 NAV on 31-Mar-2023: 250.00 Valuation: 31,250.00 Cost : 30,000.00"),
		fixtureLine(740, "HDFC Mutual Fund"),
		fixtureLine(720, "Folio No: 12345678 / 44"),
		fixtureLine(700, "HDFC Flexi Cap Fund - Direct Growth - ISIN: INF179K01YV8"),
		fixtureLine(680, "Opening Unit Balance: 0.000"),
		fixtureLine(660, "10-Feb-2023", "Purchase - Lumpsum", "10,000.00", "95.238", "105.000", "95.238"),
		fixtureLine(640, "Closing Unit Balance: 95.238"),
		// Seven columns never reconcile to the transaction template.
		fixtureLine(620, "05-May-2023", "Bonus", "1.00", "2.00", "3.00", "4.00", "5.00"),
	}}

	return &document.Document{Pages: []document.Page{page1, page2}}
}

func TestCAMSExtractSections(t *testing.T) {
	ex, err := tabular.ForRegistrar(cas.RegistrarCAMS)
	require.NoError(t, err)

	rows, warnings, err := ex.ExtractSections(context.Background(), camsFixture())
	require.NoError(t, err)

	counts := map[tabular.SectionKind]int{}
	for _, row := range rows {
		counts[row.Section]++
	}
	assert.Equal(t, 2, counts[tabular.SectionFolioHeader])
	assert.Equal(t, 2, counts[tabular.SectionSchemeHeader])
	assert.Equal(t, 4, counts[tabular.SectionTransaction])

	require.Len(t, warnings, 1, "the seven-column row should be the only skip")
	assert.Equal(t, cas.WarnRowShape, warnings[0].Code)
	assert.Equal(t, 2, warnings[0].Location.Page)

	var folios [][]string
	var schemes [][]string
	for _, row := range rows {
		switch row.Section {
		case tabular.SectionFolioHeader:
			folios = append(folios, row.Cells)
		case tabular.SectionSchemeHeader:
			schemes = append(schemes, row.Cells)
		}
	}
	assert.Equal(t, []string{"91095687 / 0", "Axis Mutual Fund"}, folios[0])
	assert.Equal(t, []string{"12345678 / 44", "HDFC Mutual Fund"}, folios[1])
	assert.Equal(t, "Axis ELSS Tax Saver Fund - Growth", schemes[0][0])
	assert.Equal(t, "INF846K01EW2", schemes[0][1])
	assert.Equal(t, "128TSDGG", schemes[0][2])
	assert.Equal(t, "HDFC Flexi Cap Fund - Direct Growth", schemes[1][0])
	assert.Equal(t, "", schemes[1][2], "no scheme code prefix on the HDFC line")
}

func TestCAMSClosingLineCarriesValuation(t *testing.T) {
	ex, err := tabular.ForRegistrar(cas.RegistrarCAMS)
	require.NoError(t, err)

	rows, _, err := ex.ExtractSections(context.Background(), camsFixture())
	require.NoError(t, err)

	var closings [][]string
	for _, row := range rows {
		if row.Section == tabular.SectionSummary && row.Cells[0] == tabular.SummaryClosing {
			closings = append(closings, row.Cells)
		}
	}
	require.Len(t, closings, 2)
	assert.Equal(t, []string{tabular.SummaryClosing, "125.000", "250.00", "31,250.00", "30,000.00"}, closings[0])
	assert.Equal(t, []string{tabular.SummaryClosing, "95.238", "", "", ""}, closings[1])
}

// TestCAMSPipeline runs extraction through assembly and validation and
// checks the statement against the fixture, hand-verified.
func TestCAMSPipeline(t *testing.T) {
	ex, err := tabular.ForRegistrar(cas.RegistrarCAMS)
	require.NoError(t, err)

	rows, _, err := ex.ExtractSections(context.Background(), camsFixture())
	require.NoError(t, err)

	stmt, warnings, err := assemble.Assemble(cas.RegistrarCAMS, rows)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "Ravi Kumar", stmt.Investor.Name)
	assert.Equal(t, "ABCDE1234F", stmt.Investor.PAN)
	assert.Equal(t, "ravi@example.com", stmt.Investor.Email)
	assert.Equal(t, "+919876543210", stmt.Investor.Mobile)
	assert.Equal(t, "Flat 12B, Lake View Apartments, Mumbai 400001", stmt.Investor.Address)
	assert.Equal(t, "2023-01-01", stmt.Period.From.String())
	assert.Equal(t, "2023-03-31", stmt.Period.To.String())

	require.Len(t, stmt.Folios, 2)
	axis := stmt.Folios[0]
	assert.Equal(t, "ARN-1234", axis.Advisor)
	assert.Equal(t, "CAMS", axis.RegistrarCode)
	require.Len(t, axis.Schemes, 1)

	elss := axis.Schemes[0]
	assertDecimal(t, "100", elss.OpeningUnits)
	assertDecimal(t, "125", elss.ClosingUnits)
	require.NotNil(t, elss.ClosingNAV)
	assertDecimal(t, "250", *elss.ClosingNAV)
	require.NotNil(t, elss.MarketValue)
	assertDecimal(t, "31250", *elss.MarketValue)
	require.NotNil(t, elss.Cost)
	assertDecimal(t, "30000", *elss.Cost)
	require.NotNil(t, elss.Gain)
	assertDecimal(t, "1250", elss.Gain.Absolute)
	assertDecimal(t, "4.17", elss.Gain.Percent)

	require.Len(t, elss.Transactions, 3, "page-two continuation row belongs to the open scheme")
	assert.Equal(t, cas.TypePurchaseSIP, elss.Transactions[0].Type)
	assert.Equal(t, cas.TypeRedemption, elss.Transactions[1].Type)
	assertDecimal(t, "-1250", elss.Transactions[1].Amount)
	assertDecimal(t, "-5", elss.Transactions[1].Units)
	assert.Equal(t, cas.TypePurchase, elss.Transactions[2].Type)

	hdfc := stmt.Folios[1]
	require.Len(t, hdfc.Schemes, 1)
	assert.Len(t, hdfc.Schemes[0].Transactions, 1)
	assert.Nil(t, hdfc.Schemes[0].Gain, "no valuation printed for the HDFC scheme")

	vws, err := validate.Validate(stmt, validate.Config{})
	require.NoError(t, err)
	assert.Empty(t, vws, "fixture balances reconcile exactly")
}
