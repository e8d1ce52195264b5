package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/casextract/internal/cas"
)

func TestParseDate(t *testing.T) {
	t.Run("parses registrar formats", func(t *testing.T) {
		cases := map[string]cas.Date{
			"01-Feb-2023": cas.NewDate(2023, time.February, 1),
			"01-FEB-2023": cas.NewDate(2023, time.February, 1),
			"01-feb-2023": cas.NewDate(2023, time.February, 1),
			"15/04/2023":  cas.NewDate(2023, time.April, 15),
			"15-04-2023":  cas.NewDate(2023, time.April, 15),
			"2023-04-15":  cas.NewDate(2023, time.April, 15),
			"15 Apr 2023": cas.NewDate(2023, time.April, 15),
		}
		for input, want := range cases {
			got, err := ParseDate(input)
			require.NoError(t, err, "input %q", input)
			assert.Equal(t, want.String(), got.String(), "input %q", input)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, input := range []string{"", "not a date", "99-Zzz-2023", "Purchase"} {
			_, err := ParseDate(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}

func TestParseDecimal(t *testing.T) {
	t.Run("parses registrar number formats", func(t *testing.T) {
		cases := map[string]string{
			"5,000.00":     "5000",
			"1,23,456.78":  "123456.78", // Indian digit grouping
			"(1,250.00)":   "-1250",
			"500.00-":      "-500",
			"-20.5":        "-20.5",
			"Rs. 1,000.00": "1000",
			"₹750.25":      "750.25",
			"0.000":        "0",
			"115.000":      "115",
		}
		for input, want := range cases {
			got, err := ParseDecimal(input)
			require.NoError(t, err, "input %q", input)
			assert.Equal(t, want, got.String(), "input %q", input)
		}
	})

	t.Run("rejects non-numeric residue", func(t *testing.T) {
		for _, input := range []string{"", "N/A", "ABC", "12..5", "--"} {
			_, err := ParseDecimal(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}

func TestCleanIdentifier(t *testing.T) {
	assert.Equal(t, "91095687 / 0", CleanIdentifier("  91095687   /  0  "))
	assert.Equal(t, "", CleanIdentifier("   "))
}

func TestValidISIN(t *testing.T) {
	assert.True(t, ValidISIN("INF846K01EW2"))
	assert.True(t, ValidISIN("INE002A01018"))
	assert.False(t, ValidISIN("INF846K01EW"))  // 11 chars
	assert.False(t, ValidISIN("1NF846K01EW2")) // digit prefix
	assert.False(t, ValidISIN("INF846K01EWX")) // letter check digit
	assert.False(t, ValidISIN(""))
}

func TestClassify(t *testing.T) {
	cases := map[string]cas.TransactionType{
		"Purchase":                         cas.TypePurchase,
		"SIP Purchase - Instalment 12/36":  cas.TypePurchaseSIP,
		"Systematic Investment (1)":        cas.TypePurchaseSIP,
		"Redemption":                       cas.TypeRedemption,
		"Redemptn - NAV based":             cas.TypeRedemption, // truncated rendering
		"Switch Out - To Liquid Fund":      cas.TypeSwitchOut,
		"Switch In - From Liquid Fund":     cas.TypeSwitchIn,
		"Reinvestment of IDCW":             cas.TypeDividendReinvest,
		"Dividend Reinvestment @ Rs.1.20":  cas.TypeDividendReinvest,
		"IDCW Payout @ Rs.1.50 per unit":   cas.TypeDividendPayout,
		"*** Stamp Duty ***":               cas.TypeMisc,
		"Address updated from KYC records": cas.TypeMisc,
	}
	for desc, want := range cases {
		assert.Equal(t, want, Classify(desc), "description %q", desc)
	}
}

// An exact keyword anywhere in the description must win over a fuzzy
// near-miss in a higher-priority rule: "Investment" sits one edit inside
// "reinvestment", but the SIP wording is literal.
func TestClassifyPrefersExactKeywordOverFuzzy(t *testing.T) {
	assert.Equal(t, cas.TypePurchaseSIP, Classify("Systematic Investment (1)"))
	assert.Equal(t, cas.TypePurchaseSIP, Classify("Systematic Investment Plan Instalment"))
	// Without an exact keyword the fuzzy pass must not bridge the "re" prefix.
	assert.Equal(t, cas.TypeMisc, Classify("Investment Services Charge"))
}

func TestDividendRate(t *testing.T) {
	t.Run("extracts the per-unit rate", func(t *testing.T) {
		cases := map[string]string{
			"IDCW Payout @ Rs.1.50 per unit":  "1.5",
			"Dividend Reinvestment @ Rs.1.20": "1.2",
			"Dividend Paid @ ₹2.00 per unit":  "2",
			"IDCW @ 0.75":                     "0.75",
		}
		for desc, want := range cases {
			got, ok := DividendRate(desc)
			require.True(t, ok, "description %q", desc)
			assert.Equal(t, want, got.String(), "description %q", desc)
		}
	})

	t.Run("reports absence when no rate is stated", func(t *testing.T) {
		for _, desc := range []string{"Dividend Payout", "Purchase", ""} {
			_, ok := DividendRate(desc)
			assert.False(t, ok, "description %q", desc)
		}
	})
}

func TestOutflow(t *testing.T) {
	assert.True(t, Outflow(cas.TypeRedemption))
	assert.True(t, Outflow(cas.TypeSwitchOut))
	assert.False(t, Outflow(cas.TypePurchase))
	assert.False(t, Outflow(cas.TypeDividendReinvest))
}
