package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "casextract",
	Short: "Extract holdings and transactions from CAMS/NSDL CAS PDFs",
	Long: `casextract parses password-protected Consolidated Account Statement
PDFs issued by CAMS and NSDL into structured data.

It detects the registrar automatically, recovers folios, schemes and
transaction history, validates unit-balance continuity, and writes the
result as JSON, a flat CSV transaction table, or an Excel workbook.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
