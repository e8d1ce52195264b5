package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fundsight/casextract/internal/engine"
	"github.com/fundsight/casextract/internal/serialize"
	"github.com/fundsight/casextract/internal/validate"
	"github.com/fundsight/casextract/pkg/config"
)

var (
	parsePassword string
	parseFormat   string
	parseOutput   string
	parseStrict   bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <statement.pdf>",
	Short: "Parse a CAS PDF into structured output",
	Long: `Parse a CAMS or NSDL Consolidated Account Statement.

Examples:
  casextract parse cas.pdf --password ABCDE1234F
  casextract parse cas.pdf --password ABCDE1234F --format excel --out cas.xlsx
  casextract parse cas.pdf --password ABCDE1234F --format csv --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parsePassword, "password", "p", "", "PDF password (usually the PAN)")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "", "output format: json, excel or csv")
	parseCmd.Flags().StringVarP(&parseOutput, "out", "o", "", "output file (default stdout, required for excel)")
	parseCmd.Flags().BoolVar(&parseStrict, "strict", false, "fail on unit-balance continuity mismatches")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	format := cfg.Output.Format
	if parseFormat != "" {
		format = strings.ToLower(parseFormat)
	}

	pdfBytes, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	tolerance, err := decimal.NewFromString(cfg.Engine.BalanceTolerance)
	if err != nil {
		return fmt.Errorf("BALANCE_TOLERANCE: %w", err)
	}
	strictness := validate.Lenient
	if parseStrict || cfg.Engine.StrictValidation {
		strictness = validate.Strict
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))

	eng := engine.New(engine.Config{
		MaxFileSize: cfg.Engine.MaxFileSizeBytes(),
		Validation: validate.Config{
			Strictness: strictness,
			Tolerance:  tolerance,
		},
	}, logger)

	stmt, err := eng.Extract(cmd.Context(), pdfBytes, parsePassword)
	if err != nil {
		return err
	}

	out := os.Stdout
	if parseOutput != "" {
		f, err := os.Create(parseOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", parseOutput, err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		b, err := serialize.ToJSON(stmt)
		if err != nil {
			return err
		}
		_, err = out.Write(append(b, '\n'))
		return err
	case "csv":
		return serialize.ToCSV(stmt, out)
	case "excel":
		if parseOutput == "" {
			return fmt.Errorf("excel output needs --out")
		}
		return serialize.ToExcel(stmt, out)
	default:
		return fmt.Errorf("unknown format %q (want json, excel or csv)", format)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
