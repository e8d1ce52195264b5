// Package serialize turns the canonical model into its output forms: nested
// JSON, a flattened row-per-transaction table, and an Excel workbook.
// Decimal values serialize as exact decimal strings throughout; dates as ISO
// calendar dates.
package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/fundsight/casextract/internal/cas"
)

// ToJSON renders the statement as indented JSON. The output round-trips:
// FromJSON(ToJSON(s)) is field-for-field equal to s.
func ToJSON(stmt *cas.CASStatement) ([]byte, error) {
	b, err := json.MarshalIndent(stmt, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode statement: %w", err)
	}
	return b, nil
}

// FromJSON parses a statement previously produced by ToJSON.
func FromJSON(data []byte) (*cas.CASStatement, error) {
	var stmt cas.CASStatement
	if err := json.Unmarshal(data, &stmt); err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}
	return &stmt, nil
}
