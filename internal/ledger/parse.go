package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/newthinker/folio/internal/core"
)

// RequiredColumns lists the ledger columns that must be present, in the
// order they are reported when missing.
var RequiredColumns = []string{"asset_name", "ticker", "category", "units", "avg_price"}

// OptionalColumns default to an empty string when absent.
var OptionalColumns = []string{"thesis", "sector", "country"}

// row mirrors one ledger line. Numeric columns are kept as text so that a
// bad cell coerces to zero instead of failing the whole decode.
type row struct {
	AssetName string `csv:"asset_name"`
	Ticker    string `csv:"ticker"`
	Category  string `csv:"category"`
	Country   string `csv:"country"`
	Units     string `csv:"units"`
	AvgPrice  string `csv:"avg_price"`
	Thesis    string `csv:"thesis"`
	Sector    string `csv:"sector"`
}

func (r row) position() core.Position {
	return core.Position{
		AssetName: strings.TrimSpace(r.AssetName),
		Ticker:    strings.TrimSpace(r.Ticker),
		Category:  core.ParseCategory(r.Category),
		Country:   strings.TrimSpace(r.Country),
		Units:     parseNumber(r.Units),
		AvgPrice:  parseNumber(r.AvgPrice),
		Thesis:    strings.TrimSpace(r.Thesis),
		Sector:    strings.TrimSpace(r.Sector),
	}
}

// Parse decodes a CSV ledger. The header is matched case-insensitively.
// Missing required columns yield a *core.SchemaError naming all of them.
func Parse(r io.Reader) ([]core.Position, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, &core.SchemaError{Missing: append([]string(nil), RequiredColumns...)}
	}

	header := normalizeHeader(records[0])
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &core.SchemaError{Missing: missing}
	}
	records[0] = header

	// Drop fully blank lines that spreadsheet exports leave at the end.
	body := records[:1]
	for _, rec := range records[1:] {
		if !blank(rec) {
			body = append(body, fit(rec, len(header)))
		}
	}
	if len(body) == 1 {
		return []core.Position{}, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(body); err != nil {
		return nil, fmt.Errorf("normalizing csv: %w", err)
	}

	var rows []row
	if err := gocsv.UnmarshalBytes(buf.Bytes(), &rows); err != nil {
		return nil, fmt.Errorf("decoding ledger: %w", err)
	}

	positions := make([]core.Position, 0, len(rows))
	for _, rw := range rows {
		positions = append(positions, rw.position())
	}
	return positions, nil
}

func normalizeHeader(h []string) []string {
	out := make([]string, len(h))
	for i, name := range h {
		name = strings.TrimPrefix(name, "\ufeff")
		name = strings.ToLower(strings.TrimSpace(name))
		out[i] = strings.ReplaceAll(name, " ", "_")
	}
	return out
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// fit pads or truncates a ragged record to n fields.
func fit(rec []string, n int) []string {
	if len(rec) == n {
		return rec
	}
	out := make([]string, n)
	copy(out, rec)
	return out
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseNumber coerces a cell to float64. Thousands separators are accepted;
// anything else that is not a finite number becomes 0.
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return core.Known(v).Or(0)
}
