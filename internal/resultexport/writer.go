// Package resultexport serializes a published ResultTable as JSON, CSV or
// XLSX for download.
package resultexport

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"docqa/internal/domain"
)

// BOM is written ahead of CSV output for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// SheetName is the worksheet XLSX exports are written to.
const SheetName = "Results"

// Write serializes table in the requested format.
func Write(w io.Writer, table *domain.ResultTable, format domain.ExportFormat) error {
	switch format {
	case domain.ExportFormatJSON:
		return WriteJSON(w, table)
	case domain.ExportFormatCSV:
		return WriteCSV(w, table)
	case domain.ExportFormatXLSX:
		return WriteXLSX(w, table)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
}

// WriteJSON writes the records as an array of flat objects, four-space
// indented, keys in merge order, non-ASCII characters literal.
func WriteJSON(w io.Writer, table *domain.ResultTable) error {
	records := table.Records
	if records == nil {
		records = []*domain.ExtractionRecord{}
	}
	compact, err := domain.MarshalLiteral(records)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "    "); err != nil {
		return fmt.Errorf("indenting results: %w", err)
	}
	out.WriteByte('\n')
	_, err = w.Write(out.Bytes())
	return err
}

// WriteCSV writes a BOM, a header of every column in first-seen order and one
// row per record. Missing answers are empty cells.
func WriteCSV(w io.Writer, table *domain.ResultTable) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cols := table.Columns()
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, rec := range table.Records {
		if err := cw.Write(recordToRow(rec, cols)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same layout as WriteCSV to a single-sheet workbook.
func WriteXLSX(w io.Writer, table *domain.ResultTable) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	cols := table.Columns()
	if err := sw.SetRow("A1", toCells(cols)); err != nil {
		return err
	}
	for i, rec := range table.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(recordToRow(rec, cols))); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}

func recordToRow(rec *domain.ExtractionRecord, cols []string) []string {
	row := make([]string, len(cols))
	for i, col := range cols {
		if v, ok := rec.Get(col); ok {
			row[i] = formatCell(v)
		}
	}
	return row
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// formatCell renders an answer value as cell text. Structured answers are
// kept as compact JSON.
func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	case bool, float64, int:
		return fmt.Sprint(val)
	default:
		b, err := domain.MarshalLiteral(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_prefix}_{YYYY-MM-DD}.{format}.
func BuildFilename(prefix string, format domain.ExportFormat) string {
	sanitized := SanitizeFilename(prefix)
	if sanitized == "" {
		sanitized = "results"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, format)
}
