// Package corpus loads uploaded document spreadsheets into a domain.Corpus.
package corpus

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"docqa/internal/domain"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Kind is the detected upload format.
type Kind string

const (
	KindCSV  Kind = "csv"
	KindXLSX Kind = "xlsx"
)

// Detect sniffs data and falls back to the filename extension.
func Detect(data []byte, filename string) (Kind, error) {
	mtype := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(filename))

	if mtype.Is(xlsxMIME) || (mtype.Is("application/zip") && ext == ".xlsx") {
		return KindXLSX, nil
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return KindCSV, nil
		}
	}
	if slices.Contains([]string{".csv", ".txt"}, ext) {
		return KindCSV, nil
	}
	return "", fmt.Errorf("%w: detected %s", domain.ErrUnsupportedUpload, mtype.String())
}

// Load reads a CSV or XLSX upload. The first row is the header and must
// contain every column fields requires. Rows whose cell count differs from
// the header are skipped as malformed; rows with any empty cell are dropped.
func Load(r io.Reader, filename string, fields domain.CorpusFields) (*domain.Corpus, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	kind, err := Detect(data, filename)
	if err != nil {
		return nil, err
	}

	var (
		rows    [][]string
		skipped int
	)
	switch kind {
	case KindXLSX:
		rows, err = readXLSX(data)
	default:
		rows, skipped, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}

	c, err := build(rows, filename, fields, kind == KindXLSX)
	if err != nil {
		return nil, err
	}
	c.SkippedRows += skipped
	return c, nil
}

// readCSV returns the parsed rows and the number of rows the reader could
// not parse. Quotes inside unquoted fields are kept literally. Only encoding
// and read failures reject the whole upload.
func readCSV(data []byte) ([][]string, int, error) {
	if !utf8.Valid(data) {
		return nil, 0, domain.ErrInvalidEncoding
	}

	decoded := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	skipped := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			skipped++
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", domain.ErrMalformedUpload, err)
		}
		rows = append(rows, rec)
	}
	return rows, skipped, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedUpload, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrMalformedUpload)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedUpload, err)
	}
	return rows, nil
}

// build applies the header and row filtering rules. Spreadsheet rows omit
// trailing empty cells, so padShort pads them up to the header width.
func build(rows [][]string, filename string, fields domain.CorpusFields, padShort bool) (*domain.Corpus, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header row", domain.ErrMalformedUpload)
	}

	header := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(header))
	for i, h := range rows[0] {
		h = norm.NFC.String(h)
		if seen[h] {
			return nil, fmt.Errorf("%w: duplicate column %q", domain.ErrMalformedUpload, h)
		}
		seen[h] = true
		header[i] = h
	}

	var missing []string
	for _, col := range fields.Required() {
		if !seen[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumns, strings.Join(missing, ", "))
	}

	c := &domain.Corpus{
		SourceName: filepath.Base(filename),
		Columns:    header,
		Documents:  []domain.DocumentRecord{},
		LoadedAt:   time.Now().UTC(),
	}

	for _, row := range rows[1:] {
		if padShort && len(row) < len(header) {
			row = append(row, make([]string, len(header)-len(row))...)
		}
		if len(row) != len(header) {
			c.SkippedRows++
			continue
		}
		if slices.Contains(row, "") {
			c.DroppedRows++
			continue
		}
		doc := make(domain.DocumentRecord, len(header))
		for i, col := range header {
			doc[col] = norm.NFC.String(row[i])
		}
		c.Documents = append(c.Documents, doc)
	}
	return c, nil
}

// Append adds src's documents to dst. Both must carry the same columns.
func Append(dst, src *domain.Corpus) error {
	if !slices.Equal(dst.Columns, src.Columns) {
		return fmt.Errorf("%w: %s has different columns than %s", domain.ErrMalformedUpload, src.SourceName, dst.SourceName)
	}
	dst.Documents = append(dst.Documents, src.Documents...)
	dst.SkippedRows += src.SkippedRows
	dst.DroppedRows += src.DroppedRows
	return nil
}
