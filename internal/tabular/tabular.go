// Package tabular reads uploaded CSV and spreadsheet files into header-keyed
// records.
package tabular

import (
	"path/filepath"
	"strconv"
	"strings"

	"GtnPortal/internal/apperr"
)

// Format is the declared or sniffed file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

var (
	// ErrNoRows signals a file without any data row after parsing.
	ErrNoRows = apperr.New(apperr.KindEmptyInput, "file contains no data rows")

	// ErrUnsupportedFormat signals an extension other than .csv, .xlsx or .xls.
	ErrUnsupportedFormat = apperr.New(apperr.KindUnsupportedFormat, "unsupported file type")

	// ErrUndecodable signals bytes that none of the readers could decode.
	ErrUndecodable = apperr.New(apperr.KindUndecodable, "file could not be decoded")
)

// Record is one data row. Line is the 1-based data-row number (the header is
// not counted), which is what row-level warnings refer to.
type Record struct {
	Line   int               `json:"line"`
	Values map[string]string `json:"values"`
}

// Get returns the trimmed value under header, or "".
func (r Record) Get(header string) string {
	if header == "" {
		return ""
	}
	return strings.TrimSpace(r.Values[header])
}

// Table is the literal header row plus ordered records.
type Table struct {
	Format    Format   `json:"format"`
	Delimiter string   `json:"delimiter,omitempty"`
	Headers   []string `json:"headers"`
	Records   []Record `json:"records"`
}

// FormatFromName maps a file name to a Format by its extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", apperr.Wrapf(apperr.KindUnsupportedFormat, nil, "unsupported file type %q", filepath.Ext(name))
	}
}

// Read parses data according to format.
func Read(data []byte, format Format) (*Table, error) {
	if len(data) == 0 {
		return nil, ErrNoRows
	}
	var (
		rows  [][]string
		delim string
		err   error
	)
	switch format {
	case FormatCSV:
		rows, delim, err = readCSV(data)
	case FormatXLSX:
		rows, err = readXLSX(data)
	case FormatXLS:
		rows, err = readXLS(data)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	t, err := buildTable(rows)
	if err != nil {
		return nil, err
	}
	t.Format = format
	t.Delimiter = delim
	return t, nil
}

// ReadFile sniffs the format from name and parses data.
func ReadFile(name string, data []byte) (*Table, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	return Read(data, format)
}

// buildTable takes the first non-empty row as header and keys every following
// non-empty row by it. Duplicate header cells get a numeric suffix so no column
// is silently shadowed.
func buildTable(rows [][]string) (*Table, error) {
	headerIdx := -1
	for i, row := range rows {
		if !isEmptyRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrNoRows
	}

	raw := rows[headerIdx]
	if len(raw) > 0 {
		raw[0] = strings.TrimPrefix(raw[0], "\ufeff")
	}
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "column_" + strconv.Itoa(i+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = h + "_" + strconv.Itoa(n)
		}
		headers[i] = h
	}

	t := &Table{Headers: headers}
	line := 0
	for _, row := range rows[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}
		line++
		values := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(row) {
				values[h] = row[j]
			} else {
				values[h] = ""
			}
		}
		t.Records = append(t.Records, Record{Line: line, Values: values})
	}
	if len(t.Records) == 0 {
		return nil, ErrNoRows
	}
	return t, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")) != "" {
			return false
		}
	}
	return true
}
