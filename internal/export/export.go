// Package export writes pipeline outputs as semicolon CSV or as an xlsx
// workbook. Columns follow the csv struct tags of the exported type.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"GtnPortal/internal/apperr"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Delimiter is the CSV separator; Dutch spreadsheet tools expect ';'.
const Delimiter = ';'

// ParseFormat accepts "csv" or "xlsx", case-insensitively. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", apperr.Newf(apperr.KindInput, "unknown export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (f Format) Ext() string { return "." + string(f) }

// Sheet is one named table. Records must be a slice of structs with csv tags.
type Sheet struct {
	Name    string
	Records interface{}
}

// Write renders sheets in format f. CSV carries only the first sheet.
func Write(w io.Writer, f Format, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return apperr.New(apperr.KindInput, "nothing to export")
	}
	switch f {
	case FormatCSV:
		return writeCSV(w, sheets[0].Records)
	case FormatXLSX:
		return writeXLSX(w, sheets)
	default:
		return apperr.Newf(apperr.KindInput, "unknown export format %q", f)
	}
}

func writeCSV(w io.Writer, records interface{}) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	if err := gocsv.MarshalCSV(records, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to write csv", err)
	}
	return nil
}

func writeXLSX(w io.Writer, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to create header style", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.Name); err != nil {
				return apperr.Wrap(apperr.KindInternal, "failed to name sheet", err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return apperr.Wrap(apperr.KindInternal, "failed to create sheet", err)
		}

		headers, rows, err := table(sh.Records)
		if err != nil {
			return err
		}
		header := make([]interface{}, len(headers))
		for j, h := range headers {
			header[j] = h
		}
		if err := f.SetSheetRow(sh.Name, "A1", &header); err != nil {
			return apperr.Wrap(apperr.KindInternal, "failed to write header", err)
		}
		if len(headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(headers), 1)
			if err := f.SetCellStyle(sh.Name, "A1", last, headerStyle); err != nil {
				return apperr.Wrap(apperr.KindInternal, "failed to style header", err)
			}
			lastCol, _ := excelize.ColumnNumberToName(len(headers))
			_ = f.SetColWidth(sh.Name, "A", lastCol, 16)
		}
		for r, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(sh.Name, cell, &row); err != nil {
				return apperr.Wrapf(apperr.KindInternal, err, "failed to write row %d", r+1)
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to write workbook", err)
	}
	return nil
}

// table flattens a slice of structs into csv-tagged columns. Nil pointers
// become empty cells.
func table(records interface{}) ([]string, [][]interface{}, error) {
	v := reflect.ValueOf(records)
	if v.Kind() != reflect.Slice {
		return nil, nil, apperr.Newf(apperr.KindInternal, "export records must be a slice, got %T", records)
	}
	t := v.Type().Elem()
	if t.Kind() != reflect.Struct {
		return nil, nil, apperr.Newf(apperr.KindInternal, "export records must be structs, got %s", t)
	}

	var (
		headers []string
		index   []int
	)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := strings.Split(sf.Tag.Get("csv"), ",")[0]
		if !sf.IsExported() || tag == "-" || tag == "" {
			continue
		}
		headers = append(headers, tag)
		index = append(index, i)
	}

	rows := make([][]interface{}, v.Len())
	for r := 0; r < v.Len(); r++ {
		item := v.Index(r)
		row := make([]interface{}, len(index))
		for c, i := range index {
			fv := item.Field(i)
			if fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					row[c] = ""
					continue
				}
				fv = fv.Elem()
			}
			row[c] = fv.Interface()
		}
		rows[r] = row
	}
	return headers, rows, nil
}

// pct renders an optional percentage for flat exports.
func pct(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *p)
}
