package tabular

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"GtnPortal/internal/apperr"
)

// readXLSX returns the display values of the first sheet.
func readXLSX(data []byte) ([][]string, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUndecodable, "invalid xlsx workbook", err)
	}
	defer xl.Close()

	sheets := xl.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}
	rows, err := xl.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUndecodable, "failed to read first sheet", err)
	}
	return rows, nil
}

// readXLS reads a legacy BIFF workbook. The xls decoder panics on some
// malformed inputs, so a panic is turned into an undecodable error.
func readXLS(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = apperr.Wrap(apperr.KindUndecodable, "invalid xls workbook", fmt.Errorf("%v", r))
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUndecodable, "invalid xls workbook", err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoRows
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for j := 0; j <= row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
