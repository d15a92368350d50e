package tabular

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"GtnPortal/internal/apperr"
)

func TestSniffDelimiter(t *testing.T) {
	cases := []struct {
		line string
		want rune
	}{
		{"klant;sku;omzet", ';'},
		{"customer,sku,revenue", ','},
		{"customer\tsku\trevenue", '\t'},
		{`"a;b",c,d`, ','},
		{"single", ','},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SniffDelimiter(c.line), c.line)
	}
}

func TestReadCSV_SemicolonQuotedAndBOM(t *testing.T) {
	data := []byte("\ufeffklant;sku;omschrijving;omzet\n" +
		"\n" +
		"Alpha BV;A-1;\"zalf; 30 g\";1.234,56\n" +
		"\"Beta \"\"Pharma\"\"\";B-2;tablet;99,5\n" +
		";;;\n")

	tbl, err := Read(data, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, ";", tbl.Delimiter)
	assert.Equal(t, []string{"klant", "sku", "omschrijving", "omzet"}, tbl.Headers)
	require.Len(t, tbl.Records, 2)

	assert.Equal(t, 1, tbl.Records[0].Line)
	assert.Equal(t, "zalf; 30 g", tbl.Records[0].Get("omschrijving"))
	assert.Equal(t, "1.234,56", tbl.Records[0].Get("omzet"))
	assert.Equal(t, `Beta "Pharma"`, tbl.Records[1].Get("klant"))
	assert.Equal(t, 2, tbl.Records[1].Line)
}

func TestReadCSV_Windows1252Fallback(t *testing.T) {
	// "Université" encoded as Windows-1252 (0xE9 for é).
	data := []byte("customer,revenue\nUniversit\xe9,10\n")
	tbl, err := Read(data, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Université", tbl.Records[0].Get("customer"))
}

func TestReadCSV_ShortRowsArePadded(t *testing.T) {
	tbl, err := Read([]byte("a,b,c\n1\n"), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "", tbl.Records[0].Get("c"))
}

func TestRead_DuplicateAndBlankHeaders(t *testing.T) {
	tbl, err := Read([]byte("gross,gross,\n1,2,3\n"), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"gross", "gross_2", "column_3"}, tbl.Headers)
	assert.Equal(t, "2", tbl.Records[0].Get("gross_2"))
}

func TestRead_NoRows(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("a;b;c\n"), []byte("\n\n")} {
		_, err := Read(data, FormatCSV)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoRows))
		assert.Equal(t, apperr.KindEmptyInput, apperr.KindOf(err))
	}
}

func TestFormatFromName(t *testing.T) {
	f, err := FormatFromName("Upload.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatFromName("legacy.xls")
	require.NoError(t, err)
	assert.Equal(t, FormatXLS, f)

	_, err = FormatFromName("report.pdf")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnsupportedFormat, apperr.KindOf(err))
}

func TestReadXLSX_FirstSheetDisplayValues(t *testing.T) {
	xl := excelize.NewFile()
	defer xl.Close()
	sheet := xl.GetSheetName(0)
	require.NoError(t, xl.SetSheetRow(sheet, "A1", &[]interface{}{"Klant", "Periode", "Omzet"}))
	require.NoError(t, xl.SetSheetRow(sheet, "A2", &[]interface{}{"Alpha BV", "2025-01", 1500.5}))
	require.NoError(t, xl.SetSheetRow(sheet, "A3", &[]interface{}{"Alpha BV", "2025-02", 2000}))
	_, err := xl.NewSheet("Ignored")
	require.NoError(t, err)
	require.NoError(t, xl.SetCellValue("Ignored", "A1", "not read"))

	var buf bytes.Buffer
	require.NoError(t, xl.Write(&buf))

	tbl, err := ReadFile("upload.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Klant", "Periode", "Omzet"}, tbl.Headers)
	require.Len(t, tbl.Records, 2)
	assert.Equal(t, "1500.5", tbl.Records[0].Get("Omzet"))
	assert.Equal(t, "2000", tbl.Records[1].Get("Omzet"))
}

func TestReadXLSX_Corrupt(t *testing.T) {
	_, err := Read([]byte("definitely not a zip"), FormatXLSX)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUndecodable, apperr.KindOf(err))
}

func TestReadXLS_Corrupt(t *testing.T) {
	_, err := Read([]byte("definitely not a workbook"), FormatXLS)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUndecodable, apperr.KindOf(err))
}
