package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"GtnPortal/internal/aggregate"
	"GtnPortal/internal/apperr"
	"GtnPortal/internal/normalize"
	"GtnPortal/internal/pricelist"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, ".csv", f.Ext())

	_, err = ParseFormat("pdf")
	assert.Equal(t, apperr.KindInput, apperr.KindOf(err))
}

func TestRows_CSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []normalize.CanonicalRow{{Line: 1, Customer: "Alpha BV", SKU: "A-1", Period: "2025-01", Gross: 1000}}
	require.NoError(t, Rows(&buf, FormatCSV, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "line;product_group;sku;customer;period;period_kind;gross;"))
	assert.NotContains(t, lines[0], "period_order")
	assert.Contains(t, lines[1], "Alpha BV")
}

func TestRows_EmptyCSVKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Rows(&buf, FormatCSV, nil))
	assert.Contains(t, buf.String(), "customer")
}

func TestAggregates_XLSX(t *testing.T) {
	g := 50.0
	res := aggregate.Result{
		Aggregates: []aggregate.ContractAggregate{
			{Contract: "Alpha BV", Customer: "Alpha BV", Period: "2025-01", Revenue: 100},
			{Contract: "Alpha BV", Customer: "Alpha BV", Period: "2025-02", Revenue: 150, GrowthPct: &g},
		},
		Totals: []aggregate.TotalRow{{Period: "2025-01", Revenue: 100, Contracts: 1}},
	}
	var buf bytes.Buffer
	require.NoError(t, Aggregates(&buf, FormatXLSX, res))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Contracts", "Totals", "Latest"}, f.GetSheetList())

	rows, err := f.GetRows("Contracts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "contract", rows[0][0])
	assert.Equal(t, "growth_pct", rows[0][8])
	assert.Equal(t, "50.00", rows[2][8])

	totals, err := f.GetRows("Totals")
	require.NoError(t, err)
	assert.Len(t, totals, 2)
}

func TestComparisons_CSV(t *testing.T) {
	pct := 20.0
	res := pricelist.CompareResult{Matched: []pricelist.Comparison{{SKU: "A-1", RegistrationNumber: "RVG12345", UnitPrice: 1.2, Ceiling: 1, Excess: 0.2, ExcessPct: &pct, AboveCeiling: true}}}
	var buf bytes.Buffer
	require.NoError(t, Comparisons(&buf, FormatCSV, res))
	assert.Contains(t, buf.String(), "excess_pct")
	assert.Contains(t, buf.String(), "RVG12345")
	assert.Contains(t, buf.String(), "20.00")
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, FormatXLSX))
	assert.Error(t, Write(&buf, FormatXLSX, Sheet{Name: "x", Records: 3}))
	assert.Error(t, Write(&buf, Format("ods"), Sheet{Name: "x", Records: []int{}}))
}
