package pricelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_FlagsProductsAboveCeiling(t *testing.T) {
	ceilings := []PriceCeilingRow{
		{RegistrationNumber: "RVG12345", UnitPriceEUR: 1.20, ValidFrom: "2025-04-01"},
		{RegistrationNumber: "RVG23456", UnitPriceEUR: 2.00},
	}
	products := []Product{
		{SKU: "A-1", Name: "Metoprolol 50mg", RegistrationNumber: "rvg 12345", UnitPrice: 1.35},
		{SKU: "B-2", Name: "Metoprolol 100mg", RegistrationNumber: "RVG-23456", UnitPrice: 1.99},
		{SKU: "C-3", Name: "Onbekend", RegistrationNumber: "RVG 00001", UnitPrice: 4},
	}

	res := Compare(ceilings, products)

	require.Len(t, res.Matched, 2)
	assert.Equal(t, 1, res.AboveCeiling)

	top := res.Matched[0]
	assert.Equal(t, "A-1", top.SKU)
	assert.True(t, top.AboveCeiling)
	assert.InDelta(t, 0.15, top.Excess, 1e-9)
	require.NotNil(t, top.ExcessPct)
	assert.InDelta(t, 12.5, *top.ExcessPct, 1e-9)
	assert.Equal(t, "2025-04-01", top.ValidFrom)

	assert.False(t, res.Matched[1].AboveCeiling)

	require.Len(t, res.Unmatched, 1)
	assert.Equal(t, "C-3", res.Unmatched[0].SKU)
}

func TestCompare_EqualPriceIsNotAbove(t *testing.T) {
	res := Compare(
		[]PriceCeilingRow{{RegistrationNumber: "RVG1", UnitPriceEUR: 0.1 + 0.2}},
		[]Product{{SKU: "X", RegistrationNumber: "RVG1", UnitPrice: 0.3}},
	)
	require.Len(t, res.Matched, 1)
	assert.False(t, res.Matched[0].AboveCeiling)
	assert.Zero(t, res.AboveCeiling)
}

func TestCompare_EqualPriceWithFloatNoiseIsNotAbove(t *testing.T) {
	res := Compare(
		[]PriceCeilingRow{{RegistrationNumber: "RVG1", UnitPriceEUR: 0.3}},
		[]Product{{SKU: "X", RegistrationNumber: "RVG1", UnitPrice: 0.1 + 0.2}},
	)
	require.Len(t, res.Matched, 1)
	assert.False(t, res.Matched[0].AboveCeiling)
	assert.Zero(t, res.Matched[0].Excess)
}

func TestCompare_SubCentCeiling(t *testing.T) {
	res := Compare(
		[]PriceCeilingRow{{RegistrationNumber: "RVG12345", UnitPriceEUR: 0.08473}},
		[]Product{
			{SKU: "A-1", RegistrationNumber: "RVG 12345", UnitPrice: 0.0849},
			{SKU: "A-2", RegistrationNumber: "RVG 12345", UnitPrice: 0.0847},
		},
	)

	require.Len(t, res.Matched, 2)
	assert.Equal(t, 1, res.AboveCeiling)

	above := res.Matched[0]
	assert.Equal(t, "A-1", above.SKU)
	assert.True(t, above.AboveCeiling)
	assert.InDelta(t, 0.00017, above.Excess, 1e-12)
	require.NotNil(t, above.ExcessPct)
	assert.InDelta(t, 0.2, *above.ExcessPct, 1e-9)

	assert.False(t, res.Matched[1].AboveCeiling)
	assert.InDelta(t, -0.00003, res.Matched[1].Excess, 1e-12)
}
