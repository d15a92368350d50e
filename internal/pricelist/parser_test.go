package pricelist

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const staatscourant = `Regeling maximumprijzen geneesmiddelen
Met ingang van 1 januari 2025 gelden de volgende prijzen.
Maximumprijs groep 101
Werkzame stof: metoprolol
€ 1,00 per tablet
Registratienummers:
RVG 12345, RVG 23456
EU/1/02/003/001
Maximumprijs groep 102
Werkzame stof: onbekend
Registratienummers:
RVG 99999
Maximumprijs groep 103 (herziening)
Geldig vanaf 01-04-2025
1,20 euro per tablet
Registratienummers:
RVG-12345
Maximumprijs groep 104
2,50 EUR per ml
Registratienummers: zie bijlage
`

func TestParse_LastSeenPriceWins(t *testing.T) {
	res := Parse(staatscourant)

	var matches []PriceCeilingRow
	for _, r := range res.Rows {
		if r.RegistrationNumber == "RVG12345" {
			matches = append(matches, r)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, 1.20, matches[0].UnitPriceEUR)
	assert.Equal(t, 3, matches[0].Section)
	assert.Equal(t, "2025-04-01", matches[0].ValidFrom)

	assert.Equal(t, 1, res.Report.Overridden)
	require.Len(t, res.Report.Overrides, 1)
	assert.Equal(t, 1.00, res.Report.Overrides[0].PreviousPrice)
}

func TestParse_RowsAndReport(t *testing.T) {
	res := Parse(staatscourant)

	regs := make([]string, 0, len(res.Rows))
	for _, r := range res.Rows {
		regs = append(regs, r.RegistrationNumber)
	}
	assert.Equal(t, []string{"RVG12345", "RVG23456", "EU/1/02/003/001"}, regs)
	assert.Equal(t, "2025-01-01", res.Rows[1].ValidFrom)
	assert.Equal(t, "tablet", res.Rows[1].Unit)

	rep := res.Report
	assert.Equal(t, 4, rep.Sections)
	assert.Equal(t, 1, rep.SectionsWithoutPrice)
	assert.Equal(t, 1, rep.SectionsWithoutTokens)
	assert.Equal(t, 1, rep.OrphanTokens, "RVG 99999 has no price context")
	assert.True(t, rep.Degraded())
	require.Len(t, rep.Skipped, 2)
	assert.Equal(t, 2, rep.Skipped[0].Index)
	assert.Equal(t, 4, rep.Skipped[1].Index)
}

func TestParse_NoStalePriceCarryOver(t *testing.T) {
	text := "Maximumprijs A\n€ 3,00 per stuk\nRegistratienummers\nRVG 11111\n" +
		"Maximumprijs B\nRegistratienummers\nRVG 22222\n"
	res := Parse(text)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "RVG11111", res.Rows[0].RegistrationNumber)
	assert.Equal(t, 1, res.Report.SectionsWithoutPrice)
}

func TestParse_PriceOutsideWindowIsIgnored(t *testing.T) {
	lines := []string{"Maximumprijs X"}
	for i := 0; i < DefaultPriceWindow+2; i++ {
		lines = append(lines, "toelichting")
	}
	lines = append(lines, "€ 9,99 per tablet", "Registratienummers", "RVG 33333")
	res := Parse(strings.Join(lines, "\n"))
	assert.Empty(t, res.Rows)
	assert.Equal(t, 1, res.Report.SectionsWithoutPrice)
}

func TestParse_MissingListingHeaderFallsBack(t *testing.T) {
	res := Parse("Maximumprijs Y\n€ 0,75 per capsule\nRVG 44444 en RVG 55555\n")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 0.75, res.Rows[0].UnitPriceEUR)
	assert.Equal(t, 1, res.Report.SectionsWithoutListing)
}

func TestParse_NoSections(t *testing.T) {
	res := Parse("Dit document bevat geen prijzen. RVG 12345")
	assert.Empty(t, res.Rows)
	assert.Zero(t, res.Report.Sections)
	assert.Equal(t, 1, res.Report.OrphanTokens)
}

func TestStages_AreObservable(t *testing.T) {
	p := NewParser(Rules{})
	_, sections := p.Sections(staatscourant)
	require.Len(t, sections, 4)

	found, ok := p.FindPrice(sections[0]).(PriceFound)
	require.True(t, ok)
	assert.Equal(t, 1.00, found.Amount)
	assert.Equal(t, 2, found.Line)

	none, ok := p.FindPrice(sections[1]).(NoPriceFound)
	require.True(t, ok)
	assert.Equal(t, 2, none.Candidate().Index)
	assert.NotEmpty(t, none.Reason)

	toks := p.Tokens(found)
	assert.True(t, toks.ListingFound)
	assert.Equal(t, []string{"RVG12345", "RVG23456", "EU/1/02/003/001"}, toks.Tokens)
}

func TestNewParser_CustomRules(t *testing.T) {
	p := NewParser(Rules{
		SectionHeader: regexp.MustCompile(`(?i)^prijsgroep`),
		PriceWindow:   2,
	})
	res := p.Parse("Prijsgroep 1\n€ 5,00 per flacon\nregistratienummer RVG 77777\n")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 5.0, res.Rows[0].UnitPriceEUR)
}

func TestNormalizeRegistration(t *testing.T) {
	assert.Equal(t, "RVG12345", NormalizeRegistration("rvg 12.345"))
	assert.Equal(t, "RVG12345", NormalizeRegistration("RVG-12345"))
	assert.Equal(t, "EU/1/02/003/001", NormalizeRegistration("eu / 1 / 02 / 003 / 001"))
}

func TestParseDate(t *testing.T) {
	d, ok := parseDate("1 januari 2025")
	assert.True(t, ok)
	assert.Equal(t, "2025-01-01", d)

	d, ok = parseDate("15-03-2024")
	assert.True(t, ok)
	assert.Equal(t, "2024-03-15", d)

	_, ok = parseDate("32 januari 2025")
	assert.False(t, ok)
}

func TestParse_DualRegistrationKeepsOwnKey(t *testing.T) {
	text := "Maximumprijs groep 1\n€ 1,00 per tablet\nRegistratienummers\nRVG 17470\n" +
		"Maximumprijs groep 2\n€ 0,90 per tablet\nRegistratienummers\nRVG 17470//02222\n"

	res := Parse(text)

	require.Len(t, res.Rows, 2)
	assert.Zero(t, res.Report.Overridden)
	byReg := map[string]float64{}
	for _, r := range res.Rows {
		byReg[r.RegistrationNumber] = r.UnitPriceEUR
	}
	assert.Equal(t, 1.00, byReg["RVG17470"])
	assert.Equal(t, 0.90, byReg["RVG17470//02222"])
}

func TestParse_PricePerQuantity(t *testing.T) {
	res := Parse("Maximumprijs groep 1\n€ 8,47 per 100 stuks\nRegistratienummers\nRVG 12345\n")

	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 0.0847, res.Rows[0].UnitPriceEUR, 1e-12)
	assert.Equal(t, "stuks", res.Rows[0].Unit)
	assert.Zero(t, res.Report.SectionsWithoutPrice)
}

func TestParse_SubCentPriceKeepsPrecision(t *testing.T) {
	res := Parse("Maximumprijs groep 1\n€ 0,08473 per tablet\nRegistratienummers\nRVG 12345\n")

	require.Len(t, res.Rows, 1)
	assert.Equal(t, 0.08473, res.Rows[0].UnitPriceEUR)
}
