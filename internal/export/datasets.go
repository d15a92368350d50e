package export

import (
	"io"

	"GtnPortal/internal/aggregate"
	"GtnPortal/internal/normalize"
	"GtnPortal/internal/pricelist"
)

// Rows writes canonical rows.
func Rows(w io.Writer, f Format, rows []normalize.CanonicalRow) error {
	return Write(w, f, Sheet{Name: "Rows", Records: nonNil(rows)})
}

// Ceilings writes parsed price ceilings.
func Ceilings(w io.Writer, f Format, rows []pricelist.PriceCeilingRow) error {
	return Write(w, f, Sheet{Name: "Ceilings", Records: nonNil(rows)})
}

// Waterfall writes the gross-to-net steps.
func Waterfall(w io.Writer, f Format, steps []aggregate.Step) error {
	return Write(w, f, Sheet{Name: "Waterfall", Records: nonNil(steps)})
}

type aggregateLine struct {
	Contract          string  `csv:"contract"`
	Customer          string  `csv:"customer"`
	SKU               string  `csv:"sku"`
	Period            string  `csv:"period"`
	Revenue           float64 `csv:"revenue"`
	ClaimAmount       float64 `csv:"claim_amount"`
	Units             float64 `csv:"units"`
	NetRevenue        float64 `csv:"net_revenue"`
	GrowthPct         string  `csv:"growth_pct"`
	TotalGrowthPct    string  `csv:"total_growth_pct"`
	Outperform        string  `csv:"outperform"`
	ContributionShare string  `csv:"contribution_share"`
}

type totalLine struct {
	Period      string  `csv:"period"`
	Revenue     float64 `csv:"revenue"`
	ClaimAmount float64 `csv:"claim_amount"`
	Units       float64 `csv:"units"`
	NetRevenue  float64 `csv:"net_revenue"`
	Contracts   int     `csv:"contracts"`
	GrowthPct   string  `csv:"growth_pct"`
}

// Aggregates writes the contract series, the period totals and the latest
// snapshot. CSV carries the contract series only.
func Aggregates(w io.Writer, f Format, res aggregate.Result) error {
	return Write(w, f,
		Sheet{Name: "Contracts", Records: aggregateLines(res.Aggregates)},
		Sheet{Name: "Totals", Records: totalLines(res.Totals)},
		Sheet{Name: "Latest", Records: aggregateLines(res.LatestSnapshot)},
	)
}

func aggregateLines(in []aggregate.ContractAggregate) []aggregateLine {
	out := make([]aggregateLine, 0, len(in))
	for _, a := range in {
		line := aggregateLine{
			Contract:          a.Contract,
			Customer:          a.Customer,
			SKU:               a.SKU,
			Period:            a.Period,
			Revenue:           a.Revenue,
			ClaimAmount:       a.ClaimAmount,
			Units:             a.Units,
			NetRevenue:        a.NetRevenue,
			GrowthPct:         pct(a.GrowthPct),
			TotalGrowthPct:    pct(a.TotalGrowthPct),
			ContributionShare: pct(a.ContributionShare),
		}
		if a.Outperform != nil {
			line.Outperform = "no"
			if *a.Outperform {
				line.Outperform = "yes"
			}
		}
		out = append(out, line)
	}
	return out
}

func totalLines(in []aggregate.TotalRow) []totalLine {
	out := make([]totalLine, 0, len(in))
	for _, t := range in {
		out = append(out, totalLine{
			Period:      t.Period,
			Revenue:     t.Revenue,
			ClaimAmount: t.ClaimAmount,
			Units:       t.Units,
			NetRevenue:  t.NetRevenue,
			Contracts:   t.Contracts,
			GrowthPct:   pct(t.GrowthPct),
		})
	}
	return out
}

type comparisonLine struct {
	SKU                string  `csv:"sku"`
	Name               string  `csv:"name"`
	RegistrationNumber string  `csv:"registration_number"`
	UnitPrice          float64 `csv:"unit_price"`
	Ceiling            float64 `csv:"ceiling"`
	Excess             float64 `csv:"excess"`
	ExcessPct          string  `csv:"excess_pct"`
	AboveCeiling       bool    `csv:"above_ceiling"`
	ValidFrom          string  `csv:"valid_from"`
}

// Comparisons writes matched products and, in xlsx, the unmatched ones.
func Comparisons(w io.Writer, f Format, res pricelist.CompareResult) error {
	lines := make([]comparisonLine, 0, len(res.Matched))
	for _, c := range res.Matched {
		lines = append(lines, comparisonLine{
			SKU:                c.SKU,
			Name:               c.Name,
			RegistrationNumber: c.RegistrationNumber,
			UnitPrice:          c.UnitPrice,
			Ceiling:            c.Ceiling,
			Excess:             c.Excess,
			ExcessPct:          pct(c.ExcessPct),
			AboveCeiling:       c.AboveCeiling,
			ValidFrom:          c.ValidFrom,
		})
	}
	return Write(w, f,
		Sheet{Name: "Comparison", Records: lines},
		Sheet{Name: "Unmatched", Records: nonNil(res.Unmatched)},
	)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
