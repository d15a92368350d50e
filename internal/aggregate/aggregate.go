// Package aggregate rolls canonical rows up into per-contract period series
// with growth, total comparison and contribution share.
package aggregate

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"GtnPortal/internal/apperr"
	"GtnPortal/internal/normalize"
	"GtnPortal/internal/period"
)

// GroupBy selects the contract key.
type GroupBy string

const (
	ByCustomer    GroupBy = "customer"
	ByCustomerSKU GroupBy = "customer_sku"
)

// ClaimBasis selects what is deducted from revenue.
type ClaimBasis string

const (
	// ClaimAuto uses the claim column when any row carries a claim amount and
	// discounts plus rebates otherwise.
	ClaimAuto             ClaimBasis = ""
	ClaimColumn           ClaimBasis = "claim_column"
	ClaimDiscountsRebates ClaimBasis = "discounts_rebates"
)

// epsilon is the magnitude below which a value counts as zero.
const epsilon = 1e-6

// Options control one aggregation run.
type Options struct {
	GroupBy        GroupBy    `json:"groupBy"`
	ClaimBasis     ClaimBasis `json:"claimBasis"`
	RollUpQuarters bool       `json:"rollUpQuarters"`
}

// ContractAggregate is one (contract, period) roll-up.
type ContractAggregate struct {
	Contract    string  `json:"contract" csv:"contract"`
	Customer    string  `json:"customer" csv:"customer"`
	SKU         string  `json:"sku,omitempty" csv:"sku"`
	Period      string  `json:"period" csv:"period"`
	Revenue     float64 `json:"revenue" csv:"revenue"`
	ClaimAmount float64 `json:"claimAmount" csv:"claim_amount"`
	Units       float64 `json:"units" csv:"units"`
	NetRevenue  float64 `json:"netRevenue" csv:"net_revenue"`

	GrowthPct         *float64 `json:"growthPct" csv:"-"`
	TotalGrowthPct    *float64 `json:"totalGrowthPct" csv:"-"`
	Outperform        *bool    `json:"outperform" csv:"-"`
	ContributionShare *float64 `json:"contributionShare" csv:"-"`

	order int
	delta *float64
}

// TotalRow is the sum of all contracts in one period.
type TotalRow struct {
	Period      string   `json:"period" csv:"period"`
	Revenue     float64  `json:"revenue" csv:"revenue"`
	ClaimAmount float64  `json:"claimAmount" csv:"claim_amount"`
	Units       float64  `json:"units" csv:"units"`
	NetRevenue  float64  `json:"netRevenue" csv:"net_revenue"`
	Contracts   int      `json:"contracts" csv:"contracts"`
	GrowthPct   *float64 `json:"growthPct" csv:"-"`

	order int
}

// Result is the outcome of one aggregation run.
type Result struct {
	Options        Options             `json:"options"`
	Aggregates     []ContractAggregate `json:"aggregates"`
	Totals         []TotalRow          `json:"totals"`
	LatestSnapshot []ContractAggregate `json:"latestSnapshot"`
}

type sums struct {
	revenue, claim, units decimal.Decimal
}

func (s *sums) add(revenue, claim, units float64) {
	s.revenue = s.revenue.Add(decimal.NewFromFloat(revenue))
	s.claim = s.claim.Add(decimal.NewFromFloat(claim))
	s.units = s.units.Add(decimal.NewFromFloat(units))
}

// Aggregate groups rows by (contract, period) and derives the period-over-
// period metrics. The result is ordered by contract, then period.
func Aggregate(rows []normalize.CanonicalRow, opts Options) (Result, error) {
	if opts.GroupBy == "" {
		opts.GroupBy = ByCustomer
	}
	if opts.GroupBy != ByCustomer && opts.GroupBy != ByCustomerSKU {
		return Result{}, apperr.Newf(apperr.KindInput, "unknown grouping %q", opts.GroupBy)
	}
	switch opts.ClaimBasis {
	case ClaimAuto:
		opts.ClaimBasis = ClaimDiscountsRebates
		for _, r := range rows {
			if r.ClaimAmount != 0 {
				opts.ClaimBasis = ClaimColumn
				break
			}
		}
	case ClaimColumn, ClaimDiscountsRebates:
	default:
		return Result{}, apperr.Newf(apperr.KindInput, "unknown claim basis %q", opts.ClaimBasis)
	}

	type key struct{ contract, period string }
	groups := map[key]*ContractAggregate{}
	acc := map[key]*sums{}
	totals := map[string]*TotalRow{}
	totalAcc := map[string]*sums{}

	for _, r := range rows {
		periodKey, order := r.Period, r.PeriodOrder
		if opts.RollUpQuarters {
			periodKey, order = rollUp(r)
		}
		contract := r.Customer
		if opts.GroupBy == ByCustomerSKU {
			contract = r.Customer + "|" + r.SKU
		}
		claim := r.ClaimAmount
		if opts.ClaimBasis == ClaimDiscountsRebates {
			claim = r.TotalDiscounts() + r.TotalRebates()
		}

		if totals[periodKey] == nil {
			totals[periodKey] = &TotalRow{Period: periodKey, order: order}
			totalAcc[periodKey] = &sums{}
		}
		totalAcc[periodKey].add(r.Gross, claim, r.Units)

		k := key{contract, periodKey}
		if groups[k] == nil {
			g := &ContractAggregate{Contract: contract, Customer: r.Customer, Period: periodKey, order: order}
			if opts.GroupBy == ByCustomerSKU {
				g.SKU = r.SKU
			}
			groups[k] = g
			acc[k] = &sums{}
			totals[periodKey].Contracts++
		}
		acc[k].add(r.Gross, claim, r.Units)
	}

	res := Result{Options: opts, Aggregates: []ContractAggregate{}, Totals: []TotalRow{}, LatestSnapshot: []ContractAggregate{}}

	for p, t := range totals {
		s := totalAcc[p]
		t.Revenue, t.ClaimAmount, t.Units = s.revenue.InexactFloat64(), s.claim.InexactFloat64(), s.units.InexactFloat64()
		t.NetRevenue = s.revenue.Sub(s.claim).InexactFloat64()
		res.Totals = append(res.Totals, *t)
	}
	sort.Slice(res.Totals, func(i, j int) bool { return res.Totals[i].order < res.Totals[j].order })
	totalGrowth := map[string]*float64{}
	for i := range res.Totals {
		if i > 0 {
			res.Totals[i].GrowthPct = growth(res.Totals[i-1].Revenue, res.Totals[i].Revenue)
		}
		totalGrowth[res.Totals[i].Period] = res.Totals[i].GrowthPct
	}

	series := map[string][]*ContractAggregate{}
	for k, g := range groups {
		s := acc[k]
		g.Revenue, g.ClaimAmount, g.Units = s.revenue.InexactFloat64(), s.claim.InexactFloat64(), s.units.InexactFloat64()
		g.NetRevenue = s.revenue.Sub(s.claim).InexactFloat64()
		series[g.Contract] = append(series[g.Contract], g)
	}

	deltaSum := map[string]float64{}
	for _, list := range series {
		sort.Slice(list, func(i, j int) bool { return list[i].order < list[j].order })
		for i, g := range list {
			g.TotalGrowthPct = totalGrowth[g.Period]
			if i == 0 {
				continue
			}
			g.GrowthPct = growth(list[i-1].Revenue, g.Revenue)
			d := g.Revenue - list[i-1].Revenue
			g.delta = &d
			deltaSum[g.Period] += d
			if g.GrowthPct != nil && g.TotalGrowthPct != nil {
				out := *g.GrowthPct > *g.TotalGrowthPct
				g.Outperform = &out
			}
		}
	}

	latest := math.MinInt
	for _, list := range series {
		for _, g := range list {
			if g.delta != nil {
				if total := deltaSum[g.Period]; math.Abs(total) > epsilon {
					share := *g.delta / total
					g.ContributionShare = &share
				}
			}
			if g.order > latest {
				latest = g.order
			}
			res.Aggregates = append(res.Aggregates, *g)
		}
	}
	sort.Slice(res.Aggregates, func(i, j int) bool {
		a, b := res.Aggregates[i], res.Aggregates[j]
		if a.Contract != b.Contract {
			return a.Contract < b.Contract
		}
		return a.order < b.order
	})
	for _, g := range res.Aggregates {
		if g.order == latest {
			res.LatestSnapshot = append(res.LatestSnapshot, g)
		}
	}
	return res, nil
}

// growth returns the percentage change from prior to current, or nil when
// either side is ~0.
func growth(prior, current float64) *float64 {
	if math.Abs(prior) < epsilon || math.Abs(current) < epsilon {
		return nil
	}
	g := (current - prior) / math.Abs(prior) * 100
	return &g
}

func rollUp(r normalize.CanonicalRow) (string, int) {
	p, err := period.Parse(r.Period)
	if err != nil {
		return r.Period, r.PeriodOrder
	}
	if q, ok := p.ToQuarter(); ok {
		return q.Key, q.Ordinal()
	}
	return p.Key, p.Ordinal()
}
