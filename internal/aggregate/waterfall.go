package aggregate

import (
	"github.com/shopspring/decimal"

	h "GtnPortal/internal/headers"
	"GtnPortal/internal/normalize"
)

// StepKind classifies a waterfall bar.
type StepKind string

const (
	StepTotal     StepKind = "total"
	StepDeduction StepKind = "deduction"
	StepAddition  StepKind = "addition"
)

// Step is one bar of the gross-to-net waterfall. For subtotal steps Reported
// holds the summed column as uploaded, next to the derived Amount.
type Step struct {
	Field    string   `json:"field" csv:"field"`
	Kind     StepKind `json:"kind" csv:"kind"`
	Amount   float64  `json:"amount" csv:"amount"`
	Running  float64  `json:"running" csv:"running"`
	Reported *float64 `json:"reported,omitempty" csv:"-"`
}

// Waterfall decomposes rows from gross down to net: gross, the eight
// discounts, invoiced, the five rebates, the two incomes and net.
func Waterfall(rows []normalize.CanonicalRow) []Step {
	sum := func(field string) decimal.Decimal {
		total := decimal.Zero
		for _, r := range rows {
			total = total.Add(decimal.NewFromFloat(r.Amount(field)))
		}
		return total
	}

	var steps []Step
	running := sum(h.FieldGross)
	steps = append(steps, Step{Field: h.FieldGross, Kind: StepTotal, Amount: running.InexactFloat64(), Running: running.InexactFloat64()})

	deduct := func(fields []string) {
		for _, f := range fields {
			v := sum(f)
			running = running.Sub(v)
			steps = append(steps, Step{Field: f, Kind: StepDeduction, Amount: v.InexactFloat64(), Running: running.InexactFloat64()})
		}
	}
	subtotal := func(field string) {
		reported := sum(field).InexactFloat64()
		steps = append(steps, Step{Field: field, Kind: StepTotal, Amount: running.InexactFloat64(), Running: running.InexactFloat64(), Reported: &reported})
	}

	deduct(h.DiscountFields)
	subtotal(h.FieldInvoiced)
	deduct(h.RebateFields)
	for _, f := range h.IncomeFields {
		v := sum(f)
		running = running.Add(v)
		steps = append(steps, Step{Field: f, Kind: StepAddition, Amount: v.InexactFloat64(), Running: running.InexactFloat64()})
	}
	subtotal(h.FieldNet)
	return steps
}
