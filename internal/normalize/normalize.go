// Package normalize turns raw table records into validated canonical rows.
//
// The package has no side effects: every defect is reported through the
// returned ValidationReport.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	h "GtnPortal/internal/headers"
	"GtnPortal/internal/numparse"
	"GtnPortal/internal/period"
	"GtnPortal/internal/tabular"
)

const (
	// RelativeTolerance and AbsoluteTolerance bound reconciliation drift; the
	// larger of the two applies.
	RelativeTolerance = 0.015
	AbsoluteTolerance = 5.0
)

// ValidationReport accompanies every normalization run. A non-empty Errors
// list rejects the row set wholesale.
type ValidationReport struct {
	Warnings       []string `json:"warnings"`
	Errors         []string `json:"errors"`
	CorrectedCount int      `json:"correctedCount"`

	FuzzyMatches    []h.Match `json:"fuzzyMatches,omitempty"`
	DefaultedFields []string  `json:"defaultedFields,omitempty"`
	DroppedRows     int       `json:"droppedRows"`
	Duplicates      int       `json:"duplicates"`
	Mismatches      int       `json:"mismatches"`
}

// OK reports whether the row set may be used downstream.
func (r ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

func (r *ValidationReport) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Result is the outcome of one normalization run.
type Result struct {
	Rows   []CanonicalRow   `json:"rows"`
	Report ValidationReport `json:"report"`
}

// Normalize validates the records of tbl against schema using the column
// mapping in res.
func Normalize(tbl *tabular.Table, res h.Resolution, schema Schema) Result {
	report := ValidationReport{Warnings: []string{}, Errors: []string{}}
	out := Result{Rows: []CanonicalRow{}}

	var missingCore []string
	for _, f := range schema.Core {
		if !res.Has(f) {
			missingCore = append(missingCore, f)
		}
	}
	if len(missingCore) > 0 {
		report.Errors = append(report.Errors, missingColumnsError(missingCore, res.Suggestions))
		out.Report = report
		return out
	}

	for _, f := range schema.Full {
		if !res.Has(f) {
			report.DefaultedFields = append(report.DefaultedFields, f)
			report.warnf("column for %s not found; defaulting to 0 for all rows", f)
		}
	}
	for _, m := range res.Fuzzy() {
		report.FuzzyMatches = append(report.FuzzyMatches, m)
		report.warnf("column %q matched to %s by fuzzy fallback; verify the mapping", m.Header, m.Field)
	}

	fields := schema.Fields()
	checkInvoiced := res.Has(h.FieldInvoiced)
	checkNet := res.Has(h.FieldNet)
	firstSeen := map[string]int{}

	for _, rec := range tbl.Records {
		row, ok := buildRow(rec, res, schema, fields, &report)
		if !ok {
			report.DroppedRows++
			continue
		}
		reconcile(&row, checkInvoiced, checkNet, &report)

		key := row.Customer + "\x00" + row.SKU + "\x00" + row.Period
		if idx, dup := firstSeen[key]; dup {
			report.Duplicates++
			report.warnf("row %d: duplicate of row %d for customer %q, sku %q, period %s; later row kept",
				rec.Line, out.Rows[idx].Line, row.Customer, row.SKU, row.Period)
			out.Rows[idx] = row
			continue
		}
		firstSeen[key] = len(out.Rows)
		out.Rows = append(out.Rows, row)
	}

	out.Report = report
	return out
}

func buildRow(rec tabular.Record, res h.Resolution, schema Schema, fields []string, report *ValidationReport) (CanonicalRow, bool) {
	row := CanonicalRow{Line: rec.Line}

	rawPeriod := rec.Get(res.Header(h.FieldPeriod))
	p, err := period.Parse(rawPeriod)
	if err != nil {
		report.warnf("row %d: period %q not recognized; row dropped", rec.Line, rawPeriod)
		return row, false
	}
	row.Period = p.Key
	row.PeriodKind = string(p.Kind)
	row.PeriodOrder = p.Ordinal()

	for _, f := range fields {
		if f == h.FieldPeriod || !res.Has(f) {
			continue
		}
		raw := rec.Get(res.Header(f))

		if dst := row.textPtr(f); dst != nil {
			if raw == "" && schema.IsCore(f) {
				report.warnf("row %d: %s is empty", rec.Line, f)
			}
			*dst = raw
			continue
		}

		dst := row.amountPtr(f)
		if dst == nil || raw == "" {
			continue
		}
		v, ok := numparse.ParseString(raw)
		if !ok {
			report.warnf("row %d: %s value %q is not a number; using 0", rec.Line, f, raw)
			continue
		}
		if v < 0 && isNonNegative(f) {
			v = -v
			report.CorrectedCount++
			report.warnf("row %d: negative %s corrected to %s", rec.Line, f, formatAmount(v))
		}
		*dst = v
	}
	return row, true
}

// reconcile checks invoiced ≈ gross − Σdiscounts and
// net ≈ invoiced − Σrebates + Σincomes. Each violated invariant yields exactly
// one warning. When the invoiced column is absent the net check uses the
// derived invoiced amount.
func reconcile(row *CanonicalRow, checkInvoiced, checkNet bool, report *ValidationReport) {
	derivedInvoiced := row.Gross - row.TotalDiscounts()
	if checkInvoiced && !withinTolerance(row.Invoiced, derivedInvoiced) {
		report.Mismatches++
		report.warnf("row %d: invoiced %s differs from gross - discounts %s",
			row.Line, formatAmount(row.Invoiced), formatAmount(derivedInvoiced))
	}
	if !checkNet {
		return
	}
	base := derivedInvoiced
	if checkInvoiced {
		base = row.Invoiced
	}
	expectedNet := base - row.TotalRebates() + row.TotalIncomes()
	if !withinTolerance(row.Net, expectedNet) {
		report.Mismatches++
		report.warnf("row %d: net %s differs from invoiced - rebates + incomes %s",
			row.Line, formatAmount(row.Net), formatAmount(expectedNet))
	}
}

// Tolerance returns the allowed deviation around expected.
func Tolerance(expected float64) float64 {
	return math.Max(RelativeTolerance*math.Abs(expected), AbsoluteTolerance)
}

func withinTolerance(actual, expected float64) bool {
	return math.Abs(actual-expected) <= Tolerance(expected)
}

func missingColumnsError(missing []string, suggestions map[string]string) string {
	parts := make([]string, 0, len(missing))
	for _, f := range missing {
		if s, ok := suggestions[f]; ok {
			parts = append(parts, fmt.Sprintf("%s (did you mean %q?)", f, s))
			continue
		}
		parts = append(parts, f)
	}
	return "missing required columns: " + strings.Join(parts, ", ")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
