// Package period normalizes heterogeneous reporting-period tokens into
// sortable canonical keys.
package period

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind is the granularity of a period.
type Kind string

const (
	Month   Kind = "month"
	Quarter Kind = "quarter"
	Year    Kind = "year"
)

// ErrUnrecognized is returned for tokens that match none of the known layouts.
var ErrUnrecognized = errors.New("unrecognized period")

// Period is a normalized period token.
//
// Key is the canonical form: "2025-01" for months, "2025-Q1" for quarters and
// "2025" for bare years. SortKey orders periods of the same Kind: year*100+month
// for months, year*10+quarter for quarters and year for years.
type Period struct {
	Kind    Kind   `json:"kind"`
	Key     string `json:"key"`
	Label   string `json:"label"`
	SortKey int    `json:"sortKey"`
	Year    int    `json:"year"`
	Month   int    `json:"month,omitempty"`
	Quarter int    `json:"quarter,omitempty"`
}

var (
	reMonthYear   = regexp.MustCompile(`^(\d{1,2})[-/.](\d{4})$`)
	reYearMonth   = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})$`)
	reYYYYMM      = regexp.MustCompile(`^(\d{4})(\d{2})$`)
	reYearQuarter = regexp.MustCompile(`^(\d{4})[-/ ]?Q([1-4])$`)
	reQuarterYear = regexp.MustCompile(`^Q([1-4])[-/ ]?(\d{4})$`)
	reYear        = regexp.MustCompile(`^(\d{4})$`)
	reISODate     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:[T ].*)?$`)
	reNamedMonth  = regexp.MustCompile(`^([A-Z]+)\.?[-/ ]?(\d{4})$`)
)

var monthNames = map[string]int{
	"JAN": 1, "JANUARI": 1, "JANUARY": 1,
	"FEB": 2, "FEBRUARI": 2, "FEBRUARY": 2,
	"MRT": 3, "MAR": 3, "MAART": 3, "MARCH": 3,
	"APR": 4, "APRIL": 4,
	"MEI": 5, "MAY": 5,
	"JUN": 6, "JUNI": 6, "JUNE": 6,
	"JUL": 7, "JULI": 7, "JULY": 7,
	"AUG": 8, "AUGUSTUS": 8, "AUGUST": 8,
	"SEP": 9, "SEPT": 9, "SEPTEMBER": 9,
	"OKT": 10, "OCT": 10, "OKTOBER": 10, "OCTOBER": 10,
	"NOV": 11, "NOVEMBER": 11,
	"DEC": 12, "DECEMBER": 12,
}

var monthLabels = [...]string{"", "jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"}

// Parse normalizes a period token.
func Parse(token string) (Period, error) {
	s := strings.ToUpper(strings.Join(strings.Fields(token), " "))
	if s == "" {
		return Period{}, ErrUnrecognized
	}

	if m := reYearMonth.FindStringSubmatch(s); m != nil {
		return monthOf(atoi(m[1]), atoi(m[2]), token)
	}
	if m := reMonthYear.FindStringSubmatch(s); m != nil {
		return monthOf(atoi(m[2]), atoi(m[1]), token)
	}
	if m := reYYYYMM.FindStringSubmatch(s); m != nil {
		return monthOf(atoi(m[1]), atoi(m[2]), token)
	}
	if m := reYearQuarter.FindStringSubmatch(s); m != nil {
		return QuarterOf(atoi(m[1]), atoi(m[2])), nil
	}
	if m := reQuarterYear.FindStringSubmatch(s); m != nil {
		return QuarterOf(atoi(m[2]), atoi(m[1])), nil
	}
	if m := reYear.FindStringSubmatch(s); m != nil {
		y := atoi(m[1])
		return Period{Kind: Year, Key: m[1], Label: m[1], SortKey: y, Year: y}, nil
	}
	if m := reISODate.FindStringSubmatch(s); m != nil {
		if _, err := time.Parse("2006-01-02", s[:10]); err != nil {
			return Period{}, fmt.Errorf("%w: %q", ErrUnrecognized, token)
		}
		return monthOf(atoi(m[1]), atoi(m[2]), token)
	}
	if m := reNamedMonth.FindStringSubmatch(s); m != nil {
		if mon, ok := monthNames[m[1]]; ok {
			return monthOf(atoi(m[2]), mon, token)
		}
	}
	return Period{}, fmt.Errorf("%w: %q", ErrUnrecognized, token)
}

// MonthNumber maps a Dutch or English month name or abbreviation to 1..12.
func MonthNumber(name string) (int, bool) {
	m, ok := monthNames[strings.ToUpper(strings.TrimSuffix(strings.TrimSpace(name), "."))]
	return m, ok
}

// MonthOf builds a month period; month must be 1..12.
func MonthOf(year, month int) Period {
	return Period{
		Kind:    Month,
		Key:     fmt.Sprintf("%04d-%02d", year, month),
		Label:   fmt.Sprintf("%s %04d", monthLabels[month], year),
		SortKey: year*100 + month,
		Year:    year,
		Month:   month,
	}
}

// QuarterOf builds a quarter period; quarter must be 1..4.
func QuarterOf(year, quarter int) Period {
	return Period{
		Kind:    Quarter,
		Key:     fmt.Sprintf("%04d-Q%d", year, quarter),
		Label:   fmt.Sprintf("Q%d %04d", quarter, year),
		SortKey: year*10 + quarter,
		Year:    year,
		Quarter: quarter,
	}
}

func monthOf(year, month int, token string) (Period, error) {
	if month < 1 || month > 12 || year < 1900 || year > 2999 {
		return Period{}, fmt.Errorf("%w: %q", ErrUnrecognized, token)
	}
	return MonthOf(year, month), nil
}

// ToQuarter rolls a month up into its quarter. Quarters are returned as-is;
// years cannot be rolled down and report false.
func (p Period) ToQuarter() (Period, bool) {
	switch p.Kind {
	case Month:
		return QuarterOf(p.Year, (p.Month+2)/3), true
	case Quarter:
		return p, true
	default:
		return p, false
	}
}

// Ordinal orders periods across kinds by the last month they cover, with
// shorter periods first on ties.
func (p Period) Ordinal() int {
	switch p.Kind {
	case Month:
		return (p.Year*100+p.Month)*10 + 0
	case Quarter:
		return (p.Year*100+p.Quarter*3)*10 + 1
	default:
		return (p.Year*100+12)*10 + 2
	}
}

// Less orders two periods by Ordinal.
func Less(a, b Period) bool {
	return a.Ordinal() < b.Ordinal()
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
