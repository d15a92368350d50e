// Package numparse converts free-form numeric cells ("1.234,56", "€ 12,00",
// "(1,234.56)") into float64 values.
package numparse

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts v into a finite float64. The bool is false when v is empty,
// non-numeric or non-finite.
func Parse(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case decimal.Decimal:
		return finite(t.InexactFloat64())
	case string:
		return ParseString(t)
	case []byte:
		return ParseString(string(t))
	default:
		return 0, false
	}
}

// ParseOr returns the parsed value or fallback. Callers choose the fallback
// explicitly: 0 for summable amounts, math.NaN() when absence must stay visible.
func ParseOr(v interface{}, fallback float64) float64 {
	if f, ok := Parse(v); ok {
		return f
	}
	return fallback
}

// ParseDecimal is the exact variant of ParseString.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	cleaned, neg, ok := clean(s)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// ParseString parses a single string cell.
func ParseString(s string) (float64, bool) {
	d, ok := ParseDecimal(s)
	if !ok {
		return 0, false
	}
	return finite(d.InexactFloat64())
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// clean reduces s to an ASCII decimal literal understood by decimal.NewFromString.
// neg reports a sign expressed outside the literal: parentheses or a trailing minus.
func clean(s string) (string, bool, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-', r == '+':
			b.WriteRune(r)
		}
	}
	s = b.String()

	if strings.HasSuffix(s, "-") && len(s) > 1 && !strings.HasPrefix(s, "-") {
		neg = !neg
		s = strings.TrimSuffix(s, "-")
	}

	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}
	if strings.ContainsAny(s, "+-") {
		return "", false, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	if s == "" || s == "." {
		return "", false, false
	}
	if strings.Count(s, ".") > 1 {
		return "", false, false
	}
	return sign + s, neg, true
}
