// Package core provides the budget domain: line items with optional
// detail rows, amount coercion and aggregation, and the proportional
// segment allocator used for the expense chart.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount coerces a loosely formatted amount into a number.
//
// It accepts raw numbers, numeric strings with thousands separators or
// embedded whitespace ("1,200", " 500 "), and anything else. Values
// that do not parse to a finite number become 0. It never fails.
//
// Amounts are whole currency units as float64, matching how the values
// travel through JSON payloads and form fields.
func ParseAmount(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case float32:
		return ParseAmount(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
				return -1
			}
			return r
		}, v)
		if cleaned == "" {
			return 0
		}
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	default:
		return 0
	}
}

// FormatAmount renders a number the way the forms display it: grouped
// thousands, no trailing zeros for whole amounts, ILS currency mark.
func FormatAmount(value float64) string {
	neg := value < 0
	if neg {
		value = -value
	}

	s := strconv.FormatFloat(value, 'f', -1, 64)
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₪")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
