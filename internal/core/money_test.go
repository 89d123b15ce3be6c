package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{"1,200", 1200},
		{" 500 ", 500},
		{"abc", 0},
		{"", 0},
		{nil, 0},
		{"12 345", 12345},
		{"3.5", 3.5},
		{42, 42},
		{int64(7), 7},
		{float64(9.25), 9.25},
		{"-150", -150},
		{"1,2,3", 123},
		{true, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for i, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.want {
			t.Errorf("case %d: ParseAmount(%v) = %v, want %v", i, tc.in, got, tc.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "₪0"},
		{1200, "₪1,200"},
		{-350, "-₪350"},
		{1234567.5, "₪1,234,567.5"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
