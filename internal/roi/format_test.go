package roi

import (
	"math"
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"millions", 1250000, "$1.3M"},
		{"exact million", 1000000, "$1.0M"},
		{"large millions", 7875000, "$7.9M"},
		{"thousands", 36000, "$36K"},
		{"thousands truncated", 36999, "$36K"},
		{"just under a million", 999999, "$999K"},
		{"exact thousand", 1000, "$1K"},
		{"under a thousand", 999, "$999"},
		{"fractional dollars", 12.6, "$13"},
		{"zero", 0, "$0"},
		{"negative", -36000, "-$36,000"},
		{"NaN", math.NaN(), "$NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCurrency(tt.in); got != tt.want {
				t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1050, "1,050"},
		{1234567, "1,234,567"},
		{-4080, "-4,080"},
		{1234.5, "1,234.5"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{22172, "22172%"},
		{0, "0%"},
		{-100, "-100%"},
		{12.5, "12.5%"},
	}

	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
