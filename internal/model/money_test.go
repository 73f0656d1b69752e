package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"whole number", "99.00", "99"},
		{"with cents", "123.45", "123.45"},
		{"zero", "0.00", "0"},
		{"empty string", "", "0"},
		{"large value", "1234567.89", "1234567.89"},
		{"one decimal", "5.5", "5.5"},
		{"invalid string", "abc", "0"},
		{"negative (unusual)", "-10.00", "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.input)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParsePrice(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"16.5", "16.50"},
		{"20", "20.00"},
		{"0", "0.00"},
		{"0.005", "0.01"},
		{"1234.567", "1234.57"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := FormatPrice(decimal.RequireFromString(tt.input))
			if got != tt.want {
				t.Errorf("FormatPrice(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCents(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"99.00", 9900},
		{"16.50", 1650},
		{"0.01", 1},
		{"0.005", 1},
		{"-10.00", -1000},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Cents(decimal.RequireFromString(tt.input)); got != tt.want {
				t.Errorf("Cents(%s) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
