package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNumericCurrency(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "0.00"},
		{"5", "5.00"},
		{"1308.75", "1,308.75"},
		{"1234567.891", "1,234,567.89"},
		{"999999.999", "1,000,000.00"},
		{"-1234.5", "-1,234.50"},
		{"-0.001", "0.00"},
		{"0.005", "0.01"},
	}

	for _, tt := range tests {
		got := NumericCurrency(decimal.RequireFromString(tt.input))
		if got != tt.expected {
			t.Errorf("NumericCurrency(%s) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}

