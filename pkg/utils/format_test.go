package utils

import "testing"

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{999.5, "$999.50"},
		{1000, "$1,000.00"},
		{1234567.89, "$1,234,567.89"},
		{-52000.1, "-$52,000.10"},
	}

	for _, tt := range tests {
		if got := FormatCurrency(tt.amount); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(2.345); got != "+2.35%" {
		t.Errorf("FormatPercent(2.345) = %q", got)
	}
	if got := FormatPercent(-1.2); got != "-1.20%" {
		t.Errorf("FormatPercent(-1.2) = %q", got)
	}
	if got := FormatPercent(0); got != "0.00%" {
		t.Errorf("FormatPercent(0) = %q", got)
	}
}

func TestFormatPnL(t *testing.T) {
	if got := FormatPnL(1500); got != "+$1,500.00" {
		t.Errorf("FormatPnL(1500) = %q", got)
	}
	if got := FormatPnL(-300); got != "-$300.00" {
		t.Errorf("FormatPnL(-300) = %q", got)
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := FormatQuantity(2400000); got != "2,400,000" {
		t.Errorf("FormatQuantity(2400000) = %q", got)
	}
	if got := FormatQuantity(-1500); got != "-1,500" {
		t.Errorf("FormatQuantity(-1500) = %q", got)
	}
	if got := FormatQuantity(999); got != "999" {
		t.Errorf("FormatQuantity(999) = %q", got)
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{250, "250.00"},
		{1500, "1.5K"},
		{2400000, "2.40M"},
		{3.1e9, "3.10B"},
		{-1500000, "-1.50M"},
	}

	for _, tt := range tests {
		if got := FormatCompact(tt.amount); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
