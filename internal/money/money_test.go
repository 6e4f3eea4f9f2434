package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFormatCurrency(t *testing.T) {
	f := Default()
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "₱0.00"},
		{"5", "₱5.00"},
		{"65.5", "₱65.50"},
		{"1250", "₱1,250.00"},
		{"1234567.891", "₱1,234,567.89"},
		{"0.005", "₱0.01"},
		{"-1250.5", "₱-1,250.50"},
		{"-0.001", "₱0.00"},
		{"1234567890123456.78", "₱1,234,567,890,123,456.78"},
		{"98765432109876543210.05", "₱98,765,432,109,876,543,210.05"},
	}
	for _, tt := range tests {
		if got := f.FormatCurrency(d(tt.amount)); got != tt.want {
			t.Errorf("FormatCurrency(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatCurrencyEuropeanPattern(t *testing.T) {
	f, err := NewFormatter("€", "#.###,##", time.UTC)
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}
	if got := f.FormatCurrency(d("1250.5")); got != "€1.250,50" {
		t.Errorf("FormatCurrency = %q, want %q", got, "€1.250,50")
	}
	if got := f.ParseCurrencyInput("€1.250,50"); !got.Equal(d("1250.5")) {
		t.Errorf("ParseCurrencyInput = %s, want 1250.5", got)
	}
}

func TestParseFormatRoundTripBeyondFloatPrecision(t *testing.T) {
	f := Default()
	for _, s := range []string{"1234567890123456.78", "9007199254740993.01"} {
		if got := f.ParseCurrencyInput(f.FormatCurrency(d(s))); !got.Equal(d(s)) {
			t.Errorf("round trip %s = %s", s, got)
		}
	}
}

func TestNewFormatterRejectsBadPattern(t *testing.T) {
	for _, p := range []string{"", "####", "#,##.##", "#,###.#", "#.###.##", ",###.##"} {
		if _, err := NewFormatter("₱", p, nil); err == nil {
			t.Errorf("NewFormatter(%q) expected error", p)
		}
	}
}

func TestParseCurrencyInput(t *testing.T) {
	f := Default()
	tests := []struct {
		in   string
		want string
	}{
		{"₱1,250.00", "1250"},
		{"1250", "1250"},
		{"1,250.00", "1250"},
		{" ₱ 65.50 ", "65.5"},
		{"0.99", "0.99"},
		{"", "0"},
		{"abc", "0"},
		{"-", "0"},
		{"₱", "0"},
		{"12abc", "0"},
	}
	for _, tt := range tests {
		if got := f.ParseCurrencyInput(tt.in); !got.Equal(d(tt.want)) {
			t.Errorf("ParseCurrencyInput(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	f := Default()
	for _, s := range []string{"0", "0.01", "1", "65.5", "95.5", "999.99", "1000", "123456.78", "10000000"} {
		x := d(s)
		got := f.ParseCurrencyInput(f.FormatCurrency(x))
		if !got.Equal(x.Round(2)) {
			t.Errorf("parse(format(%s)) = %s", s, got)
		}
	}
}

func TestFormatInputValue(t *testing.T) {
	f := Default()
	if got := f.FormatInputValue(decimal.Zero); got != "" {
		t.Errorf("FormatInputValue(0) = %q, want empty", got)
	}
	if got := f.FormatInputValue(d("1250")); got != "1,250.00" {
		t.Errorf("FormatInputValue(1250) = %q, want %q", got, "1,250.00")
	}
}

func TestFormatDate(t *testing.T) {
	f, err := NewFormatter(DefaultSymbol, DefaultPattern, time.UTC)
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}
	ts := time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC)
	if got := f.FormatDate(ts); got != "Jan 15, 2026" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := f.FormatDateTime(ts); got != "Jan 15, 2026, 2:30 PM" {
		t.Errorf("FormatDateTime = %q", got)
	}
}

func TestFormatDateUsesLocation(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	f, err := NewFormatter(DefaultSymbol, DefaultPattern, manila)
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}
	ts := time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC)
	if got := f.FormatDate(ts); got != "Jan 16, 2026" {
		t.Errorf("FormatDate = %q, want Jan 16, 2026", got)
	}
}

func TestFormatRelative(t *testing.T) {
	f := Default()
	if got := f.FormatRelative(time.Now().Add(-3 * 24 * time.Hour)); got != "3 days ago" {
		t.Errorf("FormatRelative = %q, want %q", got, "3 days ago")
	}
}
