// Package money formats and parses peso amounts and renders dates for display.
package money

import (
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	DefaultSymbol  = "₱"
	DefaultPattern = "#,###.##"

	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006, 3:04 PM"
)

// Formatter holds the currency glyph and number pattern. Pattern uses the
// go-humanize FormatFloat syntax: the first separator groups thousands, the
// last one separates decimals ("#,###.##" for en-PH, "#.###,##" for de-DE).
type Formatter struct {
	symbol   string
	group    rune
	decimal  rune
	location *time.Location
}

// NewFormatter validates pattern and returns a Formatter. A nil location
// means time.Local.
func NewFormatter(symbol, pattern string, loc *time.Location) (*Formatter, error) {
	group, dec, err := separators(pattern)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{
		symbol:   symbol,
		group:    group,
		decimal:  dec,
		location: loc,
	}, nil
}

// Default returns the peso formatter in the local time zone.
func Default() *Formatter {
	f, _ := NewFormatter(DefaultSymbol, DefaultPattern, nil)
	return f
}

func separators(pattern string) (rune, rune, error) {
	runes := []rune(pattern)
	var idx []int
	for i, r := range runes {
		if r != '#' {
			idx = append(idx, i)
		}
	}
	if len(idx) != 2 || idx[0] == 0 || idx[1]-idx[0] != 4 || len(runes)-idx[1]-1 != 2 || runes[idx[0]] == runes[idx[1]] {
		return 0, 0, fmt.Errorf("number pattern %q: want grouping and decimal separators with two decimals", pattern)
	}
	return runes[idx[0]], runes[idx[1]], nil
}

// FormatCurrency renders amount as e.g. "₱1,250.00".
func (f *Formatter) FormatCurrency(amount decimal.Decimal) string {
	return f.symbol + f.formatNumber(amount)
}

// FormatInputValue renders amount without the glyph for prefilling an
// input. Zero renders as an empty string.
func (f *Formatter) FormatInputValue(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	return f.formatNumber(amount)
}

// formatNumber groups the exact decimal digits, so amounts past float64
// precision keep their cents.
func (f *Formatter) formatNumber(amount decimal.Decimal) string {
	amount = amount.Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	whole, frac, _ := strings.Cut(amount.StringFixed(2), ".")
	n, _ := new(big.Int).SetString(whole, 10)
	grouped := strings.ReplaceAll(humanize.BigComma(n), ",", string(f.group))
	return sign + grouped + string(f.decimal) + frac
}

// ParseCurrencyInput strips the glyph, grouping separators and whitespace and
// parses what is left. Anything unparsable yields zero; callers treat a
// result <= 0 as invalid entry.
func (f *Formatter) ParseCurrencyInput(text string) decimal.Decimal {
	text = strings.ReplaceAll(text, f.symbol, "")
	var b strings.Builder
	for _, r := range text {
		switch {
		case unicode.IsSpace(r), r == f.group:
		case r == f.decimal:
			b.WriteByte('.')
		default:
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatDate renders t like "Jan 15, 2026".
func (f *Formatter) FormatDate(t time.Time) string {
	return t.In(f.location).Format(dateLayout)
}

// FormatDateTime renders t like "Jan 15, 2026, 2:30 PM".
func (f *Formatter) FormatDateTime(t time.Time) string {
	return t.In(f.location).Format(dateTimeLayout)
}

// FormatRelative renders t relative to now, e.g. "3 days ago".
func (f *Formatter) FormatRelative(t time.Time) string {
	return humanize.Time(t)
}
