// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrInvalidNumber is returned when user input cannot be read as an amount.
var ErrInvalidNumber = errors.New("not a number")

// nbsp separates the currency symbol from the digits, as es-CO locale output does.
const nbsp = "\u00a0"

var (
	copPrinter = message.NewPrinter(language.MustParse("es-CO"))
	oneMillion = decimal.NewFromInt(1_000_000)
)

// FormatCOP formats a whole-peso amount for display.
// Amounts of at least one million (in absolute value) are abbreviated,
// e.g. 11500000 -> "$11.5M"; smaller ones use es-CO grouping, e.g. "$ 500.000".
// The abbreviation rounds the float64 quotient, so 1450000 -> "$1.4M"
// because 1.45 is stored just below the half.
func FormatCOP(amount int64) string {
	if amount >= 1_000_000 || amount <= -1_000_000 {
		return "$" + Fixed1(float64(amount)/1e6) + "M"
	}

	abs := amount
	if abs < 0 {
		abs = -abs
	}
	s := "$" + nbsp + FormatNumber(abs)
	if amount < 0 {
		return "-" + s
	}
	return s
}

// FormatNumber groups an integer with es-CO separators.
// e.g., 1234567 -> "1.234.567"
func FormatNumber(n int64) string {
	return copPrinter.Sprint(number.Decimal(n, number.MaxFractionDigits(0)))
}

// FormatPct formats a percentage value with one decimal, e.g. 32.857 -> "32.9%".
func FormatPct(pct float64) string {
	return Fixed1(pct) + "%"
}

// Fixed1 renders f with exactly one decimal place. Rounding works on the
// exact binary value of f, and only an exact half rounds away from zero:
// 1.25 -> "1.3" but 1.45 -> "1.4".
func Fixed1(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	// 1074 fractional digits hold the full expansion of any float64.
	exact, err := decimal.NewFromString(strconv.FormatFloat(f, 'f', 1074, 64))
	if err != nil {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return exact.StringFixed(1)
}

// FormatSignedCOP formats an amount with an explicit sign for deltas.
func FormatSignedCOP(amount int64) string {
	if amount >= 0 {
		return "+" + FormatCOP(amount)
	}
	return FormatCOP(amount)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatAge describes how long ago t was, e.g. "3 minutes ago".
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// ParseAmount reads a whole-peso amount typed by a user.
// Accepted forms: "35000000", "35.000.000", "$35,000,000", "18.5M".
// Dots and commas are grouping separators unless an M suffix is present,
// in which case the value is in millions and may carry a decimal part.
func ParseAmount(s string) (int64, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, nbsp, "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, fmt.Errorf("parse amount %q: %w", raw, ErrInvalidNumber)
	}

	scale := decimal.NewFromInt(1)
	if strings.HasSuffix(s, "M") || strings.HasSuffix(s, "m") {
		s = strings.ReplaceAll(s[:len(s)-1], ",", ".")
		scale = oneMillion
	} else {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, ErrInvalidNumber)
	}
	return d.Mul(scale).Round(0).IntPart(), nil
}
