package cli

import (
	"errors"
	"testing"
)

func TestFormatCOP_Millions(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{11_500_000, "$11.5M"},
		{1_000_000, "$1.0M"},
		{1_250_000, "$1.3M"},
		{50_000_000, "$50.0M"},
		{-10_500_000, "$-10.5M"},
		{1_450_000, "$1.4M"},
		{-1_450_000, "$-1.4M"},
		{2_350_000, "$2.4M"},
		{999_999_999_999, "$1000000.0M"},
	}
	for _, c := range cases {
		if got := FormatCOP(c.in); got != c.want {
			t.Fatalf("FormatCOP(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatCOP_BelowOneMillionUsesLocaleGrouping(t *testing.T) {
	if got, want := FormatCOP(500_000), "$\u00a0500.000"; got != want {
		t.Fatalf("FormatCOP(500000) = %q, want %q", got, want)
	}
	if got, want := FormatCOP(-250_000), "-$\u00a0250.000"; got != want {
		t.Fatalf("FormatCOP(-250000) = %q, want %q", got, want)
	}
	if got, want := FormatCOP(0), "$\u00a00"; got != want {
		t.Fatalf("FormatCOP(0) = %q, want %q", got, want)
	}
}

func TestFixed1_RoundsStoredValue(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1.25, "1.3"},
		{1.45, "1.4"},
		{-1.45, "-1.4"},
		{0.05, "0.1"},
		{8.6, "8.6"},
	}
	for _, c := range cases {
		if got := Fixed1(c.in); got != c.want {
			t.Fatalf("Fixed1(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(32.857142857); got != "32.9%" {
		t.Fatalf("FormatPct = %q, want 32.9%%", got)
	}
	if got := FormatPct(85); got != "85.0%" {
		t.Fatalf("FormatPct = %q, want 85.0%%", got)
	}
	if got := FormatPct(-70); got != "-70.0%" {
		t.Fatalf("FormatPct = %q, want -70.0%%", got)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"35000000", 35_000_000},
		{"35.000.000", 35_000_000},
		{"$35,000,000", 35_000_000},
		{" 3 500 000 ", 3_500_000},
		{"18.5M", 18_500_000},
		{"1,5m", 1_500_000},
		{"-200000", -200_000},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseAmount_RejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "$", "abc", "12x", "M"} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("ParseAmount(%q) error = %v, want ErrInvalidNumber", in, err)
		}
	}
}
