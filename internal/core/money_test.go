package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{".5", 50, true},
		{"3.", 300, true},
		{"12.3449", 1234, true},
		{"+1", 0, false},
		{"0.004", 0, false},
		{"١٢", 0, false}, // non-ASCII digits
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyUnits(t *testing.T) {
	cases := []struct {
		cents int64
		units float64
		str   string
	}{
		{1234, 12.34, "12.34"},
		{100, 1, "1.00"},
		{5, 0.05, "0.05"},
	}
	for _, tc := range cases {
		m := Money{Cents: tc.cents}
		if m.Units() != tc.units {
			t.Fatalf("%d expected %v units, got %v", tc.cents, tc.units, m.Units())
		}
		if m.String() != tc.str {
			t.Fatalf("%d expected %q, got %q", tc.cents, tc.str, m.String())
		}
		if got := MoneyFromUnits(tc.units); got.Cents != tc.cents {
			t.Fatalf("%v expected %d cents, got %d", tc.units, tc.cents, got.Cents)
		}
	}
}
