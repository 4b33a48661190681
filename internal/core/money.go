package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseDecimalToCents converts a positive decimal string to cents.
//
// Both "12.34" and "12,34" are accepted; the third fractional digit rounds
// half-up and further digits are ignored. Negative, zero and malformed
// inputs return ErrInvalidAmount.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	intPart, fracPart, _ := strings.Cut(s, ".")
	if s == "" || strings.Contains(fracPart, ".") || !asciiDigits(intPart) || !asciiDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || units > math.MaxInt64/100-1 {
		return 0, ErrInvalidAmount
	}

	// Two digits are kept; the third rounds half-up.
	padded := fracPart + "000"
	cents := units*100 + int64(padded[0]-'0')*10 + int64(padded[1]-'0')
	if padded[2] >= '5' {
		cents++
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// asciiDigits reports whether s holds only 0-9. The empty string passes.
func asciiDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Units returns the amount in whole currency units. Analytics work on
// float64 units; storage and wire parsing keep cents.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// MoneyFromUnits rounds a unit amount half away from zero to cents.
func MoneyFromUnits(v float64) Money {
	return Money{Cents: int64(math.Round(v * 100))}
}

// String formats the amount with two decimals, e.g. "12.30".
func (m Money) String() string {
	return strconv.FormatFloat(m.Units(), 'f', 2, 64)
}
