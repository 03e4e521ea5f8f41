// Package core holds the domain types shared by the stores, the aggregation
// engine and the HTTP layer.
//
// This file contains the Money type: amounts are kept as integer cents to
// make every derived sum exact, while the JSON encoding stays a plain
// decimal number as the REST surface requires.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a non-negative, currency-agnostic amount in cents.
type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to Money with half-up rounding on
// the third decimal place. Both dot (12.34) and comma (12,34) separators are
// accepted. Zero is valid; negative values and sign prefixes are not.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> 1234 cents
//	ParseAmount("12.345") -> 1234 cents (rounds down)
//	ParseAmount("12.346") -> 1235 cents (rounds up)
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}
	// Take the first two fractional digits; half-up rounding on the third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return Money{Cents: iv*100 + fracCents}, nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// String renders the amount as a plain decimal with trailing zeros trimmed,
// e.g. 1234 cents -> "12.34", 25000 cents -> "250".
func (m Money) String() string {
	c := m.Cents
	neg := c < 0
	if neg {
		c = -c
	}
	s := strconv.FormatInt(c/100, 10)
	if rem := c % 100; rem != 0 {
		if rem%10 == 0 {
			s += "." + strconv.FormatInt(rem/10, 10)
		} else {
			s += "."
			if rem < 10 {
				s += "0"
			}
			s += strconv.FormatInt(rem, 10)
		}
	}
	if neg {
		return "-" + s
	}
	return s
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// MarshalJSON encodes the amount as a bare decimal number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. A negative value
// decodes successfully so Validate can reject it naming the amount field.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	if neg {
		parsed.Cents = -parsed.Cents
	}
	*m = parsed
	return nil
}
