// Package amount converts transfer amounts to the switch wire format.
package amount

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize returns the shortest decimal text for raw: no exponent, no
// trailing zeros and no trailing point. Input that does not parse as a
// decimal is returned unchanged so the switch can reject it.
func Normalize(raw string) string {
	d, err := Parse(raw)
	if err != nil {
		return raw
	}
	return d.String()
}

// Parse reads raw as a decimal, ignoring surrounding whitespace.
func Parse(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(raw))
}
