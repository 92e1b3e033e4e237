// Copyright (c) 2013, 2014 The btcsuite developers
// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AmountUnit is the exponent component of the decadic multiple used to
// convert an Amount (always counted in minor units, spec.md's "integer
// minor units") to some other denomination of a ledger's coin.
type AmountUnit int

// These constants describe the conventional denominations shared by every
// Bitcoin-derived ledger variant; MinorUnit is whatever InputOutput.Amount
// already counts in (a satoshi-equivalent).
const (
	AmountMega  AmountUnit = 6
	AmountKilo  AmountUnit = 3
	AmountWhole AmountUnit = 0
	AmountMilli AmountUnit = -3
	AmountMicro AmountUnit = -6
	MinorUnit   AmountUnit = -8
)

// String returns the SI-prefixed unit label relative to symbol, or "1eN
// <symbol>" for an unrecognized unit.
func (u AmountUnit) String(symbol string) string {
	switch u {
	case AmountMega:
		return "M" + symbol
	case AmountKilo:
		return "k" + symbol
	case AmountWhole:
		return symbol
	case AmountMilli:
		return "m" + symbol
	case AmountMicro:
		return "u" + symbol
	case MinorUnit:
		return "minor-" + symbol
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " " + symbol
	}
}

// Amount represents a quantity counted in a ledger's minor unit (the base
// unit InputOutput.Amount is denominated in; one Amount is 1e-8 of a whole
// coin for every registered ledger variant, per ledgercfg.Params).
type Amount int64

// round converts a floating point number to the nearest Amount, rounding
// half away from zero by adding/subtracting 0.5 before integer truncation.
func round(f float64) Amount {
	if f < 0 {
		return Amount(f - 0.5)
	}
	return Amount(f + 0.5)
}

// NewAmount creates an Amount from a floating point value denominated in
// whole coins. It errors if f is NaN or +-Infinity.
func NewAmount(f float64) (Amount, error) {
	switch {
	case math.IsNaN(f), math.IsInf(f, 1), math.IsInf(f, -1):
		return 0, errors.New("chainutil: invalid amount")
	}
	return round(f * 1e8), nil
}

// ToUnit converts a from minor units to a floating point value denominated
// in unit u.
func (a Amount) ToUnit(u AmountUnit) float64 {
	return float64(a) / math.Pow10(int(u+8))
}

// ToWhole is equivalent to ToUnit(AmountWhole).
func (a Amount) ToWhole() float64 {
	return a.ToUnit(AmountWhole)
}

// Format formats a as a string in unit u, suffixed with symbol.
func (a Amount) Format(u AmountUnit, symbol string) string {
	label := " " + u.String(symbol)
	formatted := strconv.FormatFloat(a.ToUnit(u), 'f', -int(u+8), 64)

	if u == AmountWhole && strings.Contains(formatted, ".") {
		return fmt.Sprintf("%.8f%s", a.ToUnit(u), label)
	}
	return formatted + label
}

// MulF64 multiplies an Amount by a floating point value, useful for fee
// estimators applying a percentage or per-byte rate.
func (a Amount) MulF64(f float64) Amount {
	return round(float64(a) * f)
}
