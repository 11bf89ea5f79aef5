// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package amount implements a signed, fixed-point decimal used for client
// account balances throughout the ledger. Arithmetic is exact (backed by
// shopspring/decimal, itself backed by math/big) and checked: an operation
// that would leave the declared range is rejected rather than wrapped.
package amount

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/txledger/engine/common"
)

// Scale is the number of fractional digits the ledger treats as significant
// for output and overflow-range purposes. Higher-precision input is parsed
// and carried internally without loss (see Parse) but is never required by
// callers.
const Scale = 4

// ErrOverflow is returned by Add/Sub when the result would leave the
// representable range of Amount.
const ErrOverflow = common.ConstError("amount: overflow")

// ErrMalformed is returned by Parse when the input is not a valid decimal
// literal.
const ErrMalformed = common.ConstError("amount: malformed decimal literal")

// ErrNotPositive is returned by NewPositive when the wrapped Amount is not
// strictly greater than zero.
const ErrNotPositive = common.ConstError("amount: value is not positive")

// bound is the largest magnitude representable by an Amount in either
// direction; chosen so overflow is always a detectable, checked condition
// rather than a silent wraparound.
var bound = decimal.New(922337203685477, 0) // (2^63-1)/10000, truncated

// Amount is a signed fixed-point decimal value. The zero value is zero.
type Amount struct {
	val decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{}

// New constructs an Amount from whole and fractional (out of 10^Scale)
// parts. A negative whole part makes the amount negative; frac is always
// added with the sign of whole (or positive, if whole is zero).
func New(whole int64, frac int64) Amount {
	w := decimal.New(whole, 0)
	f := decimal.New(frac, -Scale)
	if whole < 0 {
		f = f.Neg()
	}
	return Amount{val: w.Add(f)}
}

// Parse parses a decimal literal such as "10.5" or "-3.0001" into an
// Amount. Up to Scale fractional digits are guaranteed to round-trip;
// additional digits are preserved internally but never required of callers.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	a := Amount{val: d}
	if a.val.GreaterThan(bound) || a.val.LessThan(bound.Neg()) {
		return Amount{}, fmt.Errorf("%w: %q is out of range", ErrOverflow, s)
	}
	return a, nil
}

// MustParse is Parse, panicking on error. Intended for tests and constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a+b, or ErrOverflow if the result leaves the representable
// range.
func Add(a, b Amount) (Amount, error) {
	sum := a.val.Add(b.val)
	if sum.GreaterThan(bound) || sum.LessThan(bound.Neg()) {
		return Amount{}, ErrOverflow
	}
	return Amount{val: sum}, nil
}

// Sub returns a-b, or ErrOverflow if the result leaves the representable
// range.
func Sub(a, b Amount) (Amount, error) {
	diff := a.val.Sub(b.val)
	if diff.GreaterThan(bound) || diff.LessThan(bound.Neg()) {
		return Amount{}, ErrOverflow
	}
	return Amount{val: diff}, nil
}

// Neg returns -a.
func Neg(a Amount) Amount {
	return Amount{val: a.val.Neg()}
}

// Cmp returns -1, 0 or 1 as a is less than, equal to, or greater than b.
func (a Amount) Cmp(b Amount) int {
	return a.val.Cmp(b.val)
}

// IsZero reports whether a is exactly zero.
func (a Amount) IsZero() bool {
	return a.val.IsZero()
}

// IsNegative reports whether a is strictly less than zero.
func (a Amount) IsNegative() bool {
	return a.val.IsNegative()
}

// Min returns the smaller of the representable range's two bounds.
func Min() Amount {
	return Amount{val: bound.Neg()}
}

// Max returns the largest representable value.
func Max() Amount {
	return Amount{val: bound}
}

// String renders the amount with exactly Scale fractional digits, the
// fixed format expected by the CSV snapshot output.
func (a Amount) String() string {
	return a.val.StringFixed(Scale)
}

// Decimal exposes the underlying decimal.Decimal for callers (such as the
// storage layer's value encoder) that need direct access to its byte
// representation.
func (a Amount) Decimal() decimal.Decimal {
	return a.val
}

// FromDecimal wraps an already-parsed decimal.Decimal as an Amount,
// bypassing range checks. Used only by trusted internal decoders (the
// on-disk store) that re-read a value this package itself wrote.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{val: d}
}
