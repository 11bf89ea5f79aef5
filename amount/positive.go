// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package amount

import "fmt"

// Positive wraps an Amount that is guaranteed, at construction, to be
// strictly greater than zero. Deposit and withdrawal amounts are modeled
// as Positive so the zero/negative case cannot reach the ledger state
// machine at all.
type Positive struct {
	amt Amount
}

// NewPositive constructs a Positive from a, rejecting zero or negative
// values.
func NewPositive(a Amount) (Positive, error) {
	if !a.IsNegative() && !a.IsZero() {
		return Positive{amt: a}, nil
	}
	return Positive{}, fmt.Errorf("%w: %v", ErrNotPositive, a)
}

// ParsePositive parses s and wraps it as a Positive, combining Parse and
// NewPositive for the common CSV-decoding path.
func ParsePositive(s string) (Positive, error) {
	a, err := Parse(s)
	if err != nil {
		return Positive{}, err
	}
	return NewPositive(a)
}

// Amount unwraps the underlying signed value.
func (p Positive) Amount() Amount {
	return p.amt
}

// String renders the underlying amount.
func (p Positive) String() string {
	return p.amt.String()
}
