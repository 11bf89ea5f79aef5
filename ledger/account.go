// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package ledger defines the value types the engine operates on: client
// accounts and their transaction history. Types here are passive values;
// the state-machine transitions that mutate them live in package engine.
package ledger

import (
	"fmt"

	"github.com/txledger/engine/amount"
)

// ClientID identifies an account as a 16-bit unsigned integer.
type ClientID uint16

// TxID identifies a transaction record as a 32-bit unsigned integer,
// globally unique across a stream.
type TxID uint32

// Account is the per-client balance record.
//
// Held is allowed to go negative: a disputed withdrawal is modeled by
// crediting Available and debiting Held by the same amount, rather than
// introducing a second contested-debit register. Callers must not
// construct Account directly with a negative Held from any path other
// than a withdrawal dispute/chargeback.
type Account struct {
	Client    ClientID
	Available amount.Amount
	Held      amount.Amount
	Locked    bool
}

// NewAccount returns a freshly created, zero-balance account for client.
func NewAccount(client ClientID) Account {
	return Account{Client: client}
}

// Total returns Available+Held. It is never stored, only computed on
// demand, so Available and Held can never drift out of sync with it.
func (a Account) Total() (amount.Amount, error) {
	return amount.Add(a.Available, a.Held)
}

// Credit adds delta to Available, returning the updated account or an
// overflow error. Account is a value type; callers assign the result back.
func (a Account) Credit(delta amount.Amount) (Account, error) {
	next, err := amount.Add(a.Available, delta)
	if err != nil {
		return Account{}, fmt.Errorf("credit available: %w", err)
	}
	a.Available = next
	return a, nil
}

// Debit subtracts delta from Available, returning the updated account or
// an overflow error. It does not itself enforce a minimum-funds precondition
// — callers (engine) check that before calling.
func (a Account) Debit(delta amount.Amount) (Account, error) {
	next, err := amount.Sub(a.Available, delta)
	if err != nil {
		return Account{}, fmt.Errorf("debit available: %w", err)
	}
	a.Available = next
	return a, nil
}

// Hold moves delta from Available to Held.
func (a Account) Hold(delta amount.Amount) (Account, error) {
	a, err := a.Debit(delta)
	if err != nil {
		return Account{}, err
	}
	nextHeld, err := amount.Add(a.Held, delta)
	if err != nil {
		return Account{}, fmt.Errorf("increase held: %w", err)
	}
	a.Held = nextHeld
	return a, nil
}

// Release moves delta from Held back to Available.
func (a Account) Release(delta amount.Amount) (Account, error) {
	nextHeld, err := amount.Sub(a.Held, delta)
	if err != nil {
		return Account{}, fmt.Errorf("decrease held: %w", err)
	}
	a.Held = nextHeld
	return a.Credit(delta)
}

// Lock sets Locked to true. Once set, the engine never clears it.
func (a Account) Lock() Account {
	a.Locked = true
	return a
}
