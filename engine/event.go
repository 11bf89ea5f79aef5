// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package engine implements the ledger state machine: it consumes one
// event at a time, dispatches it through the dispute lifecycle and
// balance-effect rules, and mediates the account and transaction stores.
// The engine is the heart of the module; everything else (amount,
// ledger, store, csvio) exists to support it.
package engine

import (
	"github.com/txledger/engine/amount"
	"github.com/txledger/engine/ledger"
)

// Type identifies which of the five event kinds an Event carries.
type Type byte

const (
	Deposit Type = iota
	Withdrawal
	Dispute
	Resolve
	Chargeback
)

func (t Type) String() string {
	switch t {
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdraw"
	case Dispute:
		return "dispute"
	case Resolve:
		return "resolve"
	case Chargeback:
		return "chargeback"
	}
	return "invalid"
}

// Event is one row of the input stream, already decoded and, for
// Deposit/Withdrawal, amount-validated: those two kinds require an
// amount strictly greater than zero, and the other three ignore it.
// Positive construction happens at the boundary that builds an Event,
// not here.
type Event struct {
	Type   Type
	Client ledger.ClientID
	Tx     ledger.TxID
	Amount amount.Positive // meaningful only for Deposit/Withdrawal
}

// Source is a lazy, finite, non-restartable sequence of events. Next
// returns io.EOF once exhausted, exactly as io.Reader/bufio.Scanner
// callers expect. Any other non-nil error describes a malformed row —
// Run logs it and calls Next again rather than treating it as fatal.
type Source interface {
	Next() (Event, error)
}
