// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ledger

import "github.com/txledger/engine/amount"

// Kind distinguishes the two event types that create a Transaction record.
// Dispute/Resolve/Chargeback reference an existing record and never create
// one of their own.
type Kind byte

const (
	// Deposit credits an account's available balance.
	Deposit Kind = iota
	// Withdrawal debits an account's available balance.
	Withdrawal
)

func (k Kind) String() string {
	switch k {
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdraw"
	}
	return "invalid"
}

// DisputeState is the state of a Transaction's dispute lifecycle. It is a
// byte-based enum rather than a string or an interface.
type DisputeState byte

const (
	// Undisputed is the initial state of every Deposit/Withdrawal record.
	Undisputed DisputeState = iota
	// Disputed marks a record currently under dispute.
	Disputed
	// Resolved is terminal: the dispute was cleared in the client's favor.
	// No further Dispute/Resolve/Chargeback is accepted on this record.
	Resolved
	// ChargedBack is terminal: the dispute was confirmed against the
	// client, and the owning account is locked.
	ChargedBack
)

func (s DisputeState) String() string {
	switch s {
	case Undisputed:
		return "undisputed"
	case Disputed:
		return "disputed"
	case Resolved:
		return "resolved"
	case ChargedBack:
		return "charged_back"
	}
	return "invalid"
}

// Transaction is the historical record of a single Deposit or Withdrawal,
// together with its current dispute state. It is a passive value: the
// engine, not Transaction, decides which DisputeState transitions are
// legal.
type Transaction struct {
	Client ClientID
	Kind   Kind
	Amount amount.Positive
	State  DisputeState
}

// NewTransaction constructs an Undisputed transaction record.
func NewTransaction(client ClientID, kind Kind, amt amount.Positive) Transaction {
	return Transaction{Client: client, Kind: kind, Amount: amt, State: Undisputed}
}
