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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/txledger/engine/amount"
)

func TestNewTransaction_StartsUndisputed(t *testing.T) {
	amt, err := amount.NewPositive(amount.MustParse("5.0"))
	require.NoError(t, err)

	tx := NewTransaction(1, Deposit, amt)
	require.Equal(t, Undisputed, tx.State)
	require.Equal(t, Deposit, tx.Kind)
	require.Equal(t, ClientID(1), tx.Client)
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "deposit", Deposit.String())
	require.Equal(t, "withdraw", Withdrawal.String())
	require.Equal(t, "invalid", Kind(99).String())
}

func TestDisputeState_String(t *testing.T) {
	cases := map[DisputeState]string{
		Undisputed:  "undisputed",
		Disputed:    "disputed",
		Resolved:    "resolved",
		ChargedBack: "charged_back",
	}
	for state, want := range cases {
		require.Equal(t, want, state.String())
	}
	require.Equal(t, "invalid", DisputeState(99).String())
}
