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

func TestAccount_CreditDebit(t *testing.T) {
	a := NewAccount(1)
	a, err := a.Credit(amount.MustParse("10.0"))
	require.NoError(t, err)
	require.Equal(t, "10.0000", a.Available.String())

	a, err = a.Debit(amount.MustParse("4.0"))
	require.NoError(t, err)
	require.Equal(t, "6.0000", a.Available.String())

	total, err := a.Total()
	require.NoError(t, err)
	require.Equal(t, "6.0000", total.String())
}

func TestAccount_HoldMovesFundsFromAvailableToHeld(t *testing.T) {
	a := NewAccount(1)
	a, err := a.Credit(amount.MustParse("10.0"))
	require.NoError(t, err)

	a, err = a.Hold(amount.MustParse("3.0"))
	require.NoError(t, err)
	require.Equal(t, "7.0000", a.Available.String())
	require.Equal(t, "3.0000", a.Held.String())

	total, err := a.Total()
	require.NoError(t, err)
	require.Equal(t, "10.0000", total.String())
}

func TestAccount_ReleaseMovesFundsBackToAvailable(t *testing.T) {
	a := NewAccount(1)
	a, err := a.Credit(amount.MustParse("10.0"))
	require.NoError(t, err)
	a, err = a.Hold(amount.MustParse("3.0"))
	require.NoError(t, err)

	a, err = a.Release(amount.MustParse("3.0"))
	require.NoError(t, err)
	require.Equal(t, "10.0000", a.Available.String())
	require.Equal(t, "0.0000", a.Held.String())
}

func TestAccount_ReleaseCanDriveHeldNegative(t *testing.T) {
	// models crediting available for a disputed withdrawal, which debits
	// Held below zero rather than introducing a second register.
	a := NewAccount(1)
	a, err := a.Credit(amount.MustParse("10.0"))
	require.NoError(t, err)

	a, err = a.Release(amount.MustParse("4.0"))
	require.NoError(t, err)
	require.Equal(t, "14.0000", a.Available.String())
	require.Equal(t, "-4.0000", a.Held.String())

	total, err := a.Total()
	require.NoError(t, err)
	require.Equal(t, "10.0000", total.String())
}

func TestAccount_DebitDoesNotEnforceSufficientFunds(t *testing.T) {
	a := NewAccount(1)
	a, err := a.Debit(amount.MustParse("5.0"))
	require.NoError(t, err)
	require.Equal(t, "-5.0000", a.Available.String())
}

func TestAccount_Lock(t *testing.T) {
	a := NewAccount(1)
	require.False(t, a.Locked)
	a = a.Lock()
	require.True(t, a.Locked)
}

func TestAccount_CreditOverflow(t *testing.T) {
	a := NewAccount(1)
	a, err := a.Credit(amount.Max())
	require.NoError(t, err)
	_, err = a.Credit(amount.MustParse("1.0"))
	require.ErrorIs(t, err, amount.ErrOverflow)
}
