// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package engine

import (
	"bytes"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/txledger/engine/amount"
	"github.com/txledger/engine/ledger"
	"github.com/txledger/engine/store"
	"github.com/txledger/engine/store/memstore"
)

// sliceSource is a Source over a fixed []Event, used to drive Run in
// tests without depending on csvio.
type sliceSource struct {
	events []Event
	pos    int
}

func (s *sliceSource) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	accounts := memstore.New[ledger.ClientID, ledger.Account]()
	txs := memstore.New[ledger.TxID, ledger.Transaction]()
	return New(accounts, txs, logger)
}

func deposit(client ledger.ClientID, tx ledger.TxID, amt string) Event {
	return Event{Type: Deposit, Client: client, Tx: tx, Amount: mustPositive(amt)}
}

func withdraw(client ledger.ClientID, tx ledger.TxID, amt string) Event {
	return Event{Type: Withdrawal, Client: client, Tx: tx, Amount: mustPositive(amt)}
}

func dispute(client ledger.ClientID, tx ledger.TxID) Event {
	return Event{Type: Dispute, Client: client, Tx: tx}
}

func resolve(client ledger.ClientID, tx ledger.TxID) Event {
	return Event{Type: Resolve, Client: client, Tx: tx}
}

func chargeback(client ledger.ClientID, tx ledger.TxID) Event {
	return Event{Type: Chargeback, Client: client, Tx: tx}
}

func mustPositive(s string) amount.Positive {
	p, err := amount.ParsePositive(s)
	if err != nil {
		panic(err)
	}
	return p
}

func snapshotOf(t *testing.T, e *Engine, client ledger.ClientID) SnapshotRow {
	t.Helper()
	var found SnapshotRow
	ok := false
	err := e.Snapshot(func(row SnapshotRow) bool {
		if row.Client == client {
			found = row
			ok = true
			return false
		}
		return true
	})
	require.NoError(t, err)
	require.True(t, ok, "client %d not found in snapshot", client)
	return found
}

// Scenario 1: basic deposit/withdraw.
func TestScenario_BasicDepositWithdraw(t *testing.T) {
	e := newTestEngine(t)
	src := &sliceSource{events: []Event{
		deposit(1, 1, "10.0"),
		deposit(2, 2, "2.0"),
		withdraw(1, 3, "1.5"),
		withdraw(2, 4, "3.0"), // rejected: insufficient
	}}
	require.NoError(t, e.Run(src))

	row1 := snapshotOf(t, e, 1)
	require.Equal(t, "8.5000", row1.Available.String())
	require.Equal(t, "0.0000", row1.Held.String())
	require.Equal(t, "8.5000", row1.Total.String())
	require.False(t, row1.Locked)

	row2 := snapshotOf(t, e, 2)
	require.Equal(t, "2.0000", row2.Available.String())
	require.Equal(t, "2.0000", row2.Total.String())
}

// Scenario 2: dispute and resolve of a deposit.
func TestScenario_DisputeAndResolveDeposit(t *testing.T) {
	e := newTestEngine(t)
	src := &sliceSource{events: []Event{
		deposit(1, 1, "5.0"),
		dispute(1, 1),
		resolve(1, 1),
	}}
	require.NoError(t, e.Run(src))

	row := snapshotOf(t, e, 1)
	require.Equal(t, "5.0000", row.Available.String())
	require.Equal(t, "0.0000", row.Held.String())
	require.False(t, row.Locked)

	tx, err := e.txs.Get(1)
	require.NoError(t, err)
	require.Equal(t, ledger.Resolved, tx.State)

	// a second dispute is rejected now that the transaction is Resolved.
	err = e.Process(dispute(1, 1))
	var rerr *RejectionError
	require.ErrorAs(t, err, &rerr)
}

// Scenario 3: chargeback locks the account.
func TestScenario_ChargebackLocksAccount(t *testing.T) {
	e := newTestEngine(t)
	src := &sliceSource{events: []Event{
		deposit(1, 1, "5.0"),
		deposit(1, 2, "3.0"),
		dispute(1, 1),
		chargeback(1, 1),
		deposit(1, 3, "10.0"), // rejected: locked
	}}
	require.NoError(t, e.Run(src))

	row := snapshotOf(t, e, 1)
	require.Equal(t, "3.0000", row.Available.String())
	require.Equal(t, "0.0000", row.Held.String())
	require.Equal(t, "3.0000", row.Total.String())
	require.True(t, row.Locked)
}

// Scenario 4: dispute rejected for insufficient available.
func TestScenario_DisputeRejectedInsufficientAvailable(t *testing.T) {
	e := newTestEngine(t)
	src := &sliceSource{events: []Event{
		deposit(1, 1, "5.0"),
		withdraw(1, 2, "5.0"),
		dispute(1, 1), // rejected
	}}
	require.NoError(t, e.Run(src))

	row := snapshotOf(t, e, 1)
	require.Equal(t, "0.0000", row.Available.String())
	require.Equal(t, "0.0000", row.Held.String())
	require.False(t, row.Locked)

	tx, err := e.txs.Get(1)
	require.NoError(t, err)
	require.Equal(t, ledger.Undisputed, tx.State)
}

// Scenario 5: unknown and cross-client references.
func TestScenario_UnknownAndCrossClientReferences(t *testing.T) {
	e := newTestEngine(t)
	src := &sliceSource{events: []Event{
		deposit(1, 1, "5.0"),
		dispute(2, 1),  // rejected: client mismatch
		resolve(1, 99), // rejected: unknown tx
	}}
	require.NoError(t, e.Run(src))

	row := snapshotOf(t, e, 1)
	require.Equal(t, "5.0000", row.Available.String())
}

// Scenario 6: duplicate tx id.
func TestScenario_DuplicateTxID(t *testing.T) {
	e := newTestEngine(t)
	src := &sliceSource{events: []Event{
		deposit(1, 1, "5.0"),
		deposit(1, 1, "1.0"), // rejected: duplicate
	}}
	require.NoError(t, e.Run(src))

	row := snapshotOf(t, e, 1)
	require.Equal(t, "5.0000", row.Available.String())
}

func TestDisputeLifecycle_ResolvedIsTerminal(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Process(deposit(1, 1, "5.0")))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.NoError(t, e.Process(resolve(1, 1)))

	err := e.Process(chargeback(1, 1))
	var rerr *RejectionError
	require.ErrorAs(t, err, &rerr)
}

func TestDisputeLifecycle_ChargedBackIsTerminal(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Process(deposit(1, 1, "5.0")))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.NoError(t, e.Process(chargeback(1, 1)))

	err := e.Process(resolve(1, 1))
	var rerr *RejectionError
	require.ErrorAs(t, err, &rerr)
}

func TestDisputeLifecycle_WithdrawalDisputeAllowsNegativeHeld(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Process(deposit(1, 1, "10.0")))
	require.NoError(t, e.Process(withdraw(1, 2, "4.0")))
	require.NoError(t, e.Process(dispute(1, 2)))

	row := snapshotOf(t, e, 1)
	require.Equal(t, "10.0000", row.Available.String())
	require.Equal(t, "-4.0000", row.Held.String())
	require.Equal(t, "6.0000", row.Total.String())

	require.NoError(t, e.Process(chargeback(1, 2)))
	row = snapshotOf(t, e, 1)
	require.True(t, row.Locked)
	require.Equal(t, "14.0000", row.Available.String())
	require.Equal(t, "-8.0000", row.Held.String())
}

func TestLockedAccount_RejectsAllFurtherEvents(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Process(deposit(1, 1, "5.0")))
	require.NoError(t, e.Process(deposit(1, 4, "1.0")))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.NoError(t, e.Process(chargeback(1, 1)))

	for _, ev := range []Event{
		deposit(1, 2, "1.0"),
		withdraw(1, 3, "1.0"),
		dispute(1, 4),
	} {
		err := e.Process(ev)
		var rerr *RejectionError
		require.ErrorAs(t, err, &rerr)
	}
}

func TestWithdrawal_InsufficientFundsRejected(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Process(deposit(1, 1, "1.0")))
	err := e.Process(withdraw(1, 2, "2.0"))
	var rerr *RejectionError
	require.ErrorAs(t, err, &rerr)

	row := snapshotOf(t, e, 1)
	require.Equal(t, "1.0000", row.Available.String())
}

func TestWithdrawal_OnUnknownAccountRejectedAsInsufficientFunds(t *testing.T) {
	e := newTestEngine(t)
	err := e.Process(withdraw(9, 1, "1.0"))
	var rerr *RejectionError
	require.ErrorAs(t, err, &rerr)
}

func TestRun_SkipsMalformedRowsWithoutAborting(t *testing.T) {
	e := newTestEngine(t)
	src := &erroringSource{
		items: []sourceItem{
			{ev: deposit(1, 1, "5.0")},
			{err: errors.New("bad row")},
			{ev: deposit(1, 2, "2.0")},
		},
	}
	require.NoError(t, e.Run(src))

	row := snapshotOf(t, e, 1)
	require.Equal(t, "7.0000", row.Available.String())
}

type sourceItem struct {
	ev  Event
	err error
}

type erroringSource struct {
	items []sourceItem
	pos   int
}

func (s *erroringSource) Next() (Event, error) {
	if s.pos >= len(s.items) {
		return Event{}, io.EOF
	}
	item := s.items[s.pos]
	s.pos++
	if item.err != nil {
		return Event{}, item.err
	}
	return item.ev, nil
}

func TestRun_StopsOnFatalStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAccounts := NewMockAccountStore(ctrl)
	mockAccounts.EXPECT().Get(ledger.TxID(0)).AnyTimes() // unused placeholder to keep ctrl non-empty

	txs := memstore.New[ledger.TxID, ledger.Transaction]()
	var buf bytes.Buffer
	e := New(mockAccounts, txs, log.New(&buf, "", 0))

	mockAccounts.EXPECT().Update(ledger.ClientID(1), gomock.Any()).
		Return(errors.New("disk exploded")).Times(1)

	src := &sliceSource{events: []Event{deposit(1, 1, "1.0")}}
	err := e.Run(src)
	require.Error(t, err)
}

var _ store.Store[ledger.ClientID, ledger.Account] = (*memstore.Store[ledger.ClientID, ledger.Account])(nil)
