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

//go:generate mockgen -source engine.go -destination mock_store_test.go -package engine

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/txledger/engine/ledger"
	"github.com/txledger/engine/store"
)

// AccountStore and TransactionStore name the two capability-set instances
// the engine mediates, parameterized over the backend (memstore or
// ldbstore) the caller chose.
type AccountStore = store.Store[ledger.ClientID, ledger.Account]
type TransactionStore = store.Store[ledger.TxID, ledger.Transaction]

// RejectionError reports a per-event rejection: the event had no effect,
// and the stream continues. It is never returned for a storage failure —
// that case surfaces the backend's own wrapped error instead, which Run
// treats as fatal.
type RejectionError struct {
	Index  uint64
	Type   Type
	Client ledger.ClientID
	Tx     ledger.TxID
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("event #%d (%s client=%d tx=%d) rejected: %s", e.Index, e.Type, e.Client, e.Tx, e.Reason)
}

func reject(index uint64, ev Event, reason string) *RejectionError {
	return &RejectionError{Index: index, Type: ev.Type, Client: ev.Client, Tx: ev.Tx, Reason: reason}
}

// Engine is the ledger state machine. It is not safe for concurrent use
// from multiple goroutines; it is logically single-threaded and events
// are applied to completion one at a time.
type Engine struct {
	accounts AccountStore
	txs      TransactionStore
	logger   *log.Logger
	index    uint64
}

// New constructs an Engine over the given account and transaction stores.
// logger receives one line per rejected event; if nil, log.Default() is
// used.
func New(accounts AccountStore, txs TransactionStore, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{accounts: accounts, txs: txs, logger: logger}
}

// Process consumes one event, applying its effect to the two stores. A
// rejected event leaves both stores unchanged. The account store is
// written first and the transaction record last, so a storage error on
// that last write leaves the account change in place without the
// transaction update (see transitionTx).
// The returned error is either nil (accepted), a *RejectionError (logged,
// non-fatal), or a storage error (fatal; Run stops draining the stream on
// this case).
func (e *Engine) Process(ev Event) error {
	e.index++
	var err error
	switch ev.Type {
	case Deposit:
		err = e.processDeposit(ev)
	case Withdrawal:
		err = e.processWithdrawal(ev)
	case Dispute:
		err = e.processDispute(ev)
	case Resolve:
		err = e.processResolve(ev)
	case Chargeback:
		err = e.processChargeback(ev)
	default:
		err = reject(e.index, ev, "unknown event type")
	}

	var rerr *RejectionError
	if errors.As(err, &rerr) {
		e.logger.Printf("%v", rerr)
	}
	return err
}

// Run drains src by repeated calls to Process until the stream is
// exhausted (io.EOF) or a fatal storage error occurs. Stream decode
// errors (a malformed row) are logged and skipped, never fatal. Run
// returns nil on a clean end of stream.
func (e *Engine) Run(src Source) error {
	for {
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			e.logger.Printf("skipping malformed row: %v", err)
			continue
		}
		if perr := e.Process(ev); perr != nil {
			var rerr *RejectionError
			if errors.As(perr, &rerr) {
				// already logged by Process, continue the stream.
				continue
			}
			return fmt.Errorf("fatal storage error, stopping: %w", perr)
		}
	}
}
