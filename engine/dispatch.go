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
	"errors"
	"fmt"

	"github.com/txledger/engine/amount"
	"github.com/txledger/engine/ledger"
	"github.com/txledger/engine/store"
)

// lookupTx fetches the referenced transaction, translating
// store.ErrNotFound into a *RejectionError and any other store error
// into a fatal, wrapped error.
func (e *Engine) lookupTx(ev Event) (ledger.Transaction, error) {
	tx, err := e.txs.Get(ev.Tx)
	if errors.Is(err, store.ErrNotFound) {
		return ledger.Transaction{}, reject(e.index, ev, "unknown transaction id")
	}
	if err != nil {
		return ledger.Transaction{}, err
	}
	if tx.Client != ev.Client {
		return ledger.Transaction{}, reject(e.index, ev, "transaction belongs to a different client")
	}
	return tx, nil
}

// processDeposit credits a client's available balance by the event's
// amount, subject to the locked gate and the duplicate-tx-id rule.
func (e *Engine) processDeposit(ev Event) error {
	if _, err := e.txs.Get(ev.Tx); err == nil {
		return reject(e.index, ev, "duplicate transaction id")
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	delta := ev.Amount.Amount()
	var rejection error
	err := e.accounts.Update(ev.Client, func(current ledger.Account, ok bool) (ledger.Account, error) {
		if !ok {
			current = ledger.NewAccount(ev.Client)
		}
		if current.Locked {
			rejection = reject(e.index, ev, "account is locked")
			return ledger.Account{}, rejection
		}
		next, err := current.Credit(delta)
		if err != nil {
			rejection = reject(e.index, ev, "deposit overflowed available balance")
			return ledger.Account{}, rejection
		}
		if _, err := next.Total(); err != nil {
			rejection = reject(e.index, ev, "deposit overflowed account total")
			return ledger.Account{}, rejection
		}
		return next, nil
	})
	if err != nil {
		if rejection != nil {
			return rejection
		}
		return err
	}

	tx := ledger.NewTransaction(ev.Client, ledger.Deposit, ev.Amount)
	if err := e.txs.Put(ev.Tx, tx); err != nil {
		return err
	}
	return nil
}

// processWithdrawal debits a client's available balance by the event's
// amount, subject to the locked gate, the sufficient-funds precondition,
// and the duplicate-tx-id rule.
func (e *Engine) processWithdrawal(ev Event) error {
	if _, err := e.txs.Get(ev.Tx); err == nil {
		return reject(e.index, ev, "duplicate transaction id")
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	delta := ev.Amount.Amount()
	var rejection error
	err := e.accounts.Update(ev.Client, func(current ledger.Account, ok bool) (ledger.Account, error) {
		if !ok {
			current = ledger.NewAccount(ev.Client)
		}
		if current.Locked {
			rejection = reject(e.index, ev, "account is locked")
			return ledger.Account{}, rejection
		}
		if current.Available.Cmp(delta) < 0 {
			rejection = reject(e.index, ev, "insufficient available funds")
			return ledger.Account{}, rejection
		}
		next, err := current.Debit(delta)
		if err != nil {
			rejection = reject(e.index, ev, "withdrawal overflowed available balance")
			return ledger.Account{}, rejection
		}
		return next, nil
	})
	if err != nil {
		if rejection != nil {
			return rejection
		}
		return err
	}

	tx := ledger.NewTransaction(ev.Client, ledger.Withdrawal, ev.Amount)
	if err := e.txs.Put(ev.Tx, tx); err != nil {
		return err
	}
	return nil
}

// processDispute transitions a transaction from Undisputed to Disputed,
// crediting or holding funds depending on the referenced record's Kind.
func (e *Engine) processDispute(ev Event) error {
	tx, err := e.lookupTx(ev)
	if err != nil {
		return err
	}
	if tx.State != ledger.Undisputed {
		return reject(e.index, ev, fmt.Sprintf("transaction is %s, not undisputed", tx.State))
	}

	a := tx.Amount.Amount()
	var rejection error
	err = e.accounts.Update(ev.Client, func(current ledger.Account, ok bool) (ledger.Account, error) {
		if current.Locked {
			rejection = reject(e.index, ev, "account is locked")
			return ledger.Account{}, rejection
		}
		var next ledger.Account
		var aerr error
		switch tx.Kind {
		case ledger.Deposit:
			// A deposit dispute is rejected outright if funds have since
			// been withdrawn, rather than letting available go negative.
			if current.Available.Cmp(a) < 0 {
				rejection = reject(e.index, ev, "insufficient available funds to hold dispute")
				return ledger.Account{}, rejection
			}
			next, aerr = current.Hold(a)
		case ledger.Withdrawal:
			// Models the claim that the debit was fraudulent: credit
			// available, and drive held negative to mark the contested
			// debit.
			next, aerr = current.Release(a)
		}
		if aerr != nil {
			rejection = reject(e.index, ev, "dispute overflowed account balance")
			return ledger.Account{}, rejection
		}
		return next, nil
	})
	if err != nil {
		if rejection != nil {
			return rejection
		}
		return err
	}

	return e.transitionTx(ev, tx, ledger.Disputed)
}

// processResolve transitions a transaction from Disputed to Resolved,
// reversing the Dispute's balance effect.
func (e *Engine) processResolve(ev Event) error {
	tx, err := e.lookupTx(ev)
	if err != nil {
		return err
	}
	if tx.State != ledger.Disputed {
		return reject(e.index, ev, fmt.Sprintf("transaction is %s, not disputed", tx.State))
	}

	a := tx.Amount.Amount()
	var rejection error
	err = e.accounts.Update(ev.Client, func(current ledger.Account, ok bool) (ledger.Account, error) {
		if current.Locked {
			rejection = reject(e.index, ev, "account is locked")
			return ledger.Account{}, rejection
		}
		var next ledger.Account
		var aerr error
		switch tx.Kind {
		case ledger.Deposit:
			next, aerr = current.Release(a)
		case ledger.Withdrawal:
			next, aerr = current.Hold(a)
		}
		if aerr != nil {
			rejection = reject(e.index, ev, "resolve overflowed account balance")
			return ledger.Account{}, rejection
		}
		return next, nil
	})
	if err != nil {
		if rejection != nil {
			return rejection
		}
		return err
	}

	return e.transitionTx(ev, tx, ledger.Resolved)
}

// processChargeback transitions a transaction from Disputed to
// ChargedBack, confirming the dispute and locking the account.
func (e *Engine) processChargeback(ev Event) error {
	tx, err := e.lookupTx(ev)
	if err != nil {
		return err
	}
	if tx.State != ledger.Disputed {
		return reject(e.index, ev, fmt.Sprintf("transaction is %s, not disputed", tx.State))
	}

	a := tx.Amount.Amount()
	var rejection error
	err = e.accounts.Update(ev.Client, func(current ledger.Account, ok bool) (ledger.Account, error) {
		if current.Locked {
			rejection = reject(e.index, ev, "account is locked")
			return ledger.Account{}, rejection
		}
		var next ledger.Account
		var aerr error
		switch tx.Kind {
		case ledger.Deposit:
			// Held -= a, available untouched.
			next = current
			next.Held, aerr = amount.Sub(current.Held, a)
		case ledger.Withdrawal:
			next, aerr = current.Release(a)
		}
		if aerr != nil {
			rejection = reject(e.index, ev, "chargeback overflowed account balance")
			return ledger.Account{}, rejection
		}
		return next.Lock(), nil
	})
	if err != nil {
		if rejection != nil {
			return rejection
		}
		return err
	}

	return e.transitionTx(ev, tx, ledger.ChargedBack)
}

// transitionTx writes the referenced transaction's new dispute state,
// last, after the account mutation has already committed. A mid-event
// crash can thus lose the dispute-state update but never corrupts
// balances.
func (e *Engine) transitionTx(ev Event, tx ledger.Transaction, next ledger.DisputeState) error {
	tx.State = next
	if err := e.txs.Put(ev.Tx, tx); err != nil {
		return err
	}
	return nil
}
