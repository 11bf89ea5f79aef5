// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/txledger/engine/engine"
)

// EncodeSnapshot writes e's account snapshot to w as CSV: a header row
// followed by one row per known client, in whatever order Engine.Snapshot
// produces them.
func EncodeSnapshot(w io.Writer, e *engine.Engine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("csvio: writing header: %w", err)
	}

	var writeErr error
	err := e.Snapshot(func(row engine.SnapshotRow) bool {
		record := []string{
			strconv.FormatUint(uint64(row.Client), 10),
			row.Available.String(),
			row.Held.String(),
			row.Total.String(),
			strconv.FormatBool(row.Locked),
		}
		if err := cw.Write(record); err != nil {
			writeErr = fmt.Errorf("csvio: writing row for client %d: %w", row.Client, err)
			return false
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("csvio: snapshot: %w", err)
	}
	if writeErr != nil {
		return writeErr
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csvio: flush: %w", err)
	}
	return nil
}
