// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package csvio adapts the engine's event stream and account snapshot to
// comma-separated-value files: the thin, boundary-only I/O layer the
// engine itself never imports.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/txledger/engine/amount"
	"github.com/txledger/engine/engine"
	"github.com/txledger/engine/ledger"
)

var expectedHeader = []string{"type", "client", "tx", "amount"}

// Decoder reads events from an underlying CSV stream, one row at a time,
// and implements engine.Source. The header row is validated on the first
// call to Next; every row after that produces exactly one Event or one
// non-fatal decode error, and the stream never aborts on a bad row.
type Decoder struct {
	r             *csv.Reader
	row           int
	headerChecked bool
}

// NewDecoder wraps r as a Decoder. Fields are comma-separated with an
// arbitrary number of columns per record tolerated by the reader itself;
// Decoder performs its own column-count and header validation.
func NewDecoder(r io.Reader) *Decoder {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &Decoder{r: cr}
}

// Next implements engine.Source. It returns io.EOF once the underlying
// reader is exhausted. Any other non-nil error describes a malformed
// header (first call only) or a malformed row; a row error carries the
// row's 1-based record number, counting the header as row 1. The caller
// (engine.Run) is expected to log it and continue.
func (d *Decoder) Next() (engine.Event, error) {
	if !d.headerChecked {
		d.headerChecked = true
		if err := d.checkHeader(); err != nil {
			return engine.Event{}, err
		}
	}

	for {
		record, err := d.r.Read()
		if err == io.EOF {
			return engine.Event{}, io.EOF
		}
		if err != nil {
			d.row++
			return engine.Event{}, fmt.Errorf("csvio: row %d: %w", d.row, err)
		}
		d.row++
		if len(record) < 3 {
			return engine.Event{}, fmt.Errorf("csvio: row %d: expected at least 3 columns, got %d", d.row, len(record))
		}
		return d.decodeRow(record)
	}
}

func (d *Decoder) checkHeader() error {
	record, err := d.r.Read()
	if err != nil {
		return fmt.Errorf("csvio: reading header: %w", err)
	}
	d.row++
	if len(record) < len(expectedHeader) {
		return fmt.Errorf("csvio: header has %d columns, want at least %d", len(record), len(expectedHeader))
	}
	for i, want := range expectedHeader {
		if strings.TrimSpace(record[i]) != want {
			return fmt.Errorf("csvio: header column %d is %q, want %q", i, record[i], want)
		}
	}
	return nil
}

func (d *Decoder) decodeRow(record []string) (engine.Event, error) {
	typ, err := parseType(strings.TrimSpace(record[0]))
	if err != nil {
		return engine.Event{}, fmt.Errorf("csvio: row %d: %w", d.row, err)
	}

	clientRaw := strings.TrimSpace(record[1])
	client, err := strconv.ParseUint(clientRaw, 10, 16)
	if err != nil {
		return engine.Event{}, fmt.Errorf("csvio: row %d: invalid client id %q: %w", d.row, clientRaw, err)
	}

	txRaw := strings.TrimSpace(record[2])
	tx, err := strconv.ParseUint(txRaw, 10, 32)
	if err != nil {
		return engine.Event{}, fmt.Errorf("csvio: row %d: invalid tx id %q: %w", d.row, txRaw, err)
	}

	ev := engine.Event{
		Type:   typ,
		Client: ledger.ClientID(client),
		Tx:     ledger.TxID(tx),
	}

	if typ == engine.Deposit || typ == engine.Withdrawal {
		var amtRaw string
		if len(record) > 3 {
			amtRaw = strings.TrimSpace(record[3])
		}
		if amtRaw == "" {
			return engine.Event{}, fmt.Errorf("csvio: row %d: %s requires an amount", d.row, typ)
		}
		amt, err := amount.ParsePositive(amtRaw)
		if err != nil {
			return engine.Event{}, fmt.Errorf("csvio: row %d: invalid amount %q: %w", d.row, amtRaw, err)
		}
		ev.Amount = amt
	}

	return ev, nil
}

func parseType(s string) (engine.Type, error) {
	switch s {
	case "deposit":
		return engine.Deposit, nil
	case "withdraw":
		return engine.Withdrawal, nil
	case "dispute":
		return engine.Dispute, nil
	case "resolve":
		return engine.Resolve, nil
	case "chargeback":
		return engine.Chargeback, nil
	}
	return 0, fmt.Errorf("unrecognized event type %q", s)
}
