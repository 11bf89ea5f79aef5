// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldbstore

import (
	"encoding/binary"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/txledger/engine/amount"
	"github.com/txledger/engine/ledger"
)

// accountValueVersion1 / transactionValueVersion1 are the only on-disk
// value formats this build knows how to read or write. The format is
// private to this package; cross-version compatibility is not a goal.
const (
	accountValueVersion1     = 1
	transactionValueVersion1 = 1
)

// errUnsupportedVersionFmt formats the error a value decoder returns when
// the leading version byte does not match a format this build understands.
const errUnsupportedVersionFmt = "ldbstore: unsupported value version %d"

// ClientIDCodec encodes ledger.ClientID as a 2-byte big-endian key, used
// for the "accounts" column family.
type ClientIDCodec struct{}

func (ClientIDCodec) Encode(id ledger.ClientID) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(id))
	return buf
}

func (ClientIDCodec) Decode(b []byte) (ledger.ClientID, error) {
	if len(b) != 2 {
		return 0, fmt.Errorf("ldbstore: malformed client id key (%d bytes)", len(b))
	}
	return ledger.ClientID(binary.BigEndian.Uint16(b)), nil
}

// TxIDCodec encodes ledger.TxID as a 4-byte big-endian key, used for the
// "transactions" column family.
type TxIDCodec struct{}

func (TxIDCodec) Encode(id ledger.TxID) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(id))
	return buf
}

func (TxIDCodec) Decode(b []byte) (ledger.TxID, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("ldbstore: malformed tx id key (%d bytes)", len(b))
	}
	return ledger.TxID(binary.BigEndian.Uint32(b)), nil
}

// encodeAmount appends a length-prefixed decimal literal (the exact
// coefficient, full precision, via decimal.Decimal.String) to buf.
func encodeAmount(buf []byte, a amount.Amount) []byte {
	raw := []byte(a.Decimal().String())
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(raw)))
	return append(buf, raw...)
}

// decodeAmount reads a length-prefixed decimal literal from b, returning
// the decoded Amount and the number of bytes consumed.
func decodeAmount(b []byte) (amount.Amount, int, error) {
	if len(b) < 4 {
		return amount.Amount{}, 0, fmt.Errorf("ldbstore: truncated amount length")
	}
	n := int(binary.BigEndian.Uint32(b))
	if len(b) < 4+n {
		return amount.Amount{}, 0, fmt.Errorf("ldbstore: truncated amount payload")
	}
	d, err := decimal.NewFromString(string(b[4 : 4+n]))
	if err != nil {
		return amount.Amount{}, 0, fmt.Errorf("ldbstore: unmarshal amount: %w", err)
	}
	return amount.FromDecimal(d), 4 + n, nil
}

// AccountCodec encodes ledger.Account as the "accounts" column family
// value.
type AccountCodec struct{}

func (AccountCodec) Encode(a ledger.Account) []byte {
	buf := []byte{accountValueVersion1}
	buf = binary.BigEndian.AppendUint16(buf, uint16(a.Client))
	buf = encodeAmount(buf, a.Available)
	buf = encodeAmount(buf, a.Held)
	if a.Locked {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

func (AccountCodec) Decode(b []byte) (ledger.Account, error) {
	if len(b) < 1 || b[0] != accountValueVersion1 {
		return ledger.Account{}, fmt.Errorf(errUnsupportedVersionFmt, versionOf(b))
	}
	b = b[1:]
	if len(b) < 2 {
		return ledger.Account{}, fmt.Errorf("ldbstore: truncated account record")
	}
	client := ledger.ClientID(binary.BigEndian.Uint16(b))
	b = b[2:]

	avail, n, err := decodeAmount(b)
	if err != nil {
		return ledger.Account{}, err
	}
	b = b[n:]

	held, n, err := decodeAmount(b)
	if err != nil {
		return ledger.Account{}, err
	}
	b = b[n:]

	if len(b) < 1 {
		return ledger.Account{}, fmt.Errorf("ldbstore: truncated account record (locked flag)")
	}
	return ledger.Account{
		Client:    client,
		Available: avail,
		Held:      held,
		Locked:    b[0] != 0,
	}, nil
}

// TransactionCodec encodes ledger.Transaction as the "transactions" column
// family value.
type TransactionCodec struct{}

func (TransactionCodec) Encode(tx ledger.Transaction) []byte {
	buf := []byte{transactionValueVersion1}
	buf = binary.BigEndian.AppendUint16(buf, uint16(tx.Client))
	buf = append(buf, byte(tx.Kind))
	buf = encodeAmount(buf, tx.Amount.Amount())
	buf = append(buf, byte(tx.State))
	return buf
}

func (TransactionCodec) Decode(b []byte) (ledger.Transaction, error) {
	if len(b) < 1 || b[0] != transactionValueVersion1 {
		return ledger.Transaction{}, fmt.Errorf(errUnsupportedVersionFmt, versionOf(b))
	}
	b = b[1:]
	if len(b) < 3 {
		return ledger.Transaction{}, fmt.Errorf("ldbstore: truncated transaction record")
	}
	client := ledger.ClientID(binary.BigEndian.Uint16(b))
	kind := ledger.Kind(b[2])
	b = b[3:]

	amt, n, err := decodeAmount(b)
	if err != nil {
		return ledger.Transaction{}, err
	}
	b = b[n:]

	if len(b) < 1 {
		return ledger.Transaction{}, fmt.Errorf("ldbstore: truncated transaction record (state)")
	}
	positive, err := amount.NewPositive(amt)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("ldbstore: decoded non-positive transaction amount: %w", err)
	}
	return ledger.Transaction{
		Client: client,
		Kind:   kind,
		Amount: positive,
		State:  ledger.DisputeState(b[0]),
	}, nil
}

func versionOf(b []byte) int {
	if len(b) == 0 {
		return -1
	}
	return int(b[0])
}
