// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/txledger/engine/ledger"
	"github.com/txledger/engine/store/ldbstore"
)

var inspectDirFlag = cli.StringFlag{
	Name:     "dir",
	Usage:    "root directory of a leveldb-backed ledger-engine data set",
	Required: true,
}

var inspectCommand = cli.Command{
	Action: inspectDataDir,
	Name:   "inspect",
	Usage:  "prints summary information about a leveldb data directory without replaying any events",
	Flags: []cli.Flag{
		&inspectDirFlag,
	},
}

func inspectDataDir(ctx *cli.Context) (err error) {
	dir := ctx.String(inspectDirFlag.Name)

	log.Printf("Opening accounts store in %v ...", filepath.Join(dir, accountsSubdir))
	accounts, err := ldbstore.Open[ledger.ClientID, ledger.Account](
		filepath.Join(dir, accountsSubdir), ldbstore.ClientIDCodec{}, ldbstore.AccountCodec{})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := accounts.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	log.Printf("Opening transactions store in %v ...", filepath.Join(dir, txsSubdir))
	txs, err := ldbstore.Open[ledger.TxID, ledger.Transaction](
		filepath.Join(dir, txsSubdir), ldbstore.TxIDCodec{}, ldbstore.TransactionCodec{})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := txs.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var accountCount, lockedCount int
	if err := accounts.Iter(func(_ ledger.ClientID, acc ledger.Account) bool {
		accountCount++
		if acc.Locked {
			lockedCount++
		}
		return true
	}); err != nil {
		return err
	}

	var txCount, disputedCount int
	if err := txs.Iter(func(_ ledger.TxID, tx ledger.Transaction) bool {
		txCount++
		if tx.State == ledger.Disputed {
			disputedCount++
		}
		return true
	}); err != nil {
		return err
	}

	fmt.Printf("accounts: %d (locked: %d)\n", accountCount, lockedCount)
	fmt.Printf("transactions: %d (disputed: %d)\n", txCount, disputedCount)
	return nil
}
