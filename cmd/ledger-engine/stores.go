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
	"path/filepath"

	"github.com/txledger/engine/engine"
	"github.com/txledger/engine/ledger"
	"github.com/txledger/engine/store/cachedstore"
	"github.com/txledger/engine/store/ldbstore"
	"github.com/txledger/engine/store/memstore"
)

// accountCacheCapacity and accountCacheWays size the read cache placed in
// front of the leveldb accounts store: replaying a file tends to touch the
// same handful of client accounts repeatedly.
const (
	accountCacheCapacity = 4096
	accountCacheWays     = 4
)

func newMemoryStores() (engine.AccountStore, engine.TransactionStore, func(), error) {
	accounts := memstore.New[ledger.ClientID, ledger.Account]()
	txs := memstore.New[ledger.TxID, ledger.Transaction]()
	return accounts, txs, func() {}, nil
}

func newLevelDBStores(dataDir string) (engine.AccountStore, engine.TransactionStore, func(), error) {
	accounts, err := ldbstore.Open[ledger.ClientID, ledger.Account](
		filepath.Join(dataDir, accountsSubdir), ldbstore.ClientIDCodec{}, ldbstore.AccountCodec{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening accounts store: %w", err)
	}

	txs, err := ldbstore.Open[ledger.TxID, ledger.Transaction](
		filepath.Join(dataDir, txsSubdir), ldbstore.TxIDCodec{}, ldbstore.TransactionCodec{})
	if err != nil {
		accounts.Close()
		return nil, nil, nil, fmt.Errorf("opening transactions store: %w", err)
	}

	closeFn := func() {
		accounts.Close()
		txs.Close()
	}
	cachedAccounts := cachedstore.New[ledger.ClientID, ledger.Account](accounts, accountCacheCapacity, accountCacheWays)
	return cachedAccounts, txs, closeFn, nil
}
