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
	"os"

	"github.com/urfave/cli/v2"

	"github.com/txledger/engine/common/interrupt"
	"github.com/txledger/engine/csvio"
	"github.com/txledger/engine/engine"
)

const (
	backendMemory   = "memory"
	backendLevelDB  = "leveldb"
	accountsSubdir  = "accounts"
	txsSubdir       = "transactions"
	defaultDataRoot = "ledger-data"
)

var backendFlag = cli.StringFlag{
	Name:  "backend",
	Usage: "storage backend to use: memory or leveldb",
	Value: backendMemory,
}

var dataDirFlag = cli.StringFlag{
	Name:  "data-dir",
	Usage: "root directory for the leveldb backend's accounts/transactions subdirectories",
	Value: defaultDataRoot,
}

// runEngine is the default action: replay the positional input CSV and
// write the account snapshot to standard output. Per-event rejections go
// to standard error via the engine's logger. Exit code is non-zero for
// setup failures (missing file, backend open failure), a fatal storage
// error during the replay, an interrupt, or a failure writing the
// snapshot; individual rejected events never cause a non-zero exit.
func runEngine(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("ledger-engine: exactly one input CSV path is required")
	}
	inputPath := ctx.Args().Get(0)

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("ledger-engine: opening input: %w", err)
	}
	defer f.Close()

	accounts, txs, closeStores, err := openStores(ctx.String(backendFlag.Name), ctx.String(dataDirFlag.Name))
	if err != nil {
		return fmt.Errorf("ledger-engine: %w", err)
	}
	defer closeStores()

	logger := log.New(os.Stderr, "ledger-engine: ", log.LstdFlags)
	eng := engine.New(accounts, txs, logger)

	runCtx := interrupt.Register(ctx.Context)
	src := cancelableSource{ctx: runCtx, Source: csvio.NewDecoder(f)}
	if err := eng.Run(src); err != nil {
		return fmt.Errorf("ledger-engine: %w", err)
	}
	if interrupt.IsCancelled(runCtx) {
		return fmt.Errorf("ledger-engine: interrupted, snapshot reflects events processed before shutdown")
	}

	if err := csvio.EncodeSnapshot(os.Stdout, eng); err != nil {
		return fmt.Errorf("ledger-engine: writing snapshot: %w", err)
	}
	return nil
}

// openStores constructs the account and transaction stores named by
// backend, returning a cleanup function that closes whichever resources
// were opened.
func openStores(backend, dataDir string) (engine.AccountStore, engine.TransactionStore, func(), error) {
	switch backend {
	case backendMemory:
		return newMemoryStores()
	case backendLevelDB:
		return newLevelDBStores(dataDir)
	default:
		return nil, nil, nil, fmt.Errorf("unknown backend %q (want %q or %q)", backend, backendMemory, backendLevelDB)
	}
}
