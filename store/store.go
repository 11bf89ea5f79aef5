// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package store defines the capability set both the account store and the
// transaction store are built on, and the backend-agnostic errors the
// engine reacts to. Two concrete implementations of Store live in sibling
// packages: memstore (in-memory) and ldbstore (goleveldb-backed, on disk).
package store

import "github.com/txledger/engine/common"

// ErrNotFound is returned by Get when key is absent from the store.
// Update does not return it for an absent key; it calls its UpdateFunc
// with ok=false instead.
const ErrNotFound = common.ConstError("store: key not found")

// ErrStorage wraps a backend I/O failure. It is always used via
// fmt.Errorf("...: %w", ErrStorage) together with the backend's own
// underlying error, never returned bare.
const ErrStorage = common.ConstError("store: backend I/O failure")

// UpdateFunc mutates the current value of a key. ok reports whether the
// key was already present; implementations that require presence (see
// Store.Update) can use it to reject creation through Update.
type UpdateFunc[V any] func(current V, ok bool) (V, error)

// Store is the keyed capability set the engine is polymorphic over,
// favoring a small capability interface over a deeper inheritance-like
// hierarchy. K must be comparable so in-memory backends can key a plain
// map; on-disk backends additionally require a codec (see ldbstore) to
// turn K into bytes.
type Store[K comparable, V any] interface {
	// Get looks up key. It returns ErrNotFound if absent.
	Get(key K) (V, error)

	// Put inserts or replaces the value at key, atomically with respect
	// to this single call.
	Put(key K, value V) error

	// Update performs a read-modify-write: f receives the current value
	// (the zero value and ok=false if key is absent) and returns the next
	// value to store. If f returns an error, the store is left unchanged
	// and the error is propagated to the caller.
	Update(key K, f UpdateFunc[V]) error

	// Iter calls f once for every entry currently in the store, in an
	// unspecified but stable-for-the-call order. Iteration stops early,
	// without error, if f returns false.
	Iter(f func(key K, value V) bool) error

	// Close releases any resources (open file handles, etc.) held by the
	// backend. In-memory backends implement it as a no-op.
	Close() error
}
