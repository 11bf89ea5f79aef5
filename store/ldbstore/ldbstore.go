// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package ldbstore is the on-disk store.Store[K, V] backend, backed by
// goleveldb, an LSM key/value store. It is intended for datasets exceeding
// RAM; reads and writes cross a persistence boundary and may fail with
// I/O errors, which are always surfaced wrapped in store.ErrStorage.
package ldbstore

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/txledger/engine/store"
)

// Codec converts between a Go value and its on-disk byte representation.
// Concrete codecs for this ledger's key/value types live in codec.go.
type Codec[T any] interface {
	Encode(T) []byte
	Decode([]byte) (T, error)
}

// Store is a goleveldb-backed store.Store implementation. A Store opens
// its own private database directory; the accounts and transactions
// column families are realized as two Store instances pointed at two
// subdirectories, following a per-table-space leveldb layout.
type Store[K comparable, V any] struct {
	db       *leveldb.DB
	keyCodec Codec[K]
	valCodec Codec[V]
}

// Open opens (creating if absent) a leveldb database at path.
func Open[K comparable, V any](path string, keyCodec Codec[K], valCodec Codec[V]) (*Store[K, V], error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", store.ErrStorage, path, err)
	}
	return &Store[K, V]{db: db, keyCodec: keyCodec, valCodec: valCodec}, nil
}

// Get implements store.Store.
func (s *Store[K, V]) Get(key K) (V, error) {
	var zero V
	raw, err := s.db.Get(s.keyCodec.Encode(key), nil)
	if err != nil {
		if err == ldberrors.ErrNotFound {
			return zero, store.ErrNotFound
		}
		return zero, fmt.Errorf("%w: get: %v", store.ErrStorage, err)
	}
	v, err := s.valCodec.Decode(raw)
	if err != nil {
		return zero, fmt.Errorf("%w: decode: %v", store.ErrStorage, err)
	}
	return v, nil
}

// Put implements store.Store.
func (s *Store[K, V]) Put(key K, value V) error {
	if err := s.db.Put(s.keyCodec.Encode(key), s.valCodec.Encode(value), nil); err != nil {
		return fmt.Errorf("%w: put: %v", store.ErrStorage, err)
	}
	return nil
}

// Update implements store.Store. The read, the call to f, and the write
// are not protected by a cross-call transaction — neither backend
// provides transactionality across keys — but since the engine is
// single-threaded there is no concurrent writer to race against within a
// single call.
func (s *Store[K, V]) Update(key K, f store.UpdateFunc[V]) error {
	dbKey := s.keyCodec.Encode(key)
	raw, err := s.db.Get(dbKey, nil)
	var current V
	ok := true
	switch {
	case err == nil:
		current, err = s.valCodec.Decode(raw)
		if err != nil {
			return fmt.Errorf("%w: decode: %v", store.ErrStorage, err)
		}
	case err == ldberrors.ErrNotFound:
		ok = false
	default:
		return fmt.Errorf("%w: get: %v", store.ErrStorage, err)
	}

	next, err := f(current, ok)
	if err != nil {
		return err
	}
	if err := s.db.Put(dbKey, s.valCodec.Encode(next), nil); err != nil {
		return fmt.Errorf("%w: put: %v", store.ErrStorage, err)
	}
	return nil
}

// Iter implements store.Store, scanning the full key range.
func (s *Store[K, V]) Iter(f func(key K, value V) bool) error {
	iter := s.db.NewIterator(&util.Range{}, nil)
	defer iter.Release()
	for iter.Next() {
		key, err := s.keyCodec.Decode(iter.Key())
		if err != nil {
			return fmt.Errorf("%w: decode key: %v", store.ErrStorage, err)
		}
		value, err := s.valCodec.Decode(iter.Value())
		if err != nil {
			return fmt.Errorf("%w: decode value: %v", store.ErrStorage, err)
		}
		if !f(key, value) {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("%w: iterate: %v", store.ErrStorage, err)
	}
	return nil
}

// Close implements store.Store.
func (s *Store[K, V]) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", store.ErrStorage, err)
	}
	return nil
}
