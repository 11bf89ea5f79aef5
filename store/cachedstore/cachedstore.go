// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package cachedstore wraps a store.Store with an in-memory, fixed-capacity
// read cache for keys with an integer representation, such as ledger.ClientID.
// It is meant to sit in front of the leveldb backend, where repeated lookups
// of the same hot account during a long replay would otherwise each cost a
// disk read.
package cachedstore

import (
	"golang.org/x/exp/constraints"

	"github.com/txledger/engine/store"
)

// Store decorates an inner store.Store with an NWaysCache read-through
// cache. Put and Update always write through to the inner store first and
// only update the cache once the write has succeeded, so the cache can
// never observe a value the backend rejected.
type Store[K constraints.Integer, V any] struct {
	inner store.Store[K, V]
	cache *NWaysCache[K, V]
}

// New wraps inner with a read cache sized for capacity entries split
// across ways associative sets.
func New[K constraints.Integer, V any](inner store.Store[K, V], capacity, ways int) *Store[K, V] {
	return &Store[K, V]{inner: inner, cache: NewNWaysCache[K, V](capacity, ways)}
}

func (s *Store[K, V]) Get(key K) (V, error) {
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}
	v, err := s.inner.Get(key)
	if err != nil {
		return v, err
	}
	s.cache.Set(key, v)
	return v, nil
}

func (s *Store[K, V]) Put(key K, value V) error {
	if err := s.inner.Put(key, value); err != nil {
		return err
	}
	s.cache.Set(key, value)
	return nil
}

func (s *Store[K, V]) Update(key K, f store.UpdateFunc[V]) error {
	if err := s.inner.Update(key, f); err != nil {
		return err
	}
	// Re-read through the inner store rather than re-running f locally:
	// f already ran once as part of inner.Update, and the cache should
	// only ever hold values the backend actually committed.
	v, err := s.inner.Get(key)
	if err != nil {
		s.cache.Remove(key)
		return nil
	}
	s.cache.Set(key, v)
	return nil
}

func (s *Store[K, V]) Iter(f func(key K, value V) bool) error {
	return s.inner.Iter(f)
}

func (s *Store[K, V]) Close() error {
	return s.inner.Close()
}
