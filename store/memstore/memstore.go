// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package memstore is the in-memory store.Store[K, V] backend: a plain
// Go map with O(1) expected access and no persistence across process
// exit. Because the engine applies events sequentially and never shares
// a store across goroutines, no locking is required beyond what a bare
// map already provides for single-threaded use.
package memstore

import (
	"github.com/txledger/engine/store"
)

// Store is an in-memory store.Store implementation keyed by K.
type Store[K comparable, V any] struct {
	data map[K]V
}

// New constructs an empty Store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{data: make(map[K]V)}
}

// Get implements store.Store.
func (s *Store[K, V]) Get(key K) (V, error) {
	v, ok := s.data[key]
	if !ok {
		var zero V
		return zero, store.ErrNotFound
	}
	return v, nil
}

// Put implements store.Store.
func (s *Store[K, V]) Put(key K, value V) error {
	s.data[key] = value
	return nil
}

// Update implements store.Store.
func (s *Store[K, V]) Update(key K, f store.UpdateFunc[V]) error {
	current, ok := s.data[key]
	next, err := f(current, ok)
	if err != nil {
		return err
	}
	s.data[key] = next
	return nil
}

// Iter implements store.Store.
func (s *Store[K, V]) Iter(f func(key K, value V) bool) error {
	for k, v := range s.data {
		if !f(k, v) {
			break
		}
	}
	return nil
}

// Close implements store.Store. The in-memory backend holds no external
// resources, so Close is a no-op.
func (s *Store[K, V]) Close() error {
	return nil
}
