// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cachedstore

import (
	"math"
	"sync"

	"golang.org/x/exp/constraints"
)

// paddingMultiplier extends the mutex/ticker arrays so that adjacent sets
// do not share a cache line, avoiding false sharing between goroutines
// touching different sets concurrently.
const paddingMultiplier = 8

// NWaysCache is a fixed-capacity cache with configurable associativity. Its
// capacity is split into sets; a key's set is its value modulo the number
// of sets, and each set holds up to ways entries before the least recently
// touched one is evicted.
type NWaysCache[K constraints.Integer, V any] struct {
	items   []nWaysCacheEntry[K, V]
	locks   []sync.Mutex
	nways   uint
	numsets uint
	tickers []uint64
}

type nWaysCacheEntry[K constraints.Integer, V any] struct {
	key   K
	value V
	used  uint64
}

// NewNWaysCache creates a cache with the given capacity and associativity.
// Actual capacity is rounded up to a multiple of ways.
func NewNWaysCache[K constraints.Integer, V any](capacity, ways int) *NWaysCache[K, V] {
	numsets := int(math.Ceil(float64(capacity) / float64(ways)))
	return &NWaysCache[K, V]{
		items:   make([]nWaysCacheEntry[K, V], numsets*ways),
		locks:   make([]sync.Mutex, paddingMultiplier*numsets),
		nways:   uint(ways),
		numsets: uint(numsets),
		tickers: make([]uint64, paddingMultiplier*numsets),
	}
}

func (c *NWaysCache[K, V]) Get(key K) (V, bool) {
	setIndex := (uint(key) % c.numsets) * paddingMultiplier
	c.locks[setIndex].Lock()
	defer c.locks[setIndex].Unlock()
	c.tickers[setIndex]++

	position := uint(key) % c.numsets * c.nways
	for i := position; i < position+c.nways; i++ {
		if c.items[i].used > 0 && c.items[i].key == key {
			c.items[i].used = c.tickers[setIndex]
			return c.items[i].value, true
		}
	}
	var v V
	return v, false
}

func (c *NWaysCache[K, V]) Set(key K, val V) (evictedKey K, evictedValue V, evicted bool) {
	setIndex := (uint(key) % c.numsets) * paddingMultiplier
	c.locks[setIndex].Lock()
	defer c.locks[setIndex].Unlock()
	c.tickers[setIndex]++
	oldest := c.tickers[setIndex]

	var oldestIndex uint
	position := uint(key) % c.numsets * c.nways
	for i := position; i < position+c.nways; i++ {
		if c.items[i].used == 0 || c.items[i].key == key {
			c.items[i].key = key
			c.items[i].value = val
			c.items[i].used = c.tickers[setIndex]
			return evictedKey, evictedValue, false
		}
		if c.items[i].used < oldest {
			oldest = c.items[i].used
			oldestIndex = i
		}
	}

	evictedKey = c.items[oldestIndex].key
	evictedValue = c.items[oldestIndex].value
	c.items[oldestIndex].key = key
	c.items[oldestIndex].value = val
	c.items[oldestIndex].used = c.tickers[setIndex]
	return evictedKey, evictedValue, true
}

func (c *NWaysCache[K, V]) Remove(key K) (original V, exists bool) {
	setIndex := (uint(key) % c.numsets) * paddingMultiplier
	c.locks[setIndex].Lock()
	defer c.locks[setIndex].Unlock()

	position := uint(key) % c.numsets * c.nways
	for i := position; i < position+c.nways; i++ {
		if c.items[i].used > 0 && c.items[i].key == key {
			c.items[i].used = 0
			value := c.items[i].value
			if i < position+c.nways-1 {
				for j := position + c.nways - 1; j > i; j-- {
					if c.items[j].used > 0 {
						c.items[i] = c.items[j]
						c.items[j].used = 0
						break
					}
				}
			}
			return value, true
		}
	}
	return original, false
}

