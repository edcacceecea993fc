// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package daymap implements ordered maps keyed by day aligned timestamps.
// Effects scheduled for a day are stored as entries and drained by whichever
// operation first observes that the day has arrived.
package daymap

import (
	"github.com/google/btree"
	"github.com/pkg/errors"

	"github.com/vechain/rewards/base"
)

const (
	defaultTreeDegree = 2
	// GrowthStep is the number of slots added when a full map grows.
	GrowthStep = 100
)

var (
	errNotDayAligned = errors.New("key is not day aligned")
	errBadCapacity   = errors.New("grow func returned a capacity that cannot hold the entries")
)

// Entry is a single day keyed value.
type Entry[V any] struct {
	Day   uint64
	Value V
}

func lessEntry[V any](a, b Entry[V]) bool {
	return a.Day < b.Day
}

// GrowFunc is asked for a new capacity when a key is inserted into a full map.
type GrowFunc func(current int) (int, error)

// DefaultGrow adds GrowthStep slots.
func DefaultGrow(current int) (int, error) {
	return current + GrowthStep, nil
}

// Map is an ordered day keyed map with a negotiated capacity.
type Map[V any] struct {
	tree     *btree.BTreeG[Entry[V]]
	capacity int
	grow     GrowFunc
}

// New creates an empty map pre-sized for capacity entries.
func New[V any](capacity int) *Map[V] {
	return &Map[V]{
		tree:     btree.NewG(defaultTreeDegree, lessEntry[V]),
		capacity: capacity,
		grow:     DefaultGrow,
	}
}

// SetGrowFunc installs the capacity negotiation callback.
func (m *Map[V]) SetGrowFunc(fn GrowFunc) {
	if fn == nil {
		fn = DefaultGrow
	}
	m.grow = fn
}

func (m *Map[V]) Capacity() int {
	return m.capacity
}

func (m *Map[V]) Len() int {
	return m.tree.Len()
}

func (m *Map[V]) Get(day uint64) (V, bool) {
	e, ok := m.tree.Get(Entry[V]{Day: day})
	return e.Value, ok
}

func (m *Map[V]) Has(day uint64) bool {
	return m.tree.Has(Entry[V]{Day: day})
}

// Set stores value at day. Inserting a new key into a full map negotiates a
// larger capacity first; the map is unchanged when negotiation fails.
func (m *Map[V]) Set(day uint64, value V) error {
	if !base.IsDayAligned(day) {
		return errors.Wrapf(errNotDayAligned, "day %d", day)
	}
	if !m.Has(day) && m.tree.Len() >= m.capacity {
		newCap, err := m.grow(m.capacity)
		if err != nil {
			return err
		}
		if newCap <= m.tree.Len() {
			return errors.Wrapf(errBadCapacity, "capacity %d, entries %d", newCap, m.tree.Len())
		}
		m.capacity = newCap
	}
	m.tree.ReplaceOrInsert(Entry[V]{Day: day, Value: value})
	return nil
}

// Delete removes day, reporting whether it was present.
func (m *Map[V]) Delete(day uint64) bool {
	_, ok := m.tree.Delete(Entry[V]{Day: day})
	return ok
}

// Ascend calls fn for every entry in ascending day order until fn returns false.
func (m *Map[V]) Ascend(fn func(day uint64, value V) bool) {
	m.tree.Ascend(func(e Entry[V]) bool {
		return fn(e.Day, e.Value)
	})
}

// Entries returns all entries in ascending day order.
func (m *Map[V]) Entries() []Entry[V] {
	entries := make([]Entry[V], 0, m.tree.Len())
	m.tree.Ascend(func(e Entry[V]) bool {
		entries = append(entries, e)
		return true
	})
	return entries
}

// Before returns the entry with the largest day strictly below ts.
func (m *Map[V]) Before(ts uint64) (Entry[V], bool) {
	if ts == 0 {
		return Entry[V]{}, false
	}
	return m.AtOrBefore(ts - 1)
}

// AtOrBefore returns the entry with the largest day not after day.
func (m *Map[V]) AtOrBefore(day uint64) (found Entry[V], ok bool) {
	m.tree.DescendLessOrEqual(Entry[V]{Day: day}, func(e Entry[V]) bool {
		found, ok = e, true
		return false
	})
	return
}

// Last returns the entry with the largest day.
func (m *Map[V]) Last() (Entry[V], bool) {
	return m.tree.Max()
}

// DrainDue visits every entry due by today in ascending order and removes the
// visited entries. An error from fn aborts the drain and nothing is removed.
func (m *Map[V]) DrainDue(today uint64, fn func(day uint64, value V) error) error {
	var (
		due []Entry[V]
		err error
	)
	m.tree.Ascend(func(e Entry[V]) bool {
		if e.Day > today {
			return false
		}
		if err = fn(e.Day, e.Value); err != nil {
			return false
		}
		due = append(due, e)
		return true
	})
	if err != nil {
		return err
	}
	for _, e := range due {
		m.tree.Delete(e)
	}
	return nil
}

// Clone returns an independent copy sharing nothing with m.
func (m *Map[V]) Clone() *Map[V] {
	return &Map[V]{
		tree:     m.tree.Clone(),
		capacity: m.capacity,
		grow:     m.grow,
	}
}
