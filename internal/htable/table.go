// Package htable implements a fixed-capacity open-addressing hash table that
// counts word frequencies. Collisions are resolved by linear probing or double
// hashing, and every new key records how many probe steps it took to place,
// which feeds the load statistics in Stats.
//
// A Table is not safe for concurrent use. Fill it from one goroutine, then
// share it read-only.
package htable

import (
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

// MaxCapacity bounds the slot count accepted by New.
const MaxCapacity = 1 << 30

// NotFound is the index returned by Insert when a key could not be placed.
const NotFound = -1

type slot struct {
	key        string
	freq       int
	collisions int
	used       bool
}

// Table maps words to frequencies using open addressing.
type Table struct {
	capacity int
	count    int
	policy   Policy
	stepper  stepper
	slots    []slot
	history  []int // collisions per new key, in insertion order; write-once
	observer Observer
	logger   *slog.Logger
}

// New creates an empty table with exactly capacity slots. Callers normally
// pass a prime capacity so double hashing can reach every slot.
func New(capacity int, policy Policy, opts ...Option) (*Table, error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d (must be in 1..%d)", apperrors.ErrInvalidCapacity, capacity, MaxCapacity)
	}
	st, err := newStepper(policy, capacity)
	if err != nil {
		return nil, err
	}
	t := &Table{
		capacity: capacity,
		policy:   policy,
		stepper:  st,
		slots:    make([]slot, capacity),
		history:  make([]int, 0, capacity),
		observer: noopObserver{},
		logger:   slog.Default().With("component", "htable"),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger.Debug("table created", "capacity", capacity, "policy", policy.String())
	return t, nil
}

// Insert adds key with frequency 1, or bumps the frequency of an existing
// key, and returns the slot index used. When no free slot is reachable it
// returns NotFound and ErrTableFull, leaving the table untouched.
func (t *Table) Insert(key string) (int, error) {
	if key == "" {
		return NotFound, apperrors.ErrEmptyKey
	}
	p := t.newProbe(key)
	for collisions := 0; collisions <= t.capacity; collisions++ {
		s := &t.slots[p.index]
		if !s.used {
			*s = slot{
				key:        strings.Clone(key),
				freq:       1,
				collisions: collisions,
				used:       true,
			}
			t.history = append(t.history, collisions)
			t.count++
			t.observer.ObserveInsert(Placed, collisions)
			return p.index, nil
		}
		if s.key == key {
			s.freq++
			t.observer.ObserveInsert(Incremented, collisions)
			return p.index, nil
		}
		p = p.next()
	}
	t.observer.ObserveInsert(Rejected, t.capacity)
	t.logger.Debug("no free slot reachable", "key", key, "count", t.count, "capacity", t.capacity)
	return NotFound, apperrors.ErrTableFull
}

// Search returns the frequency of key, or 0 when it is not in the table.
func (t *Table) Search(key string) int {
	if key == "" {
		t.observer.ObserveSearch(false)
		return 0
	}
	p := t.newProbe(key)
	for probes := 0; probes <= t.capacity; probes++ {
		s := &t.slots[p.index]
		if !s.used {
			break
		}
		if s.key == key {
			t.observer.ObserveSearch(true)
			return s.freq
		}
		p = p.next()
	}
	t.observer.ObserveSearch(false)
	return 0
}

// Len returns the number of distinct keys stored.
func (t *Table) Len() int { return t.count }

// Cap returns the fixed slot count.
func (t *Table) Cap() int { return t.capacity }

func (t *Table) Policy() Policy { return t.policy }

// LoadFactor is Len()/Cap().
func (t *Table) LoadFactor() float64 {
	return float64(t.count) / float64(t.capacity)
}

// Collisions returns a copy of the per-insertion collision history.
func (t *Table) Collisions() []int {
	out := make([]int, len(t.history))
	copy(out, t.history)
	return out
}
