// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import "sync"

// Entry is the display state of one package.
type Entry struct {
	Name    string
	State   State
	Percent int
	Message string
}

// Counts summarises a set of entries by state.
type Counts struct {
	Total     int
	Pending   int
	Active    int
	Completed int
	Failed    int
}

// Terminal is the number of entries that have finished either way.
func (c Counts) Terminal() int {
	return c.Completed + c.Failed
}

// Observer is told about every state change after it has been committed.
// It runs on the writer's goroutine and must not call back into the Store.
type Observer func(index int, from State, to Entry)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithObserver registers fn to be called on state transitions.
func WithObserver(fn Observer) StoreOption {
	return func(s *Store) {
		s.observer = fn
	}
}

// Store is the shared, index-addressed progress table of a batch.
// The zero value is an empty store; use NewStore.
type Store struct {
	mu       sync.Mutex
	entries  []Entry
	observer Observer
}

// NewStore creates one Pending entry per name, in order.
func NewStore(names []string, opts ...StoreOption) *Store {
	s := &Store{
		entries: make([]Entry, len(names)),
	}

	for i, n := range names {
		s.entries[i] = Entry{Name: n, State: StatePending}
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Len returns the number of entries. It never changes after NewStore.
func (s *Store) Len() int {
	return len(s.entries)
}

// Snapshot returns a consistent copy of every entry.
func (s *Store) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)

	return out
}

// Entry returns a copy of the entry at i.
func (s *Store) Entry(i int) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.entries) {
		return Entry{}, false
	}

	return s.entries[i], true
}

// Update applies opts to entry i in one critical section, waiting for the lock.
// It returns false, changing nothing, when i is out of range or the entry is already terminal.
func (s *Store) Update(i int, opts ...UpdateOption) bool {
	s.mu.Lock()
	from, to, ok := s.apply(i, opts)
	s.mu.Unlock()

	s.notify(i, from, to, ok)

	return ok
}

// TryUpdate is Update without waiting: the write is dropped when the lock is busy.
// Use it for high frequency output driven updates where losing one is harmless.
func (s *Store) TryUpdate(i int, opts ...UpdateOption) bool {
	if !s.mu.TryLock() {
		return false
	}

	from, to, ok := s.apply(i, opts)
	s.mu.Unlock()

	s.notify(i, from, to, ok)

	return ok
}

// AllTerminal reports whether every entry is Completed or Failed. An empty store is terminal.
func (s *Store) AllTerminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if !e.State.IsTerminal() {
			return false
		}
	}

	return true
}

// Counts tallies the entries by state.
func (s *Store) Counts() Counts {
	return CountEntries(s.Snapshot())
}

// CountEntries tallies entries by state.
func CountEntries(entries []Entry) Counts {
	c := Counts{Total: len(entries)}

	for _, e := range entries {
		switch {
		case e.State == StateCompleted:
			c.Completed++
		case e.State == StateFailed:
			c.Failed++
		case e.State.IsActive():
			c.Active++
		default:
			c.Pending++
		}
	}

	return c
}

// apply must be called with the lock held.
func (s *Store) apply(i int, opts []UpdateOption) (State, Entry, bool) {
	if i < 0 || i >= len(s.entries) {
		return 0, Entry{}, false
	}

	e := &s.entries[i]
	if e.State.IsTerminal() {
		return 0, Entry{}, false
	}

	from := e.State

	for _, opt := range opts {
		opt(e)
	}

	return from, *e, true
}

func (s *Store) notify(i int, from State, to Entry, ok bool) {
	if !ok || s.observer == nil || from == to.State {
		return
	}

	s.observer(i, from, to)
}
