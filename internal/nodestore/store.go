// Package nodestore implements the arena-backed doubly linked list shared
// by the SIEVE, LRU and FIFO engines (spec.md §4.1, §9: "no raw pointers").
// Each policy engine owns exactly one Store; the engine supplies the
// eviction-selection logic (hand scan, tail-always, …) while Store supplies
// O(1) splice/unlink/lookup primitives over arena-indexed nodes.
package nodestore

import (
	"sync/atomic"

	"github.com/colander-cache/colander/internal/arena"
	"github.com/colander-cache/colander/model"
)

// Node is one resident entry. Only SIEVE mutates the visited bit, but the
// field lives on the shared node type because the arena and list are shared
// by all three policies (spec.md §3: "Node stores ... visited:
// AtomicBoolean (only SIEVE mutates this)"). It is an atomic.Bool so that
// SIEVE's hit path can flip it while the owning shard holds only a read
// lock (spec.md §5, §9 "Visited bit under shared locks").
type Node struct {
	Key   string
	Value model.CachedResponse

	visited atomic.Bool

	prev, next uint32
}

// SetVisited stores the visited bit.
func (n *Node) SetVisited(v bool) { n.visited.Store(v) }

// Visited loads the visited bit.
func (n *Node) Visited() bool { return n.visited.Load() }

// Store is the shared list + key index + arena for one policy engine
// instance. It is not safe for concurrent use; the owning shard's lock
// serializes all access (cache/shard.go).
type Store struct {
	arena *arena.Arena[Node]
	index map[string]uint32
	head  uint32
	tail  uint32
	cap   int
}

// New constructs an empty Store with the given capacity. capacity must be
// positive — spec.md §7 lists capacity==0 as a fatal construction error.
func New(capacity int) *Store {
	if capacity <= 0 {
		panic("nodestore: capacity must be positive")
	}
	return &Store{
		arena: arena.New[Node](capacity),
		index: make(map[string]uint32, capacity),
		head:  arena.NoIndex,
		tail:  arena.NoIndex,
		cap:   capacity,
	}
}

// Len returns the number of resident entries.
func (s *Store) Len() int { return s.arena.Len() }

// Capacity returns the fixed capacity passed to New.
func (s *Store) Capacity() int { return s.cap }

// Full reports whether the store is at capacity.
func (s *Store) Full() bool { return s.Len() >= s.cap }

// Head returns the MRU/newest-end index, or arena.NoIndex if empty.
func (s *Store) Head() uint32 { return s.head }

// Tail returns the oldest/candidate-for-eviction index, or arena.NoIndex.
func (s *Store) Tail() uint32 { return s.tail }

// Lookup resolves key to its slot index.
func (s *Store) Lookup(key string) (uint32, bool) {
	idx, ok := s.index[key]
	return idx, ok
}

// At returns a mutable pointer to the node at idx.
func (s *Store) At(idx uint32) *Node { return s.arena.Get(idx) }

// Prev returns the node's predecessor toward the head, or arena.NoIndex.
func (s *Store) Prev(idx uint32) uint32 { return s.arena.Get(idx).prev }

// Next returns the node's successor toward the tail, or arena.NoIndex.
func (s *Store) Next(idx uint32) uint32 { return s.arena.Get(idx).next }

// InsertHead allocates a new node for key/value and splices it at the head
// (newest end). The caller is responsible for capacity admission (Full
// check) before calling. Returns the new node's index.
func (s *Store) InsertHead(key string, value model.CachedResponse) uint32 {
	idx := s.arena.Alloc(Node{Key: key, Value: value, prev: arena.NoIndex, next: arena.NoIndex})
	s.spliceHead(idx)
	s.index[key] = idx
	return idx
}

// spliceHead links idx in as the new head. idx must already be detached
// (prev/next both NoIndex).
func (s *Store) spliceHead(idx uint32) {
	n := s.arena.Get(idx)
	n.prev = arena.NoIndex
	n.next = s.head
	if s.head != arena.NoIndex {
		s.arena.Get(s.head).prev = idx
	}
	s.head = idx
	if s.tail == arena.NoIndex {
		s.tail = idx
	}
}

// Unlink detaches idx from the list in place, without freeing its slot or
// removing it from the key index. Used both by removal paths (which follow
// with FreeAndDeindex) and by MoveToHead (which re-splices afterward).
func (s *Store) Unlink(idx uint32) {
	n := s.arena.Get(idx)
	prev, next := n.prev, n.next
	if prev != arena.NoIndex {
		s.arena.Get(prev).next = next
	} else {
		s.head = next
	}
	if next != arena.NoIndex {
		s.arena.Get(next).prev = prev
	} else {
		s.tail = prev
	}
	n.prev, n.next = arena.NoIndex, arena.NoIndex
}

// MoveToHead unlinks idx and re-splices it at the head. No-op if idx is
// already the head.
func (s *Store) MoveToHead(idx uint32) {
	if s.head == idx {
		return
	}
	s.Unlink(idx)
	s.spliceHead(idx)
}

// FreeAndDeindex removes idx's key from the index and releases its arena
// slot. idx must already be unlinked from the list.
func (s *Store) FreeAndDeindex(idx uint32) {
	key := s.arena.Get(idx).Key
	delete(s.index, key)
	s.arena.Free(idx)
}

// RemoveByKey is the common "explicit remove" path shared by every policy:
// locate, unlink, free, deindex. Returns the removed value, or false if key
// was absent.
func (s *Store) RemoveByKey(key string) (model.CachedResponse, bool) {
	idx, ok := s.index[key]
	if !ok {
		return model.CachedResponse{}, false
	}
	val := s.arena.Get(idx).Value
	s.Unlink(idx)
	s.FreeAndDeindex(idx)
	return val, true
}

// Clear resets the store to a fresh, empty state at the same capacity.
func (s *Store) Clear() {
	s.arena.Reset()
	s.index = make(map[string]uint32, s.cap)
	s.head = arena.NoIndex
	s.tail = arena.NoIndex
}
