package hashtable

import (
	"fmt"
	"iter"
	"math"

	"github.com/theflywheel/hashtable/internal/logger"
)

// Callbacks is the set of key and value capabilities a Table is built with.
// Hash and Equal are required and must agree: equal keys hash equally.
// DestroyKey and DestroyValue are optional and are called when the table
// releases an entry it owns.
type Callbacks[K, V any] struct {
	Hash         func(K) uint64
	Equal        func(a, b K) bool
	DestroyKey   func(K)
	DestroyValue func(V)
}

type bucket[K, V any] struct {
	occupied bool
	hash     uint64
	key      K
	value    V
}

// Table is an open-addressing hash table with linear probing. The bucket
// array is sized by a Planner and rebuilt whenever the load factor leaves
// the configured LoadFactorBounds.
//
// A Table has a single owner: it is not safe for concurrent use, and the
// callbacks must not call back into the table they belong to.
type Table[K, V any] struct {
	len     int
	minCap  int
	cap     int
	buckets []bucket[K, V]

	cb Callbacks[K, V]

	bounds  LoadFactorBounds
	planner Planner
	log     logger.Logger

	destroyed bool
}

// New creates a table holding at least minCap buckets. The table owns every
// key and value passed to Set from then on.
func New[K, V any](minCap int, cb Callbacks[K, V], opts ...Option) (*Table[K, V], error) {
	if cb.Hash == nil {
		panic("hashtable: nil hash callback")
	}
	if cb.Equal == nil {
		panic("hashtable: nil equal callback")
	}
	if minCap < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMinCapacity, minCap)
	}

	c := defaultConfig()
	for _, apply := range opts {
		apply(c)
	}
	if err := c.bounds.Validate(); err != nil {
		return nil, err
	}

	t := &Table[K, V]{
		minCap:  minCap,
		cb:      cb,
		bounds:  c.bounds,
		planner: c.planner,
		log:     c.log,
	}
	if err := t.maybeResize(0); err != nil {
		return nil, fmt.Errorf("failed to allocate buckets: %w", err)
	}
	t.assertValid()

	return t, nil
}

// Destroy releases every entry through the destroy callbacks and drops the
// bucket array. The table must not be used afterwards.
func (t *Table[K, V]) Destroy() {
	t.mustLive()
	t.destroyEntries()
	t.buckets = nil
	t.cap = 0
	t.destroyed = true
}

// MinCap returns the capacity floor.
func (t *Table[K, V]) MinCap() int {
	t.mustLive()
	return t.minCap
}

// SetMinCap changes the capacity floor and resizes if the current bucket
// array no longer fits it. If the resize fails the old floor is restored
// and the table is unchanged.
func (t *Table[K, V]) SetMinCap(n int) error {
	t.mustLive()
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMinCapacity, n)
	}

	prev := t.minCap
	t.minCap = n
	if err := t.maybeResize(t.len); err != nil {
		t.minCap = prev
		return err
	}
	t.assertValid()
	return nil
}

// Cap returns the length of the bucket array.
func (t *Table[K, V]) Cap() int {
	t.mustLive()
	return t.cap
}

// Len returns the number of stored entries.
func (t *Table[K, V]) Len() int {
	t.mustLive()
	return t.len
}

// Bounds returns the load factor bounds the table was created with.
func (t *Table[K, V]) Bounds() LoadFactorBounds {
	t.mustLive()
	return t.bounds
}

// Clear destroys every entry and shrinks the bucket array to the planner's
// choice for an empty table. Entries are gone even when the shrink fails.
func (t *Table[K, V]) Clear() error {
	t.mustLive()
	t.destroyEntries()
	err := t.maybeResize(0)
	t.assertValid()
	return err
}

// Contains reports whether k is stored.
func (t *Table[K, V]) Contains(k K) bool {
	t.mustLive()
	return t.buckets[t.locate(k, t.cb.Hash(k))].occupied
}

// Get returns the value stored for k.
func (t *Table[K, V]) Get(k K) (V, bool) {
	t.mustLive()
	b := &t.buckets[t.locate(k, t.cb.Hash(k))]
	if !b.occupied {
		var zero V
		return zero, false
	}
	return b.value, true
}

// Set stores v under k and reports whether k was already present.
//
// On an existing key the old value is destroyed and k replaces the stored
// key. The stored key is dropped without being destroyed, so a caller that
// hands over ownership of keys must release the old one itself. On a new key
// the table first makes room; if that fails the table is left exactly as it
// was and ErrOutOfMemory is returned.
func (t *Table[K, V]) Set(k K, v V) (bool, error) {
	t.mustLive()

	hash := t.cb.Hash(k)
	i := t.locate(k, hash)
	if b := &t.buckets[i]; b.occupied {
		if t.cb.DestroyValue != nil {
			t.cb.DestroyValue(b.value)
		}
		b.hash = hash
		b.key = k
		b.value = v
		t.assertValid()
		return true, nil
	}

	if t.len == math.MaxInt {
		return false, fmt.Errorf("%w: length overflow", ErrOutOfMemory)
	}

	prevCap := t.cap
	if err := t.maybeResize(t.len + 1); err != nil {
		return false, err
	}
	if t.cap != prevCap {
		i = t.locate(k, hash)
	}

	t.buckets[i] = bucket[K, V]{
		occupied: true,
		hash:     hash,
		key:      k,
		value:    v,
	}
	t.len++
	t.assertValid()

	return false, nil
}

// Remove destroys the entry stored under k and reports whether there was
// one. The removal stands even if the follow-up shrink fails; the error is
// still returned.
func (t *Table[K, V]) Remove(k K) (bool, error) {
	t.mustLive()

	i := t.locate(k, t.cb.Hash(k))
	b := &t.buckets[i]
	if !b.occupied {
		return false, nil
	}

	if t.cb.DestroyValue != nil {
		t.cb.DestroyValue(b.value)
	}
	if t.cb.DestroyKey != nil {
		t.cb.DestroyKey(b.key)
	}
	t.vacate(i)
	t.len--

	err := t.maybeResize(t.len)
	t.assertValid()
	return true, err
}

// All yields every entry in bucket order, which depends on capacity and
// hashes. The table must not be modified during iteration.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	t.mustLive()
	return func(yield func(K, V) bool) {
		for i := range t.buckets {
			b := &t.buckets[i]
			if !b.occupied {
				continue
			}
			if !yield(b.key, b.value) {
				return
			}
		}
	}
}

// destroyEntries runs the destroy callbacks over every entry and empties
// its bucket. The bucket array itself is left in place.
func (t *Table[K, V]) destroyEntries() {
	for i := 0; t.len > 0 && i < t.cap; i++ {
		b := &t.buckets[i]
		if !b.occupied {
			continue
		}

		if t.cb.DestroyValue != nil {
			t.cb.DestroyValue(b.value)
		}
		if t.cb.DestroyKey != nil {
			t.cb.DestroyKey(b.key)
		}
		t.buckets[i] = bucket[K, V]{}
		t.len--
	}
}

func (t *Table[K, V]) mustLive() {
	if t.destroyed {
		panic("hashtable: use of destroyed table")
	}
}
