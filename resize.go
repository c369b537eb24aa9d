package hashtable

import (
	"fmt"
)

// needsResize reports whether a table about to hold newLen entries should
// rebuild its bucket array.
func (t *Table[K, V]) needsResize(newLen int) bool {
	if t.buckets == nil || t.cap < AbsoluteMinimumCapacity || t.cap < t.minCap || t.cap < newLen {
		return true
	}

	load := float64(newLen) / float64(t.cap)
	return load >= t.bounds.Upper || load <= t.bounds.Lower
}

// maybeResize rebuilds the bucket array at the planner's capacity for
// newLen entries, if the current array is outside the load factor bounds or
// the capacity floor. On error the table is unchanged.
func (t *Table[K, V]) maybeResize(newLen int) error {
	if !t.needsResize(newLen) {
		return nil
	}

	newCap, ok := t.planner(t.minCap, newLen, t.bounds)
	if !ok {
		t.log.Warn("no capacity available",
			"min_cap", t.minCap,
			"len", newLen,
		)
		return fmt.Errorf("%w: no capacity for %d entries (min %d)", ErrOutOfMemory, newLen, t.minCap)
	}
	if newCap < AbsoluteMinimumCapacity || newCap < t.minCap || (newLen > 0 && newCap <= newLen) {
		panic(fmt.Sprintf("hashtable: planner returned capacity %d for len=%d min=%d", newCap, newLen, t.minCap))
	}
	if newCap == t.cap && t.buckets != nil {
		// already the best fit
		return nil
	}

	buckets, err := allocBuckets[K, V](newCap)
	if err != nil {
		t.log.Warn("failed to allocate buckets",
			"cap", newCap,
			"error", err,
		)
		return err
	}

	moved := 0
	for i := range t.buckets {
		old := &t.buckets[i]
		if !old.occupied {
			continue
		}

		j := int(old.hash % uint64(newCap))
		for buckets[j].occupied {
			j = next(j, newCap)
		}
		buckets[j] = *old
		moved++
	}
	if moved != t.len {
		panic(fmt.Sprintf("hashtable: relocated %d entries, expected %d", moved, t.len))
	}

	t.log.Debug("resized buckets",
		"from", t.cap,
		"to", newCap,
		"len", t.len,
		"target_len", newLen,
	)

	t.buckets = buckets
	t.cap = newCap
	return nil
}

// allocBuckets returns a zeroed bucket array of length n. A length the
// runtime refuses to allocate is reported as ErrOutOfMemory.
func allocBuckets[K, V any](n int) (buckets []bucket[K, V], err error) {
	defer func() {
		if r := recover(); r != nil {
			buckets = nil
			err = fmt.Errorf("%w: allocating %d buckets: %v", ErrOutOfMemory, n, r)
		}
	}()
	return make([]bucket[K, V], n), nil
}
