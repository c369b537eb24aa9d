package hashtable

import "fmt"

// locate returns the index of the bucket holding k, or of the first empty
// bucket on k's probe path when k is absent. hash must be the hash of k.
func (t *Table[K, V]) locate(k K, hash uint64) int {
	capacity := uint64(t.cap)
	start := int(hash % capacity)

	for i, n := start, 0; n < t.cap; n++ {
		b := &t.buckets[i]
		if !b.occupied {
			return i
		}
		if b.hash == hash && t.cb.Equal(k, b.key) {
			return i
		}

		i++
		if i == t.cap {
			i = 0
		}
	}

	// Every bucket is full and none holds k. The load factor bound should
	// have made this impossible.
	t.log.Emergency("probe wrapped without finding key or vacancy",
		"len", t.len,
		"cap", t.cap,
		"hash", hash,
	)
	panic(fmt.Sprintf("hashtable: no vacant bucket (len=%d cap=%d)", t.len, t.cap))
}

// vacate empties bucket i and pulls later entries of the same probe run back
// over the gap, so every remaining key stays reachable from its home
// bucket. Moved entries keep their cached hash.
func (t *Table[K, V]) vacate(i int) {
	capacity := uint64(t.cap)
	hole := i

	for j := next(hole, t.cap); t.buckets[j].occupied; j = next(j, t.cap) {
		home := int(t.buckets[j].hash % capacity)
		if reachable(hole, home, j) {
			continue
		}
		t.buckets[hole] = t.buckets[j]
		hole = j
	}

	t.buckets[hole] = bucket[K, V]{}
}

func next(i, capacity int) int {
	i++
	if i == capacity {
		return 0
	}
	return i
}

// reachable reports whether an entry sitting at j with home bucket home is
// still found when hole is empty: true when home lies cyclically in
// (hole, j].
func reachable(hole, home, j int) bool {
	if hole <= j {
		return hole < home && home <= j
	}
	return hole < home || home <= j
}
