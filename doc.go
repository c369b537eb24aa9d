/*
Package hashtable provides a generic open-addressing hash table with linear probing.

A Table owns the keys and values stored in it. Hashing, equality and the
optional release of keys and values are supplied by the caller through
Callbacks, so any key type can be stored without it having to implement an
interface.

Basic usage:

	import (
		"github.com/theflywheel/hashtable"
		"github.com/theflywheel/hashtable/hashfn"
	)

	tbl, err := hashtable.New[string, int](2, hashtable.Callbacks[string, int]{
		Hash:  hashfn.XXHash,
		Equal: hashfn.Equal[string],
	})
	if err != nil {
		log.Fatal(err)
	}
	defer tbl.Destroy()

	// Insert data
	if _, err := tbl.Set("answer", 42); err != nil {
		log.Fatal(err)
	}

	// Retrieve data
	if v, ok := tbl.Get("answer"); ok {
		fmt.Println("Value:", v)
	}

Features:

  - Generic keys and values with caller supplied hash and equality
  - Optional destroy callbacks, run whenever the table releases an entry
  - Capacities drawn from primes close to powers of two
  - Automatic growth and shrinking between a lower and upper load factor
  - Allocation failures reported as ErrOutOfMemory, never half applied on Set
  - Not safe for concurrent use

Implementation Details:

Each bucket holds an occupancy flag, the cached hash of its key, the key and
the value. A lookup starts at hash % cap and walks forward, wrapping at the
end of the array, until it meets the key or an empty bucket.

The bucket array is rebuilt whenever an operation would push len/cap to the
upper bound (0.75 by default) or down to the lower bound (0.15 by default).
The new capacity is the smallest entry of PrimePowersOfTwo that is at least
the minimum capacity and keeps the load factor at or under the upper bound.
Entries are moved using their cached hashes; keys are never rehashed.

Removing an entry shifts the rest of its probe run back into the gap, so the
table never needs tombstones.

Building with the hashtable_debug tag checks every structural invariant after
each mutation and panics on the first violation:

	go test -tags hashtable_debug ./...
*/
package hashtable
