package hashtable

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"
)

// validate checks every structural invariant of the table and returns all
// violations found, or nil.
func (t *Table[K, V]) validate() error {
	var result *multierror.Error

	if t.cb.Hash == nil || t.cb.Equal == nil {
		result = multierror.Append(result, fmt.Errorf("missing hash or equal callback"))
	}
	if t.len < 0 || t.len > t.cap {
		result = multierror.Append(result, fmt.Errorf("len %d outside [0, cap %d]", t.len, t.cap))
	}
	if t.cap < AbsoluteMinimumCapacity || t.cap < t.minCap {
		result = multierror.Append(result, fmt.Errorf("cap %d below floor (min %d)", t.cap, t.minCap))
	}
	if len(t.buckets) != t.cap {
		result = multierror.Append(result, fmt.Errorf("bucket array length %d, cap %d", len(t.buckets), t.cap))
		return result.ErrorOrNil()
	}

	occupied := 0
	for i := range t.buckets {
		b := &t.buckets[i]
		if !b.occupied {
			if b.hash != 0 || !isZero(&b.key) || !isZero(&b.value) {
				result = multierror.Append(result, fmt.Errorf("bucket %d is empty but retains data", i))
			}
			continue
		}

		occupied++
		if h := t.cb.Hash(b.key); h != b.hash {
			result = multierror.Append(result, fmt.Errorf("bucket %d caches hash %d, key hashes to %d", i, b.hash, h))
			continue
		}
		if found := t.locate(b.key, b.hash); found != i {
			result = multierror.Append(result, fmt.Errorf("bucket %d unreachable, probe stops at %d", i, found))
		}
	}
	if occupied != t.len {
		result = multierror.Append(result, fmt.Errorf("%d occupied buckets, len %d", occupied, t.len))
	}
	if occupied >= t.cap && t.cap > 0 {
		result = multierror.Append(result, fmt.Errorf("no vacant bucket left"))
	}

	return result.ErrorOrNil()
}

func isZero[T any](p *T) bool {
	return reflect.ValueOf(p).Elem().IsZero()
}

// assertValid panics on a broken invariant when built with the
// hashtable_debug tag, and does nothing otherwise.
func (t *Table[K, V]) assertValid() {
	if !debugChecks {
		return
	}
	if err := t.validate(); err != nil {
		t.log.Emergency("invariant violated", "error", err)
		panic(fmt.Sprintf("hashtable: %v", err))
	}
}
