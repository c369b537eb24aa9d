package hashtable

import "errors"

var (
	// ErrOutOfMemory is returned when no capacity can be planned for the
	// requested length, or the bucket array cannot be allocated.
	ErrOutOfMemory = errors.New("hashtable: out of memory")

	// ErrInvalidLoadFactorBounds is returned for bounds outside
	// 0 <= lower < upper < 1.
	ErrInvalidLoadFactorBounds = errors.New("hashtable: invalid load factor bounds")

	// ErrInvalidMinCapacity is returned for a negative minimum capacity.
	ErrInvalidMinCapacity = errors.New("hashtable: invalid minimum capacity")
)
