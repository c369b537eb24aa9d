package hashtable

import (
	"fmt"
	"math"
)

// AbsoluteMinimumCapacity is the smallest bucket array a table will ever
// allocate, regardless of its configured minimum capacity.
const AbsoluteMinimumCapacity = 2

// LoadFactorBounds is the hysteresis band a table keeps its load factor in.
// A table grows once len/cap reaches Upper and shrinks once it falls to
// Lower; anything in between leaves the bucket array alone.
type LoadFactorBounds struct {
	Lower float64
	Upper float64
}

// DefaultLoadFactorBounds are the bounds used unless WithLoadFactorBounds is given.
var DefaultLoadFactorBounds = LoadFactorBounds{Lower: 0.15, Upper: 0.75}

// Validate reports whether the bounds satisfy 0 <= Lower < Upper < 1.
func (b LoadFactorBounds) Validate() error {
	if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) {
		return fmt.Errorf("%w: NaN bound", ErrInvalidLoadFactorBounds)
	}
	if b.Lower < 0 || b.Upper >= 1 || b.Lower >= b.Upper {
		return fmt.Errorf("%w: want 0 <= lower < upper < 1, got lower=%v upper=%v",
			ErrInvalidLoadFactorBounds, b.Lower, b.Upper)
	}
	return nil
}

// Planner picks the bucket array length for a table that must hold
// targetLen entries. It returns false when no acceptable capacity exists.
type Planner func(minCap, targetLen int, bounds LoadFactorBounds) (int, bool)

// OptimalCapacity is the default Planner. It returns the smallest entry of
// PrimePowersOfTwo that is at least AbsoluteMinimumCapacity, minCap and
// targetLen, and whose load factor for a non-zero targetLen does not exceed
// bounds.Upper. bounds.Lower does not take part in candidate selection.
func OptimalCapacity(minCap, targetLen int, bounds LoadFactorBounds) (int, bool) {
	for _, candidate := range PrimePowersOfTwo {
		if candidate < AbsoluteMinimumCapacity {
			continue
		}
		// past anything this platform can index
		if candidate > math.MaxInt {
			break
		}

		c := int(candidate)
		if c < targetLen || c < minCap {
			continue
		}
		if targetLen > 0 && float64(targetLen)/float64(c) > bounds.Upper {
			continue
		}
		return c, true
	}
	return 0, false
}
