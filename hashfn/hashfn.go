// Package hashfn provides hash functions and adapters for building
// hashtable.Callbacks.
package hashfn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Integer is the set of key types the integer mixers accept.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// RJenkins is Robert Jenkins' 32-bit integer mix, built only from adds,
// shifts and xors. It suits platforms without fast multiplication.
func RJenkins(key uint64) uint64 {
	h := key
	h = (h + 0x7ed55d16) + (h << 12)
	h = (h ^ 0xc761c23c) ^ (h >> 19)
	h = (h + 0x165667b1) + (h << 5)
	h = (h + 0xd3a2646c) ^ (h << 9)
	h = (h + 0xfd7046c5) + (h << 3)
	h = (h ^ 0xb55a4f09) ^ (h >> 16)
	return h
}

// Knuth multiplies by 2654435761 (2^32 over the golden ratio) and folds the
// high bits down. Cheap, and distributes well for keys below about 2^16.
func Knuth(key uint64) uint64 {
	h := key * 2654435761
	h ^= h >> 16
	return h
}

// MultiAndXor is a multiply/xor-shift finalizer that holds up for large keys.
func MultiAndXor(key uint64) uint64 {
	h := key
	h ^= h >> 32
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// DJB2 is Bernstein's hash*33 + c string hash. Fast, weak on collisions.
func DJB2(s string) uint64 {
	h := uint64(5381)
	for i := 0; i < len(s); i++ {
		h = (h << 5) + h + uint64(s[i])
	}
	return h
}

const (
	offset32 = 2166136261
	prime32  = 16777619
)

// FNV1a computes the 32-bit FNV-1a hash of s.
func FNV1a(s string) uint64 {
	hash := uint32(offset32)
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= prime32
	}
	return uint64(hash)
}

// XXHash computes the 64-bit xxHash of s.
func XXHash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// XXHashBytes computes the 64-bit xxHash of b.
func XXHashBytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// Identity hashes an integer to itself.
func Identity[K Integer](k K) uint64 {
	return uint64(k)
}

// Int adapts an integer mixer to any integer key type.
func Int[K Integer](mix func(uint64) uint64) func(K) uint64 {
	return func(k K) uint64 {
		return mix(uint64(k))
	}
}

// String adapts a string hash to any string key type.
func String[K ~string](fn func(string) uint64) func(K) uint64 {
	return func(k K) uint64 {
		return fn(string(k))
	}
}

// Equal is == for comparable keys.
func Equal[K comparable](a, b K) bool {
	return a == b
}

var stringHashes = map[string]func(string) uint64{
	"djb2":   DJB2,
	"fnv1a":  FNV1a,
	"xxhash": XXHash,
}

var intMixers = map[string]func(uint64) uint64{
	"identity":    Identity[uint64],
	"knuth":       Knuth,
	"multiandxor": MultiAndXor,
	"rjenkins":    RJenkins,
}

// StringByName returns the string hash registered under name.
func StringByName(name string) (func(string) uint64, error) {
	fn, ok := stringHashes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown string hash %q (want one of %s)", name, strings.Join(names(stringHashes), ", "))
	}
	return fn, nil
}

// IntByName returns the integer mixer registered under name.
func IntByName(name string) (func(uint64) uint64, error) {
	fn, ok := intMixers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown integer hash %q (want one of %s)", name, strings.Join(names(intMixers), ", "))
	}
	return fn, nil
}

func names[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
