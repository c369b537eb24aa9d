package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/theflywheel/hashtable"
	"github.com/theflywheel/hashtable/hashfn"
	"github.com/theflywheel/hashtable/internal/logger"
)

// Run generates the configured keys and drives them through a table.
func Run(ctx context.Context, cfg *Config) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	switch cfg.KeyKind {
	case KeyKindInt:
		mix, err := hashfn.IntByName(cfg.Hash)
		if err != nil {
			return nil, err
		}
		keys := make([]uint64, cfg.Keys)
		for i := range keys {
			keys[i] = uint64(i)
		}
		return runWorkload(ctx, cfg, keys, mix)

	case KeyKindString:
		fn, err := hashfn.StringByName(cfg.Hash)
		if err != nil {
			return nil, err
		}
		keys := uniqueKeys(cfg.Keys, func() string {
			return generateAlphanumeric(rng, 16)
		})
		return runWorkload(ctx, cfg, keys, fn)

	case KeyKindUUID:
		fn, err := hashfn.StringByName(cfg.Hash)
		if err != nil {
			return nil, err
		}
		// ChaCha8 reads never fail
		src := rand.NewChaCha8(seedBytes(cfg.Seed))
		keys := uniqueKeys(cfg.Keys, func() uuid.UUID {
			return uuid.Must(uuid.NewRandomFromReader(src))
		})
		return runWorkload(ctx, cfg, keys, func(k uuid.UUID) uint64 {
			return fn(string(k[:]))
		})
	}

	return nil, fmt.Errorf("unknown key kind %q", cfg.KeyKind)
}

func runWorkload[K comparable](ctx context.Context, cfg *Config, keys []K, hash func(K) uint64) (*Summary, error) {
	l := logger.From(ctx)

	var released int
	tbl, err := hashtable.New[K, int](cfg.MinCapacity, hashtable.Callbacks[K, int]{
		Hash:         hash,
		Equal:        hashfn.Equal[K],
		DestroyValue: func(int) { released++ },
	}, hashtable.WithLoadFactorBounds(cfg.Bounds()), hashtable.WithLogger(l.SLog()))
	if err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	defer tbl.Destroy()

	s := &Summary{
		Timestamp: CreateTimestamp(),
		GoVersion: runtime.Version(),
		KeyKind:   cfg.KeyKind,
		Hash:      cfg.Hash,
		Keys:      len(keys),
		Metrics:   map[string]float64{},
	}
	tracker := &capTracker{capOf: tbl.Cap, last: tbl.Cap()}
	tracker.peak = tracker.last

	if err := s.phase(ctx, "insert", len(keys), func() error {
		for i, k := range keys {
			if _, err := tbl.Set(k, i); err != nil {
				return fmt.Errorf("failed to insert key %d: %w", i, err)
			}
			tracker.observe()
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.phase(ctx, "lookup", len(keys), func() error {
		for i, k := range keys {
			v, ok := tbl.Get(k)
			if !ok {
				return fmt.Errorf("key %d not found", i)
			}
			if v != i {
				return fmt.Errorf("value mismatch for key %d: expected %d, got %d", i, i, v)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	removeCount := int(float64(len(keys)) * cfg.RemoveRatio)
	if err := s.phase(ctx, "remove", removeCount, func() error {
		for i, k := range keys[:removeCount] {
			removed, err := tbl.Remove(k)
			if err != nil {
				return fmt.Errorf("failed to remove key %d: %w", i, err)
			}
			if !removed {
				return fmt.Errorf("key %d vanished before removal", i)
			}
			tracker.observe()
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.phase(ctx, "verify", len(keys), func() error {
		for i, k := range keys {
			if tbl.Contains(k) != (i >= removeCount) {
				return fmt.Errorf("key %d in wrong state after removals", i)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	s.RemainingLen = tbl.Len()
	s.RemainingCap = tbl.Cap()

	if err := s.phase(ctx, "clear", 1, func() error {
		return tbl.Clear()
	}); err != nil {
		return nil, err
	}
	tracker.observe()

	s.FinalLen = tbl.Len()
	s.FinalCap = tbl.Cap()
	s.PeakCap = tracker.peak
	s.Resizes = tracker.resizes
	s.Released = released
	for k, v := range memoryStats() {
		s.Metrics[k] = v
	}

	l.Info("workload complete",
		"keys", s.Keys,
		"resizes", s.Resizes,
		"peak_cap", s.PeakCap,
	)
	return s, nil
}

// phase times fn and records it under name.
func (s *Summary) phase(ctx context.Context, name string, ops int, fn func() error) error {
	start := time.Now()
	if err := fn(); err != nil {
		return fmt.Errorf("%s phase: %w", name, err)
	}
	elapsed := time.Since(start)

	r := PhaseResult{Name: name, Operations: ops}
	if ops > 0 {
		r.NsPerOp = float64(elapsed.Nanoseconds()) / float64(ops)
	}
	s.Phases = append(s.Phases, r)

	logger.From(ctx).Debug("phase complete",
		"phase", name,
		"ops", ops,
		"ns_per_op", r.NsPerOp,
	)
	return nil
}

// capTracker counts bucket array rebuilds by watching the capacity.
type capTracker struct {
	capOf   func() int
	last    int
	peak    int
	resizes int
}

func (c *capTracker) observe() {
	now := c.capOf()
	if now != c.last {
		c.resizes++
		c.last = now
	}
	c.peak = max(c.peak, now)
}

func uniqueKeys[K comparable](n int, gen func() K) []K {
	seen := make(map[K]struct{}, n)
	keys := make([]K, 0, n)
	for len(keys) < n {
		k := gen()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// generateAlphanumeric creates a random alphanumeric string of given length
func generateAlphanumeric(rng *rand.Rand, length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		result[i] = charset[rng.IntN(len(charset))]
	}
	return string(result)
}

func seedBytes(seed uint64) [32]byte {
	var b [32]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(seed >> (8 * i))
	}
	return b
}
