package hashtable_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theflywheel/hashtable"
	"github.com/theflywheel/hashtable/hashfn"
)

func intTable(t *testing.T, minCap int, opts ...hashtable.Option) *hashtable.Table[int, int] {
	t.Helper()

	tbl, err := hashtable.New[int, int](minCap, hashtable.Callbacks[int, int]{
		Hash:  hashfn.Identity[int],
		Equal: hashfn.Equal[int],
	}, opts...)
	require.NoError(t, err)
	return tbl
}

// switchPlanner delegates to OptimalCapacity until fail is set.
type switchPlanner struct {
	fail bool
}

func (p *switchPlanner) plan(minCap, targetLen int, bounds hashtable.LoadFactorBounds) (int, bool) {
	if p.fail {
		return 0, false
	}
	return hashtable.OptimalCapacity(minCap, targetLen, bounds)
}

// requireBalanced checks the load factor property every successful
// mutation must leave behind.
func requireBalanced[K, V any](t *testing.T, tbl *hashtable.Table[K, V]) {
	t.Helper()

	require.LessOrEqual(t, tbl.Len(), tbl.Cap())
	require.NoError(t, tbl.Validate())

	b := tbl.Bounds()
	floor, ok := hashtable.OptimalCapacity(tbl.MinCap(), 0, b)
	require.True(t, ok)

	load := float64(tbl.Len()) / float64(tbl.Cap())
	if tbl.Cap() == floor {
		return
	}
	require.Greater(t, load, b.Lower, "len=%d cap=%d", tbl.Len(), tbl.Cap())
	require.Less(t, load, b.Upper, "len=%d cap=%d", tbl.Len(), tbl.Cap())
}

func TestNew(t *testing.T) {
	t.Run("initial capacity", func(t *testing.T) {
		tbl := intTable(t, 2)
		require.Equal(t, 0, tbl.Len())
		require.Equal(t, 2, tbl.Cap())
		require.Equal(t, 2, tbl.MinCap())
		require.Equal(t, hashtable.DefaultLoadFactorBounds, tbl.Bounds())
	})

	t.Run("min capacity rounds up to a candidate", func(t *testing.T) {
		tbl := intTable(t, 100)
		require.Equal(t, 127, tbl.Cap())
	})

	t.Run("zero min capacity still has two buckets", func(t *testing.T) {
		tbl := intTable(t, 0)
		require.Equal(t, hashtable.AbsoluteMinimumCapacity, tbl.Cap())
	})

	t.Run("negative min capacity", func(t *testing.T) {
		_, err := hashtable.New[int, int](-1, hashtable.Callbacks[int, int]{
			Hash:  hashfn.Identity[int],
			Equal: hashfn.Equal[int],
		})
		require.ErrorIs(t, err, hashtable.ErrInvalidMinCapacity)
	})

	t.Run("invalid bounds", func(t *testing.T) {
		for _, b := range []hashtable.LoadFactorBounds{
			{Lower: 0.5, Upper: 0.5},
			{Lower: -0.1, Upper: 0.5},
			{Lower: 0.1, Upper: 1},
			{Lower: 0.8, Upper: 0.2},
		} {
			_, err := hashtable.New[int, int](2, hashtable.Callbacks[int, int]{
				Hash:  hashfn.Identity[int],
				Equal: hashfn.Equal[int],
			}, hashtable.WithLoadFactorBounds(b))
			require.ErrorIs(t, err, hashtable.ErrInvalidLoadFactorBounds, "%+v", b)
		}
	})

	t.Run("planner without answer", func(t *testing.T) {
		p := &switchPlanner{fail: true}
		_, err := hashtable.New[int, int](2, hashtable.Callbacks[int, int]{
			Hash:  hashfn.Identity[int],
			Equal: hashfn.Equal[int],
		}, hashtable.WithPlanner(p.plan))
		require.ErrorIs(t, err, hashtable.ErrOutOfMemory)
	})

	t.Run("missing callbacks", func(t *testing.T) {
		require.Panics(t, func() {
			_, _ = hashtable.New[int, int](2, hashtable.Callbacks[int, int]{Equal: hashfn.Equal[int]})
		})
		require.Panics(t, func() {
			_, _ = hashtable.New[int, int](2, hashtable.Callbacks[int, int]{Hash: hashfn.Identity[int]})
		})
	})
}

func TestGetMissing(t *testing.T) {
	tbl, err := hashtable.New[string, string](2, hashtable.Callbacks[string, string]{
		Hash:  hashfn.XXHash,
		Equal: hashfn.Equal[string],
	})
	require.NoError(t, err)

	v, ok := tbl.Get("missing")
	require.False(t, ok)
	require.Empty(t, v)
	require.False(t, tbl.Contains("missing"))
	require.Equal(t, 0, tbl.Len())
	require.Equal(t, 2, tbl.Cap())
}

func TestSetGet(t *testing.T) {
	tbl, err := hashtable.New[string, int](2, hashtable.Callbacks[string, int]{
		Hash:  hashfn.FNV1a,
		Equal: hashfn.Equal[string],
	})
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		existed, err := tbl.Set(fmt.Sprintf("key-%d", i), i)
		require.NoError(t, err)
		require.False(t, existed)
	}
	require.Equal(t, 1000, tbl.Len())

	for i := 0; i < 1000; i++ {
		v, ok := tbl.Get(fmt.Sprintf("key-%d", i))
		require.True(t, ok, "key-%d", i)
		require.Equal(t, i, v)
	}
	requireBalanced(t, tbl)
}

type taggedKey struct {
	id  int
	tag string
}

func TestOverwrite(t *testing.T) {
	var destroyedKeys []taggedKey
	var destroyedValues []string

	tbl, err := hashtable.New[taggedKey, string](2, hashtable.Callbacks[taggedKey, string]{
		Hash:         func(k taggedKey) uint64 { return hashfn.Knuth(uint64(k.id)) },
		Equal:        func(a, b taggedKey) bool { return a.id == b.id },
		DestroyKey:   func(k taggedKey) { destroyedKeys = append(destroyedKeys, k) },
		DestroyValue: func(v string) { destroyedValues = append(destroyedValues, v) },
	})
	require.NoError(t, err)

	existed, err := tbl.Set(taggedKey{1, "original"}, "v1")
	require.NoError(t, err)
	require.False(t, existed)

	existed, err = tbl.Set(taggedKey{1, "replacement"}, "v2")
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, 1, tbl.Len())

	v, ok := tbl.Get(taggedKey{id: 1})
	require.True(t, ok)
	require.Equal(t, "v2", v)

	// The old value is released and the new key takes the stored key's
	// place. Neither key is released.
	require.Equal(t, []string{"v1"}, destroyedValues)
	require.Empty(t, destroyedKeys)
	for k := range tbl.All() {
		require.Equal(t, "replacement", k.tag)
	}
	require.NoError(t, tbl.Validate())

	removed, err := tbl.Remove(taggedKey{id: 1})
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, []taggedKey{{1, "replacement"}}, destroyedKeys)
}

func TestRemove(t *testing.T) {
	var order []string

	tbl, err := hashtable.New[string, string](2, hashtable.Callbacks[string, string]{
		Hash:         hashfn.DJB2,
		Equal:        hashfn.Equal[string],
		DestroyKey:   func(k string) { order = append(order, "key:"+k) },
		DestroyValue: func(v string) { order = append(order, "value:"+v) },
	})
	require.NoError(t, err)

	_, err = tbl.Set("a", "1")
	require.NoError(t, err)

	removed, err := tbl.Remove("a")
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, []string{"value:1", "key:a"}, order)
	require.False(t, tbl.Contains("a"))
	require.Equal(t, 0, tbl.Len())
	requireBalanced(t, tbl)
}

func TestRemoveAbsent(t *testing.T) {
	tbl := intTable(t, 2)
	for i := 0; i < 10; i++ {
		_, err := tbl.Set(i, i)
		require.NoError(t, err)
	}
	lenBefore, capBefore := tbl.Len(), tbl.Cap()

	removed, err := tbl.Remove(42)
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, lenBefore, tbl.Len())
	require.Equal(t, capBefore, tbl.Cap())
}

func TestGrowThenShrink(t *testing.T) {
	tbl := intTable(t, 2)

	for k := 1; k <= 100; k++ {
		_, err := tbl.Set(k, k*10)
		require.NoError(t, err)
	}
	require.Equal(t, 100, tbl.Len())
	require.GreaterOrEqual(t, tbl.Cap(), 100)
	require.Equal(t, 257, tbl.Cap())

	for k := 1; k <= 90; k++ {
		removed, err := tbl.Remove(k)
		require.NoError(t, err)
		require.True(t, removed)
	}
	require.Equal(t, 10, tbl.Len())

	// The last shrink happened when 38 entries remained; 10/61 is still
	// inside the band so no further resize follows.
	want, ok := hashtable.OptimalCapacity(2, 38, hashtable.DefaultLoadFactorBounds)
	require.True(t, ok)
	require.Equal(t, 61, want)
	require.Equal(t, want, tbl.Cap())

	for k := 91; k <= 100; k++ {
		v, ok := tbl.Get(k)
		require.True(t, ok, "key %d", k)
		require.Equal(t, k*10, v)
	}
	requireBalanced(t, tbl)
}

func TestSetOutOfMemoryLeavesTableUnchanged(t *testing.T) {
	p := &switchPlanner{}
	tbl := intTable(t, 2, hashtable.WithPlanner(p.plan))

	for k := 1; k <= 2; k++ {
		_, err := tbl.Set(k, k)
		require.NoError(t, err)
	}
	require.Equal(t, 3, tbl.Cap())

	p.fail = true

	// 3 entries in 3 buckets would cross the upper bound.
	existed, err := tbl.Set(3, 3)
	require.ErrorIs(t, err, hashtable.ErrOutOfMemory)
	require.False(t, existed)
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, 3, tbl.Cap())
	require.False(t, tbl.Contains(3))
	for k := 1; k <= 2; k++ {
		v, ok := tbl.Get(k)
		require.True(t, ok)
		require.Equal(t, k, v)
	}
	require.NoError(t, tbl.Validate())

	// Overwrites never resize, so they still succeed.
	existed, err = tbl.Set(1, 100)
	require.NoError(t, err)
	require.True(t, existed)

	p.fail = false
	_, err = tbl.Set(3, 3)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())
	require.Equal(t, 7, tbl.Cap())
}

func TestRemoveOutOfMemoryStillRemoves(t *testing.T) {
	p := &switchPlanner{}
	tbl := intTable(t, 2, hashtable.WithPlanner(p.plan))

	for k := 1; k <= 100; k++ {
		_, err := tbl.Set(k, k)
		require.NoError(t, err)
	}
	require.Equal(t, 257, tbl.Cap())

	p.fail = true

	// 38/257 drops to the lower bound on the 62nd removal.
	for k := 1; k <= 61; k++ {
		removed, err := tbl.Remove(k)
		require.NoError(t, err)
		require.True(t, removed)
	}

	removed, err := tbl.Remove(62)
	require.ErrorIs(t, err, hashtable.ErrOutOfMemory)
	require.True(t, removed)
	require.Equal(t, 38, tbl.Len())
	require.Equal(t, 257, tbl.Cap())
	require.False(t, tbl.Contains(62))
	require.NoError(t, tbl.Validate())

	p.fail = false
	removed, err = tbl.Remove(63)
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, 61, tbl.Cap())
}

func TestClear(t *testing.T) {
	var keys, values int
	tbl, err := hashtable.New[int, int](5, hashtable.Callbacks[int, int]{
		Hash:         hashfn.Int[int](hashfn.MultiAndXor),
		Equal:        hashfn.Equal[int],
		DestroyKey:   func(int) { keys++ },
		DestroyValue: func(int) { values++ },
	})
	require.NoError(t, err)

	for k := 0; k < 500; k++ {
		_, err := tbl.Set(k, k)
		require.NoError(t, err)
	}
	require.Greater(t, tbl.Cap(), 500)

	require.NoError(t, tbl.Clear())
	require.Equal(t, 500, keys)
	require.Equal(t, 500, values)
	require.Equal(t, 0, tbl.Len())
	require.Equal(t, 7, tbl.Cap())
	requireBalanced(t, tbl)

	_, err = tbl.Set(1, 1)
	require.NoError(t, err)
	require.True(t, tbl.Contains(1))
}

func TestDestroy(t *testing.T) {
	var keys, values int
	tbl, err := hashtable.New[int, int](2, hashtable.Callbacks[int, int]{
		Hash:         hashfn.Int[int](hashfn.RJenkins),
		Equal:        hashfn.Equal[int],
		DestroyKey:   func(int) { keys++ },
		DestroyValue: func(int) { values++ },
	})
	require.NoError(t, err)

	for k := 0; k < 50; k++ {
		_, err := tbl.Set(k, k)
		require.NoError(t, err)
	}
	capBefore := tbl.Cap()

	tbl.Destroy()
	require.Equal(t, 50, keys)
	require.Equal(t, 50, values)
	require.NotZero(t, capBefore)

	require.PanicsWithValue(t, "hashtable: use of destroyed table", func() {
		tbl.Len()
	})
	require.Panics(t, func() {
		_, _ = tbl.Set(1, 1)
	})
	require.Panics(t, func() {
		tbl.Bounds()
	})
}

func TestSetMinCap(t *testing.T) {
	tbl := intTable(t, 2)
	for k := 0; k < 10; k++ {
		_, err := tbl.Set(k, k)
		require.NoError(t, err)
	}
	require.Equal(t, 17, tbl.Cap())

	require.NoError(t, tbl.SetMinCap(1000))
	require.Equal(t, 1000, tbl.MinCap())
	require.Equal(t, 1021, tbl.Cap())
	for k := 0; k < 10; k++ {
		require.True(t, tbl.Contains(k))
	}

	// Sitting on the floor is fine even far below the lower bound.
	_, err := tbl.Set(10, 10)
	require.NoError(t, err)
	require.Equal(t, 1021, tbl.Cap())

	require.NoError(t, tbl.SetMinCap(0))
	require.Equal(t, 17, tbl.Cap())
	requireBalanced(t, tbl)

	require.ErrorIs(t, tbl.SetMinCap(-3), hashtable.ErrInvalidMinCapacity)
	require.Equal(t, 0, tbl.MinCap())
}

func TestSetMinCapOutOfMemoryKeepsFloor(t *testing.T) {
	tbl := intTable(t, 4)
	for k := 0; k < 5; k++ {
		_, err := tbl.Set(k, k)
		require.NoError(t, err)
	}
	capBefore := tbl.Cap()

	require.ErrorIs(t, tbl.SetMinCap(1<<62), hashtable.ErrOutOfMemory)
	require.Equal(t, 4, tbl.MinCap())
	require.Equal(t, capBefore, tbl.Cap())
	require.NoError(t, tbl.Validate())

	// the table keeps working
	_, err := tbl.Set(100, 100)
	require.NoError(t, err)
	removed, err := tbl.Remove(1)
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, 5, tbl.Len())
}

func TestCollidingKeys(t *testing.T) {
	tbl, err := hashtable.New[int, string](2, hashtable.Callbacks[int, string]{
		Hash:  func(int) uint64 { return 7 },
		Equal: hashfn.Equal[int],
	})
	require.NoError(t, err)

	for k := 0; k < 40; k++ {
		_, err := tbl.Set(k, fmt.Sprint(k))
		require.NoError(t, err)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	order := rng.Perm(40)
	for n, k := range order {
		removed, err := tbl.Remove(k)
		require.NoError(t, err)
		require.True(t, removed)

		for _, rest := range order[n+1:] {
			v, ok := tbl.Get(rest)
			require.True(t, ok, "key %d lost after removing %d", rest, k)
			require.Equal(t, fmt.Sprint(rest), v)
		}
		require.NoError(t, tbl.Validate())
	}
	require.Equal(t, 0, tbl.Len())
}

func TestRandomOperations(t *testing.T) {
	tbl := intTable(t, 2)
	model := map[int]int{}
	rng := rand.New(rand.NewPCG(42, 7))

	for i := 0; i < 20_000; i++ {
		k := rng.IntN(600)
		switch op := rng.IntN(10); {
		case op < 5:
			existed, err := tbl.Set(k, i)
			require.NoError(t, err)
			_, had := model[k]
			require.Equal(t, had, existed)
			model[k] = i
		case op < 9:
			removed, err := tbl.Remove(k)
			require.NoError(t, err)
			_, had := model[k]
			require.Equal(t, had, removed)
			delete(model, k)
		default:
			v, ok := tbl.Get(k)
			want, had := model[k]
			require.Equal(t, had, ok)
			require.Equal(t, want, v)
		}

		require.Equal(t, len(model), tbl.Len())
		if i%97 == 0 {
			requireBalanced(t, tbl)
		}
	}

	for k, want := range model {
		v, ok := tbl.Get(k)
		require.True(t, ok)
		require.Equal(t, want, v)
	}
}

func TestAll(t *testing.T) {
	tbl := intTable(t, 2)
	want := map[int]int{}
	for k := 0; k < 30; k++ {
		_, err := tbl.Set(k, k*k)
		require.NoError(t, err)
		want[k] = k * k
	}

	got := map[int]int{}
	for k, v := range tbl.All() {
		got[k] = v
	}
	require.Equal(t, want, got)

	n := 0
	for range tbl.All() {
		n++
		if n == 3 {
			break
		}
	}
	require.Equal(t, 3, n)
}

func TestCustomBounds(t *testing.T) {
	b := hashtable.LoadFactorBounds{Lower: 0.05, Upper: 0.5}
	tbl := intTable(t, 2, hashtable.WithLoadFactorBounds(b))

	for k := 0; k < 100; k++ {
		_, err := tbl.Set(k, k)
		require.NoError(t, err)
		requireBalanced(t, tbl)
	}
	require.Equal(t, b, tbl.Bounds())
	require.LessOrEqual(t, float64(tbl.Len())/float64(tbl.Cap()), b.Upper)
}

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	l := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := &switchPlanner{}
	tbl := intTable(t, 2, hashtable.WithLogger(l), hashtable.WithPlanner(p.plan))

	for k := 0; k < 5; k++ {
		_, err := tbl.Set(k, k)
		require.NoError(t, err)
	}
	require.Contains(t, buf.String(), "resized buckets")

	p.fail = true
	for k := 5; ; k++ {
		if _, err := tbl.Set(k, k); err != nil {
			require.True(t, errors.Is(err, hashtable.ErrOutOfMemory))
			break
		}
	}
	require.Contains(t, buf.String(), "no capacity available")
}
