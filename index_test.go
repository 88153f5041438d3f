package seedindex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"testing"

	seederrors "github.com/realtimegenomics/seedindex/errors"
)

// ============================================================================
// Basic Scenarios
// ============================================================================

func TestBasicSinglePass(t *testing.T) {
	idx, err := New(10, 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(1, 1); err != nil {
		t.Fatal(err)
	}
	if err := idx.Freeze(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := mustSearch(t, idx, 1); !slices.Equal(got, []int64{1}) {
		t.Errorf("Search(1) = %v, want [1]", got)
	}
	if got := mustSearch(t, idx, 2); len(got) != 0 {
		t.Errorf("Search(2) = %v, want empty", got)
	}
	pos, err := idx.Contains(1)
	if err != nil || pos < 0 {
		t.Errorf("Contains(1) = %d, %v", pos, err)
	}
	if pos, _ := idx.Contains(2); pos != -1 {
		t.Errorf("Contains(2) = %d, want -1", pos)
	}
	if got := mustCount(t, idx, 1); got != 1 {
		t.Errorf("Count(1) = %d, want 1", got)
	}
	if idx.NumberEntries() != 1 || idx.NumberHashes() != 1 {
		t.Errorf("entries=%d hashes=%d, want 1 and 1", idx.NumberEntries(), idx.NumberHashes())
	}
}

func TestThresholdRetention(t *testing.T) {
	entries := []entry{
		{0, 0},
		{1, 1}, {1, 2}, {1, 3},
		{2, 4}, {2, 5},
	}
	for _, mode := range buildModes() {
		t.Run(mode.name, func(t *testing.T) {
			opts := append(slices.Clone(mode.opts), WithThreshold(2))
			idx := buildIndex(t, 10, 16, entries, opts...)

			if got := mustCount(t, idx, 0); got != 1 {
				t.Errorf("Count(0) = %d, want 1", got)
			}
			if got := mustCount(t, idx, 1); got != 0 {
				t.Errorf("Count(1) = %d, want 0 (dropped, not truncated)", got)
			}
			if got := mustSearch(t, idx, 1); len(got) != 0 {
				t.Errorf("Search(1) = %v, want empty", got)
			}
			if got := mustSearch(t, idx, 2); !slices.Equal(got, []int64{4, 5}) {
				t.Errorf("Search(2) = %v, want [4 5]", got)
			}
			if idx.NumberEntries() != 3 || idx.NumberHashes() != 2 {
				t.Errorf("entries=%d hashes=%d, want 3 and 2", idx.NumberEntries(), idx.NumberHashes())
			}
		})
	}
}

func TestEmptyIndex(t *testing.T) {
	for _, mode := range buildModes() {
		t.Run(mode.name, func(t *testing.T) {
			idx := buildIndex(t, 5, 20, nil, mode.opts...)
			if got := mustCount(t, idx, 7); got != 0 {
				t.Errorf("Count = %d, want 0", got)
			}
			if idx.NumberEntries() != 0 {
				t.Errorf("NumberEntries = %d, want 0", idx.NumberEntries())
			}
			if err := idx.Scan(func(uint64, int64) bool {
				t.Error("Scan visited an entry")
				return true
			}); err != nil {
				t.Fatal(err)
			}
		})
	}
}

// ============================================================================
// Randomized Content
// ============================================================================

func TestRandomAgainstReference(t *testing.T) {
	const threshold = 3
	for _, hashBits := range []int{16, 36, 64} {
		for _, mode := range buildModes() {
			t.Run(fmt.Sprintf("%s/bits%d", mode.name, hashBits), func(t *testing.T) {
				rng := newTestRNG(t)
				entries := randomEntries(rng, 2000, 5, hashBits)
				ref := newReference(entries, threshold)

				opts := append(slices.Clone(mode.opts), WithThreshold(threshold))
				idx := buildIndex(t, int64(len(entries)), hashBits, entries, opts...)

				if idx.NumberEntries() != ref.entries() {
					t.Fatalf("NumberEntries = %d, want %d", idx.NumberEntries(), ref.entries())
				}
				if idx.NumberHashes() != int64(len(ref)) {
					t.Fatalf("NumberHashes = %d, want %d", idx.NumberHashes(), len(ref))
				}

				for _, e := range entries {
					want := ref[e.hash]
					got := mustSearch(t, idx, e.hash)
					if !slices.Equal(got, want) {
						t.Fatalf("Search(%#x) = %v, want %v", e.hash, got, want)
					}
					if n := mustCount(t, idx, e.hash); n != len(got) {
						t.Fatalf("Count(%#x) = %d, Search returned %d", e.hash, n, len(got))
					}
					pos, err := idx.Contains(e.hash)
					if err != nil {
						t.Fatal(err)
					}
					if len(want) == 0 {
						if pos != -1 {
							t.Fatalf("Contains(%#x) = %d, want -1", e.hash, pos)
						}
						continue
					}
					h, err := idx.Hash(pos)
					if err != nil || h != e.hash {
						t.Fatalf("Hash(%d) = %#x, %v; want %#x", pos, h, err, e.hash)
					}
					v, err := idx.Value(pos)
					if err != nil || v != want[0] {
						t.Fatalf("Value(%d) = %d, %v; want %d", pos, v, err, want[0])
					}
				}

				var scanned []entry
				if err := idx.Scan(func(h uint64, v int64) bool {
					scanned = append(scanned, entry{h, v})
					return true
				}); err != nil {
					t.Fatal(err)
				}
				if !slices.Equal(scanned, ref.sorted()) {
					t.Fatalf("Scan returned %d entries out of order or differing from reference", len(scanned))
				}
			})
		}
	}
}

func TestSignedBoundaryHashes(t *testing.T) {
	entries := []entry{
		{0, math.MinInt64},
		{1 << 63, math.MaxInt64},
		{math.MaxUint64, -1},
		{math.MaxInt64, 0},
		{math.MaxUint64, math.MinInt64},
	}
	for _, mode := range buildModes() {
		t.Run(mode.name, func(t *testing.T) {
			idx := buildIndex(t, int64(len(entries)), 64, entries, mode.opts...)
			ref := newReference(entries, len(entries))
			for h, want := range ref {
				if got := mustSearch(t, idx, h); !slices.Equal(got, want) {
					t.Errorf("Search(%#x) = %v, want %v", h, got, want)
				}
			}
			var hashes []uint64
			if err := idx.Scan(func(h uint64, _ int64) bool {
				hashes = append(hashes, h)
				return true
			}); err != nil {
				t.Fatal(err)
			}
			if !slices.IsSorted(hashes) {
				t.Errorf("Scan hashes not in unsigned order: %#x", hashes)
			}
		})
	}
}

func TestHighBitsIgnored(t *testing.T) {
	idx := buildIndex(t, 4, 12, []entry{{0xABC, 1}, {0xF000 | 0xABC, 2}})
	if got := mustSearch(t, idx, 0xABC); !slices.Equal(got, []int64{1, 2}) {
		t.Errorf("Search = %v, want [1 2]", got)
	}
}

func TestQueriesRepeatable(t *testing.T) {
	rng := newTestRNG(t)
	entries := randomEntries(rng, 300, 4, 30)
	idx := buildIndex(t, int64(len(entries)), 30, entries, WithCompression())
	for _, e := range entries[:50] {
		first := mustSearch(t, idx, e.hash)
		for range 3 {
			if again := mustSearch(t, idx, e.hash); !slices.Equal(first, again) {
				t.Fatalf("Search(%#x) changed: %v then %v", e.hash, first, again)
			}
			if n := mustCount(t, idx, e.hash); n != len(first) {
				t.Fatalf("Count(%#x) = %d, want %d", e.hash, n, len(first))
			}
		}
	}
}

func TestSearchFuncStopsEarly(t *testing.T) {
	idx := buildIndex(t, 5, 16, []entry{{9, 1}, {9, 2}, {9, 3}})
	var got []int64
	err := idx.SearchFunc(9, func(v int64) bool {
		got = append(got, v)
		return len(got) < 2
	})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int64{1, 2}) {
		t.Errorf("SearchFunc visited %v, want [1 2]", got)
	}
}

// ============================================================================
// Construction Modes
// ============================================================================

func TestModesAgree(t *testing.T) {
	rng := newTestRNG(t)
	entries := randomEntries(rng, 5000, 6, 40)
	var want uint64
	for i, mode := range buildModes() {
		opts := append(slices.Clone(mode.opts), WithThreshold(4))
		idx := buildIndex(t, int64(len(entries)), 40, entries, opts...)
		sum := mustChecksum(t, idx)
		if i == 0 {
			want = sum
			continue
		}
		if sum != want {
			t.Errorf("%s checksum %#x, want %#x", mode.name, sum, want)
		}
	}
}

func TestParallelFreezeMatchesSequential(t *testing.T) {
	rng := newTestRNG(t)
	entries := randomEntries(rng, 40000, 3, 48)
	seq := buildIndex(t, int64(len(entries)), 48, entries)
	par := buildIndex(t, int64(len(entries)), 48, entries, WithWorkers(8))
	if a, b := mustChecksum(t, seq), mustChecksum(t, par); a != b {
		t.Errorf("parallel checksum %#x, sequential %#x", b, a)
	}
}

func TestCompressedValueBits(t *testing.T) {
	idx, err := New(8, 24, WithCompression(), WithValueBits(20))
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(5, -1); !errors.Is(err, seederrors.ErrInvalidArgument) {
		t.Errorf("negative value: got %v, want ErrInvalidArgument", err)
	}
	if err := idx.Add(5, 1<<20); !errors.Is(err, seederrors.ErrInvalidArgument) {
		t.Errorf("oversized value: got %v, want ErrInvalidArgument", err)
	}
	for _, v := range []int64{0, 1, 1<<20 - 1, 12345} {
		if err := idx.Add(5, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := idx.Freeze(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := mustSearch(t, idx, 5); !slices.Equal(got, []int64{0, 1, 12345, 1<<20 - 1}) {
		t.Errorf("Search = %v", got)
	}
}

func TestProportionalFilterIndex(t *testing.T) {
	// Hash f occurs f times for f in 1..10: 55 entries in total.
	var entries []entry
	for f := 1; f <= 10; f++ {
		for i := range f {
			entries = append(entries, entry{uint64(f), int64(i)})
		}
	}
	// Discarding frequencies 10, 9 and 8 removes 27 of 55 entries, the
	// first point at or past 40%.
	for _, mode := range buildModes() {
		t.Run(mode.name, func(t *testing.T) {
			opts := append(slices.Clone(mode.opts), WithProportionalFilter(0.4))
			idx := buildIndex(t, int64(len(entries)), 16, entries, opts...)
			for f := 1; f <= 10; f++ {
				want := f
				if f > 7 {
					want = 0
				}
				if got := mustCount(t, idx, uint64(f)); got != want {
					t.Errorf("Count(%d) = %d, want %d", f, got, want)
				}
			}
			if !strings.Contains(idx.Filter().String(), "threshold=7") {
				t.Errorf("filter = %s, want threshold=7", idx.Filter())
			}
		})
	}
}

func TestInvalidProportionalFraction(t *testing.T) {
	if _, err := New(10, 16, WithProportionalFilter(1.5)); !errors.Is(err, seederrors.ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestLastFilterOptionWins(t *testing.T) {
	idx, err := New(10, 16, WithProportionalFilter(0.5), WithThreshold(3))
	if err != nil {
		t.Fatal(err)
	}
	if got := idx.Filter().String(); got != "fixed threshold=3" {
		t.Errorf("filter = %q", got)
	}
}

// ============================================================================
// Capacity Errors
// ============================================================================

func TestSinglePassCapacityExceeded(t *testing.T) {
	idx, err := New(10, 16)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 10 {
		if err := idx.Add(uint64(i), int64(i)); err != nil {
			t.Fatal(err)
		}
	}
	err = idx.Add(99, 99)
	if !errors.Is(err, seederrors.ErrCapacityExceeded) {
		t.Fatalf("got %v, want ErrCapacityExceeded", err)
	}
	if !strings.Contains(err.Error(), "11 > 10") {
		t.Errorf("error %q does not name both counts", err)
	}
}

func TestTwoPassPreAddedTooMany(t *testing.T) {
	idx, err := New(3, 16, WithTwoPass(), WithCompression())
	if err != nil {
		t.Fatal(err)
	}
	for i := range 4 {
		if err := idx.Add(uint64(i), 0); err != nil {
			t.Fatal(err)
		}
	}
	err = idx.Freeze(context.Background())
	if !errors.Is(err, seederrors.ErrCapacityExceeded) || !strings.Contains(err.Error(), "pre-added: 4 > 3") {
		t.Fatalf("got %v, want pre-added capacity error", err)
	}
}

func TestTwoPassSecondPassMismatch(t *testing.T) {
	ctx := context.Background()
	// Capacity 10 gives 4 address bits, so these hashes land in buckets 0,
	// 1 and 2.
	hashes := []uint64{0, 1 << 12, 2 << 12}
	newCounted := func(t *testing.T) *Index {
		idx, err := New(10, 16, WithTwoPass(), WithCompression())
		if err != nil {
			t.Fatal(err)
		}
		for i, h := range hashes {
			if err := idx.Add(h, int64(i)); err != nil {
				t.Fatal(err)
			}
		}
		if err := idx.Freeze(ctx); err != nil {
			t.Fatal(err)
		}
		return idx
	}

	t.Run("too_many", func(t *testing.T) {
		idx := newCounted(t)
		for i, h := range hashes {
			if err := idx.Add(h, int64(i)); err != nil {
				t.Fatal(err)
			}
		}
		err := idx.Add(0, 0)
		if !errors.Is(err, seederrors.ErrCapacityExceeded) || !strings.Contains(err.Error(), "4 > 3") {
			t.Fatalf("got %v, want too many items added: 4 > 3", err)
		}
	})

	t.Run("too_few", func(t *testing.T) {
		idx := newCounted(t)
		if err := idx.Add(0, 0); err != nil {
			t.Fatal(err)
		}
		err := idx.Freeze(ctx)
		if !errors.Is(err, seederrors.ErrCapacityExceeded) || !strings.Contains(err.Error(), "1 < 3") {
			t.Fatalf("got %v, want too few items added: 1 < 3", err)
		}
	})

	t.Run("different_bucket", func(t *testing.T) {
		idx := newCounted(t)
		if err := idx.Add(0, 0); err != nil {
			t.Fatal(err)
		}
		err := idx.Add(0, 0)
		if !errors.Is(err, seederrors.ErrCapacityExceeded) {
			t.Fatalf("got %v, want ErrCapacityExceeded", err)
		}
	})
}

// ============================================================================
// Lifecycle
// ============================================================================

func TestLifecycleErrors(t *testing.T) {
	ctx := context.Background()

	idx, err := New(4, 16)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Search(1); !errors.Is(err, seederrors.ErrIllegalState) {
		t.Errorf("Search before freeze: got %v", err)
	}
	if _, err := idx.Count(1); !errors.Is(err, seederrors.ErrIllegalState) {
		t.Errorf("Count before freeze: got %v", err)
	}
	if err := idx.Add(1, 1); err != nil {
		t.Fatal(err)
	}
	if err := idx.Freeze(ctx); err != nil {
		t.Fatal(err)
	}
	if err := idx.Freeze(ctx); !errors.Is(err, seederrors.ErrIllegalState) {
		t.Errorf("second Freeze: got %v", err)
	}
	if err := idx.Add(2, 2); !errors.Is(err, seederrors.ErrIllegalState) {
		t.Errorf("Add after freeze: got %v", err)
	}
}

func TestTwoPassLifecycle(t *testing.T) {
	ctx := context.Background()
	idx, err := New(4, 16, WithTwoPass(), WithCompression())
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(7, 70); err != nil {
		t.Fatal(err)
	}
	if err := idx.Freeze(ctx); err != nil {
		t.Fatal(err)
	}
	if idx.Frozen() {
		t.Fatal("index frozen after the counting pass")
	}
	if _, err := idx.Search(7); !errors.Is(err, seederrors.ErrIllegalState) {
		t.Errorf("Search between passes: got %v", err)
	}
	if err := idx.Add(7, 70); err != nil {
		t.Fatal(err)
	}
	if err := idx.Freeze(ctx); err != nil {
		t.Fatal(err)
	}
	if err := idx.Freeze(ctx); !errors.Is(err, seederrors.ErrIllegalState) {
		t.Errorf("third Freeze: got %v", err)
	}
	if err := idx.Add(7, 70); !errors.Is(err, seederrors.ErrIllegalState) {
		t.Errorf("Add after final freeze: got %v", err)
	}
	if got := mustSearch(t, idx, 7); !slices.Equal(got, []int64{70}) {
		t.Errorf("Search = %v", got)
	}
}

func TestFreezeCancelled(t *testing.T) {
	rng := newTestRNG(t)
	entries := randomEntries(rng, 50000, 1, 40)
	idx, err := New(int64(len(entries)), 40, WithWorkers(4))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if err := idx.Add(e.hash, e.value); err != nil {
			t.Fatal(err)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := idx.Freeze(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestFreezeCancelledAnyMode(t *testing.T) {
	entries := []entry{{3, 1}, {3, 2}, {9, 3}}
	for _, mode := range buildModes() {
		t.Run(mode.name, func(t *testing.T) {
			idx, err := New(int64(len(entries)), 16, mode.opts...)
			if err != nil {
				t.Fatal(err)
			}
			cancelled, cancel := context.WithCancel(context.Background())
			cancel()

			passes := 1
			if idx.Params().TwoPass {
				passes = 2
			}
			for pass := range passes {
				for _, e := range entries {
					if err := idx.Add(e.hash, e.value); err != nil {
						t.Fatal(err)
					}
				}
				if err := idx.Freeze(cancelled); !errors.Is(err, context.Canceled) {
					t.Fatalf("pass %d: got %v, want context.Canceled", pass, err)
				}
				if idx.Frozen() {
					t.Fatalf("pass %d: frozen after a cancelled Freeze", pass)
				}
				if err := idx.Freeze(context.Background()); err != nil {
					t.Fatalf("pass %d: %v", pass, err)
				}
			}
			if got := mustCount(t, idx, 3); got != 2 {
				t.Errorf("Count(3) = %d, want 2", got)
			}
		})
	}
}

func TestPositionalBounds(t *testing.T) {
	idx := buildIndex(t, 4, 16, []entry{{1, 1}, {2, 2}})
	for _, pos := range []int64{-1, 2, 100} {
		if _, err := idx.Hash(pos); !errors.Is(err, seederrors.ErrBoundsViolation) {
			t.Errorf("Hash(%d): got %v", pos, err)
		}
		if _, err := idx.Value(pos); !errors.Is(err, seederrors.ErrBoundsViolation) {
			t.Errorf("Value(%d): got %v", pos, err)
		}
	}
}
