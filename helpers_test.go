package seedindex

import (
	"cmp"
	"context"
	"encoding/binary"
	"hash/fnv"
	randv2 "math/rand/v2"
	"slices"
	"testing"

	intbits "github.com/realtimegenomics/seedindex/internal/bits"
)

// Fixed seeds for reproducible randomized tests. Each test derives its own
// stream from its name so adding tests does not perturb others.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

// entry is one (hash, value) pair fed to a test index.
type entry struct {
	hash  uint64
	value int64
}

// buildMode is one construction configuration exercised by table tests.
type buildMode struct {
	name string
	opts []Option
}

func buildModes() []buildMode {
	return []buildMode{
		{"simple", nil},
		{"simple_bitvector", []Option{WithBitVector()}},
		{"compressed", []Option{WithCompression()}},
		{"compressed_bitvector", []Option{WithCompression(), WithBitVector()}},
		{"twopass_simple", []Option{WithTwoPass(), WithWorkers(4)}},
		{"twopass_compressed", []Option{WithCompression(), WithTwoPass()}},
	}
}

// buildIndex adds entries (twice for two-pass indexes) and freezes.
func buildIndex(t *testing.T, capacity int64, hashBits int, entries []entry, opts ...Option) *Index {
	t.Helper()
	idx, err := New(capacity, hashBits, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	passes := 1
	if idx.Params().TwoPass {
		passes = 2
	}
	for pass := range passes {
		for _, e := range entries {
			if err := idx.Add(e.hash, e.value); err != nil {
				t.Fatalf("pass %d Add(%d, %d): %v", pass, e.hash, e.value, err)
			}
		}
		if err := idx.Freeze(ctx); err != nil {
			t.Fatalf("pass %d Freeze: %v", pass, err)
		}
	}
	return idx
}

// randomEntries returns entries over distinct random hashes, each hash
// repeated 1..maxRepeat times with unique values, in shuffled order.
func randomEntries(rng *randv2.Rand, distinct, maxRepeat, hashBits int) []entry {
	seen := make(map[uint64]bool, distinct)
	var entries []entry
	var next int64
	for len(seen) < distinct {
		h := rng.Uint64() & intbits.Mask(hashBits)
		if seen[h] {
			continue
		}
		seen[h] = true
		for range 1 + rng.IntN(maxRepeat) {
			entries = append(entries, entry{hash: h, value: next*7 - 1000})
			next++
		}
	}
	rng.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})
	return entries
}

// reference is the expected content of an index after filtering: hash to
// ascending values.
type reference map[uint64][]int64

func newReference(entries []entry, threshold int) reference {
	ref := make(reference)
	for _, e := range entries {
		ref[e.hash] = append(ref[e.hash], e.value)
	}
	for h, vs := range ref {
		if len(vs) > threshold {
			delete(ref, h)
			continue
		}
		slices.Sort(vs)
	}
	return ref
}

func (r reference) entries() int64 {
	var n int64
	for _, vs := range r {
		n += int64(len(vs))
	}
	return n
}

// sorted flattens the reference in ascending (hash, value) order.
func (r reference) sorted() []entry {
	var out []entry
	for h, vs := range r {
		for _, v := range vs {
			out = append(out, entry{h, v})
		}
	}
	slices.SortFunc(out, func(a, b entry) int {
		if c := cmp.Compare(a.hash, b.hash); c != 0 {
			return c
		}
		return cmp.Compare(a.value, b.value)
	})
	return out
}

func mustSearch(t *testing.T, idx *Index, hash uint64) []int64 {
	t.Helper()
	seq, err := idx.Search(hash)
	if err != nil {
		t.Fatalf("Search(%d): %v", hash, err)
	}
	return slices.Collect(seq)
}

func mustCount(t *testing.T, idx *Index, hash uint64) int {
	t.Helper()
	n, err := idx.Count(hash)
	if err != nil {
		t.Fatalf("Count(%d): %v", hash, err)
	}
	return n
}

func mustChecksum(t *testing.T, idx *Index) uint64 {
	t.Helper()
	sum, err := idx.Checksum()
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	return sum
}
