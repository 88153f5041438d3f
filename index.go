package seedindex

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	seederrors "github.com/realtimegenomics/seedindex/errors"
	"github.com/realtimegenomics/seedindex/filter"
	intbits "github.com/realtimegenomics/seedindex/internal/bits"
	"github.com/realtimegenomics/seedindex/internal/bitvec"
)

// Index maps hashes to the values added with them.
//
// An index is built by Add (or AddExtended) calls followed by Freeze, after
// which it is read-only and safe for concurrent queries. Building is not
// safe for concurrent use; build separate indexes in parallel with a Set.
type Index struct {
	params   *Params
	layout   layout
	policy   filter.Policy
	external *filter.Histogram
	workers  int
	logger   *slog.Logger

	state state

	// Single-pass accumulation.
	pending *pending

	// Two-pass bookkeeping. counts holds pass-one per-bucket totals and is
	// reused as the per-bucket write cursor in pass two.
	counts   []int64
	expected int64
	added    int64

	// Storage, allocated at freeze (single-pass) or after pass one.
	table  *table
	starts []int64

	// Set once frozen.
	bitVector *bitvec.HashBitVector
	hashes    int64
	histogram *filter.Histogram

	searches atomic.Int64
	rejected atomic.Int64
	matched  atomic.Int64
}

// New creates an empty index for up to capacity entries of hashBits-bit
// hashes. Hashes wider than 64 bits must be added with AddExtended.
func New(capacity int64, hashBits int, opts ...Option) (*Index, error) {
	cfg := newConfig(opts)
	p, err := newParams(capacity, hashBits, cfg)
	if err != nil {
		return nil, err
	}
	policy, err := cfg.newPolicy()
	if err != nil {
		return nil, err
	}
	return &Index{
		params:   p,
		layout:   newLayout(p),
		policy:   policy,
		external: cfg.histogram,
		workers:  cfg.workers,
		logger:   cfg.logger,
	}, nil
}

// Params returns the sizing the index was created with.
func (idx *Index) Params() *Params {
	return idx.params
}

// Variant returns the storage layout.
func (idx *Index) Variant() Variant {
	return idx.layout.variant()
}

// Filter returns the repeat filter applied at freeze.
func (idx *Index) Filter() filter.Policy {
	return idx.policy
}

// Frozen reports whether the index is queryable.
func (idx *Index) Frozen() bool {
	return idx.state == stateFrozen
}

// Add records value under hash. Bits above HashBits are ignored. On an
// extended index hash is taken as ExtendedHash{Lower: hash}.
func (idx *Index) Add(hash uint64, value int64) error {
	hi, lo := idx.params.canonical64(hash)
	return idx.add(hi, lo, value)
}

// AddExtended records value under an extended hash.
func (idx *Index) AddExtended(h ExtendedHash, value int64) error {
	hi, lo := idx.params.canonical(h)
	return idx.add(hi, lo, value)
}

func (idx *Index) add(hi, lo uint64, value int64) error {
	if idx.state == stateFrozen {
		return fmt.Errorf("%w: add after freeze", seederrors.ErrIllegalState)
	}
	if idx.params.Compressed && idx.params.ValueBits < 64 &&
		(value < 0 || uint64(value) > intbits.Mask(idx.params.ValueBits)) {
		return fmt.Errorf("%w: value %d does not fit in %d bits",
			seederrors.ErrInvalidArgument, value, idx.params.ValueBits)
	}
	if idx.state == statePreAdd {
		idx.begin()
	}

	switch idx.state {
	case stateAdding:
		if int64(len(idx.pending.lo)) >= idx.params.Capacity {
			return fmt.Errorf("%w: too many items added: %d > %d",
				seederrors.ErrCapacityExceeded, len(idx.pending.lo)+1, idx.params.Capacity)
		}
		idx.pending.add(hi, lo, value, idx.params.Capacity)
	case stateCounting:
		idx.counts[idx.params.address(hi, lo)]++
		idx.added++
	case stateStoring:
		return idx.store(hi, lo, value)
	}
	return nil
}

// begin leaves the pre-add state.
func (idx *Index) begin() {
	if idx.params.TwoPass {
		idx.counts = make([]int64, idx.params.Buckets())
		idx.state = stateCounting
		return
	}
	idx.pending = newPending(idx.params.Extended())
	idx.state = stateAdding
}

// store places one pass-two entry directly into its bucket.
func (idx *Index) store(hi, lo uint64, value int64) error {
	if idx.added >= idx.expected {
		return fmt.Errorf("%w: too many items added: %d > %d",
			seederrors.ErrCapacityExceeded, idx.added+1, idx.expected)
	}
	a := idx.params.address(hi, lo)
	slot := idx.counts[a]
	if slot >= idx.starts[a+1] {
		return fmt.Errorf("%w: too many items added at position %d: %d > %d",
			seederrors.ErrCapacityExceeded, a, slot-idx.starts[a]+1, idx.starts[a+1]-idx.starts[a])
	}
	khi, klo := idx.layout.key(hi, lo)
	idx.table.put(slot, khi, klo, value)
	idx.counts[a]++
	idx.added++
	return nil
}

// Freeze finishes construction. A single-pass index becomes queryable. A
// two-pass index needs two calls: the first closes the counting pass and
// allocates exact storage, the second seals the index after every entry
// has been added again. Freezing a frozen index is an illegal state error.
// A cancelled ctx leaves the index in its current state.
func (idx *Index) Freeze(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if idx.state == statePreAdd {
		idx.begin()
	}
	switch idx.state {
	case stateAdding:
		return idx.freezeSinglePass(ctx)
	case stateCounting:
		return idx.endCounting()
	case stateStoring:
		return idx.freezeTwoPass(ctx)
	default:
		return fmt.Errorf("%w: index already frozen", seederrors.ErrIllegalState)
	}
}

// endCounting turns pass-one counts into bucket starts and allocates the
// table for exactly the counted entries.
func (idx *Index) endCounting() error {
	if idx.added > idx.params.Capacity {
		return fmt.Errorf("%w: too many items pre-added: %d > %d",
			seederrors.ErrCapacityExceeded, idx.added, idx.params.Capacity)
	}
	t, err := idx.layout.newTable(idx.added)
	if err != nil {
		return err
	}
	buckets := len(idx.counts)
	starts := make([]int64, buckets+1)
	for a, c := range idx.counts {
		starts[a+1] = starts[a] + c
	}
	copy(idx.counts, starts[:buckets])

	idx.table = t
	idx.starts = starts
	idx.expected = idx.added
	idx.added = 0
	idx.state = stateStoring
	idx.logger.Debug("counting pass complete", "entries", idx.expected, "buckets", buckets)
	return nil
}

func (idx *Index) freezeSinglePass(ctx context.Context) error {
	pd := idx.pending
	hist, err := sortPending(ctx, pd, idx.workers)
	if err != nil {
		return err
	}
	if err := idx.initFilter(hist); err != nil {
		return err
	}

	bounds := []int64{0, pd.Len()}
	kept, hashes := compact(pd, bounds, func(_ int, i, frequency int64) bool {
		return idx.policy.KeepHash(pd.lo[i], frequency)
	})
	pd.truncate(kept)

	if err := idx.materialize(pd); err != nil {
		return err
	}
	idx.pending = nil
	return idx.seal(hist, hashes)
}

// materialize copies sorted pending entries into a table and records where
// each bucket starts.
func (idx *Index) materialize(pd *pending) error {
	n := pd.Len()
	t, err := idx.layout.newTable(n)
	if err != nil {
		return err
	}
	buckets := idx.params.Buckets()
	starts := make([]int64, buckets+1)
	next := 0
	for i := range n {
		hi, lo := pd.hash(i)
		a := int(idx.params.address(hi, lo))
		for ; next <= a; next++ {
			starts[next] = i
		}
		khi, klo := idx.layout.key(hi, lo)
		t.put(i, khi, klo, pd.values[i])
	}
	for ; next <= buckets; next++ {
		starts[next] = n
	}
	idx.table = t
	idx.starts = starts
	return nil
}

func (idx *Index) freezeTwoPass(ctx context.Context) error {
	if idx.added < idx.expected {
		return fmt.Errorf("%w: too few items added: %d < %d",
			seederrors.ErrCapacityExceeded, idx.added, idx.expected)
	}
	t := idx.table
	workers := idx.workers
	if !t.aligned {
		workers = 1
	}
	hist, err := sortBuckets(ctx, t, idx.starts, workers)
	if err != nil {
		return err
	}
	if err := idx.initFilter(hist); err != nil {
		return err
	}

	kept, hashes := compact(t, idx.starts, func(a int, i, frequency int64) bool {
		khi, klo := t.keyAt(i)
		_, lo := idx.layout.hash(uint64(a), khi, klo)
		return idx.policy.KeepHash(lo, frequency)
	})
	t.n = kept
	idx.counts = nil
	return idx.seal(hist, hashes)
}

func (idx *Index) initFilter(hist *filter.Histogram) error {
	h := hist
	if idx.external != nil {
		h = idx.external
	}
	if err := idx.policy.Initialize(h); err != nil {
		return fmt.Errorf("initialize repeat filter: %w", err)
	}
	return nil
}

// seal builds the occupancy vector and makes the index queryable.
func (idx *Index) seal(hist *filter.Histogram, hashes int64) error {
	if bits := idx.params.BitVectorBits; bits > 0 {
		bv, err := bitvec.NewHashBitVector(idx.params.foldBits(), bits)
		if err != nil {
			return err
		}
		for a := range idx.params.Buckets() {
			for i := idx.starts[a]; i < idx.starts[a+1]; i++ {
				khi, klo := idx.table.keyAt(i)
				hi, lo := idx.layout.hash(uint64(a), khi, klo)
				if err := bv.Set(idx.params.top64(hi, lo)); err != nil {
					return err
				}
			}
		}
		idx.bitVector = bv
	}
	idx.histogram = hist
	idx.hashes = hashes
	idx.state = stateFrozen
	idx.logger.Debug("index frozen",
		"variant", idx.layout.variant(),
		"entries", idx.table.n,
		"hashes", hashes,
		"filter", idx.policy.String())
	return nil
}
