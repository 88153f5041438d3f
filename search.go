package seedindex

import (
	"fmt"
	"iter"
	"sort"

	seederrors "github.com/realtimegenomics/seedindex/errors"
	"github.com/realtimegenomics/seedindex/internal/bitvec"
)

func (idx *Index) checkFrozen() error {
	if idx.state != stateFrozen {
		return fmt.Errorf("%w: index not frozen (%s)", seederrors.ErrIllegalState, idx.state)
	}
	return nil
}

func (idx *Index) checkNarrow() error {
	if idx.params.Extended() {
		return fmt.Errorf("%w: %d-bit hashes need the extended accessors",
			seederrors.ErrInvalidArgument, idx.params.HashBits)
	}
	return nil
}

// locate returns the positions [first, end) holding the canonical hash.
func (idx *Index) locate(hi, lo uint64) (int64, int64) {
	idx.searches.Add(1)
	if idx.bitVector != nil && !idx.bitVector.MayContain(idx.params.top64(hi, lo)) {
		idx.rejected.Add(1)
		return 0, 0
	}
	a := idx.params.address(hi, lo)
	khi, klo := idx.layout.key(hi, lo)
	first, end := idx.table.search(idx.starts[a], idx.starts[a+1], khi, klo)
	if end > first {
		idx.matched.Add(1)
	}
	return first, end
}

func (idx *Index) values(first, end int64) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for i := first; i < end; i++ {
			if !yield(idx.table.valueAt(i)) {
				return
			}
		}
	}
}

// Search returns the values stored under hash, in ascending order. The
// sequence is empty when the hash is absent.
func (idx *Index) Search(hash uint64) (iter.Seq[int64], error) {
	if err := idx.checkFrozen(); err != nil {
		return nil, err
	}
	return idx.values(idx.locate(idx.params.canonical64(hash))), nil
}

// SearchExtended is Search for extended hashes.
func (idx *Index) SearchExtended(h ExtendedHash) (iter.Seq[int64], error) {
	if err := idx.checkFrozen(); err != nil {
		return nil, err
	}
	return idx.values(idx.locate(idx.params.canonical(h))), nil
}

// SearchFunc calls fn with each value stored under hash until fn returns
// false.
func (idx *Index) SearchFunc(hash uint64, fn func(value int64) bool) error {
	seq, err := idx.Search(hash)
	if err != nil {
		return err
	}
	for v := range seq {
		if !fn(v) {
			break
		}
	}
	return nil
}

// Count returns the number of values stored under hash.
func (idx *Index) Count(hash uint64) (int, error) {
	if err := idx.checkFrozen(); err != nil {
		return 0, err
	}
	first, end := idx.locate(idx.params.canonical64(hash))
	return int(end - first), nil
}

// CountExtended is Count for extended hashes.
func (idx *Index) CountExtended(h ExtendedHash) (int, error) {
	if err := idx.checkFrozen(); err != nil {
		return 0, err
	}
	first, end := idx.locate(idx.params.canonical(h))
	return int(end - first), nil
}

// Contains returns the position of the first entry for hash, or -1 when the
// hash is absent.
func (idx *Index) Contains(hash uint64) (int64, error) {
	if err := idx.checkFrozen(); err != nil {
		return 0, err
	}
	return position(idx.locate(idx.params.canonical64(hash))), nil
}

// ContainsExtended is Contains for extended hashes.
func (idx *Index) ContainsExtended(h ExtendedHash) (int64, error) {
	if err := idx.checkFrozen(); err != nil {
		return 0, err
	}
	return position(idx.locate(idx.params.canonical(h))), nil
}

func position(first, end int64) int64 {
	if end == first {
		return -1
	}
	return first
}

// scan walks every entry in storage order, which is ascending hash order
// with values ascending within a hash.
func (idx *Index) scan(fn func(hi, lo uint64, value int64) bool) {
	for a := range idx.params.Buckets() {
		for i := idx.starts[a]; i < idx.starts[a+1]; i++ {
			khi, klo := idx.table.keyAt(i)
			hi, lo := idx.layout.hash(uint64(a), khi, klo)
			if !fn(hi, lo, idx.table.valueAt(i)) {
				return
			}
		}
	}
}

// Scan calls fn for every entry in ascending hash order until fn returns
// false. Extended indexes use ScanExtended.
func (idx *Index) Scan(fn func(hash uint64, value int64) bool) error {
	if err := idx.checkFrozen(); err != nil {
		return err
	}
	if err := idx.checkNarrow(); err != nil {
		return err
	}
	idx.scan(func(_, lo uint64, value int64) bool {
		return fn(lo, value)
	})
	return nil
}

// ScanExtended is Scan for extended indexes.
func (idx *Index) ScanExtended(fn func(hash ExtendedHash, value int64) bool) error {
	if err := idx.checkFrozen(); err != nil {
		return err
	}
	idx.scan(func(hi, lo uint64, value int64) bool {
		return fn(idx.params.external(hi, lo), value)
	})
	return nil
}

// bucketOf returns the bucket holding position pos.
func (idx *Index) bucketOf(pos int64) int {
	return sort.Search(idx.params.Buckets(), func(a int) bool {
		return idx.starts[a+1] > pos
	})
}

func (idx *Index) hashAt(pos int64) (uint64, uint64, error) {
	if err := idx.checkFrozen(); err != nil {
		return 0, 0, err
	}
	if err := bitvec.CheckIndex(pos, idx.table.n); err != nil {
		return 0, 0, err
	}
	khi, klo := idx.table.keyAt(pos)
	hi, lo := idx.layout.hash(uint64(idx.bucketOf(pos)), khi, klo)
	return hi, lo, nil
}

// Hash returns the hash of the entry at pos.
func (idx *Index) Hash(pos int64) (uint64, error) {
	if err := idx.checkNarrow(); err != nil {
		return 0, err
	}
	_, lo, err := idx.hashAt(pos)
	return lo, err
}

// HashExtended returns the extended hash of the entry at pos.
func (idx *Index) HashExtended(pos int64) (ExtendedHash, error) {
	hi, lo, err := idx.hashAt(pos)
	if err != nil {
		return ExtendedHash{}, err
	}
	return idx.params.external(hi, lo), nil
}

// Value returns the value of the entry at pos.
func (idx *Index) Value(pos int64) (int64, error) {
	if err := idx.checkFrozen(); err != nil {
		return 0, err
	}
	if err := bitvec.CheckIndex(pos, idx.table.n); err != nil {
		return 0, err
	}
	return idx.table.valueAt(pos), nil
}

// Position, CompressHash and DecompressHash expose the address arithmetic
// of the index's parameters.

func (idx *Index) Position(hash uint64) uint64 { return idx.params.Position(hash) }

func (idx *Index) CompressHash(hash uint64) uint64 { return idx.params.CompressHash(hash) }

func (idx *Index) DecompressHash(position, residual uint64) uint64 {
	return idx.params.DecompressHash(position, residual)
}
