package seedindex

import (
	intbits "github.com/realtimegenomics/seedindex/internal/bits"
	"github.com/realtimegenomics/seedindex/internal/bitvec"
)

// column is an array of unsigned words addressed by entry position.
type column interface {
	get(i int64) uint64
	set(i int64, v uint64)
	swap(i, j int64)
	bytes() int64
}

type wordColumn []uint64

func (c wordColumn) get(i int64) uint64    { return c[i] }
func (c wordColumn) set(i int64, v uint64) { c[i] = v }
func (c wordColumn) swap(i, j int64)       { c[i], c[j] = c[j], c[i] }
func (c wordColumn) bytes() int64          { return int64(len(c)) * 8 }

type packedColumn struct {
	cells *bitvec.Cells
}

func (c packedColumn) get(i int64) uint64    { return c.cells.Get(i) }
func (c packedColumn) set(i int64, v uint64) { c.cells.Set(i, v) }
func (c packedColumn) swap(i, j int64)       { c.cells.Swap(i, j) }
func (c packedColumn) bytes() int64          { return c.cells.Bytes() }

// runTable is sorted storage that can compare and move entries, which is
// all repeat filtering needs.
type runTable interface {
	// same reports whether entries i and j hold the same key.
	same(i, j int64) bool

	// move copies entry src over entry dst.
	move(dst, src int64)
}

// table is the frozen entry storage: parallel key and value columns.
// hi is nil unless stored keys are wider than 64 bits.
type table struct {
	hi    column
	lo    column
	value column
	n     int64

	// aligned is set when no two entries share a storage word, so
	// disjoint ranges may be sorted concurrently.
	aligned bool
}

func (t *table) Len() int64 { return t.n }

func (t *table) keyAt(i int64) (uint64, uint64) {
	var hi uint64
	if t.hi != nil {
		hi = t.hi.get(i)
	}
	return hi, t.lo.get(i)
}

func (t *table) valueAt(i int64) int64 {
	return int64(t.value.get(i))
}

func (t *table) put(i int64, khi, klo uint64, value int64) {
	if t.hi != nil {
		t.hi.set(i, khi)
	}
	t.lo.set(i, klo)
	t.value.set(i, uint64(value))
}

// Less orders by key, then by value.
func (t *table) Less(i, j int64) bool {
	ahi, alo := t.keyAt(i)
	bhi, blo := t.keyAt(j)
	if c := intbits.Compare128(ahi, alo, bhi, blo); c != 0 {
		return c < 0
	}
	return t.valueAt(i) < t.valueAt(j)
}

func (t *table) Swap(i, j int64) {
	if t.hi != nil {
		t.hi.swap(i, j)
	}
	t.lo.swap(i, j)
	t.value.swap(i, j)
}

func (t *table) same(i, j int64) bool {
	ahi, alo := t.keyAt(i)
	bhi, blo := t.keyAt(j)
	return ahi == bhi && alo == blo
}

func (t *table) move(dst, src int64) {
	if dst == src {
		return
	}
	khi, klo := t.keyAt(src)
	t.put(dst, khi, klo, t.valueAt(src))
}

// search returns the range [first, end) of entries in [start, stop) whose
// key equals (khi, klo). The range is sorted, so both ends are found by
// binary search.
func (t *table) search(start, stop int64, khi, klo uint64) (int64, int64) {
	first := t.lowerBound(start, stop, func(hi, lo uint64) bool {
		return intbits.Compare128(hi, lo, khi, klo) >= 0
	})
	end := t.lowerBound(first, stop, func(hi, lo uint64) bool {
		return intbits.Compare128(hi, lo, khi, klo) > 0
	})
	return first, end
}

// lowerBound returns the first position in [lo, hi) whose key satisfies
// pred, or hi. pred must be monotone over the range.
func (t *table) lowerBound(lo, hi int64, pred func(khi, klo uint64) bool) int64 {
	for lo < hi {
		m := int64(uint64(lo+hi) >> 1)
		if pred(t.keyAt(m)) {
			hi = m
		} else {
			lo = m + 1
		}
	}
	return lo
}

func (t *table) bytes() int64 {
	var b int64
	if t.hi != nil {
		b += t.hi.bytes()
	}
	return b + t.lo.bytes() + t.value.bytes()
}
