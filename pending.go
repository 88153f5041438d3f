package seedindex

import (
	"slices"

	"github.com/realtimegenomics/seedindex/internal/sorter"
)

// minPendingCap is the first allocation of a single-pass accumulation
// buffer. Growth doubles from here but never past the declared capacity.
const minPendingCap = 1 << 12

// pending accumulates canonical hashes and values during single-pass
// construction. hi is nil unless hashes are extended.
type pending struct {
	hi     []uint64
	lo     []uint64
	values []int64
}

func newPending(extended bool) *pending {
	pd := &pending{}
	if extended {
		pd.hi = []uint64{}
	}
	return pd
}

func (pd *pending) add(hi, lo uint64, value int64, limit int64) {
	if len(pd.lo) == cap(pd.lo) {
		pd.grow(limit)
	}
	if pd.hi != nil {
		pd.hi = append(pd.hi, hi)
	}
	pd.lo = append(pd.lo, lo)
	pd.values = append(pd.values, value)
}

func (pd *pending) grow(limit int64) {
	n := len(pd.lo)
	want := int(min(max(int64(2*n), minPendingCap), limit)) - n
	if want <= 0 {
		want = 1
	}
	if pd.hi != nil {
		pd.hi = slices.Grow(pd.hi, want)
	}
	pd.lo = slices.Grow(pd.lo, want)
	pd.values = slices.Grow(pd.values, want)
}

func (pd *pending) hash(i int64) (uint64, uint64) {
	var hi uint64
	if pd.hi != nil {
		hi = pd.hi[i]
	}
	return hi, pd.lo[i]
}

func (pd *pending) truncate(n int64) {
	if pd.hi != nil {
		pd.hi = pd.hi[:n]
	}
	pd.lo = pd.lo[:n]
	pd.values = pd.values[:n]
}

func (pd *pending) bytes() int64 {
	b := int64(cap(pd.lo))*8 + int64(cap(pd.values))*8
	if pd.hi != nil {
		b += int64(cap(pd.hi)) * 8
	}
	return b
}

func (pd *pending) Len() int64 { return int64(len(pd.lo)) }

// sortable returns the entries as pairs ordered by hash, then value.
func (pd *pending) sortable() sorter.Interface {
	if pd.hi != nil {
		return sorter.WidePairs{Hi: pd.hi, Lo: pd.lo, Values: pd.values}
	}
	return sorter.Pairs{Keys: pd.lo, Values: pd.values}
}

func (pd *pending) same(i, j int64) bool {
	return pd.lo[i] == pd.lo[j] && (pd.hi == nil || pd.hi[i] == pd.hi[j])
}

func (pd *pending) move(dst, src int64) {
	if pd.hi != nil {
		pd.hi[dst] = pd.hi[src]
	}
	pd.lo[dst] = pd.lo[src]
	pd.values[dst] = pd.values[src]
}
