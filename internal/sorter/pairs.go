package sorter

import (
	"fmt"

	seederrors "github.com/realtimegenomics/seedindex/errors"
)

// Pairs is a key array with a parallel satellite value array. Ties on key
// are ordered by value.
type Pairs struct {
	Keys   []uint64
	Values []int64
}

func (p Pairs) Len() int64 { return int64(len(p.Keys)) }

func (p Pairs) Less(i, j int64) bool {
	if p.Keys[i] != p.Keys[j] {
		return p.Keys[i] < p.Keys[j]
	}
	return p.Values[i] < p.Values[j]
}

func (p Pairs) Swap(i, j int64) {
	p.Keys[i], p.Keys[j] = p.Keys[j], p.Keys[i]
	p.Values[i], p.Values[j] = p.Values[j], p.Values[i]
}

// SortPairs sorts keys[start, start+length) ascending and applies the same
// permutation to values.
func SortPairs(keys []uint64, values []int64, start, length int64) error {
	if len(values) != len(keys) {
		return fmt.Errorf("%w: %d keys but %d values", seederrors.ErrInvalidArgument, len(keys), len(values))
	}
	return Sort(Pairs{Keys: keys, Values: values}, start, length)
}

// WidePairs is Pairs for 128-bit keys split into high and low words.
type WidePairs struct {
	Hi     []uint64
	Lo     []uint64
	Values []int64
}

func (p WidePairs) Len() int64 { return int64(len(p.Lo)) }

func (p WidePairs) Less(i, j int64) bool {
	if p.Hi[i] != p.Hi[j] {
		return p.Hi[i] < p.Hi[j]
	}
	if p.Lo[i] != p.Lo[j] {
		return p.Lo[i] < p.Lo[j]
	}
	return p.Values[i] < p.Values[j]
}

func (p WidePairs) Swap(i, j int64) {
	p.Hi[i], p.Hi[j] = p.Hi[j], p.Hi[i]
	p.Lo[i], p.Lo[j] = p.Lo[j], p.Lo[i]
	p.Values[i], p.Values[j] = p.Values[j], p.Values[i]
}
