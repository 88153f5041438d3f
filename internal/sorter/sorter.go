// Package sorter implements the in-place quicksort used when freezing an
// index. It sorts index-addressed data, so a key array and its satellite
// value array (or packed cell columns) move together.
//
// Sorting is a three-way quicksort: median of three pivots (a ninther on
// larger segments), an insertion pass on short segments, and a fat
// partition that keeps runs of equal keys together, which matters for the
// highly repetitive hashes of genomic seeds.
package sorter

import (
	"fmt"

	seederrors "github.com/realtimegenomics/seedindex/errors"
)

const (
	// insertionThreshold is the segment length below which an insertion
	// pass replaces partitioning.
	insertionThreshold = 7

	// nintherThreshold is the segment length above which the pivot is the
	// median of three medians.
	nintherThreshold = 40
)

// Interface is an index-addressed collection that can be sorted in place.
// Positions are int64 so arrays larger than 2^31 entries are addressable.
type Interface interface {
	Len() int64
	Less(i, j int64) bool
	Swap(i, j int64)
}

// Sort sorts data[start, start+length) ascending.
func Sort(data Interface, start, length int64) error {
	if err := checkRange(data.Len(), start, length); err != nil {
		return err
	}
	quickSort(data, start, start+length)
	return nil
}

func checkRange(n, start, length int64) error {
	switch {
	case length <= 0:
		return fmt.Errorf("%w: sort length %d must be positive", seederrors.ErrInvalidArgument, length)
	case start < 0:
		return fmt.Errorf("%w: sort start %d is negative", seederrors.ErrInvalidArgument, start)
	case start > n-length:
		return fmt.Errorf("%w: sort range [%d,%d) exceeds length %d", seederrors.ErrInvalidArgument, start, start+length, n)
	}
	return nil
}

// Med3 returns whichever of positions a, b and c holds the median element.
// When b is tied for the median it is preferred, then c.
func Med3(data Interface, a, b, c int64) int64 {
	ab, ba := data.Less(a, b), data.Less(b, a)
	bc, cb := data.Less(b, c), data.Less(c, b)
	if (!ba && !cb) || (!bc && !ab) {
		return b
	}
	ac, ca := data.Less(a, c), data.Less(c, a)
	if (!ca && !bc) || (!cb && !ac) {
		return c
	}
	return a
}

// quickSort sorts [lo, hi), recursing into the smaller side so stack depth
// stays logarithmic.
func quickSort(data Interface, lo, hi int64) {
	for hi-lo > insertionThreshold {
		lt, gt := partition(data, lo, hi)
		if lt-lo < hi-gt {
			quickSort(data, lo, lt)
			lo = gt
		} else {
			quickSort(data, gt, hi)
			hi = lt
		}
	}
	insertionSort(data, lo, hi)
}

func insertionSort(data Interface, lo, hi int64) {
	for i := lo + 1; i < hi; i++ {
		for j := i; j > lo && data.Less(j, j-1); j-- {
			data.Swap(j, j-1)
		}
	}
}

func choosePivot(data Interface, lo, hi int64) int64 {
	n := hi - lo
	l, m, h := lo, lo+n/2, hi-1
	if n > nintherThreshold {
		s := n / 8
		l = Med3(data, l, l+s, l+2*s)
		m = Med3(data, m-s, m, m+s)
		h = Med3(data, h-2*s, h-s, h)
	}
	return Med3(data, l, m, h)
}

// partition splits [lo, hi) into [lo, lt) < pivot, [lt, gt) == pivot and
// [gt, hi) > pivot. The pivot value always sits at position lt.
func partition(data Interface, lo, hi int64) (int64, int64) {
	data.Swap(lo, choosePivot(data, lo, hi))
	lt, i, gt := lo, lo+1, hi
	for i < gt {
		switch {
		case data.Less(i, lt):
			data.Swap(lt, i)
			lt++
			i++
		case data.Less(lt, i):
			gt--
			data.Swap(i, gt)
		default:
			i++
		}
	}
	return lt, gt
}
