package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	seederrors "github.com/realtimegenomics/seedindex/errors"
)

// Bucket is one histogram entry: Count distinct hashes each occurred
// Frequency times.
type Bucket struct {
	Frequency int64
	Count     int64
}

// Histogram is a sparse frequency histogram: buckets held in strictly
// ascending frequency order, with only non-empty frequencies stored.
type Histogram struct {
	buckets []Bucket
}

// NewHistogram returns an empty histogram.
func NewHistogram() *Histogram {
	return &Histogram{}
}

// FromCounts builds a histogram from a frequency to count map. Zero counts
// are omitted.
func FromCounts(counts map[int64]int64) *Histogram {
	h := &Histogram{buckets: make([]Bucket, 0, len(counts))}
	for _, f := range slices.Sorted(maps.Keys(counts)) {
		if c := counts[f]; c != 0 {
			h.buckets = append(h.buckets, Bucket{Frequency: f, Count: c})
		}
	}
	return h
}

// Add appends a bucket. Frequencies must be positive and strictly greater
// than the last added frequency.
func (h *Histogram) Add(frequency, count int64) error {
	if frequency <= 0 {
		return fmt.Errorf("%w: histogram frequency %d must be positive", seederrors.ErrInvalidArgument, frequency)
	}
	if count < 0 {
		return fmt.Errorf("%w: histogram count %d is negative", seederrors.ErrInvalidArgument, count)
	}
	if n := len(h.buckets); n > 0 && h.buckets[n-1].Frequency >= frequency {
		return fmt.Errorf("%w: histogram frequency %d added after %d", seederrors.ErrInvalidArgument, frequency, h.buckets[n-1].Frequency)
	}
	h.buckets = append(h.buckets, Bucket{Frequency: frequency, Count: count})
	return nil
}

// Len returns the number of buckets.
func (h *Histogram) Len() int {
	return len(h.buckets)
}

// At returns bucket i in ascending frequency order.
func (h *Histogram) At(i int) Bucket {
	return h.buckets[i]
}

// Buckets returns a copy of the buckets.
func (h *Histogram) Buckets() []Bucket {
	return slices.Clone(h.buckets)
}

// TotalHashes returns the number of distinct hashes counted.
func (h *Histogram) TotalHashes() int64 {
	var n int64
	for _, b := range h.buckets {
		n += b.Count
	}
	return n
}

// TotalOccurrences returns the number of entries counted, the sum of
// frequency times count over all buckets.
func (h *Histogram) TotalOccurrences() int64 {
	var n int64
	for _, b := range h.buckets {
		n += b.Frequency * b.Count
	}
	return n
}

// Merge returns the union of a and b with counts summed where frequencies
// match. Either argument may be nil.
func Merge(a, b *Histogram) *Histogram {
	var x, y []Bucket
	if a != nil {
		x = a.buckets
	}
	if b != nil {
		y = b.buckets
	}
	out := &Histogram{buckets: make([]Bucket, 0, len(x)+len(y))}
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		switch {
		case x[i].Frequency < y[j].Frequency:
			out.buckets = append(out.buckets, x[i])
			i++
		case x[i].Frequency > y[j].Frequency:
			out.buckets = append(out.buckets, y[j])
			j++
		default:
			out.buckets = append(out.buckets, Bucket{Frequency: x[i].Frequency, Count: x[i].Count + y[j].Count})
			i++
			j++
		}
	}
	out.buckets = append(out.buckets, x[i:]...)
	out.buckets = append(out.buckets, y[j:]...)
	return out
}

// String renders one "frequency count" line per bucket.
func (h *Histogram) String() string {
	var sb strings.Builder
	for _, b := range h.buckets {
		fmt.Fprintf(&sb, "%d\t%d\n", b.Frequency, b.Count)
	}
	return sb.String()
}
