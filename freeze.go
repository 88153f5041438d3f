package seedindex

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/realtimegenomics/seedindex/filter"
	"github.com/realtimegenomics/seedindex/internal/sorter"
)

// sortPending sorts single-pass entries by hash then value and returns the
// frequency histogram of the sorted hashes.
func sortPending(ctx context.Context, pd *pending, workers int) (*filter.Histogram, error) {
	n := pd.Len()
	if n > 0 {
		if err := sorter.SortParallel(ctx, pd.sortable(), 0, n, workers); err != nil {
			return nil, err
		}
	}
	return filter.FromCounts(runHistogram(pd, []int64{0, n})), nil
}

// bucketSpan is a half-open range of bucket numbers.
type bucketSpan struct {
	lo, hi int
}

// sortBuckets sorts every bucket of a two-pass table on up to workers
// goroutines, then computes the frequency histogram. Buckets are split into
// spans of similar entry counts whose partial histograms are counted
// concurrently and merged once all spans finish.
func sortBuckets(ctx context.Context, t *table, starts []int64, workers int) (*filter.Histogram, error) {
	workers = max(workers, 1)
	buckets := len(starts) - 1
	ranges := make([]sorter.Range, buckets)
	for a := range buckets {
		ranges[a] = sorter.Range{Start: starts[a], Length: starts[a+1] - starts[a]}
	}
	if err := sorter.SortRanges(ctx, t, ranges, workers); err != nil {
		return nil, err
	}

	spans := splitBuckets(starts, workers)
	partial := make([]*filter.Histogram, len(spans))
	var g errgroup.Group
	g.SetLimit(workers)
	for si, span := range spans {
		g.Go(func() error {
			partial[si] = filter.FromCounts(runHistogram(t, starts[span.lo:span.hi+1]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hist := filter.NewHistogram()
	for _, h := range partial {
		hist = filter.Merge(hist, h)
	}
	return hist, nil
}

// splitBuckets groups consecutive buckets into at most about workers spans
// holding similar numbers of entries.
func splitBuckets(starts []int64, workers int) []bucketSpan {
	buckets := len(starts) - 1
	if workers <= 1 || buckets <= 1 {
		return []bucketSpan{{0, buckets}}
	}
	target := max(starts[buckets]/int64(workers), 1)
	var spans []bucketSpan
	lo := 0
	for a := range buckets {
		if starts[a+1]-starts[lo] >= target {
			spans = append(spans, bucketSpan{lo, a + 1})
			lo = a + 1
		}
	}
	if lo < buckets {
		spans = append(spans, bucketSpan{lo, buckets})
	}
	return spans
}

// forEachRun calls fn for every maximal run [s, e) of equal keys in the
// sorted range [start, end).
func forEachRun(t runTable, start, end int64, fn func(s, e int64)) {
	for s := start; s < end; {
		e := s + 1
		for e < end && t.same(s, e) {
			e++
		}
		fn(s, e)
		s = e
	}
}

// runHistogram counts runs by length. bounds are bucket boundaries; runs
// never cross a boundary, since equal stored keys in different buckets are
// different hashes.
func runHistogram(t runTable, bounds []int64) map[int64]int64 {
	counts := make(map[int64]int64)
	for b := 0; b+1 < len(bounds); b++ {
		forEachRun(t, bounds[b], bounds[b+1], func(s, e int64) {
			counts[e-s]++
		})
	}
	return counts
}

// compact removes every run that keep rejects, shifting survivors down, and
// rewrites bounds to the new bucket boundaries. keep receives the bucket,
// the run's first position and its length. It returns the surviving entry
// and run counts.
func compact(t runTable, bounds []int64, keep func(bucket int, i, frequency int64) bool) (int64, int64) {
	var w, runs int64
	for b := 0; b+1 < len(bounds); b++ {
		start, end := bounds[b], bounds[b+1]
		bounds[b] = w
		forEachRun(t, start, end, func(s, e int64) {
			if !keep(b, s, e-s) {
				return
			}
			for i := s; i < e; i++ {
				t.move(w, i)
				w++
			}
			runs++
		})
	}
	bounds[len(bounds)-1] = w
	return w, runs
}
