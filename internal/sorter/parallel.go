package sorter

import (
	"context"
	"fmt"

	seederrors "github.com/realtimegenomics/seedindex/errors"
	"golang.org/x/sync/errgroup"
)

// parallelCutoff is the segment length below which a segment is finished
// on the current goroutine instead of being partitioned for handoff.
const parallelCutoff = 1 << 14

// Range is a contiguous sub-range [Start, Start+Length).
type Range struct {
	Start  int64
	Length int64
}

// SortParallel sorts data[start, start+length) with up to workers
// goroutines. Each partition step hands its lower side to an idle worker
// when one is free, so workers sort disjoint sub-ranges.
//
// data must tolerate concurrent Swap and Less calls on disjoint positions.
func SortParallel(ctx context.Context, data Interface, start, length int64, workers int) error {
	if err := checkRange(data.Len(), start, length); err != nil {
		return err
	}
	if workers <= 1 || length <= parallelCutoff {
		quickSort(data, start, start+length)
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var run func(lo, hi int64) error
	run = func(lo, hi int64) error {
		for hi-lo > parallelCutoff {
			if err := gctx.Err(); err != nil {
				return err
			}
			lt, gt := partition(data, lo, hi)
			l, h := lo, lt
			if !g.TryGo(func() error { return run(l, h) }) {
				if err := run(l, h); err != nil {
					return err
				}
			}
			lo = gt
		}
		quickSort(data, lo, hi)
		return nil
	}

	g.Go(func() error { return run(start, start+length) })
	return g.Wait()
}

// SortRanges sorts each of the disjoint ranges independently using up to
// workers goroutines. Ranges of length 0 or 1 are already sorted and are
// skipped; negative lengths and out-of-bounds ranges are rejected before any
// sorting starts.
//
// With workers > 1, data must tolerate concurrent Swap and Less calls on
// disjoint positions.
func SortRanges(ctx context.Context, data Interface, ranges []Range, workers int) error {
	n := data.Len()
	for _, r := range ranges {
		if r.Length < 0 {
			return fmt.Errorf("%w: sort length %d is negative", seederrors.ErrInvalidArgument, r.Length)
		}
		if r.Length > 0 {
			if err := checkRange(n, r.Start, r.Length); err != nil {
				return err
			}
		}
	}

	if workers <= 1 {
		for _, r := range ranges {
			if err := ctx.Err(); err != nil {
				return err
			}
			if r.Length > 1 {
				quickSort(data, r.Start, r.Start+r.Length)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, r := range ranges {
		if r.Length <= 1 {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			quickSort(data, r.Start, r.Start+r.Length)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
