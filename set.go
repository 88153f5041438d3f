package seedindex

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	seederrors "github.com/realtimegenomics/seedindex/errors"
)

// Set is a fixed-size collection of independent indexes, typically one per
// seed position or query frame. Indexes are built by their callers (each
// from a single goroutine) and created or frozen in parallel by the set.
type Set struct {
	indexes []*Index
	logger  *slog.Logger
}

// setJob is one unit of work for a set worker.
type setJob struct {
	id int
}

// NewSet creates n empty indexes sharing the same capacity, hash width and
// options, constructing them on up to workers goroutines. Options are
// applied to each index separately, so every index gets its own filter
// unless WithFilter supplies a shared one.
func NewSet(ctx context.Context, n, workers int, capacity int64, hashBits int, opts ...Option) (*Set, error) {
	return NewSetFunc(ctx, n, workers, func(int) (*Index, error) {
		return New(capacity, hashBits, opts...)
	}, opts...)
}

// NewSetFunc creates n indexes by calling factory for each id on up to
// workers goroutines. Only WithLogger is read from opts.
func NewSetFunc(ctx context.Context, n, workers int, factory func(id int) (*Index, error), opts ...Option) (*Set, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: set size %d is negative", seederrors.ErrInvalidArgument, n)
	}
	s := &Set{
		indexes: make([]*Index, n),
		logger:  newConfig(opts).logger,
	}
	err := s.run(ctx, "create", workers, func(_ context.Context, id int) error {
		idx, err := factory(id)
		if err != nil {
			return err
		}
		s.indexes[id] = idx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewSetOf wraps already constructed indexes. Only WithLogger is read from
// opts.
func NewSetOf(indexes []*Index, opts ...Option) *Set {
	return &Set{
		indexes: indexes,
		logger:  newConfig(opts).logger,
	}
}

// Size returns the number of indexes.
func (s *Set) Size() int {
	return len(s.indexes)
}

// Get returns index i.
func (s *Set) Get(i int) (*Index, error) {
	if i < 0 || i >= len(s.indexes) {
		return nil, fmt.Errorf("%w: %d:%d", seederrors.ErrBoundsViolation, i, len(s.indexes))
	}
	return s.indexes[i], nil
}

// All returns every index in id order.
func (s *Set) All() []*Index {
	return s.indexes
}

// Freeze freezes every index on up to workers goroutines. The first failure
// cancels the remaining jobs and is returned. Each index is frozen by
// exactly one goroutine.
func (s *Set) Freeze(ctx context.Context, workers int) error {
	return s.run(ctx, "freeze", workers, func(ctx context.Context, id int) error {
		return s.indexes[id].Freeze(ctx)
	})
}

// Bytes returns the memory held by all indexes.
func (s *Set) Bytes() int64 {
	var b int64
	for _, idx := range s.indexes {
		b += idx.Bytes()
	}
	return b
}

// NumberEntries returns the total entries across all indexes.
func (s *Set) NumberEntries() int64 {
	var n int64
	for _, idx := range s.indexes {
		n += idx.NumberEntries()
	}
	return n
}

// run executes fn for every index id on a pool of worker goroutines fed
// from a job channel.
func (s *Set) run(ctx context.Context, name string, workers int, fn func(ctx context.Context, id int) error) error {
	n := len(s.indexes)
	if n == 0 {
		return nil
	}
	workers = min(max(workers, 1), n)

	jobs := make(chan setJob, n)
	for id := range n {
		jobs <- setJob{id: id}
	}
	close(jobs)

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			s.logger.Debug("worker created", "pool", name, "worker", w)
			return s.runWorker(gctx, name, jobs, fn)
		})
	}
	return g.Wait()
}

func (s *Set) runWorker(ctx context.Context, name string, jobs <-chan setJob, fn func(ctx context.Context, id int) error) error {
	for job := range jobs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.logger.Debug("start "+name+" job", "job", job.id)
		if err := fn(ctx, job.id); err != nil {
			return fmt.Errorf("%s index %d: %w", name, job.id, err)
		}
	}
	return nil
}
