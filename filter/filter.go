// Package filter decides which hashes are too repetitive to keep in a seed
// index.
//
// A Policy sees the frequency histogram of the whole index before any
// decision is made, then answers KeepHash for every distinct hash. Hashes
// that are not kept are dropped with all their values; this is intended
// behaviour, not an error.
package filter

import (
	"fmt"
	"math"

	seederrors "github.com/realtimegenomics/seedindex/errors"
)

// Policy is a repeat-frequency filter.
//
// Initialize is called once, with the histogram of hash frequencies, before
// the first KeepHash call. For extended (wider than 64 bit) hashes, KeepHash
// receives the low 64 bits of the hash.
type Policy interface {
	Initialize(h *Histogram) error
	KeepHash(hash uint64, frequency int64) bool
	String() string
}

// Fixed keeps hashes that occur at most Threshold times.
type Fixed struct {
	Threshold int64
}

// NewFixed returns a fixed-threshold policy.
func NewFixed(threshold int64) *Fixed {
	return &Fixed{Threshold: threshold}
}

// Initialize is a no-op; a fixed threshold does not depend on the data.
func (f *Fixed) Initialize(*Histogram) error { return nil }

func (f *Fixed) KeepHash(_ uint64, frequency int64) bool {
	return frequency <= f.Threshold
}

func (f *Fixed) String() string {
	return fmt.Sprintf("fixed threshold=%d", f.Threshold)
}

// Proportional discards the most frequent hashes until at least Fraction of
// all occurrences are gone.
//
// Buckets are discarded whole, from the highest frequency down, so every
// hash with a given frequency shares one fate. The resulting cutoff is one
// less than the lowest discarded frequency.
type Proportional struct {
	Fraction float64

	cutoff      int64
	initialized bool
}

// NewProportional returns a policy discarding fraction of total occurrences.
// fraction must be in [0, 1].
func NewProportional(fraction float64) (*Proportional, error) {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return nil, fmt.Errorf("%w: discard fraction %v not in [0,1]", seederrors.ErrInvalidArgument, fraction)
	}
	return &Proportional{Fraction: fraction}, nil
}

// Initialize computes the cutoff from h.
func (p *Proportional) Initialize(h *Histogram) error {
	if h == nil {
		return fmt.Errorf("%w: proportional filter needs a histogram", seederrors.ErrInvalidArgument)
	}
	p.cutoff = Cutoff(h, p.Fraction)
	p.initialized = true
	return nil
}

// KeepHash reports whether frequency is at or below the cutoff. Before
// Initialize every hash is kept.
func (p *Proportional) KeepHash(_ uint64, frequency int64) bool {
	return !p.initialized || frequency <= p.cutoff
}

// Threshold returns the computed cutoff, or an error before Initialize.
func (p *Proportional) Threshold() (int64, error) {
	if !p.initialized {
		return 0, fmt.Errorf("%w: proportional filter not initialized", seederrors.ErrIllegalState)
	}
	return p.cutoff, nil
}

func (p *Proportional) String() string {
	if !p.initialized {
		return fmt.Sprintf("proportional fraction=%g", p.Fraction)
	}
	return fmt.Sprintf("proportional fraction=%g threshold=%d", p.Fraction, p.cutoff)
}

// Cutoff returns the highest frequency to keep so that hashes above it
// account for at least fraction of all occurrences in h. When nothing needs
// discarding the cutoff is math.MaxInt64.
func Cutoff(h *Histogram, fraction float64) int64 {
	budget := fraction * float64(h.TotalOccurrences())
	if budget <= 0 {
		return math.MaxInt64
	}
	var discarded float64
	for i := h.Len() - 1; i >= 0; i-- {
		b := h.At(i)
		discarded += float64(b.Frequency) * float64(b.Count)
		if discarded >= budget {
			return b.Frequency - 1
		}
	}
	return 0
}
