package seedindex

import (
	"fmt"

	seederrors "github.com/realtimegenomics/seedindex/errors"
	intbits "github.com/realtimegenomics/seedindex/internal/bits"
)

const (
	maxHashBits         = 64
	maxExtendedHashBits = 128

	// maxAddressBits bounds the initial-position table at 2^30+1 entries.
	maxAddressBits = 30

	maxBitVectorBits = 36
	bitVectorSlack   = 3
)

// Params holds the derived sizing of an index. It is computed once from the
// capacity, hash width and options and never changes afterwards.
type Params struct {
	Capacity      int64 // maximum number of entries
	HashBits      int   // significant bits per hash, 1..128
	AddressBits   int   // high hash bits selecting a bucket
	ResidualBits  int   // HashBits - AddressBits
	ValueBits     int   // stored value width in compressed indexes
	BitVectorBits int   // log2 of the occupancy vector length, 0 when disabled
	LowerBits     int   // bits of an extended hash held in ExtendedHash.Lower
	Compressed    bool
	TwoPass       bool
}

// NewParams derives index parameters without allocating an index. It is
// useful for estimating memory before committing to a build.
func NewParams(capacity int64, hashBits int, opts ...Option) (*Params, error) {
	return newParams(capacity, hashBits, newConfig(opts))
}

func newParams(capacity int64, hashBits int, cfg *config) (*Params, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d must be positive", seederrors.ErrInvalidArgument, capacity)
	}
	if hashBits < 1 || hashBits > maxExtendedHashBits {
		return nil, fmt.Errorf("%w: hash bits %d not in [1, %d]", seederrors.ErrInvalidArgument, hashBits, maxExtendedHashBits)
	}
	if cfg.valueBits < 1 || cfg.valueBits > 64 {
		return nil, fmt.Errorf("%w: value bits %d not in [1, 64]", seederrors.ErrInvalidArgument, cfg.valueBits)
	}

	p := &Params{
		Capacity:   capacity,
		HashBits:   hashBits,
		ValueBits:  cfg.valueBits,
		LowerBits:  64,
		Compressed: cfg.compressed,
		TwoPass:    cfg.twoPass,
	}

	if p.Extended() {
		// Upper must fit in one word.
		lowest := max(1, hashBits-64)
		if cfg.lowerBits < lowest || cfg.lowerBits > 64 {
			return nil, fmt.Errorf("%w: lower bits %d not in [%d, 64] for %d-bit hashes",
				seederrors.ErrInvalidArgument, cfg.lowerBits, lowest, hashBits)
		}
		p.LowerBits = cfg.lowerBits
	}

	limit := min(hashBits, maxAddressBits)
	switch {
	case cfg.addressBits < 0:
		p.AddressBits = min(intbits.BitsFor(uint64(capacity)), limit)
	case cfg.addressBits > limit:
		return nil, fmt.Errorf("%w: address bits %d exceed %d", seederrors.ErrInvalidArgument, cfg.addressBits, limit)
	default:
		p.AddressBits = cfg.addressBits
	}
	p.ResidualBits = hashBits - p.AddressBits

	if cfg.bitVector {
		p.BitVectorBits = min(intbits.BitsFor(uint64(capacity))+bitVectorSlack, maxBitVectorBits, p.foldBits())
	}
	return p, nil
}

// Extended reports whether hashes are wider than 64 bits.
func (p *Params) Extended() bool {
	return p.HashBits > maxHashBits
}

// Buckets returns the number of addressable buckets, 2^AddressBits.
func (p *Params) Buckets() int {
	return 1 << p.AddressBits
}

// foldBits is the width of the hash prefix fed to the occupancy vector.
func (p *Params) foldBits() int {
	return min(p.HashBits, maxHashBits)
}

// Bytes estimates the memory a frozen index built to capacity would use.
func (p *Params) Bytes() int64 {
	n := p.Capacity
	var keys, values int64
	if p.Compressed {
		keys = packedBytes(n, min(p.ResidualBits, 64)) + packedBytes(n, max(p.ResidualBits-64, 0))
		values = packedBytes(n, p.ValueBits)
	} else {
		keys = n * 8
		if p.Extended() {
			keys *= 2
		}
		values = n * 8
	}
	starts := (int64(p.Buckets()) + 1) * 8
	var vector int64
	if p.BitVectorBits > 0 {
		vector = ((int64(1) << p.BitVectorBits) + 63) / 64 * 8
	}
	return keys + values + starts + vector
}

func (p *Params) String() string {
	variant := "simple"
	if p.Compressed {
		variant = "compressed"
	}
	return fmt.Sprintf("%s capacity=%d hashBits=%d addressBits=%d residualBits=%d valueBits=%d bitVectorBits=%d twoPass=%t",
		variant, p.Capacity, p.HashBits, p.AddressBits, p.ResidualBits, p.ValueBits, p.BitVectorBits, p.TwoPass)
}

func packedBytes(n int64, width int) int64 {
	return (n*int64(width) + 63) / 64 * 8
}
