package seedindex

import (
	"fmt"

	"github.com/realtimegenomics/seedindex/internal/bitvec"
)

// Variant identifies the storage layout of an index.
type Variant uint8

const (
	// VariantSimple stores every hash in full, one word per entry.
	VariantSimple Variant = 0

	// VariantCompressed stores only the residual hash bits and bit-packs
	// values, recovering the address bits from the bucket.
	VariantCompressed Variant = 1
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantSimple:
		return "simple"
	case VariantCompressed:
		return "compressed"
	default:
		return "unknown"
	}
}

// layout maps between full hashes and the keys a table stores.
//
// Both layouts keep entries grouped by bucket and sorted by key within a
// bucket. The simple layout stores the full hash, so its keys sort the same
// way globally; the compressed layout stores residuals, which only sort
// correctly inside one bucket.
type layout interface {
	variant() Variant

	// newTable allocates storage for n entries.
	newTable(n int64) (*table, error)

	// key returns the stored form of the canonical hash (hi, lo).
	key(hi, lo uint64) (uint64, uint64)

	// hash rebuilds the canonical hash from a bucket and a stored key.
	hash(address, khi, klo uint64) (uint64, uint64)
}

func newLayout(p *Params) layout {
	if p.Compressed {
		return compressedLayout{p: p}
	}
	return simpleLayout{p: p}
}

type simpleLayout struct {
	p *Params
}

func (simpleLayout) variant() Variant { return VariantSimple }

func (l simpleLayout) newTable(n int64) (*table, error) {
	t := &table{
		lo:      make(wordColumn, n),
		value:   make(wordColumn, n),
		n:       n,
		aligned: true,
	}
	if l.p.Extended() {
		t.hi = make(wordColumn, n)
	}
	return t, nil
}

func (simpleLayout) key(hi, lo uint64) (uint64, uint64) { return hi, lo }

func (simpleLayout) hash(_, khi, klo uint64) (uint64, uint64) { return khi, klo }

type compressedLayout struct {
	p *Params
}

func (compressedLayout) variant() Variant { return VariantCompressed }

func (l compressedLayout) newTable(n int64) (*table, error) {
	loBits := min(l.p.ResidualBits, 64)
	hiBits := l.p.ResidualBits - loBits

	lo, err := newPackedColumn(n, loBits)
	if err != nil {
		return nil, fmt.Errorf("allocate residual column: %w", err)
	}
	value, err := newPackedColumn(n, l.p.ValueBits)
	if err != nil {
		return nil, fmt.Errorf("allocate value column: %w", err)
	}
	t := &table{lo: lo, value: value, n: n}
	aligned := wordAligned(loBits) && wordAligned(l.p.ValueBits)
	if hiBits > 0 {
		hi, err := newPackedColumn(n, hiBits)
		if err != nil {
			return nil, fmt.Errorf("allocate upper residual column: %w", err)
		}
		t.hi = hi
		aligned = aligned && wordAligned(hiBits)
	}
	t.aligned = aligned
	return t, nil
}

func (l compressedLayout) key(hi, lo uint64) (uint64, uint64) {
	return l.p.residual(hi, lo)
}

func (l compressedLayout) hash(address, khi, klo uint64) (uint64, uint64) {
	return l.p.join(address, khi, klo)
}

// wordAligned reports whether cells of this width never share a word, so
// distinct cells may be written concurrently.
func wordAligned(width int) bool {
	return width == 0 || width == 64
}

func newPackedColumn(n int64, width int) (packedColumn, error) {
	c, err := bitvec.NewCells(n, width)
	if err != nil {
		return packedColumn{}, err
	}
	return packedColumn{cells: c}, nil
}
