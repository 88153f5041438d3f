package bitvec

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
	seederrors "github.com/realtimegenomics/seedindex/errors"
)

const (
	// renderRow is the number of bits per line in String output.
	renderRow = 100
	// renderGroup is the number of bits between spaces in String output.
	renderGroup = 10
)

// BitVector is a fixed-length array of bits.
type BitVector struct {
	set    *bitset.BitSet
	length int64
}

// New creates a zeroed BitVector of length bits.
func New(length int64) (*BitVector, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: bit vector length %d", seederrors.ErrInvalidArgument, length)
	}
	return &BitVector{
		set:    bitset.New(uint(length)),
		length: length,
	}, nil
}

// Length returns the number of addressable bits.
func (v *BitVector) Length() int64 {
	return v.length
}

// Bytes returns the memory held by the bit storage, rounded up to whole
// 64-bit words.
func (v *BitVector) Bytes() int64 {
	return (v.length + 63) / 64 * 8
}

// Get reports whether bit i is set.
func (v *BitVector) Get(i int64) (bool, error) {
	if err := CheckIndex(i, v.length); err != nil {
		return false, err
	}
	return v.set.Test(uint(i)), nil
}

// Set sets bit i.
func (v *BitVector) Set(i int64) error {
	if err := CheckIndex(i, v.length); err != nil {
		return err
	}
	v.set.Set(uint(i))
	return nil
}

// Reset clears bit i.
func (v *BitVector) Reset(i int64) error {
	if err := CheckIndex(i, v.length); err != nil {
		return err
	}
	v.set.Clear(uint(i))
	return nil
}

// Count returns the number of set bits.
func (v *BitVector) Count() int64 {
	return int64(v.set.Count())
}

// test and mark skip bounds checks; callers guarantee 0 <= i < length.
func (v *BitVector) test(i int64) bool {
	return v.set.Test(uint(i))
}

func (v *BitVector) mark(i int64) {
	v.set.Set(uint(i))
}

// String renders the vector for diagnostics: rows of 100 bits in groups of
// ten, each row prefixed with the index of its first bit.
func (v *BitVector) String() string {
	var sb strings.Builder
	for row := int64(0); row < v.length; row += renderRow {
		fmt.Fprintf(&sb, "[%d]", row)
		rowEnd := min(row+renderRow, v.length)
		for g := row; g < rowEnd; g += renderGroup {
			sb.WriteByte(' ')
			for i := g; i < min(g+renderGroup, rowEnd); i++ {
				if v.set.Test(uint(i)) {
					sb.WriteByte('1')
				} else {
					sb.WriteByte('0')
				}
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
