package bitvec

import (
	"fmt"

	seederrors "github.com/realtimegenomics/seedindex/errors"
)

// maxVectorBits bounds the folded address space so the backing vector can
// be allocated.
const maxVectorBits = 62

// HashBitVector maps hashes of a given bit width onto a vector of
// 2^vectorBits bits by keeping the high vectorBits bits of the hash.
type HashBitVector struct {
	vec        *BitVector
	bits       int
	vectorBits int
	shift      uint
}

// NewHashBitVector creates a vector for bits-wide hashes folded onto
// 2^vectorBits addresses.
func NewHashBitVector(bits, vectorBits int) (*HashBitVector, error) {
	if bits < 0 || bits > 64 {
		return nil, fmt.Errorf("%w: hash bits %d not in [0,64]", seederrors.ErrInvalidArgument, bits)
	}
	if vectorBits < 0 || vectorBits > maxVectorBits {
		return nil, fmt.Errorf("%w: vector bits %d not in [0,%d]", seederrors.ErrInvalidArgument, vectorBits, maxVectorBits)
	}
	vec, err := New(int64(1) << uint(vectorBits))
	if err != nil {
		return nil, err
	}
	return &HashBitVector{
		vec:        vec,
		bits:       bits,
		vectorBits: vectorBits,
		shift:      uint(max(bits-vectorBits, 0)),
	}, nil
}

// Fold returns the vector address of hash. The shift is unsigned, so hashes
// with the top bit set fold like any other.
func (h *HashBitVector) Fold(hash uint64) uint64 {
	return hash >> h.shift
}

func (h *HashBitVector) address(hash uint64) (int64, error) {
	a := h.Fold(hash)
	if a >= uint64(h.vec.length) {
		return 0, fmt.Errorf("%w: %d:%d", seederrors.ErrBoundsViolation, a, h.vec.length)
	}
	return int64(a), nil
}

// Get reports whether the address hash folds to is set.
func (h *HashBitVector) Get(hash uint64) (bool, error) {
	a, err := h.address(hash)
	if err != nil {
		return false, err
	}
	return h.vec.test(a), nil
}

// Set sets the address hash folds to.
func (h *HashBitVector) Set(hash uint64) error {
	a, err := h.address(hash)
	if err != nil {
		return err
	}
	h.vec.mark(a)
	return nil
}

// GetDirect reads an already folded address.
func (h *HashBitVector) GetDirect(addr int64) (bool, error) {
	return h.vec.Get(addr)
}

// SetDirect sets an already folded address.
func (h *HashBitVector) SetDirect(addr int64) error {
	return h.vec.Set(addr)
}

// MayContain is the unchecked query used on the search path. Hashes that
// fold outside the vector are reported absent.
func (h *HashBitVector) MayContain(hash uint64) bool {
	a := h.Fold(hash)
	return a < uint64(h.vec.length) && h.vec.test(int64(a))
}

// Bits returns the hash width the vector was created for.
func (h *HashBitVector) Bits() int { return h.bits }

// VectorBits returns log2 of the vector length.
func (h *HashBitVector) VectorBits() int { return h.vectorBits }

// Length returns the number of addressable bits.
func (h *HashBitVector) Length() int64 { return h.vec.length }

// Bytes returns the memory held by the vector.
func (h *HashBitVector) Bytes() int64 { return h.vec.Bytes() }

// Count returns the number of set addresses.
func (h *HashBitVector) Count() int64 { return h.vec.Count() }

func (h *HashBitVector) String() string {
	return h.vec.String()
}
