package seedindex

import (
	"encoding/binary"
	"fmt"

	seederrors "github.com/realtimegenomics/seedindex/errors"
	intbits "github.com/realtimegenomics/seedindex/internal/bits"
)

// minExtendedKeySize is the byte length ExtendedFromBytes consumes.
const minExtendedKeySize = 16

// ExtendedHash is a hash wider than 64 bits. Lower holds the low LowerBits
// bits and Upper the remaining high bits; bits beyond those widths are
// ignored.
type ExtendedHash struct {
	Upper uint64
	Lower uint64
}

func (h ExtendedHash) String() string {
	return fmt.Sprintf("%016x:%016x", h.Upper, h.Lower)
}

// ExtendedFromBytes reads an extended hash from the first 16 bytes of key:
// bytes 0-7 are Lower and bytes 8-15 are Upper, both little-endian.
func ExtendedFromBytes(key []byte) (ExtendedHash, error) {
	if len(key) < minExtendedKeySize {
		return ExtendedHash{}, fmt.Errorf("%w: extended hash needs %d bytes, got %d",
			seederrors.ErrInvalidArgument, minExtendedKeySize, len(key))
	}
	return ExtendedHash{
		Lower: binary.LittleEndian.Uint64(key[0:8]),
		Upper: binary.LittleEndian.Uint64(key[8:16]),
	}, nil
}

// Internally every hash is a 128-bit (hi, lo) pair masked to HashBits.

// canonical64 converts a 64-bit hash. On an extended index it is the Lower
// word of an ExtendedHash with Upper zero.
func (p *Params) canonical64(hash uint64) (uint64, uint64) {
	if p.Extended() {
		return p.canonical(ExtendedHash{Lower: hash})
	}
	return 0, hash & intbits.Mask(p.HashBits)
}

func (p *Params) canonical(h ExtendedHash) (uint64, uint64) {
	lower := h.Lower & intbits.Mask(p.LowerBits)
	hi, lo := intbits.Shl128(0, h.Upper, uint(p.LowerBits))
	return intbits.Mask128(hi, lo|lower, p.HashBits)
}

func (p *Params) external(hi, lo uint64) ExtendedHash {
	_, upper := intbits.Shr128(hi, lo, uint(p.LowerBits))
	return ExtendedHash{Upper: upper, Lower: lo & intbits.Mask(p.LowerBits)}
}

func (p *Params) address(hi, lo uint64) uint64 {
	_, a := intbits.Shr128(hi, lo, uint(p.ResidualBits))
	return a
}

func (p *Params) residual(hi, lo uint64) (uint64, uint64) {
	return intbits.Mask128(hi, lo, p.ResidualBits)
}

func (p *Params) join(address, rhi, rlo uint64) (uint64, uint64) {
	hi, lo := intbits.Shl128(0, address, uint(p.ResidualBits))
	return hi | rhi, lo | rlo
}

// top64 returns the highest 64 significant bits, the prefix folded into the
// occupancy vector.
func (p *Params) top64(hi, lo uint64) uint64 {
	if !p.Extended() {
		return lo
	}
	_, top := intbits.Shr128(hi, lo, uint(p.HashBits-maxHashBits))
	return top
}

// Position returns the bucket a hash is stored in.
func (p *Params) Position(hash uint64) uint64 {
	return p.address(p.canonical64(hash))
}

// CompressHash returns the residual bits a compressed index stores for hash.
func (p *Params) CompressHash(hash uint64) uint64 {
	_, r := p.residual(p.canonical64(hash))
	return r
}

// DecompressHash rebuilds a hash from its bucket and residual.
// DecompressHash(Position(h), CompressHash(h)) == h for every h that fits in
// HashBits.
func (p *Params) DecompressHash(position, residual uint64) uint64 {
	_, lo := p.join(position, 0, residual&intbits.Mask(min(p.ResidualBits, 64)))
	return lo
}

// PositionExtended returns the bucket an extended hash is stored in.
func (p *Params) PositionExtended(h ExtendedHash) uint64 {
	return p.address(p.canonical(h))
}

// CompressHashExtended returns the residual of an extended hash, split
// between Upper and Lower the same way as its input.
func (p *Params) CompressHashExtended(h ExtendedHash) ExtendedHash {
	return p.external(p.residual(p.canonical(h)))
}

// DecompressHashExtended rebuilds an extended hash from its bucket and
// residual.
func (p *Params) DecompressHashExtended(position uint64, residual ExtendedHash) ExtendedHash {
	rhi, rlo := p.residual(p.canonical(residual))
	return p.external(p.join(position, rhi, rlo))
}
