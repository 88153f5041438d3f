// Package bits provides low-level bit manipulation primitives for hash
// address and residual extraction, including 128-bit shifts over
// (hi, lo) word pairs for extended hashes.
package bits

import "math/bits"

// Mask returns a word with the low n bits set. n >= 64 yields all ones.
func Mask(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(n)) - 1
}

// BitsFor returns the number of bits needed to address n distinct slots,
// i.e. ceil(log2(n)). BitsFor(0) and BitsFor(1) are 0.
func BitsFor(n uint64) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(n - 1)
}

// Shr128 shifts the 128-bit value (hi, lo) right by n bits.
// Shifts of 128 or more yield zero.
func Shr128(hi, lo uint64, n uint) (uint64, uint64) {
	switch {
	case n >= 128:
		return 0, 0
	case n >= 64:
		return 0, hi >> (n - 64)
	default:
		// Go defines x<<64 == 0, so n == 0 needs no special case.
		return hi >> n, lo>>n | hi<<(64-n)
	}
}

// Shl128 shifts the 128-bit value (hi, lo) left by n bits, discarding
// bits shifted past bit 127.
func Shl128(hi, lo uint64, n uint) (uint64, uint64) {
	switch {
	case n >= 128:
		return 0, 0
	case n >= 64:
		return lo << (n - 64), 0
	default:
		return hi<<n | lo>>(64-n), lo << n
	}
}

// Mask128 keeps the low n bits of the 128-bit value (hi, lo).
func Mask128(hi, lo uint64, n int) (uint64, uint64) {
	switch {
	case n >= 128:
		return hi, lo
	case n >= 64:
		return hi & Mask(n-64), lo
	default:
		return 0, lo & Mask(n)
	}
}

// Compare128 compares two 128-bit values and returns -1, 0 or +1.
func Compare128(ahi, alo, bhi, blo uint64) int {
	switch {
	case ahi < bhi:
		return -1
	case ahi > bhi:
		return 1
	case alo < blo:
		return -1
	case alo > blo:
		return 1
	}
	return 0
}
