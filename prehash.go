package seedindex

import (
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// PreHash hashes an arbitrary key to a hashBits-wide value using xxHash3.
//
// Seed hashes from a k-mer encoder are already well distributed and can be
// added directly. Use PreHash for keys that are not, such as raw sequence
// bytes or names, so that the high address bits spread evenly over the
// buckets. The top hashBits bits of the 64-bit digest are kept.
//
//	idx.Add(seedindex.PreHash(kmer, idx.Params().HashBits), pos)
func PreHash(key []byte, hashBits int) uint64 {
	h := xxh3.Hash(key)
	if hashBits <= 0 {
		return 0
	}
	if hashBits >= 64 {
		return h
	}
	return h >> uint(64-hashBits)
}

// PreHashExtended hashes an arbitrary key to 128 bits using MurmurHash3,
// for indexes with more than 64 hash bits. Upper holds the first digest
// word and Lower the second; an index ignores bits beyond its widths.
func PreHashExtended(key []byte) ExtendedHash {
	h1, h2 := murmur3.Sum128(key)
	return ExtendedHash{Upper: h1, Lower: h2}
}
