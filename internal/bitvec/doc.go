// Package bitvec provides the fixed-length storage primitives of the index:
// a bounds-checked BitVector, a HashBitVector that folds wide hashes onto a
// smaller address space, and Cells, a packed arena of fixed-width unsigned
// integers used for compressed hash residuals and values.
//
// CheckIndex is the single bounds check shared by every accessor here and by
// the index's positional accessors.
package bitvec
