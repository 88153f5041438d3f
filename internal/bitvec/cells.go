package bitvec

import (
	"fmt"

	seederrors "github.com/realtimegenomics/seedindex/errors"
)

// Cells is a packed array of fixed-width unsigned integers. A cell may
// straddle two words. Width 0 stores nothing and reads back zero.
//
// Get, Set and Swap do not bounds check; callers validate positions with
// CheckIndex. Cells is not safe for concurrent writers, even to distinct
// cells, because neighbouring cells can share a word.
type Cells struct {
	words  []uint64
	width  int
	length int64
	mask   uint64
}

// NewCells allocates length zeroed cells of width bits each.
func NewCells(length int64, width int) (*Cells, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: cell count %d", seederrors.ErrInvalidArgument, length)
	}
	if width < 0 || width > 64 {
		return nil, fmt.Errorf("%w: cell width %d not in [0,64]", seederrors.ErrInvalidArgument, width)
	}
	c := &Cells{width: width, length: length}
	if width > 0 {
		c.words = make([]uint64, (length*int64(width)+63)/64)
		if width == 64 {
			c.mask = ^uint64(0)
		} else {
			c.mask = (uint64(1) << uint(width)) - 1
		}
	}
	return c, nil
}

// Len returns the number of cells.
func (c *Cells) Len() int64 { return c.length }

// Width returns the bits per cell.
func (c *Cells) Width() int { return c.width }

// Bytes returns the memory held by the packed words.
func (c *Cells) Bytes() int64 { return int64(len(c.words)) * 8 }

// Get returns cell i.
func (c *Cells) Get(i int64) uint64 {
	if c.width == 0 {
		return 0
	}
	pos := uint64(i) * uint64(c.width)
	w := pos >> 6
	off := uint(pos & 63)
	v := c.words[w] >> off
	if off+uint(c.width) > 64 {
		v |= c.words[w+1] << (64 - off)
	}
	return v & c.mask
}

// Set stores the low Width() bits of v in cell i.
func (c *Cells) Set(i int64, v uint64) {
	if c.width == 0 {
		return
	}
	v &= c.mask
	pos := uint64(i) * uint64(c.width)
	w := pos >> 6
	off := uint(pos & 63)
	c.words[w] = c.words[w]&^(c.mask<<off) | v<<off
	if off+uint(c.width) > 64 {
		written := 64 - off
		c.words[w+1] = c.words[w+1]&^(c.mask>>written) | v>>written
	}
}

// Swap exchanges cells i and j.
func (c *Cells) Swap(i, j int64) {
	if c.width == 0 {
		return
	}
	vi := c.Get(i)
	c.Set(i, c.Get(j))
	c.Set(j, vi)
}
