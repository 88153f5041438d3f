package seedindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Stats is a snapshot of an index's size and query counters.
type Stats struct {
	Variant       string `json:"variant"`
	State         string `json:"state"`
	Capacity      int64  `json:"capacity"`
	HashBits      int    `json:"hash_bits"`
	AddressBits   int    `json:"address_bits"`
	ResidualBits  int    `json:"residual_bits"`
	ValueBits     int    `json:"value_bits"`
	BitVectorBits int    `json:"bit_vector_bits"`
	Entries       int64  `json:"entries"`
	Hashes        int64  `json:"hashes"`
	Bytes         int64  `json:"bytes"`
	Filter        string `json:"filter"`
	Searches      int64  `json:"searches"`
	Rejected      int64  `json:"rejected"`
	Matched       int64  `json:"matched"`
}

// NumberEntries returns the number of stored entries once frozen, or the
// number added so far in the current pass.
func (idx *Index) NumberEntries() int64 {
	switch idx.state {
	case stateFrozen:
		return idx.table.n
	case stateAdding:
		return idx.pending.Len()
	default:
		return idx.added
	}
}

// NumberHashes returns the number of distinct hashes kept, or 0 before the
// index is frozen.
func (idx *Index) NumberHashes() int64 {
	return idx.hashes
}

// Bytes returns the memory currently held by the index.
func (idx *Index) Bytes() int64 {
	var b int64
	if idx.pending != nil {
		b += idx.pending.bytes()
	}
	b += int64(len(idx.counts)) * 8
	if idx.table != nil {
		b += idx.table.bytes()
	}
	b += int64(len(idx.starts)) * 8
	if idx.bitVector != nil {
		b += idx.bitVector.Bytes()
	}
	return b
}

// Stats returns a snapshot of the index's sizes and query counters.
func (idx *Index) Stats() Stats {
	p := idx.params
	return Stats{
		Variant:       idx.layout.variant().String(),
		State:         idx.state.String(),
		Capacity:      p.Capacity,
		HashBits:      p.HashBits,
		AddressBits:   p.AddressBits,
		ResidualBits:  p.ResidualBits,
		ValueBits:     p.ValueBits,
		BitVectorBits: p.BitVectorBits,
		Entries:       idx.NumberEntries(),
		Hashes:        idx.hashes,
		Bytes:         idx.Bytes(),
		Filter:        idx.policy.String(),
		Searches:      idx.searches.Load(),
		Rejected:      idx.rejected.Load(),
		Matched:       idx.matched.Load(),
	}
}

func (idx *Index) String() string {
	return fmt.Sprintf("Index[%s] %s entries=%d hashes=%d bytes=%d",
		idx.state, idx.params, idx.NumberEntries(), idx.hashes, idx.Bytes())
}

// InfoString describes memory use per component, the hash frequency
// histogram seen at freeze and the repeat filter.
func (idx *Index) InfoString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", idx)
	sb.WriteString("Memory Usage\n")
	if idx.table != nil {
		if idx.table.hi != nil {
			fmt.Fprintf(&sb, "\t%d\tupper hash bits\n", idx.table.hi.bytes())
		}
		fmt.Fprintf(&sb, "\t%d\thash bits\n", idx.table.lo.bytes())
		fmt.Fprintf(&sb, "\t%d\tvalues\n", idx.table.value.bytes())
	}
	if idx.pending != nil {
		fmt.Fprintf(&sb, "\t%d\tpending\n", idx.pending.bytes())
	}
	if len(idx.counts) > 0 {
		fmt.Fprintf(&sb, "\t%d\tbucket counts\n", len(idx.counts)*8)
	}
	fmt.Fprintf(&sb, "\t%d\tinitial positions\n", len(idx.starts)*8)
	if idx.bitVector != nil {
		fmt.Fprintf(&sb, "\t%d\tbit vector\n", idx.bitVector.Bytes())
	}
	fmt.Fprintf(&sb, "\t%d\ttotal\n", idx.Bytes())
	fmt.Fprintf(&sb, "Filter: %s\n", idx.policy)
	if idx.histogram != nil && idx.histogram.Len() > 0 {
		sb.WriteString("Hash frequency histogram\n")
		sb.WriteString("frequency\tcount\n")
		sb.WriteString(idx.histogram.String())
	}
	return sb.String()
}

// PerfString reports the query counters.
func (idx *Index) PerfString() string {
	searches := idx.searches.Load()
	rejected := idx.rejected.Load()
	matched := idx.matched.Load()
	return fmt.Sprintf("Searches=%d BitVectorRejected=%d Matched=%d Missed=%d",
		searches, rejected, matched, searches-rejected-matched)
}

// DumpValues writes the bucket start table and every entry as text.
func (idx *Index) DumpValues(w io.Writer) error {
	if err := idx.checkFrozen(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Initial positions")
	for a := range idx.params.Buckets() {
		if idx.starts[a+1] > idx.starts[a] {
			fmt.Fprintf(bw, "[%d]\t%d\n", a, idx.starts[a])
		}
	}
	fmt.Fprintln(bw, "Entries")
	pos := int64(0)
	idx.scan(func(hi, lo uint64, value int64) bool {
		if idx.params.Extended() {
			fmt.Fprintf(bw, "[%d]\t%016x%016x\t%d\n", pos, hi, lo, value)
		} else {
			fmt.Fprintf(bw, "[%d]\t%016x\t%d\n", pos, lo, value)
		}
		pos++
		return true
	})
	return bw.Flush()
}

// Checksum returns an xxHash64 digest over every (hash, value) entry in
// storage order. Indexes with the same content have the same checksum
// whatever their layout or construction mode.
func (idx *Index) Checksum() (uint64, error) {
	if err := idx.checkFrozen(); err != nil {
		return 0, err
	}
	d := xxhash.New()
	var buf [24]byte
	idx.scan(func(hi, lo uint64, value int64) bool {
		binary.LittleEndian.PutUint64(buf[0:8], hi)
		binary.LittleEndian.PutUint64(buf[8:16], lo)
		binary.LittleEndian.PutUint64(buf[16:24], uint64(value))
		_, _ = d.Write(buf[:])
		return true
	})
	return d.Sum64(), nil
}
