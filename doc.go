// Package seedindex implements in-memory hash-based seed indexes for read
// mapping.
//
// An index maps fixed-width hashes of sequence windows to the 64-bit values
// added with them, usually genome positions. Entries are grouped into
// 2^AddressBits buckets by the high hash bits and sorted within each
// bucket, so a lookup is one table read and a short binary search.
//
// # Basic Usage
//
// Building an index:
//
//	idx, err := seedindex.New(capacity, 36, seedindex.WithThreshold(1000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for pos, hash := range seeds {
//	    if err := idx.Add(hash, int64(pos)); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	if err := idx.Freeze(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Querying it:
//
//	hits, err := idx.Search(hash)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for pos := range hits {
//	    fmt.Println(pos)
//	}
//
// # Variants
//
// The simple layout stores full hashes. WithCompression stores only the
// residual bits below the address and bit-packs values to WithValueBits.
// WithTwoPass trades a second pass over the input for exact allocation:
// add everything once (counting only), Freeze, add everything again, and
// Freeze a second time. Hashes wider than 64 bits (up to 128) are added and
// queried through the Extended methods.
//
// # Repeat Filtering
//
// At freeze, every hash occurring more often than the configured threshold
// is dropped with all of its values. WithProportionalFilter derives the
// threshold from the frequency histogram instead; see package filter.
//
// # Package Structure
//
//   - Public API: index.go (New, Add, Freeze), search.go (Search, Count, Scan)
//   - Configuration: options.go (Option, With* functions), params.go
//   - Hash arithmetic: hash.go (address, residual, extended hashes), prehash.go
//   - Storage: layout.go (simple and compressed layouts), table.go, pending.go
//   - Construction: freeze.go (sorting, histograms, filtering)
//   - Parallel sets: set.go
//   - Diagnostics: stats.go
//   - Building blocks: filter/, internal/sorter/, internal/bitvec/, internal/bits/
package seedindex
