// Bench is a benchmarking tool for measuring seed index build time, query
// throughput and memory use on a synthetic genome.
//
// Usage:
//
//	go run ./cmd/bench -length 50000000 -k 24 -hashbits 40 -compressed
//
// Flags:
//
//	-length       Genome length in bases (default: 10,000,000)
//	-k            Window length in bases (default: 24)
//	-hashbits     Hash width in bits, up to 128 (default: 48)
//	-hash         Window hash: packed, xxh3 or murmur3 (default: packed)
//	-indexes      Number of indexes, window i goes to index i%n (default: 1)
//	-workers      Goroutines for adding and freezing (default: 1)
//	-compressed   Use the compressed layout
//	-twopass      Use two-pass construction
//	-bitvector    Add an occupancy bit vector
//	-threshold    Drop hashes occurring more often (default: 1000)
//	-proportional Drop this fraction of entries instead of using -threshold
//	-json         Print the report as JSON
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"

	"github.com/realtimegenomics/seedindex"
)

const bases = "ACGT"

// report is the machine-readable benchmark result.
type report struct {
	Length        int               `json:"length"`
	K             int               `json:"k"`
	Hash          string            `json:"hash"`
	AddSeconds    float64           `json:"add_seconds"`
	FreezeSeconds float64           `json:"freeze_seconds"`
	QueryNanos    float64           `json:"query_ns"`
	Hits          int64             `json:"hits"`
	PeakRSS       uint64            `json:"peak_rss"`
	Bytes         int64             `json:"bytes"`
	Indexes       []seedindex.Stats `json:"indexes"`
}

func main() {
	lengthFlag := flag.Int("length", 10_000_000, "genome length in bases")
	kFlag := flag.Int("k", 24, "window length in bases")
	hashBitsFlag := flag.Int("hashbits", 48, "hash width in bits (up to 128)")
	hashFlag := flag.String("hash", "packed", "window hash: packed, xxh3 or murmur3")
	indexesFlag := flag.Int("indexes", 1, "number of indexes")
	workersFlag := flag.Int("workers", 1, "goroutines for adding and freezing")
	compressedFlag := flag.Bool("compressed", false, "use the compressed layout")
	twoPassFlag := flag.Bool("twopass", false, "use two-pass construction")
	bitVectorFlag := flag.Bool("bitvector", false, "add an occupancy bit vector")
	thresholdFlag := flag.Int64("threshold", 1000, "drop hashes occurring more often")
	proportionalFlag := flag.Float64("proportional", 0, "drop this fraction of entries instead of using -threshold")
	jsonFlag := flag.Bool("json", false, "print the report as JSON")
	verboseFlag := flag.Bool("v", false, "log build progress")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (build phase only)")
	flag.Parse()

	length, k, hashBits, n := *lengthFlag, *kFlag, *hashBitsFlag, *indexesFlag
	if n < 1 || k < 1 || length < k {
		fmt.Println("need -indexes >= 1 and -length >= -k >= 1")
		os.Exit(2)
	}
	hashWindow, err := newHasher(*hashFlag, k, hashBits)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	logger := slog.New(slog.DiscardHandler)
	if *verboseFlag {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if !*jsonFlag {
		fmt.Println("Generating genome...")
	}
	genome := make([]byte, length)
	for i := range genome {
		genome[i] = bases[mrand.IntN(4)]
	}
	windows := int64(length - k + 1)

	opts := []seedindex.Option{
		seedindex.WithWorkers(*workersFlag),
		seedindex.WithLogger(logger),
	}
	if *compressedFlag {
		opts = append(opts, seedindex.WithCompression())
	}
	if *twoPassFlag {
		opts = append(opts, seedindex.WithTwoPass())
	}
	if *bitVectorFlag {
		opts = append(opts, seedindex.WithBitVector())
	}
	if *proportionalFlag > 0 {
		opts = append(opts, seedindex.WithProportionalFilter(*proportionalFlag))
	} else {
		opts = append(opts, seedindex.WithThreshold(*thresholdFlag))
	}

	ctx := context.Background()
	capacity := (windows + int64(n) - 1) / int64(n)
	set, err := seedindex.NewSet(ctx, n, *workersFlag, capacity, hashBits, opts...)
	if err != nil {
		fmt.Printf("NewSet failed: %v\n", err)
		os.Exit(1)
	}
	if !*jsonFlag {
		fmt.Printf("Estimated memory: %.1f MB\n", float64(set.All()[0].Params().Bytes()*int64(n))/1_000_000)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
	}

	baselineRSS := getMaxRSS()
	passes := 1
	if *twoPassFlag {
		passes = 2
	}

	var addDuration, freezeDuration time.Duration
	for pass := range passes {
		if !*jsonFlag {
			fmt.Printf("Adding windows (pass %d)...\n", pass+1)
		}
		start := time.Now()
		if err := addWindows(ctx, set, genome, k, hashWindow, *workersFlag); err != nil {
			fmt.Printf("Add failed: %v\n", err)
			os.Exit(1)
		}
		addDuration += time.Since(start)

		start = time.Now()
		if err := set.Freeze(ctx, *workersFlag); err != nil {
			fmt.Printf("Freeze failed: %v\n", err)
			os.Exit(1)
		}
		freezeDuration += time.Since(start)
	}

	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	runtime.GC()
	peakRSS := getMaxRSS() - baselineRSS

	if !*jsonFlag {
		fmt.Println("Benchmarking queries...")
	}
	numQueries := 1_000_000
	var hits int64
	queryStart := time.Now()
	for q := range numQueries {
		pos := mrand.IntN(int(windows))
		h := hashWindow(genome[pos : pos+k])
		idx := set.All()[q%n]
		var c int
		if hashBits > 64 {
			c, _ = idx.CountExtended(h.wide)
		} else {
			c, _ = idx.Count(h.narrow)
		}
		hits += int64(c)
	}
	queryDuration := time.Since(queryStart)

	r := report{
		Length:        length,
		K:             k,
		Hash:          *hashFlag,
		AddSeconds:    addDuration.Seconds(),
		FreezeSeconds: freezeDuration.Seconds(),
		QueryNanos:    float64(queryDuration.Nanoseconds()) / float64(numQueries),
		Hits:          hits,
		PeakRSS:       peakRSS,
		Bytes:         set.Bytes(),
	}
	for _, idx := range set.All() {
		r.Indexes = append(r.Indexes, idx.Stats())
	}

	if *jsonFlag {
		out, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			fmt.Printf("encode report: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	entries := set.NumberEntries()
	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦════════════════════╗\n")
	fmt.Printf("║ Hash: %-14s║ Indexes: %-10d║\n", *hashFlag, n)
	fmt.Printf("╠═════════════════════╬════════════════════╣\n")
	fmt.Printf("║ Windows             ║ %12d       ║\n", windows)
	fmt.Printf("║ Entries kept        ║ %12d       ║\n", entries)
	fmt.Printf("║ Bits per entry      ║ %12.3f       ║\n", float64(set.Bytes()*8)/float64(max(entries, 1)))
	fmt.Printf("║ Add time            ║ %9.2f sec      ║\n", addDuration.Seconds())
	fmt.Printf("║ Freeze time         ║ %9.2f sec      ║\n", freezeDuration.Seconds())
	fmt.Printf("║ Build throughput    ║ %9.2f M/sec    ║\n", float64(windows*int64(passes))/(addDuration+freezeDuration).Seconds()/1_000_000)
	fmt.Printf("║ Query latency       ║ %9.1f ns       ║\n", r.QueryNanos)
	fmt.Printf("║ Hits per query      ║ %9.2f          ║\n", float64(hits)/float64(numQueries))
	fmt.Printf("║ Index memory        ║ %9.1f MB       ║\n", float64(set.Bytes())/1_000_000)
	fmt.Printf("║ Peak RSS growth     ║ %9.1f MB       ║\n", float64(peakRSS)/1_000_000)
	fmt.Printf("╚═════════════════════╩════════════════════╝\n")
	if *verboseFlag {
		fmt.Println(set.All()[0].InfoString())
		fmt.Println(set.All()[0].PerfString())
	}
}

// windowHash holds a window's hash in whichever width the index uses.
type windowHash struct {
	narrow uint64
	wide   seedindex.ExtendedHash
}

type hasher func(window []byte) windowHash

func newHasher(name string, k, hashBits int) (hasher, error) {
	if hashBits > 64 {
		if name != "murmur3" {
			return nil, fmt.Errorf("hash %q cannot produce %d bits; use -hash murmur3", name, hashBits)
		}
		return func(w []byte) windowHash {
			return windowHash{wide: seedindex.PreHashExtended(w)}
		}, nil
	}
	switch name {
	case "packed":
		packed := min(2*k, 64)
		if packed < hashBits {
			return nil, fmt.Errorf("packed %d-base windows give only %d bits", k, packed)
		}
		return func(w []byte) windowHash {
			return windowHash{narrow: pack(w) >> uint(packed-hashBits)}
		}, nil
	case "xxh3":
		return func(w []byte) windowHash {
			return windowHash{narrow: seedindex.PreHash(w, hashBits)}
		}, nil
	case "murmur3":
		return func(w []byte) windowHash {
			return windowHash{narrow: murmur3.Sum64(w) >> uint(64-hashBits)}
		}, nil
	default:
		return nil, fmt.Errorf("unknown hash %q (use packed, xxh3 or murmur3)", name)
	}
}

// pack encodes up to 32 bases at two bits each, first base highest.
func pack(w []byte) uint64 {
	var v uint64
	for _, b := range w[max(len(w)-32, 0):] {
		var code uint64
		switch b {
		case 'C':
			code = 1
		case 'G':
			code = 2
		case 'T':
			code = 3
		}
		v = v<<2 | code
	}
	return v
}

// addWindows adds every window of genome to index pos%n, one goroutine per
// index at a time.
func addWindows(ctx context.Context, set *seedindex.Set, genome []byte, k int, h hasher, workers int) error {
	n := set.Size()
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, idx := range set.All() {
		g.Go(func() error {
			for pos := i; pos+k <= len(genome); pos += n {
				wh := h(genome[pos : pos+k])
				var err error
				if idx.Params().Extended() {
					err = idx.AddExtended(wh.wide, int64(pos))
				} else {
					err = idx.Add(wh.narrow, int64(pos))
				}
				if err != nil {
					return fmt.Errorf("index %d: %w", i, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}
