package seedindex

import (
	"log/slog"
	"math"

	"github.com/realtimegenomics/seedindex/filter"
)

// defaultThreshold keeps every hash.
const defaultThreshold = math.MaxInt32

// Option is a functional option for configuring an index.
type Option func(*config)

type config struct {
	compressed  bool
	twoPass     bool
	valueBits   int
	addressBits int // negative means derive from capacity
	bitVector   bool
	lowerBits   int
	workers     int

	threshold    int64
	fraction     float64
	proportional bool
	policy       filter.Policy
	histogram    *filter.Histogram

	logger *slog.Logger
}

func defaultConfig() *config {
	return &config{
		valueBits:   64,
		addressBits: -1,
		lowerBits:   64,
		workers:     0,
		threshold:   defaultThreshold,
		logger:      discardLogger(),
	}
}

func newConfig(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithCompression stores only the residual (non-address) bits of each hash
// and bit-packs values at the configured value width.
func WithCompression() Option {
	return func(c *config) {
		c.compressed = true
	}
}

// WithTwoPass enables two-pass construction. The first pass only counts
// entries per address; the first Freeze allocates exact storage and the
// second pass must add exactly the same entries again.
func WithTwoPass() Option {
	return func(c *config) {
		c.twoPass = true
	}
}

// WithValueBits sets the bit width of stored values in compressed indexes.
// With fewer than 64 bits, values must lie in [0, 2^bits).
func WithValueBits(bits int) Option {
	return func(c *config) {
		c.valueBits = bits
	}
}

// WithAddressBits overrides the number of high hash bits used to bucket
// entries. By default it is derived from the capacity.
func WithAddressBits(bits int) Option {
	return func(c *config) {
		c.addressBits = bits
	}
}

// WithBitVector adds a hash occupancy bit vector that rejects most absent
// hashes before the bucket is searched.
func WithBitVector() Option {
	return func(c *config) {
		c.bitVector = true
	}
}

// WithLowerBits sets how many bits of an extended hash live in
// ExtendedHash.Lower. The remainder live in Upper. Default 64.
func WithLowerBits(bits int) Option {
	return func(c *config) {
		c.lowerBits = bits
	}
}

// WithWorkers sets the number of goroutines Freeze uses for sorting.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithThreshold drops every hash occurring more than threshold times.
// It replaces any previously configured filter.
func WithThreshold(threshold int64) Option {
	return func(c *config) {
		c.threshold = threshold
		c.proportional = false
		c.policy = nil
	}
}

// WithProportionalFilter drops the most frequent hashes until at least
// fraction of all entries are gone. It replaces any previously configured
// filter.
func WithProportionalFilter(fraction float64) Option {
	return func(c *config) {
		c.fraction = fraction
		c.proportional = true
		c.policy = nil
	}
}

// WithFilter installs a custom repeat filter. Policies hold state after
// Initialize, so one policy must not be shared by indexes frozen
// concurrently.
func WithFilter(p filter.Policy) Option {
	return func(c *config) {
		c.policy = p
		c.proportional = false
	}
}

// WithHistogram supplies an externally computed frequency histogram. The
// filter is initialised from it instead of from the index's own entries.
func WithHistogram(h *filter.Histogram) Option {
	return func(c *config) {
		c.histogram = h
	}
}

// WithLogger sets the logger for build progress. The default discards all
// output.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func (c *config) newPolicy() (filter.Policy, error) {
	switch {
	case c.policy != nil:
		return c.policy, nil
	case c.proportional:
		return filter.NewProportional(c.fraction)
	default:
		return filter.NewFixed(c.threshold), nil
	}
}
