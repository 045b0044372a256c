package row

import (
	"flag"

	"github.com/grafana/dskit/flagext"
	"github.com/pkg/errors"

	"github.com/daBlesr/polars/pkg/util/mempool"
)

// Config configures a row [Builder].
type Config struct {
	// InitialRows is the number of rows the offset buffer is sized for before
	// the first append.
	InitialRows int `yaml:"initial_rows"`

	// InitialBufferSize is the size of the first value buffer requested from
	// the pool, capped at MaxBufferSize. The value buffer doubles whenever it
	// runs out of room.
	InitialBufferSize flagext.Bytes `yaml:"initial_buffer_size"`

	// MaxBufferSize caps the value buffer. Appends that would grow the buffer
	// past MaxBufferSize fail with [ErrBufferFull]. 0 disables the limit.
	MaxBufferSize flagext.Bytes `yaml:"max_buffer_size"`

	// CheckInvariants makes Flush validate the buffer it produces, as if it
	// had been passed to [New].
	CheckInvariants bool `yaml:"check_invariants"`

	// Value buffers are recycled through a bucketed pool with sizes from
	// PoolMinSize to PoolMaxSize, growing by PoolGrowthFactor. A PoolMaxSize
	// of 0 disables pooling.
	PoolMinSize      flagext.Bytes `yaml:"pool_min_size"`
	PoolMaxSize      flagext.Bytes `yaml:"pool_max_size"`
	PoolGrowthFactor float64       `yaml:"pool_growth_factor"`
}

// RegisterFlags registers flags for the row builder.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("rows.", f)
}

// RegisterFlagsWithPrefix registers flags with the given prefix.
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	_ = cfg.InitialBufferSize.Set("64KB")
	_ = cfg.PoolMinSize.Set("4KB")
	_ = cfg.PoolMaxSize.Set("64MB")

	f.IntVar(&cfg.InitialRows, prefix+"initial-rows", 1024, "Number of rows to reserve offset space for when a builder starts a new buffer.")
	f.Var(&cfg.InitialBufferSize, prefix+"initial-buffer-size", "Initial size of the encoded row value buffer.")
	f.Var(&cfg.MaxBufferSize, prefix+"max-buffer-size", "Maximum size of the encoded row value buffer. 0 means no limit.")
	f.BoolVar(&cfg.CheckInvariants, prefix+"check-invariants", false, "Validate row offsets when flushing a buffer.")
	f.Var(&cfg.PoolMinSize, prefix+"pool-min-size", "Smallest pooled value buffer.")
	f.Var(&cfg.PoolMaxSize, prefix+"pool-max-size", "Largest pooled value buffer. Larger buffers are not recycled. 0 disables pooling.")
	f.Float64Var(&cfg.PoolGrowthFactor, prefix+"pool-growth-factor", 2, "Size ratio between consecutive pool buckets.")
}

// Validate validates the Config.
func (cfg *Config) Validate() error {
	if cfg.InitialRows < 0 {
		return errors.Errorf("initial rows must not be negative, got %d", cfg.InitialRows)
	}

	if cfg.PoolMaxSize == 0 {
		return nil
	}
	if cfg.PoolMinSize == 0 {
		return errors.New("pool min size must be greater than 0")
	}
	if cfg.PoolMinSize > cfg.PoolMaxSize {
		return errors.Errorf("pool min size %d exceeds pool max size %d", cfg.PoolMinSize, cfg.PoolMaxSize)
	}
	if cfg.PoolGrowthFactor <= 1 {
		return errors.Errorf("pool growth factor must be greater than 1, got %v", cfg.PoolGrowthFactor)
	}
	// Bucket sizes are truncated to integers, so every step must still grow.
	if minSize := int(cfg.PoolMinSize); int(float64(minSize)*cfg.PoolGrowthFactor) <= minSize {
		return errors.Errorf("pool growth factor %v does not grow the pool min size %d", cfg.PoolGrowthFactor, minSize)
	}
	return nil
}

// NewPool returns the value buffer allocator described by cfg.
func (cfg *Config) NewPool() mempool.Allocator {
	if cfg.PoolMaxSize == 0 {
		return &mempool.SimpleHeapAllocator{}
	}
	return mempool.NewBytePoolAllocator(int(cfg.PoolMinSize), int(cfg.PoolMaxSize), cfg.PoolGrowthFactor)
}
