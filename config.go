package parquet

import (
	"github.com/go-kit/log"

	"github.com/loopmachine/parquet-go/format"
)

const (
	// DefaultBlockSize is the soft row-group byte bound (~128 MiB).
	DefaultBlockSize = 128 * 1024 * 1024
	// DefaultPageSize is the soft page byte bound (~1 MiB).
	DefaultPageSize = 1024 * 1024
)

// WriterConfig holds the tunables recognized by the write path (§6).
type WriterConfig struct {
	BlockSize          int64
	PageSize           int64
	DictionaryPageSize int64
	EnableDictionary   bool
	Compression        format.CompressionCodec
	Validating         bool
	Logger             log.Logger
}

// Option mutates a WriterConfig; functional options mirror the
// construction style used by the arrow-go consumer in the examples
// (parquet.WithDataPageSize, parquet.WithCompressionFor, ...).
type Option func(*WriterConfig)

// DefaultConfig returns a WriterConfig populated with the spec's §6
// defaults.
func DefaultConfig() WriterConfig {
	return WriterConfig{
		BlockSize:          DefaultBlockSize,
		PageSize:           DefaultPageSize,
		DictionaryPageSize: DefaultPageSize,
		EnableDictionary:   true,
		Compression:        format.Uncompressed,
		Validating:         true,
		Logger:             log.NewNopLogger(),
	}
}

func WithBlockSize(n int64) Option { return func(c *WriterConfig) { c.BlockSize = n } }
func WithPageSize(n int64) Option  { return func(c *WriterConfig) { c.PageSize = n } }

func WithDictionaryPageSize(n int64) Option {
	return func(c *WriterConfig) { c.DictionaryPageSize = n }
}

func WithDictionary(enabled bool) Option {
	return func(c *WriterConfig) { c.EnableDictionary = enabled }
}

func WithCompression(codec format.CompressionCodec) Option {
	return func(c *WriterConfig) { c.Compression = codec }
}

func WithValidating(v bool) Option { return func(c *WriterConfig) { c.Validating = v } }

func WithLogger(l log.Logger) Option { return func(c *WriterConfig) { c.Logger = l } }

func newConfig(opts ...Option) WriterConfig {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DictionaryPageSize == 0 {
		cfg.DictionaryPageSize = cfg.PageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}
	return cfg
}
