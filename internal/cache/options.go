package cache

import (
	"fmt"
	"log/slog"
)

// Default configuration values.
const (
	// DefaultMaxEntries is the default maximum number of stored predictions.
	DefaultMaxEntries = 1024

	// DefaultMaxBytes is the default byte budget. Zero means unbounded.
	DefaultMaxBytes = 0

	// DefaultShards is the default number of single-flight shards.
	DefaultShards = 16
)

// Options configures a Cache.
type Options struct {
	// MaxEntries bounds the number of stored entries.
	MaxEntries int

	// MaxBytes bounds the summed output size of stored entries (0 = unbounded).
	MaxBytes int64

	// Shards is the number of independent in-flight tables.
	Shards int

	// Logger receives store degradation warnings.
	Logger *slog.Logger
}

// Option is a functional option for configuring a Cache.
type Option func(*Options)

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxEntries: DefaultMaxEntries,
		MaxBytes:   DefaultMaxBytes,
		Shards:     DefaultShards,
	}
}

// WithMaxEntries sets the maximum number of stored entries.
func WithMaxEntries(n int) Option {
	return func(o *Options) {
		o.MaxEntries = n
	}
}

// WithMaxBytes sets the byte budget for stored outputs.
func WithMaxBytes(n int64) Option {
	return func(o *Options) {
		o.MaxBytes = n
	}
}

// WithShards sets the number of single-flight shards.
func WithShards(n int) Option {
	return func(o *Options) {
		o.Shards = n
	}
}

// WithLogger sets the logger used for cache warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithOptions replaces the whole option set. Zero fields keep their defaults.
func WithOptions(in Options) Option {
	return func(o *Options) {
		if in.MaxEntries != 0 {
			o.MaxEntries = in.MaxEntries
		}
		if in.MaxBytes != 0 {
			o.MaxBytes = in.MaxBytes
		}
		if in.Shards != 0 {
			o.Shards = in.Shards
		}
		if in.Logger != nil {
			o.Logger = in.Logger
		}
	}
}

func (o Options) validate() error {
	if o.MaxEntries <= 0 {
		return fmt.Errorf("max entries must be positive, got %d", o.MaxEntries)
	}
	if o.MaxBytes < 0 {
		return fmt.Errorf("max bytes must not be negative, got %d", o.MaxBytes)
	}
	if o.Shards <= 0 || o.Shards > 256 {
		return fmt.Errorf("shards must be in [1, 256], got %d", o.Shards)
	}
	return nil
}
