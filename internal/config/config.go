// Package config loads contract-layer settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/contract/internal/cache"
	"github.com/born-ml/contract/internal/contract"
	"github.com/born-ml/contract/internal/envelope"
	"github.com/born-ml/contract/internal/logging"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the root configuration document.
type Config struct {
	Cache    CacheConfig    `yaml:"cache"`
	Envelope EnvelopeConfig `yaml:"envelope"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CacheConfig bounds the prediction cache of each model.
type CacheConfig struct {
	MaxEntries int   `yaml:"max_entries" validate:"gte=1"`
	MaxBytes   int64 `yaml:"max_bytes" validate:"gte=0"`
	Shards     int   `yaml:"shards" validate:"gte=1,lte=256"`
}

// EnvelopeConfig controls how models are saved.
type EnvelopeConfig struct {
	FormatVersion int               `yaml:"format_version" validate:"oneof=1 2"`
	Metadata      map[string]string `yaml:"metadata"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			MaxEntries: cache.DefaultMaxEntries,
			MaxBytes:   cache.DefaultMaxBytes,
			Shards:     cache.DefaultShards,
		},
		Envelope: EnvelopeConfig{FormatVersion: 2},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the YAML file at path.
func Load(path string) (Config, error) {
	//nolint:gosec // G304: configuration path is chosen by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field constraint.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Options converts the section to cache options.
func (c CacheConfig) Options() cache.Options {
	return cache.Options{
		MaxEntries: c.MaxEntries,
		MaxBytes:   c.MaxBytes,
		Shards:     c.Shards,
	}
}

// Options converts the section to envelope save options.
func (c EnvelopeConfig) Options() []envelope.Option {
	opts := []envelope.Option{envelope.WithFormatVersion(c.FormatVersion)}
	if len(c.Metadata) > 0 {
		opts = append(opts, envelope.WithMetadata(c.Metadata))
	}
	return opts
}

// ModelOptions returns the model options the configuration implies.
func (c Config) ModelOptions() []contract.Option {
	return []contract.Option{contract.WithCacheConfig(c.Cache.Options())}
}

// EnvelopeOptions returns the envelope save options the configuration implies.
func (c Config) EnvelopeOptions() []envelope.Option {
	return c.Envelope.Options()
}

// Apply installs the configured slog default writing to w (stderr if nil).
func (c LoggingConfig) Apply(w io.Writer) error {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	logging.Init(level, c.Format, w)
	return nil
}
