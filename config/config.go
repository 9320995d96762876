// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package config loads contract-layer settings from YAML.
//
// A configuration bounds the prediction cache of each model, selects the
// envelope format and metadata, and sets up logging.
//
// # Basic Usage
//
//	cfg, err := config.Load("contract.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Logging.Apply(os.Stderr); err != nil {
//	    return err
//	}
//	m, err := contract.New(a, in, out, cfg.ModelOptions()...)
//	data, err := envelope.Save(m, cfg.EnvelopeOptions()...)
//
// Example document:
//
//	cache:
//	  max_entries: 1024
//	  max_bytes: 67108864
//	  shards: 16
//	envelope:
//	  format_version: 2
//	  metadata:
//	    owner: forecasting
//	logging:
//	  level: info
//	  format: json
//
// Keys missing from the document keep their Default values. Unknown keys
// are rejected.
package config

import (
	"github.com/born-ml/contract/internal/config"
)

// Config is the root configuration document.
type Config = config.Config

// Sections.
type (
	CacheConfig    = config.CacheConfig
	EnvelopeConfig = config.EnvelopeConfig
	LoggingConfig  = config.LoggingConfig
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return config.Default()
}

// Load reads and validates the YAML file at path.
func Load(path string) (Config, error) {
	return config.Load(path)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	return config.Parse(data)
}
