// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package contract wraps model backends in input/output contracts with a
// prediction cache.
//
// # Overview
//
// A Model validates every input against its input schema, serves repeated
// inputs from a fingerprint-keyed cache, runs the backend at most once per
// distinct input among concurrent callers, and validates every output before
// caching or returning it.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/contract/backend/linear"
//	    "github.com/born-ml/contract/contract"
//	)
//
//	m, err := contract.New(linear.New(), in, out,
//	    contract.WithCacheConfig(contract.CacheOptions{MaxEntries: 4096}))
//	y, err := m.Predict(ctx, x)
//
// Errors from Predict match schema.ErrContract for bad input or output,
// adapter.ErrAdapter for backend failures, or are ctx.Err().
//
// # Interchangeable Models
//
// A Selector holds models with identical schemas and routes predictions to
// the active one; Use switches models without touching callers.
package contract

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/born-ml/contract/adapter"
	"github.com/born-ml/contract/internal/cache"
	"github.com/born-ml/contract/internal/contract"
	"github.com/born-ml/contract/schema"
)

// Model is an adapter wrapped in its input/output contract.
type Model = contract.Model

// Option configures a Model.
type Option = contract.Option

// Selector routes predictions to one of several compatible models.
type Selector = contract.Selector

// Phase is a step of a single prediction call.
type Phase = contract.Phase

// Prediction phases.
const (
	Idle             = contract.Idle
	ValidatingInput  = contract.ValidatingInput
	CacheLookup      = contract.CacheLookup
	CacheHit         = contract.CacheHit
	CacheMiss        = contract.CacheMiss
	Predicting       = contract.Predicting
	ValidatingOutput = contract.ValidatingOutput
	CacheStore       = contract.CacheStore
	Done             = contract.Done
	Failed           = contract.Failed
)

// Cache is a fingerprint-keyed store of validated outputs.
type Cache = cache.Cache

// CacheOptions bounds a Cache.
type CacheOptions = cache.Options

// CacheStats is a snapshot of cache counters.
type CacheStats = cache.Stats

// Sentinel errors.
var (
	ErrInvalidModel  = contract.ErrInvalidModel
	ErrIncompatible  = contract.ErrIncompatible
	ErrUnknownModel  = contract.ErrUnknownModel
	ErrNoModel       = contract.ErrNoModel
	ErrEntryTooLarge = cache.ErrEntryTooLarge
)

// New binds a to the given schemas.
func New(a adapter.Adapter, input, output *schema.Schema, opts ...Option) (*Model, error) {
	return contract.New(a, input, output, opts...)
}

// NewSelector returns an empty selector.
func NewSelector() *Selector {
	return contract.NewSelector()
}

// NewCache creates a cache that several models may share through
// WithCache. Zero fields of o keep their defaults.
func NewCache(o CacheOptions) (*Cache, error) {
	return cache.New(cache.WithOptions(o))
}

// NewCacheCollector exposes the statistics of c as Prometheus metrics
// labelled cache=name.
func NewCacheCollector(name string, c *Cache) prometheus.Collector {
	return cache.NewCollector(name, c)
}

// WithCache uses c instead of a private cache.
func WithCache(c *Cache) Option { return contract.WithCache(c) }

// WithCacheConfig configures the private cache.
func WithCacheConfig(o CacheOptions) Option { return contract.WithCacheConfig(o) }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return contract.WithLogger(l) }

// WithTracerProvider sets the provider of prediction spans.
func WithTracerProvider(tp trace.TracerProvider) Option { return contract.WithTracerProvider(tp) }

// WithMeterProvider sets the provider of prediction metrics.
func WithMeterProvider(mp metric.MeterProvider) Option { return contract.WithMeterProvider(mp) }

// WithID sets the model id instead of generating one.
func WithID(id uuid.UUID) Option { return contract.WithID(id) }
