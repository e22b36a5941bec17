// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/issuegraph/search"
	"gopkg.in/yaml.v3"
)

// validate caches struct metadata across calls.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the tunables for search, graph building and ingestion.
type Config struct {
	Search    SearchConfig    `yaml:"search"`
	Graph     GraphConfig     `yaml:"graph"`
	Ingestion IngestionConfig `yaml:"ingestion"`
}

// SearchConfig holds the defaults applied when a search passes no options.
type SearchConfig struct {
	// Limit is the maximum number of results.
	// Default: 10
	Limit int `yaml:"limit" validate:"gte=1,lte=1000"`

	// MinRelevance drops results scoring below it.
	// Default: 0.3
	MinRelevance float64 `yaml:"min_relevance" validate:"gte=0,lte=1"`

	IncludePullRequests bool `yaml:"include_pull_requests"`
	IncludeDiscussions  bool `yaml:"include_discussions"`
}

// GraphConfig controls graph synthesis.
type GraphConfig struct {
	// Prefilter limits similarity checks to records sharing a repository,
	// author or label.
	Prefilter bool `yaml:"prefilter"`

	// Seed makes layouts reproducible. Zero means a fresh seed per build.
	Seed uint64 `yaml:"seed"`
}

// IngestionConfig tunes the ingestion pipeline.
type IngestionConfig struct {
	PoolSize    int           `yaml:"pool_size" validate:"gte=1"`
	BatchSize   int           `yaml:"batch_size" validate:"gte=1"`
	MaxAttempts int           `yaml:"max_attempts" validate:"gte=1,lte=10"`
	RetryDelay  time.Duration `yaml:"retry_delay" validate:"gte=0"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithSearchLimit sets the default result limit.
func WithSearchLimit(limit int) ConfigOption {
	return func(c *Config) {
		c.Search.Limit = limit
	}
}

// WithMinRelevance sets the default relevance cutoff.
func WithMinRelevance(min float64) ConfigOption {
	return func(c *Config) {
		c.Search.MinRelevance = min
	}
}

// WithPrefilter enables the similarity candidate prefilter.
func WithPrefilter(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Graph.Prefilter = enabled
	}
}

// WithLayoutSeed fixes the layout seed.
func WithLayoutSeed(seed uint64) ConfigOption {
	return func(c *Config) {
		c.Graph.Seed = seed
	}
}

// WithPoolSize sets the number of ingestion workers.
func WithPoolSize(size int) ConfigOption {
	return func(c *Config) {
		c.Ingestion.PoolSize = size
	}
}

// WithBatchSize sets the ingestion batch size.
func WithBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.Ingestion.BatchSize = size
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Limit:               search.DefaultLimit,
			MinRelevance:        search.DefaultMinRelevance,
			IncludePullRequests: true,
			IncludeDiscussions:  true,
		},
		Ingestion: IngestionConfig{
			PoolSize:    max(runtime.NumCPU()/2, 1),
			BatchSize:   100,
			MaxAttempts: 3,
			RetryDelay:  100 * time.Millisecond,
		},
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//		WithSearchLimit(25),
//		WithLayoutSeed(7),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LoadFile reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize replaces non-positive sizes with their defaults.
func (c *Config) Normalize() {
	defaults := DefaultConfig()
	if c.Search.Limit <= 0 {
		c.Search.Limit = defaults.Search.Limit
	}
	if c.Ingestion.PoolSize <= 0 {
		c.Ingestion.PoolSize = defaults.Ingestion.PoolSize
	}
	if c.Ingestion.BatchSize <= 0 {
		c.Ingestion.BatchSize = defaults.Ingestion.BatchSize
	}
}

// Validate normalizes the configuration and checks value ranges.
func (c *Config) Validate() error {
	c.Normalize()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SearchOptions converts the search section to search.Options.
func (c *Config) SearchOptions() search.Options {
	return search.Options{
		Limit:               c.Search.Limit,
		MinRelevance:        c.Search.MinRelevance,
		IncludePullRequests: c.Search.IncludePullRequests,
		IncludeDiscussions:  c.Search.IncludeDiscussions,
	}
}
