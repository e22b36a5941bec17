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

package issuegraph

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/issuegraph/config"
	"github.com/poiesic/issuegraph/core"
	"github.com/poiesic/issuegraph/graph"
	"github.com/poiesic/issuegraph/ingestion"
	"github.com/poiesic/issuegraph/metrics"
	"github.com/poiesic/issuegraph/search"
	"github.com/poiesic/issuegraph/storage"
	"github.com/poiesic/issuegraph/storage/badger"
)

// Engine ties the record store to search, graph building and ingestion.
type Engine struct {
	backend  *badger.Backend
	records  storage.RecordRepository
	searcher *search.Searcher
	builder  *graph.Builder
	pipeline *ingestion.Pipeline
	config   *config.Config
	monitor  *metrics.Monitor
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	inMemory bool
	config   *config.Config
	logger   *slog.Logger
	monitor  *metrics.Monitor
}

// WithInMemory keeps the store in memory. The path passed to NewEngine is ignored.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithConfig sets the search, graph and ingestion tunables.
func WithConfig(cfg *config.Config) EngineOption {
	return func(o *engineOptions) {
		o.config = cfg
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithMetrics reports searches, graph builds and ingestion runs to monitor.
func WithMetrics(monitor *metrics.Monitor) EngineOption {
	return func(o *engineOptions) {
		o.monitor = monitor
	}
}

// NewEngine opens the record store at filePath and wires the components.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		config: config.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.config == nil {
		options.config = config.DefaultConfig()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	cfg := options.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}
	records := badger.NewRecordRepository(backend)

	searchOpts := []search.Option{
		search.WithDefaults(cfg.SearchOptions()),
		search.WithLogger(options.logger),
	}
	if options.monitor != nil {
		searchOpts = append(searchOpts, search.WithMonitor(options.monitor))
	}
	searcher, err := search.NewSearcher(records, searchOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	var layoutOpts []graph.LayoutOption
	if cfg.Graph.Seed != 0 {
		layoutOpts = append(layoutOpts, graph.WithSeed(cfg.Graph.Seed))
	}
	builder, err := graph.NewBuilder(
		graph.WithLayout(graph.NewLayout(layoutOpts...)),
		graph.WithCandidatePrefilter(cfg.Graph.Prefilter),
		graph.WithLogger(options.logger),
	)
	if err != nil {
		backend.Close()
		return nil, err
	}

	e := &Engine{
		backend:  backend,
		records:  records,
		searcher: searcher,
		builder:  builder,
		config:   cfg,
		monitor:  options.monitor,
		logger:   options.logger,
	}

	pipeline, err := e.NewIngestionPipeline()
	if err != nil {
		backend.Close()
		return nil, err
	}
	e.pipeline = pipeline

	return e, nil
}

// Close releases the worker pool and closes the store.
func (e *Engine) Close() error {
	e.pipeline.Release()
	if err := e.records.Close(); err != nil {
		e.logger.Error("error closing record repository", "err", err)
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Records returns the underlying record store.
func (e *Engine) Records() storage.RecordRepository {
	return e.records
}

// Config returns the validated configuration in use.
func (e *Engine) Config() *config.Config {
	return e.config
}

// Search ranks stored records against query. A nil opts uses the configured
// search defaults.
func (e *Engine) Search(ctx context.Context, query string, opts *search.Options) []*core.ScoredResult {
	return e.searcher.Search(ctx, query, opts)
}

// BuildGraph searches for query and synthesizes a relationship graph of the results.
func (e *Engine) BuildGraph(ctx context.Context, query string, opts *search.Options) *graph.Data {
	results := e.Search(ctx, query, opts)
	start := time.Now()
	data := e.builder.Build(results)
	if e.monitor != nil {
		e.monitor.ObserveGraph(data, time.Since(start))
	}
	return data
}

// GraphRecords synthesizes a graph from the stored records of kind, without
// relevance scores.
func (e *Engine) GraphRecords(ctx context.Context, kind core.RecordKind) (*graph.Data, error) {
	records, err := e.records.ListRecords(ctx, kind)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	data := e.builder.BuildFromRecords(records)
	if e.monitor != nil {
		e.monitor.ObserveGraph(data, time.Since(start))
	}
	return data, nil
}

// NewIngestionPipeline creates a pipeline over the engine's store, tuned by
// the ingestion config. opts are applied after the config values.
func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	ic := e.config.Ingestion
	base := []ingestion.Option{
		ingestion.WithPoolSize(ic.PoolSize),
		ingestion.WithBatchSize(ic.BatchSize),
		ingestion.WithRetry(ic.MaxAttempts, ic.RetryDelay),
		ingestion.WithLogger(e.logger),
	}
	return ingestion.NewPipeline(e.records, append(base, opts...)...)
}

// Ingest normalizes and stores payloads of one kind.
func (e *Engine) Ingest(ctx context.Context, kind core.RecordKind, payloads []json.RawMessage) (ingestion.Stats, error) {
	stats, err := e.pipeline.Ingest(ctx, kind, payloads)
	e.observeIngest(kind, stats)
	return stats, err
}

// IngestFile ingests a JSON array or JSON lines file of payloads of one kind.
func (e *Engine) IngestFile(ctx context.Context, kind core.RecordKind, path string) (ingestion.Stats, error) {
	stats, err := e.pipeline.IngestFile(ctx, kind, path)
	e.observeIngest(kind, stats)
	return stats, err
}

func (e *Engine) observeIngest(kind core.RecordKind, stats ingestion.Stats) {
	if e.monitor != nil {
		e.monitor.ObserveIngest(kind, stats)
	}
}

// CorpusStats counts stored records per kind.
type CorpusStats struct {
	ByKind map[core.RecordKind]int
	Total  int
}

// Stats counts the stored records of every kind.
func (e *Engine) Stats(ctx context.Context) (CorpusStats, error) {
	stats := CorpusStats{ByKind: make(map[core.RecordKind]int, len(core.RecordKinds))}
	var errs []error
	for _, kind := range core.RecordKinds {
		n, err := e.records.CountRecords(ctx, kind)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		stats.ByKind[kind] = n
		stats.Total += n
	}
	return stats, errors.Join(errs...)
}
