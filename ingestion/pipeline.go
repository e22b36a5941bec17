package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/issuegraph/core"
	"github.com/poiesic/issuegraph/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/poiesic/issuegraph/ingestion"

// Defaults for pipeline tuning.
const (
	DefaultBatchSize   = 100
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 100 * time.Millisecond
)

// Stats reports the outcome of one ingestion run.
type Stats struct {
	Received int           // Payloads read
	Ingested int           // Records written
	Skipped  int           // Payloads rejected by decoding or validation
	Batches  int           // Store writes
	Duration time.Duration // Wall time of the run
}

// Pipeline normalizes source payloads into records and writes them to storage.
type Pipeline struct {
	records     storage.RecordRepository
	pool        *ants.Pool
	normalizer  *normalizer
	batchSize   int
	maxAttempts int
	retryDelay  time.Duration
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the number of normalization workers.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		pool, err := ants.NewPool(max(size, 1))
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many records go into one store write.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry sets the retry budget for each batch write.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithProgress writes a progress line to w while batches are stored.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline writing to records.
// Call Release when done to stop the worker pool.
func NewPipeline(records storage.RecordRepository, opts ...Option) (*Pipeline, error) {
	if records == nil {
		return nil, ErrRecordRepositoryRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		records:     records,
		pool:        pool,
		normalizer:  newNormalizer(),
		batchSize:   DefaultBatchSize,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")
	return p, nil
}

// normalized is the per-payload outcome of the worker stage.
type normalized struct {
	record *core.Record
	err    error
}

// Ingest normalizes payloads of one kind and stores the valid ones.
// Invalid payloads are skipped and counted; a store failure that survives
// retries aborts the run and is returned with the stats so far.
func (p *Pipeline) Ingest(ctx context.Context, kind core.RecordKind, payloads []json.RawMessage) (Stats, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ingestion.Ingest",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("ingestion.kind", kind.String()),
			attribute.Int("ingestion.payloads", len(payloads)),
		),
	)
	defer span.End()

	start := time.Now()
	stats := Stats{Received: len(payloads)}
	if err := core.ValidateRecordKind(kind); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid kind")
		return stats, err
	}

	outcomes, err := p.normalizeAll(ctx, kind, payloads)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "normalization aborted")
		return stats, err
	}

	records := make([]*core.Record, 0, len(outcomes))
	for i, o := range outcomes {
		if o.err != nil {
			stats.Skipped++
			p.logger.Warn("skipping payload", "kind", kind, "index", i, "err", o.err)
			continue
		}
		records = append(records, o.record)
	}

	tracker := NewProgressTracker(p.progress, len(records), p.batchSize)
	tracker.Start()
	for begin := 0; begin < len(records); begin += p.batchSize {
		batch := records[begin:min(begin+p.batchSize, len(records))]
		err := RetryWithBackoff(ctx, func() error {
			_, addErr := p.records.AddRecords(ctx, batch...)
			return addErr
		}, p.maxAttempts, p.retryDelay)
		if err != nil {
			stats.Duration = time.Since(start)
			span.RecordError(err)
			span.SetStatus(codes.Error, "store write failed")
			return stats, fmt.Errorf("writing batch at %d: %w", begin, err)
		}
		stats.Batches++
		stats.Ingested += len(batch)
		tracker.Add(len(batch))
	}
	tracker.Finish()

	stats.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("ingestion.ingested", stats.Ingested),
		attribute.Int("ingestion.skipped", stats.Skipped),
	)
	p.logger.Info("ingested records",
		"kind", kind,
		"received", stats.Received,
		"ingested", stats.Ingested,
		"skipped", stats.Skipped,
		"duration", stats.Duration)
	return stats, nil
}

// normalizeAll fans payloads out to the worker pool and keeps input order.
func (p *Pipeline) normalizeAll(ctx context.Context, kind core.RecordKind, payloads []json.RawMessage) ([]normalized, error) {
	outcomes := make([]normalized, len(payloads))
	var wg sync.WaitGroup
	for i, raw := range payloads {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			record, err := p.normalizer.normalize(kind, raw)
			outcomes[i] = normalized{record: record, err: err}
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return nil, submitErr
		}
	}
	wg.Wait()
	return outcomes, nil
}

// IngestReader reads a JSON array of payloads, or one payload per line, from r.
func (p *Pipeline) IngestReader(ctx context.Context, kind core.RecordKind, r io.Reader) (Stats, error) {
	payloads, err := ReadPayloads(r)
	if err != nil {
		return Stats{}, err
	}
	return p.Ingest(ctx, kind, payloads)
}

// IngestFile ingests the payloads stored at path. A path of "-" reads stdin.
func (p *Pipeline) IngestFile(ctx context.Context, kind core.RecordKind, path string) (Stats, error) {
	if path == "-" {
		return p.IngestReader(ctx, kind, os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()
	return p.IngestReader(ctx, kind, f)
}

// ReadPayloads splits r into raw payloads. The input is either a single JSON
// array or a stream of JSON values such as newline-delimited JSON.
func ReadPayloads(r io.Reader) ([]json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []json.RawMessage{}, nil
	}

	if data[0] == '[' {
		var payloads []json.RawMessage
		if err := json.Unmarshal(data, &payloads); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return payloads, nil
	}

	var payloads []json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %v", ErrInvalidPayload, len(payloads), err)
		}
		payloads = append(payloads, raw)
	}
	return payloads, nil
}

// Release stops the worker pool. The pipeline must not be used afterwards.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
