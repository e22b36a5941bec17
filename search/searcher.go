package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/issuegraph/core"
	"github.com/poiesic/issuegraph/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/poiesic/issuegraph/search"

// Default option values.
const (
	DefaultLimit        = 10
	DefaultMinRelevance = 0.3
)

// Options controls a single search.
type Options struct {
	Limit               int     // Maximum results; values <= 0 use DefaultLimit
	MinRelevance        float64 // Results scoring below this are dropped
	IncludePullRequests bool
	IncludeDiscussions  bool
}

// DefaultOptions returns the options used when a search passes nil.
func DefaultOptions() Options {
	return Options{
		Limit:               DefaultLimit,
		MinRelevance:        DefaultMinRelevance,
		IncludePullRequests: true,
		IncludeDiscussions:  true,
	}
}

// kinds returns the record kinds to scan. Issues are always scanned.
func (o Options) kinds() []core.RecordKind {
	kinds := []core.RecordKind{core.RecordKindIssue}
	if o.IncludePullRequests {
		kinds = append(kinds, core.RecordKindPullRequest)
	}
	if o.IncludeDiscussions {
		kinds = append(kinds, core.RecordKindDiscussion)
	}
	return kinds
}

// Searcher ranks stored records against free-text queries.
type Searcher struct {
	records  storage.RecordReader
	defaults Options
	monitor  SearchMonitor
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithDefaults sets the options used when Search is called with nil options.
func WithDefaults(opts Options) Option {
	return func(s *Searcher) error {
		if opts.MinRelevance < 0 || opts.MinRelevance > 1 {
			return fmt.Errorf("%w: min relevance %v outside [0, 1]", ErrInvalidOptions, opts.MinRelevance)
		}
		if opts.Limit <= 0 {
			opts.Limit = DefaultLimit
		}
		s.defaults = opts
		return nil
	}
}

// WithMonitor sets a monitor that observes every search made without an
// explicit monitor.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		s.monitor = monitor
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(records storage.RecordReader, opts ...Option) (*Searcher, error) {
	if records == nil {
		return nil, ErrRecordReaderRequired
	}

	s := &Searcher{
		records:  records,
		defaults: DefaultOptions(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Search ranks records against the query.
// A nil opts uses the searcher defaults. Search never fails: on any corpus
// read error it logs the failure and returns an empty slice.
func (s *Searcher) Search(ctx context.Context, query string, opts *Options) []*core.ScoredResult {
	return s.SearchWithMonitor(ctx, query, opts, s.monitor)
}

// SearchWithMonitor is Search with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, opts *Options, monitor SearchMonitor) []*core.ScoredResult {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	o := s.defaults
	if opts != nil {
		o = *opts
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "search.Search",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("search.limit", o.Limit),
			attribute.Float64("search.min_relevance", o.MinRelevance),
		),
	)
	defer span.End()

	monitor.Start(query)

	terms := ExtractTerms(query)
	monitor.AfterTermExtraction(terms)
	span.SetAttributes(attribute.Int("search.terms", len(terms)))

	results := []*core.ScoredResult{}
	if len(terms) == 0 {
		monitor.Finish(results)
		return results
	}

	for _, kind := range o.kinds() {
		records, err := s.records.ListRecords(ctx, kind)
		if err != nil {
			s.logger.Error("error reading records", "kind", kind.String(), "err", err)
			monitor.CollectionFailed(kind, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "corpus read failed")
			empty := []*core.ScoredResult{}
			monitor.Finish(empty)
			return empty
		}

		matched := 0
		for _, record := range records {
			if record == nil {
				continue
			}
			relevance, match := Score(record, terms)
			if relevance == 0 {
				continue
			}
			matched++
			results = append(results, &core.ScoredResult{
				Record:         record,
				RelevanceScore: relevance,
				MatchType:      match,
			})
		}
		monitor.AfterCollectionScan(kind, len(records), matched)
		s.logger.Debug("scanned records", "kind", kind.String(), "scanned", len(records), "matched", matched)
	}

	filtered := results[:0]
	for _, r := range results {
		if r.RelevanceScore >= o.MinRelevance {
			filtered = append(filtered, r)
		}
	}
	results = filtered

	// Stable so equal scores keep corpus order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > o.Limit {
		results = results[:o.Limit]
	}

	span.SetAttributes(attribute.Int("search.results", len(results)))
	monitor.Finish(results)

	return results
}
