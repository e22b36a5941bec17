package metrics

import (
	"time"

	"github.com/poiesic/issuegraph/core"
	"github.com/poiesic/issuegraph/graph"
	"github.com/poiesic/issuegraph/ingestion"
	"github.com/poiesic/issuegraph/search"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "issuegraph"

// Monitor records search, graph and ingestion metrics in Prometheus.
// It implements search.SearchMonitor and is safe for concurrent use.
type Monitor struct {
	registry *prometheus.Registry

	searches        prometheus.Counter
	emptySearches   prometheus.Counter
	queryTerms      prometheus.Histogram
	searchResults   prometheus.Histogram
	recordsScanned  *prometheus.CounterVec
	recordsMatched  *prometheus.CounterVec
	scanFailures    *prometheus.CounterVec
	graphBuilds     prometheus.Counter
	graphNodes      prometheus.Histogram
	graphEdges      *prometheus.CounterVec
	graphDuration   prometheus.Histogram
	recordsIngested *prometheus.CounterVec
	payloadsSkipped *prometheus.CounterVec
}

var _ search.SearchMonitor = (*Monitor)(nil)

// NewMonitor creates a monitor and registers its collectors on registry.
// A nil registry gets a fresh one.
func NewMonitor(registry *prometheus.Registry) (*Monitor, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Monitor{
		registry: registry,
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_total",
			Help:      "Total number of searches",
		}),
		emptySearches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_empty_total",
			Help:      "Searches that returned no results",
		}),
		queryTerms: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_terms",
			Help:      "Search terms extracted per query",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_results",
			Help:      "Results returned per search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		recordsScanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_scanned_total",
			Help:      "Records scored by searches",
		}, []string{"kind"}),
		recordsMatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_matched_total",
			Help:      "Records with a non-zero relevance score",
		}, []string{"kind"}),
		scanFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "scan_failures_total",
			Help:      "Corpus reads that failed during a search",
		}, []string{"kind"}),
		graphBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "graph_builds_total",
			Help:      "Total number of graphs built",
		}),
		graphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "graph_nodes",
			Help:      "Nodes per built graph",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		graphEdges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "graph_edges_total",
			Help:      "Edges emitted by graph builds",
		}, []string{"type"}),
		graphDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "graph_build_duration_seconds",
			Help:      "Graph build duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		recordsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_ingested_total",
			Help:      "Records written by ingestion",
		}, []string{"kind"}),
		payloadsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "payloads_skipped_total",
			Help:      "Payloads rejected by ingestion",
		}, []string{"kind"}),
	}

	collectors := []prometheus.Collector{
		m.searches, m.emptySearches, m.queryTerms, m.searchResults,
		m.recordsScanned, m.recordsMatched, m.scanFailures,
		m.graphBuilds, m.graphNodes, m.graphEdges, m.graphDuration,
		m.recordsIngested, m.payloadsSkipped,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry returns the registry the collectors live on.
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Monitor) Start(_ string) {
	m.searches.Inc()
}

func (m *Monitor) AfterTermExtraction(terms []string) {
	m.queryTerms.Observe(float64(len(terms)))
}

func (m *Monitor) AfterCollectionScan(kind core.RecordKind, scanned, matched int) {
	m.recordsScanned.WithLabelValues(kind.String()).Add(float64(scanned))
	m.recordsMatched.WithLabelValues(kind.String()).Add(float64(matched))
}

func (m *Monitor) CollectionFailed(kind core.RecordKind, _ error) {
	m.scanFailures.WithLabelValues(kind.String()).Inc()
}

func (m *Monitor) Finish(results []*core.ScoredResult) {
	m.searchResults.Observe(float64(len(results)))
	if len(results) == 0 {
		m.emptySearches.Inc()
	}
}

// ObserveGraph records the size of a built graph and how long it took.
func (m *Monitor) ObserveGraph(data *graph.Data, elapsed time.Duration) {
	if data == nil {
		return
	}
	m.graphBuilds.Inc()
	m.graphNodes.Observe(float64(len(data.Nodes)))
	for _, e := range data.Edges {
		m.graphEdges.WithLabelValues(string(e.Type)).Inc()
	}
	m.graphDuration.Observe(elapsed.Seconds())
}

// ObserveIngest records the outcome of an ingestion run.
func (m *Monitor) ObserveIngest(kind core.RecordKind, stats ingestion.Stats) {
	m.recordsIngested.WithLabelValues(kind.String()).Add(float64(stats.Ingested))
	m.payloadsSkipped.WithLabelValues(kind.String()).Add(float64(stats.Skipped))
}
