// Package metrics exposes search, graph and ingestion activity as Prometheus
// metrics. A Monitor plugs into a search.Searcher as its SearchMonitor.
package metrics
