package search

import (
	"github.com/poiesic/issuegraph/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterTermExtraction(terms []string)
	AfterCollectionScan(kind core.RecordKind, scanned, matched int)
	CollectionFailed(kind core.RecordKind, err error)
	Finish(results []*core.ScoredResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                  {}
func (n *noopMonitor) AfterTermExtraction(_ []string)                  {}
func (n *noopMonitor) AfterCollectionScan(_ core.RecordKind, _, _ int) {}
func (n *noopMonitor) CollectionFailed(_ core.RecordKind, _ error)     {}
func (n *noopMonitor) Finish(_ []*core.ScoredResult)                   {}
