package graph

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of a built graph: unique node
// IDs, edges that reference existing distinct nodes, at most one edge per
// (type, endpoints) and similarity weights above the threshold. Cluster
// members must be nodes of the graph. All violations are joined.
func Validate(data *Data) error {
	if data == nil {
		return ErrNilGraph
	}

	var errs []error
	nodes := make(map[string]struct{}, len(data.Nodes))
	for _, n := range data.Nodes {
		if _, ok := nodes[n.ID]; ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID))
			continue
		}
		nodes[n.ID] = struct{}{}
	}

	edges := make(map[string]struct{}, len(data.Edges))
	for _, e := range data.Edges {
		if e.Source == e.Target {
			errs = append(errs, fmt.Errorf("%w: %s", ErrSelfLoop, e.ID))
		}
		if _, ok := nodes[e.Source]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, e.ID, e.Source))
		}
		if _, ok := nodes[e.Target]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, e.ID, e.Target))
		}
		key := edgeID(e.Type, e.Source, e.Target)
		if _, ok := edges[key]; ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateEdge, key))
		}
		edges[key] = struct{}{}
		if e.Type == EdgeTypeSimilarity && e.Weight <= SimilarityThreshold {
			errs = append(errs, fmt.Errorf("%w: %s weight %.2f", ErrWeakSimilarityEdge, e.ID, e.Weight))
		}
	}

	for _, c := range data.Clusters {
		for _, m := range c.Members {
			if _, ok := nodes[m]; !ok {
				errs = append(errs, fmt.Errorf("%w: %s in %s", ErrUnknownClusterMember, m, c.ID))
			}
		}
	}

	return errors.Join(errs...)
}
