package graph

// ComputeStats counts nodes, edges and clusters. Density is
// edges / (n(n-1)/2), or 0 for graphs with fewer than two nodes.
func ComputeStats(data *Data) Stats {
	stats := Stats{
		NodesByType: make(map[NodeType]int),
		EdgesByType: make(map[EdgeType]int),
	}
	if data == nil {
		return stats
	}

	stats.Nodes = len(data.Nodes)
	stats.Edges = len(data.Edges)
	stats.Clusters = len(data.Clusters)
	for _, n := range data.Nodes {
		stats.NodesByType[n.Type]++
	}
	for _, e := range data.Edges {
		stats.EdgesByType[e.Type]++
	}

	if stats.Nodes > 1 {
		pairs := float64(stats.Nodes) * float64(stats.Nodes-1) / 2
		stats.Density = float64(stats.Edges) / pairs
	}
	return stats
}
