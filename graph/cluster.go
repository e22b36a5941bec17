package graph

import "sort"

// assignClusters creates one cluster per distinct non-empty group key.
// Members keep node order; clusters are ordered by name. Centers start at the
// origin and are refined by the layout.
func assignClusters(nodes []*Node) []*Cluster {
	byName := make(map[string]*Cluster)
	for _, n := range nodes {
		if n.Group == "" {
			continue
		}
		c, ok := byName[n.Group]
		if !ok {
			c = &Cluster{
				ID:      "cluster-" + n.Group,
				Name:    n.Group,
				Members: []string{},
				Color:   colorRepository + clusterAlpha,
			}
			byName[n.Group] = c
		}
		c.Members = append(c.Members, n.ID)
	}

	clusters := make([]*Cluster, 0, len(byName))
	for _, c := range byName {
		clusters = append(clusters, c)
	}
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].Name < clusters[j].Name
	})
	return clusters
}
