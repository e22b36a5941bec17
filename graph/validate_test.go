package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	nodes := func() []*Node {
		return []*Node{{ID: "a"}, {ID: "b"}}
	}
	tests := []struct {
		name string
		data *Data
		want []error
	}{
		{name: "nil", data: nil, want: []error{ErrNilGraph}},
		{name: "valid", data: &Data{
			Nodes: nodes(),
			Edges: []*Edge{{ID: "e", Source: "a", Target: "b", Type: EdgeTypeSimilarity, Weight: 0.5}},
		}},
		{name: "duplicate node", data: &Data{
			Nodes: append(nodes(), &Node{ID: "a"}),
		}, want: []error{ErrDuplicateNode}},
		{name: "dangling and self loop", data: &Data{
			Nodes: nodes(),
			Edges: []*Edge{
				{ID: "e1", Source: "a", Target: "z", Type: EdgeTypeCoAuthor},
				{ID: "e2", Source: "a", Target: "a", Type: EdgeTypeCoAuthor},
			},
		}, want: []error{ErrDanglingEdge, ErrSelfLoop}},
		{name: "duplicate similarity in reverse", data: &Data{
			Nodes: nodes(),
			Edges: []*Edge{
				{ID: "e1", Source: "a", Target: "b", Type: EdgeTypeSimilarity, Weight: 0.6},
				{ID: "e2", Source: "b", Target: "a", Type: EdgeTypeSimilarity, Weight: 0.6},
			},
		}, want: []error{ErrDuplicateEdge}},
		{name: "weak similarity", data: &Data{
			Nodes: nodes(),
			Edges: []*Edge{{ID: "e", Source: "a", Target: "b", Type: EdgeTypeSimilarity, Weight: SimilarityThreshold}},
		}, want: []error{ErrWeakSimilarityEdge}},
		{name: "unknown cluster member", data: &Data{
			Nodes:    nodes(),
			Clusters: []*Cluster{{ID: "c", Members: []string{"a", "x"}}},
		}, want: []error{ErrUnknownClusterMember}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.data)
			if len(tt.want) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	data := &Data{
		Nodes: []*Node{{ID: "a", Type: NodeTypeRecord}, {ID: "b", Type: NodeTypeRecord}, {ID: "r", Type: NodeTypeRepository}},
		Edges: []*Edge{
			{ID: "1", Source: "a", Target: "r", Type: EdgeTypeCoRepository},
			{ID: "2", Source: "b", Target: "r", Type: EdgeTypeCoRepository},
			{ID: "3", Source: "a", Target: "b", Type: EdgeTypeSimilarity, Weight: 0.4},
		},
		Clusters: []*Cluster{{ID: "c"}},
	}
	stats := ComputeStats(data)
	assert.Equal(t, 3, stats.Nodes)
	assert.Equal(t, 3, stats.Edges)
	assert.Equal(t, 1, stats.Clusters)
	assert.Equal(t, 2, stats.NodesByType[NodeTypeRecord])
	assert.Equal(t, 2, stats.EdgesByType[EdgeTypeCoRepository])
	assert.InDelta(t, 1.0, stats.Density, 1e-9)

	assert.Zero(t, ComputeStats(nil).Nodes)
}
