package graph

import (
	"testing"
	"time"

	"github.com/poiesic/issuegraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(kind core.RecordKind, repo string, number int, title, author string, labels ...string) *core.Record {
	r := &core.Record{
		Kind:       kind,
		Number:     number,
		Title:      title,
		State:      core.RecordStateOpen,
		Repository: repo,
		Author:     core.User{Login: author},
		CreatedAt:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, l := range labels {
		r.Labels = append(r.Labels, core.Label{Name: l})
	}
	return r
}

func scored(r *core.Record, score float64) *core.ScoredResult {
	return &core.ScoredResult{Record: r, RelevanceScore: score, MatchType: core.MatchTypeTitle}
}

func newTestBuilder(t *testing.T, opts ...Option) *Builder {
	t.Helper()
	b, err := NewBuilder(append([]Option{WithLayout(NewLayout(WithSeed(42)))}, opts...)...)
	require.NoError(t, err)
	return b
}

func edgesOfType(d *Data, t EdgeType) []*Edge {
	var out []*Edge
	for _, e := range d.Edges {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func TestBuild_SimilarIssuesSameRepo(t *testing.T) {
	a := record(core.RecordKindIssue, "acme/app", 1, "Fix login bug", "alice", "bug", "auth")
	b := record(core.RecordKindIssue, "acme/app", 2, "Login error", "alice", "bug")

	sim := Similarity(a, b)
	assert.Greater(t, sim, 0.5)

	data := newTestBuilder(t).Build([]*core.ScoredResult{scored(a, 0.9), scored(b, 0.6)})

	assert.Equal(t, 2, data.Stats.NodesByType[NodeTypeRecord])
	assert.Equal(t, 1, data.Stats.NodesByType[NodeTypeRepository])
	assert.Equal(t, 1, data.Stats.NodesByType[NodeTypeUser])
	assert.Equal(t, 1, data.Stats.NodesByType[NodeTypeLabel], "only 'bug' is shared")

	simEdges := edgesOfType(data, EdgeTypeSimilarity)
	require.Len(t, simEdges, 1)
	assert.InDelta(t, sim, simEdges[0].Weight, 1e-9)
	assert.Len(t, edgesOfType(data, EdgeTypeSharedLabel), 2)
	assert.NoError(t, Validate(data))
}

func TestBuild_DisjointRepositories(t *testing.T) {
	a := record(core.RecordKindIssue, "acme/app", 1, "Crash on start", "alice", "bug")
	b := record(core.RecordKindPullRequest, "acme/api", 7, "Add pagination", "bob", "feature")

	data := newTestBuilder(t).Build([]*core.ScoredResult{scored(a, 0.5), scored(b, 0.5)})

	assert.Equal(t, 2, data.Stats.NodesByType[NodeTypeRepository])
	assert.Zero(t, data.Stats.NodesByType[NodeTypeLabel])
	assert.Len(t, edgesOfType(data, EdgeTypeCoRepository), 2)
	assert.Empty(t, edgesOfType(data, EdgeTypeSimilarity))
	assert.Empty(t, edgesOfType(data, EdgeTypeSharedLabel))

	require.Len(t, data.Clusters, 2)
	assert.Equal(t, "acme/api", data.Clusters[0].Name)
	assert.Equal(t, "acme/app", data.Clusters[1].Name)
}

func TestBuild_Empty(t *testing.T) {
	data := newTestBuilder(t).Build(nil)

	assert.NotEmpty(t, data.ID)
	assert.Empty(t, data.Nodes)
	assert.Empty(t, data.Edges)
	assert.Empty(t, data.Clusters)
	assert.Zero(t, data.Stats.Density)
	assert.NoError(t, Validate(data))
}

func TestBuild_RecordNodeSizing(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"zero", 0, 10},
		{"half", 0.5, 20},
		{"full", 1, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := record(core.RecordKindDiscussion, "acme/app", 3, "Roadmap", "carol")
			data := newTestBuilder(t).Build([]*core.ScoredResult{scored(r, tt.score)})
			n := data.Node(recordNodeID(r))
			require.NotNil(t, n)
			assert.InDelta(t, tt.want, n.Size, 1e-9)
			assert.Equal(t, colorDiscussion, n.Color)
			require.NotNil(t, n.Metadata.RelevanceScore)
			assert.InDelta(t, tt.score, *n.Metadata.RelevanceScore, 1e-9)
		})
	}
}

func TestBuildFromRecords_Unscored(t *testing.T) {
	r := record(core.RecordKindIssue, "acme/app", 1, "Flaky test", "alice")
	data := newTestBuilder(t).BuildFromRecords([]*core.Record{r, nil})

	n := data.Node(recordNodeID(r))
	require.NotNil(t, n)
	assert.Nil(t, n.Metadata.RelevanceScore)
	assert.InDelta(t, 20.0, n.Size, 1e-9)
}

func TestBuild_DuplicateRecordsCollapse(t *testing.T) {
	r := record(core.RecordKindIssue, "acme/app", 1, "Flaky test", "alice")
	data := newTestBuilder(t).Build([]*core.ScoredResult{scored(r, 0.9), scored(r, 0.4)})

	assert.Equal(t, 1, data.Stats.NodesByType[NodeTypeRecord])
	n := data.Node(recordNodeID(r))
	require.NotNil(t, n)
	assert.InDelta(t, 0.9, *n.Metadata.RelevanceScore, 1e-9)
	assert.NoError(t, Validate(data))
}

func TestBuild_MissingRepositoryAndAuthor(t *testing.T) {
	r := record(core.RecordKindIssue, "", 4, "Orphan", "")
	data := newTestBuilder(t).Build([]*core.ScoredResult{scored(r, 0.5)})

	require.Len(t, data.Nodes, 1)
	assert.Empty(t, data.Edges)
	assert.Empty(t, data.Clusters)
	assert.Nil(t, data.Nodes[0].Position)
}

func TestBuild_LabelCap(t *testing.T) {
	var results []*core.ScoredResult
	labels := []string{"l00", "l01", "l02", "l03", "l04", "l05", "l06", "l07", "l08", "l09", "l10", "l11"}
	for i := range 3 {
		results = append(results, scored(record(core.RecordKindIssue, "acme/app", i+1, "Item", "alice", labels...), 0.5))
	}
	// l00 appears on a fourth record, so it ranks first
	results = append(results, scored(record(core.RecordKindIssue, "acme/app", 4, "Other", "bob", "l00"), 0.5))

	data := newTestBuilder(t).Build(results)

	assert.Equal(t, MaxLabelNodes, data.Stats.NodesByType[NodeTypeLabel])
	assert.NotNil(t, data.Node(labelNodeID("l00")))
	assert.Nil(t, data.Node(labelNodeID("l10")), "ties are broken by name")
	assert.Nil(t, data.Node(labelNodeID("l11")))
	assert.NoError(t, Validate(data))
}

func TestBuild_Idempotent(t *testing.T) {
	results := []*core.ScoredResult{
		scored(record(core.RecordKindIssue, "acme/app", 1, "Fix login bug", "alice", "bug"), 0.9),
		scored(record(core.RecordKindIssue, "acme/app", 2, "Login error", "bob", "bug"), 0.7),
		scored(record(core.RecordKindPullRequest, "acme/api", 3, "Fix login redirect", "alice", "bug"), 0.6),
	}
	b := newTestBuilder(t)
	first := b.Build(results)
	second := b.Build(results)

	ids := func(d *Data) ([]string, []string) {
		var n, e []string
		for _, x := range d.Nodes {
			n = append(n, x.ID)
		}
		for _, x := range d.Edges {
			e = append(e, x.ID)
		}
		return n, e
	}
	n1, e1 := ids(first)
	n2, e2 := ids(second)
	assert.Equal(t, n1, n2)
	assert.Equal(t, e1, e2)
	assert.NotEqual(t, first.ID, second.ID)

	for i := range first.Nodes {
		assert.Equal(t, first.Nodes[i].Position, second.Nodes[i].Position, "seeded layout is reproducible")
	}
}

func TestBuild_CandidatePrefilter(t *testing.T) {
	// Same title, no shared repository, author or label
	a := record(core.RecordKindIssue, "acme/app", 1, "memory leak in parser", "alice")
	b := record(core.RecordKindIssue, "acme/api", 2, "memory leak in parser", "bob")
	results := []*core.ScoredResult{scored(a, 0.5), scored(b, 0.5)}

	full := newTestBuilder(t).Build(results)
	assert.Len(t, edgesOfType(full, EdgeTypeSimilarity), 1)

	filtered := newTestBuilder(t, WithCandidatePrefilter(true)).Build(results)
	assert.Empty(t, edgesOfType(filtered, EdgeTypeSimilarity))
}

func TestBuild_NoLayout(t *testing.T) {
	r := record(core.RecordKindIssue, "acme/app", 1, "Flaky test", "alice")
	b, err := NewBuilder(WithLayout(nil), WithLogger(nil))
	require.NoError(t, err)

	data := b.Build([]*core.ScoredResult{scored(r, 0.5)})
	for _, n := range data.Nodes {
		assert.Nil(t, n.Position)
	}
}
