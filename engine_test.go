package issuegraph

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/issuegraph/config"
	"github.com/poiesic/issuegraph/core"
	"github.com/poiesic/issuegraph/graph"
	"github.com/poiesic/issuegraph/metrics"
	"github.com/poiesic/issuegraph/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine("", append([]EngineOption{WithInMemory()}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func raw(payloads ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(payloads))
	for i, p := range payloads {
		out[i] = json.RawMessage(p)
	}
	return out
}

func seedCorpus(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()

	_, err := e.Ingest(ctx, core.RecordKindIssue, raw(
		`{"number": 1, "title": "Fix login bug", "repository": "acme/app", "user": {"login": "alice"}, "labels": ["bug", "auth"]}`,
		`{"number": 2, "title": "Login error", "repository": "acme/app", "user": {"login": "alice"}, "labels": ["bug"]}`,
		`{"number": 3, "title": "Dark mode", "body": "Theme resets after login, login and login again", "repository": "acme/app", "user": {"login": "bob"}, "labels": ["ui"]}`,
	))
	require.NoError(t, err)

	_, err = e.Ingest(ctx, core.RecordKindPullRequest, raw(
		`{"number": 4, "title": "Handle login timeout", "base": {"repo": {"full_name": "acme/api"}}, "user": {"login": "carol"}, "merged": true}`,
	))
	require.NoError(t, err)

	_, err = e.Ingest(ctx, core.RecordKindDiscussion, raw(
		`{"number": 5, "title": "Login redesign ideas", "repository": "acme/app", "author": {"login": "dave"}}`,
	))
	require.NoError(t, err)
}

func TestNewEngine(t *testing.T) {
	t.Run("on disk", func(t *testing.T) {
		e, err := NewEngine(filepath.Join(t.TempDir(), "db"))
		require.NoError(t, err)
		assert.NotNil(t, e.Records())
		assert.NotNil(t, e.Config())
		require.NoError(t, e.Close())
	})

	t.Run("path is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		e, err := NewEngine(path)
		assert.Error(t, err)
		assert.Nil(t, e)
	})

	t.Run("invalid config", func(t *testing.T) {
		e, err := NewEngine("", WithInMemory(), WithConfig(config.NewConfig(config.WithMinRelevance(3))))
		assert.Error(t, err)
		assert.Nil(t, e)
	})

	t.Run("nil config and logger use defaults", func(t *testing.T) {
		e := newTestEngine(t, WithConfig(nil), WithLogger(nil))
		assert.Equal(t, search.DefaultLimit, e.Config().Search.Limit)
	})
}

func TestEngine_SearchAndGraph(t *testing.T) {
	ctx := context.Background()
	monitor, err := metrics.NewMonitor(nil)
	require.NoError(t, err)
	e := newTestEngine(t,
		WithMetrics(monitor),
		WithConfig(config.NewConfig(config.WithLayoutSeed(3))),
	)
	seedCorpus(t, e)

	results := e.Search(ctx, "login", nil)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.Contains(t, strings.ToLower(r.Record.Title+" "+r.Record.Body), "login")
	}

	issuesOnly := e.Search(ctx, "login", &search.Options{Limit: 10, MinRelevance: 0.3})
	require.Len(t, issuesOnly, 3)
	last := issuesOnly[len(issuesOnly)-1]
	assert.Equal(t, "Dark mode", last.Record.Title)
	assert.Equal(t, core.MatchTypeBody, last.MatchType)
	assert.InDelta(t, 0.3, last.RelevanceScore, 1e-9)

	data := e.BuildGraph(ctx, "login", nil)
	require.NoError(t, graph.Validate(data))
	assert.Equal(t, 5, data.Stats.NodesByType[graph.NodeTypeRecord])
	assert.Equal(t, 2, data.Stats.NodesByType[graph.NodeTypeRepository])
	assert.Equal(t, 1, data.Stats.NodesByType[graph.NodeTypeLabel])
	assert.NotZero(t, data.Stats.EdgesByType[graph.EdgeTypeSimilarity])

	again := e.BuildGraph(ctx, "login", nil)
	for i := range data.Nodes {
		assert.Equal(t, data.Nodes[i].ID, again.Nodes[i].ID)
		assert.Equal(t, data.Nodes[i].Position, again.Nodes[i].Position)
	}

	empty := e.BuildGraph(ctx, "the and", nil)
	assert.Empty(t, empty.Nodes)

	assert.Equal(t, 5.0, counterValue(t, monitor, "issuegraph_searches_total"))
	assert.Equal(t, 3.0, counterValue(t, monitor, "issuegraph_graph_builds_total"))
	assert.Equal(t, 5.0, counterValue(t, monitor, "issuegraph_records_ingested_total"))
}

// counterValue sums a counter family across its label values.
func counterValue(t *testing.T, m *metrics.Monitor, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		total := 0.0
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func TestEngine_GraphRecords(t *testing.T) {
	e := newTestEngine(t)
	seedCorpus(t, e)

	data, err := e.GraphRecords(context.Background(), core.RecordKindIssue)
	require.NoError(t, err)
	require.NoError(t, graph.Validate(data))
	assert.Equal(t, 3, data.Stats.NodesByType[graph.NodeTypeRecord])
	for _, n := range data.Nodes {
		if n.Type == graph.NodeTypeRecord {
			assert.Nil(t, n.Metadata.RelevanceScore)
		}
	}
}

func TestEngine_IngestFileAndStats(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	path := filepath.Join(t.TempDir(), "issues.json")
	content := `[
		{"number": 10, "title": "Crash on save", "repository": "acme/app"},
		{"number": 11, "title": "", "body": "no title given", "repository": "acme/app"},
		{"number": -1, "title": "Bad number"},
		{"number": 12, "title": "Slow startup", "repository": "acme/app"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	ingested, err := e.IngestFile(ctx, core.RecordKindIssue, path)
	require.NoError(t, err)
	assert.Equal(t, 3, ingested.Ingested)
	assert.Equal(t, 1, ingested.Skipped)

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.ByKind[core.RecordKindIssue])
	assert.Zero(t, stats.ByKind[core.RecordKindDiscussion])
}

func TestEngine_SearchAfterClose(t *testing.T) {
	e, err := NewEngine("", WithInMemory())
	require.NoError(t, err)
	seedCorpus(t, e)
	require.NoError(t, e.Close())

	results := e.Search(context.Background(), "login", nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}
