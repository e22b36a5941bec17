package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/issuegraph/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, search.DefaultLimit, cfg.Search.Limit)
	assert.Equal(t, search.DefaultMinRelevance, cfg.Search.MinRelevance)
	assert.True(t, cfg.Search.IncludePullRequests)
	assert.True(t, cfg.Search.IncludeDiscussions)
	assert.False(t, cfg.Graph.Prefilter)
	assert.Zero(t, cfg.Graph.Seed)
	assert.GreaterOrEqual(t, cfg.Ingestion.PoolSize, 1)
	assert.Equal(t, 100, cfg.Ingestion.BatchSize)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithSearchLimit(25),
		WithMinRelevance(0.5),
		WithPrefilter(true),
		WithLayoutSeed(7),
		WithPoolSize(3),
		WithBatchSize(10),
	)

	assert.Equal(t, 25, cfg.Search.Limit)
	assert.Equal(t, 0.5, cfg.Search.MinRelevance)
	assert.True(t, cfg.Graph.Prefilter)
	assert.Equal(t, uint64(7), cfg.Graph.Seed)
	assert.Equal(t, 3, cfg.Ingestion.PoolSize)
	assert.Equal(t, 10, cfg.Ingestion.BatchSize)

	opts := cfg.SearchOptions()
	assert.Equal(t, 25, opts.Limit)
	assert.Equal(t, 0.5, opts.MinRelevance)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults"},
		{name: "zero limit normalized", opts: []ConfigOption{WithSearchLimit(0)}},
		{name: "zero pool normalized", opts: []ConfigOption{WithPoolSize(0), WithBatchSize(-1)}},
		{name: "relevance above one", opts: []ConfigOption{WithMinRelevance(1.5)}, wantErr: true},
		{name: "negative relevance", opts: []ConfigOption{WithMinRelevance(-0.1)}, wantErr: true},
		{name: "limit too large", opts: []ConfigOption{WithSearchLimit(5000)}, wantErr: true},
		{name: "no retries", mutate: func(c *Config) { c.Ingestion.MaxAttempts = 0 }, wantErr: true},
		{name: "negative delay", mutate: func(c *Config) { c.Ingestion.RetryDelay = -time.Second }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.opts...)
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Positive(t, cfg.Search.Limit)
				assert.Positive(t, cfg.Ingestion.PoolSize)
				assert.Positive(t, cfg.Ingestion.BatchSize)
				return
			}
			require.Error(t, err)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("overrides defaults", func(t *testing.T) {
		path := filepath.Join(dir, "issuegraph.yaml")
		content := `
search:
  limit: 20
  include_discussions: false
graph:
  prefilter: true
  seed: 42
ingestion:
  retry_delay: 250ms
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 20, cfg.Search.Limit)
		assert.Equal(t, search.DefaultMinRelevance, cfg.Search.MinRelevance)
		assert.False(t, cfg.Search.IncludeDiscussions)
		assert.True(t, cfg.Search.IncludePullRequests)
		assert.True(t, cfg.Graph.Prefilter)
		assert.Equal(t, uint64(42), cfg.Graph.Seed)
		assert.Equal(t, 250*time.Millisecond, cfg.Ingestion.RetryDelay)
		assert.Equal(t, 3, cfg.Ingestion.MaxAttempts)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("search:\n  min_relevance: 2\n"), 0o600))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("search: [\n"), 0o600))
		_, err := LoadFile(path)
		assert.ErrorContains(t, err, "parsing")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
