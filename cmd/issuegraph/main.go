// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/issuegraph"
	"github.com/poiesic/issuegraph/config"
	"github.com/poiesic/issuegraph/core"
	"github.com/poiesic/issuegraph/graph"
	"github.com/poiesic/issuegraph/ingestion"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "issuegraph",
		Usage: "Relevance search and relationship graphs over issues, pull requests and discussions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return loadConfig(c)
		},
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Load issue, pull request or discussion payloads from a JSON or JSON lines file",
				Action: ingestCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "kind",
						Aliases:  []string{"k"},
						Usage:    "Payload kind (issue, pull_request, discussion)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Payload file, or - for stdin",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Rank stored records against a query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags:     append([]cli.Flag{dbFlag()}, searchFlags()...),
			},
			{
				Name:      "graph",
				Usage:     "Build a relationship graph of the records matching a query",
				ArgsUsage: "QUERY...",
				Action:    graphCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (json, dot)",
						Value: "json",
					},
					&cli.Uint64Flag{
						Name:  "seed",
						Usage: "Layout seed for reproducible positions (0 for random)",
					},
					&cli.BoolFlag{
						Name:  "prefilter",
						Usage: "Only compare records sharing a repository, author or label",
					},
				}, searchFlags()...),
			},
			{
				Name:   "stats",
				Usage:  "Count stored records by kind",
				Action: statsCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of results",
		},
		&cli.Float64Flag{
			Name:  "min-relevance",
			Usage: "Drop results scoring below this value",
		},
		&cli.BoolFlag{
			Name:  "no-pull-requests",
			Usage: "Do not search pull requests",
		},
		&cli.BoolFlag{
			Name:  "no-discussions",
			Usage: "Do not search discussions",
		},
	}
}

// applySearchFlags overrides the configured search defaults with flags that were set.
func applySearchFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("limit") {
		cfg.Search.Limit = c.Int("limit")
	}
	if c.IsSet("min-relevance") {
		cfg.Search.MinRelevance = c.Float64("min-relevance")
	}
	if c.Bool("no-pull-requests") {
		cfg.Search.IncludePullRequests = false
	}
	if c.Bool("no-discussions") {
		cfg.Search.IncludeDiscussions = false
	}
}

func loadConfig(c *cli.Context) error {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func currentConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func openEngine(c *cli.Context, cfg *config.Config) (*issuegraph.Engine, error) {
	engine, err := issuegraph.NewEngine(c.String("db"), issuegraph.WithConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return engine, nil
}

func queryArg(c *cli.Context) (string, error) {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return "", fmt.Errorf("a query is required")
	}
	return query, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	kind, err := core.ParseRecordKind(c.String("kind"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c, currentConfig(c))
	if err != nil {
		return err
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestionPipeline(ingestion.WithProgress(c.App.ErrWriter))
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	stats, err := pipeline.IngestFile(ctx, kind, c.String("file"))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "ingested %d of %d %s payloads (%d skipped) in %s\n",
		stats.Ingested, stats.Received, kind, stats.Skipped, stats.Duration.Round(time.Millisecond))
	return nil
}

func searchCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}

	cfg := currentConfig(c)
	applySearchFlags(c, cfg)
	engine, err := openEngine(c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	results := engine.Search(context.Background(), query, nil)
	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "no matching records")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(c.App.Writer, "%.2f  %-12s  %s#%d  %s  [%s]\n",
			r.RelevanceScore, r.Record.Kind, r.Record.Repository, r.Record.Number, r.Record.Title, r.MatchType)
	}
	return nil
}

func graphCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}
	format := strings.ToLower(c.String("format"))
	if format != "json" && format != "dot" {
		return fmt.Errorf("invalid format %q: must be json or dot", format)
	}

	cfg := currentConfig(c)
	applySearchFlags(c, cfg)
	if c.IsSet("seed") {
		cfg.Graph.Seed = c.Uint64("seed")
	}
	if c.IsSet("prefilter") {
		cfg.Graph.Prefilter = c.Bool("prefilter")
	}

	engine, err := openEngine(c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	data := engine.BuildGraph(context.Background(), query, nil)
	if err := graph.Validate(data); err != nil {
		slog.Warn("graph failed validation", "err", err)
	}

	if format == "dot" {
		_, err = fmt.Fprint(c.App.Writer, graph.ExportDOT(data))
		return err
	}
	out, err := graph.ExportJSON(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}

func statsCommand(c *cli.Context) error {
	engine, err := openEngine(c, currentConfig(c))
	if err != nil {
		return err
	}
	defer engine.Close()

	stats, err := engine.Stats(context.Background())
	if err != nil {
		return err
	}
	for _, kind := range core.RecordKinds {
		fmt.Fprintf(c.App.Writer, "%-14s %d\n", kind.String()+":", stats.ByKind[kind])
	}
	fmt.Fprintf(c.App.Writer, "%-14s %d\n", "total:", stats.Total)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	writer := c.App.ErrWriter
	if writer == nil {
		writer = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	})))

	return nil
}
