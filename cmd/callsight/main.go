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
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/callvista/callsight"
	"github.com/callvista/callsight/ai"
	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/gong"
	"github.com/callvista/callsight/ingestion"
	"github.com/callvista/callsight/reembed"
	"github.com/callvista/callsight/search"
)

func main() {
	app := &cli.App{
		Name:  "callsight",
		Usage: "Sales call analysis and retrieval over Gong transcripts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "callsight.db",
			},
			&cli.StringFlag{
				Name:    "ai-host",
				Usage:   "OpenAI-compatible API host",
				EnvVars: []string{"OPENAI_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "ai-token",
				Usage:   "API token for the AI host",
				EnvVars: []string{"OPENAI_API_KEY"},
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
			},
			&cli.StringFlag{
				Name:  "analysis-model",
				Usage: "Model used for transcript analysis",
			},
			&cli.StringFlag{
				Name:  "chat-model",
				Usage: "Model used for chat replies (defaults to analysis model)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest calls from Gong into the local database",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "gong-url",
						Usage:   "Gong API base URL",
						Value:   "https://us-4637.api.gong.io",
						EnvVars: []string{"GONG_BASE_URL"},
					},
					&cli.StringFlag{
						Name:    "gong-access-key",
						Usage:   "Gong API access key",
						EnvVars: []string{"GONG_ACCESS_KEY"},
					},
					&cli.StringFlag{
						Name:    "gong-secret",
						Usage:   "Gong API access key secret",
						EnvVars: []string{"GONG_ACCESS_KEY_SECRET"},
					},
					&cli.TimestampFlag{
						Name:   "from",
						Usage:  "Start of the call window (RFC 3339)",
						Layout: time.RFC3339,
					},
					&cli.TimestampFlag{
						Name:   "to",
						Usage:  "End of the call window (RFC 3339)",
						Layout: time.RFC3339,
					},
					&cli.DurationFlag{
						Name:  "min-duration",
						Usage: "Skip calls shorter than this",
						Value: ingestion.DefaultMinCallDuration,
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Interactive chat over ingested calls",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Start with the recency filter disabled",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search one corpus for a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "corpus",
						Usage: "Corpus to search (summaries, segments, features)",
						Value: "summaries",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity (0 uses the corpus default)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum results (0 uses the corpus default)",
					},
					&cli.BoolFlag{
						Name:  "recent",
						Usage: "Restrict to the trailing recency window",
						Value: true,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embeddings for all stored rows",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of rows to embed per API call",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N rows",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Export calls and feature requests to a spreadsheet",
				Action: exportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output .xlsx path",
						Value:   "callsight.xlsx",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) error {
	// Missing .env is fine, flags and real env still apply
	_ = godotenv.Load()
	return setupLogger(c)
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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openDatabase builds the Database from the app-level flags.
func openDatabase(c *cli.Context) (*callsight.Database, error) {
	var opts []ai.ConfigOption
	if host := c.String("ai-host"); host != "" {
		opts = append(opts, ai.WithHost(host))
	}
	if token := c.String("ai-token"); token != "" {
		opts = append(opts, ai.WithToken(token))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("analysis-model"); model != "" {
		opts = append(opts, ai.WithAnalysisModel(model))
	}
	if model := c.String("chat-model"); model != "" {
		opts = append(opts, ai.WithChatModel(model))
	}

	aiConfig := ai.NewConfig(opts...)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return callsight.NewDatabase(c.String("db"), callsight.WithAIConfig(aiConfig))
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	accessKey := c.String("gong-access-key")
	secret := c.String("gong-secret")
	if accessKey == "" || secret == "" {
		return fmt.Errorf("gong-access-key and gong-secret are required")
	}

	to := time.Now()
	if t := c.Timestamp("to"); t != nil && !t.IsZero() {
		to = *t
	}
	from := to.Add(-30 * 24 * time.Hour)
	if t := c.Timestamp("from"); t != nil && !t.IsZero() {
		from = *t
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	client := gong.NewClient(c.String("gong-url"), accessKey, secret)
	pipeline, err := db.NewIngestionPipeline(client,
		ingestion.WithMinCallDuration(c.Duration("min-duration")))
	if err != nil {
		return err
	}

	stats, err := pipeline.Run(ctx, from, to)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Listed %d calls: %d ingested, %d skipped, %d failed\n",
		stats.Listed, stats.Ingested, stats.Skipped, stats.Failed)
	return nil
}

func chatCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	session, err := db.NewChatSession()
	if err != nil {
		return err
	}
	if c.Bool("all") {
		session.SetRecencyFilter(false)
	}

	fmt.Println("Welcome to Call Explorer! Ask me anything about your calls.")
	fmt.Println("Commands: /all, /recent, /quit")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "/quit", "quit", "exit", "bye":
			fmt.Println("Goodbye!")
			return nil
		case "/all":
			session.SetRecencyFilter(false)
			fmt.Println("Recency filter disabled; searching all calls.")
			continue
		case "/recent":
			session.SetRecencyFilter(true)
			fmt.Println("Recency filter enabled; searching recent calls only.")
			continue
		}

		reply, err := session.Ask(ctx, input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Printf("\nAssistant:\n%s\n", reply)
	}
	return scanner.Err()
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	var corpus core.Corpus
	switch c.String("corpus") {
	case "summaries":
		corpus = core.CorpusSummaries
	case "segments":
		corpus = core.CorpusSegments
	case "features":
		corpus = core.CorpusFeatures
	default:
		return fmt.Errorf("invalid corpus %q: must be one of summaries, segments, features", c.String("corpus"))
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	results, err := searcher.Search(ctx, search.Request{
		Corpus:    corpus,
		Query:     query,
		Threshold: float32(c.Float64("threshold")),
		Limit:     c.Int("limit"),
		Recent:    c.Bool("recent"),
	})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, result := range results {
		fmt.Printf("%d. [%.3f] Call %d - %s\n%s\n\n", i+1, result.Similarity, result.CallId, result.Title, result.Content)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Workers:        3,
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n\n", c.String("db"))

	if err := db.NewReembedder(config, os.Stderr).Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func exportCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	out := c.String("out")
	if err := db.NewExcelExporter().Export(ctx, out); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", out)
	return nil
}
