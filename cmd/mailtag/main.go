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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/mailtag/ai"
	"github.com/poiesic/mailtag/ai/anthropic"
	"github.com/poiesic/mailtag/ai/openai"
	"github.com/poiesic/mailtag/config"
	"github.com/poiesic/mailtag/index"
	"github.com/poiesic/mailtag/render"
	"github.com/poiesic/mailtag/search"
	"github.com/poiesic/mailtag/tagging"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "mailtag",
		Usage: "Tag email screenshots with a vision model and retrieve them by similarity",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "tag",
				Usage:  "Tag all untagged images in the corpus via the batch API",
				Action: tagCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index-name",
						Aliases:  []string{"n"},
						Usage:    "Tag-set collection name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "prompt",
						Usage: "Data extraction prompt sent with every image",
					},
					&cli.StringFlag{
						Name:  "prompt-file",
						Usage: "File containing the data extraction prompt",
					},
					&cli.StringSliceFlag{
						Name:  "ignore-tag",
						Usage: "Tag name to strip from every payload (repeatable)",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Vision model identifier",
						Value: "claude-3-5-sonnet-20241022",
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Output token ceiling per tagging response",
						Value: 1000,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of images to submit in each batch job",
						Value: tagging.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "max-poll-attempts",
						Usage: "Maximum status checks per batch job",
						Value: tagging.DefaultMaxPollAttempts,
					},
					&cli.DurationFlag{
						Name:  "poll-delay",
						Usage: "Base delay for poll backoff",
						Value: tagging.DefaultPollBaseDelay,
					},
					&cli.DurationFlag{
						Name:  "poll-max-delay",
						Usage: "Cap on the poll backoff",
						Value: tagging.DefaultPollMaxDelay,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for batch submission",
						Value: tagging.DefaultSubmitRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for submission backoff",
						Value: tagging.DefaultSubmitRetryDelay,
					},
				},
			},
			{
				Name:   "tag-one",
				Usage:  "Tag a single image synchronously and print the tag set",
				Action: tagOneCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "image",
						Aliases:  []string{"i"},
						Usage:    "Path to the image file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "prompt",
						Usage: "Data extraction prompt",
					},
					&cli.StringFlag{
						Name:  "prompt-file",
						Usage: "File containing the data extraction prompt",
					},
					&cli.StringSliceFlag{
						Name:  "ignore-tag",
						Usage: "Tag name to strip from the payload (repeatable)",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Vision model identifier",
						Value: "claude-3-5-sonnet-20241022",
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Output token ceiling for the response",
						Value: 1000,
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Embed persisted tag sets and write a vector index snapshot",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index-name",
						Aliases:  []string{"n"},
						Usage:    "Tag-set collection name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Number of tag sets to embed per API call",
						Value: index.DefaultEmbedChunkSize,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Query the index and render matching images as HTML",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index-name",
						Aliases:  []string{"n"},
						Usage:    "Tag-set collection name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Search query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results to return",
						Value: search.DefaultTopK,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "HTML output file (stdout if omitted)",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func tagCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg := config.Load()
	if err := cfg.ValidateTagging(); err != nil {
		return err
	}

	prompt, err := resolvePrompt(c)
	if err != nil {
		return err
	}

	aiConfig := ai.NewConfig(
		ai.WithAPIKey(cfg.APIKey),
		ai.WithTaggingModel(c.String("model")),
		ai.WithMaxTokens(c.Int("max-tokens")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	svc, err := anthropic.NewBatchService(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create batch service: %w", err)
	}

	pipelineConfig := &tagging.Config{
		BatchSize:        c.Int("batch-size"),
		MaxPollAttempts:  c.Int("max-poll-attempts"),
		PollBaseDelay:    c.Duration("poll-delay"),
		PollMaxDelay:     c.Duration("poll-max-delay"),
		SubmitRetries:    c.Int("max-retries"),
		SubmitRetryDelay: c.Duration("retry-delay"),
		ReportInterval:   c.Int("batch-size"),
	}
	if pipelineConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if pipelineConfig.MaxPollAttempts <= 0 {
		return fmt.Errorf("max-poll-attempts must be greater than 0")
	}
	if pipelineConfig.SubmitRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	pipeline, err := tagging.NewPipeline(svc, pipelineConfig)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	indexName := c.String("index-name")
	fmt.Fprintf(os.Stderr, "Images: %s\n", cfg.ImagesDir())
	fmt.Fprintf(os.Stderr, "Tag sets: %s\n", cfg.TagSetsDir(indexName))
	fmt.Fprintf(os.Stderr, "Model: %s\n", c.String("model"))
	fmt.Fprintln(os.Stderr)

	summary, err := pipeline.Run(ctx, tagging.RunParams{
		ImagesDir:    cfg.ImagesDir(),
		TagsDir:      cfg.TagSetsDir(indexName),
		Prompt:       prompt,
		TagsToIgnore: c.StringSlice("ignore-tag"),
		BatchSize:    c.Int("batch-size"),
	})
	if err != nil {
		return fmt.Errorf("tagging failed: %w", err)
	}

	for _, failure := range summary.Failures {
		slog.Warn("item not tagged",
			"id", failure.ID,
			"kind", failure.Kind.String(),
			"err", failure.Err)
	}

	return nil
}

func tagOneCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg := config.Load()
	if cfg.APIKey == "" {
		return fmt.Errorf("%s must be set", config.EnvAPIKey)
	}

	prompt, err := resolvePrompt(c)
	if err != nil {
		return err
	}

	aiConfig := ai.NewConfig(
		ai.WithAPIKey(cfg.APIKey),
		ai.WithTaggingModel(c.String("model")),
		ai.WithMaxTokens(c.Int("max-tokens")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	tagger, err := anthropic.NewTagger(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create tagger: %w", err)
	}

	tags, err := tagging.TagOne(ctx, tagger, nil, c.String("image"), prompt, c.StringSlice("ignore-tag"))
	if err != nil {
		return fmt.Errorf("tagging failed: %w", err)
	}

	out, err := json.MarshalIndent(tags, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	idx := index.NewMemoryIndex()
	builder, err := index.NewBuilder(idx, embedder, index.WithChunkSize(c.Int("chunk-size")))
	if err != nil {
		return fmt.Errorf("failed to create index builder: %w", err)
	}

	indexName := c.String("index-name")
	tagsDir := cfg.TagSetsDir(indexName)

	fmt.Fprintf(os.Stderr, "Tag sets: %s\n", tagsDir)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	total, err := builder.BuildFromDir(ctx, tagsDir)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	snapshotPath := cfg.IndexSnapshotPath(indexName)
	if err := os.MkdirAll(filepath.Dir(snapshotPath), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := idx.Save(snapshotPath); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Indexed %d tag sets to %s\n", total, snapshotPath)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	indexName := c.String("index-name")
	idx, err := index.LoadMemoryIndex(cfg.IndexSnapshotPath(indexName))
	if err != nil {
		return err
	}

	searcher, err := search.NewSearcher(idx, embedder, cfg.ImagesDir(),
		search.WithTopK(c.Int("top-k")))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	query := c.String("query")
	results, err := searcher.SearchTags(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	paths := make([]string, 0, len(results))
	for _, r := range results {
		fmt.Fprintf(os.Stderr, "%s (score %.4f)\n", r.ID, r.Score)
		if r.ImagePath != "" {
			paths = append(paths, r.ImagePath)
		}
	}

	section, err := render.NewSection(query, paths)
	if err != nil {
		return err
	}
	html, err := render.ResultsHTML([]render.Section{section})
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
		return nil
	}

	fmt.Println(html)
	return nil
}

// resolvePrompt returns the data extraction prompt from --prompt or
// --prompt-file. Exactly one must be provided.
func resolvePrompt(c *cli.Context) (string, error) {
	prompt := c.String("prompt")
	promptFile := c.String("prompt-file")

	switch {
	case prompt != "" && promptFile != "":
		return "", fmt.Errorf("prompt and prompt-file are mutually exclusive")
	case prompt != "":
		return prompt, nil
	case promptFile != "":
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return "", fmt.Errorf("reading prompt file: %w", err)
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			return "", fmt.Errorf("prompt file %s is empty", promptFile)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("either prompt or prompt-file is required")
	}
}

func newEmbedder(c *cli.Context) (ai.Embedder, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.ValidateEmbedding(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
