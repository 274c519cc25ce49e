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


package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/mailtag/ai"
	"github.com/poiesic/mailtag/core"
	"github.com/poiesic/mailtag/corpus"
)

// DefaultEmbedChunkSize is the number of tag sets embedded per API call.
const DefaultEmbedChunkSize = 50

// Builder embeds persisted tag-set files and upserts them into a vector
// index in fixed-size chunks.
type Builder struct {
	index     VectorIndex
	embedder  ai.Embedder
	chunkSize int
	logger    *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithChunkSize sets the number of tag sets embedded per call.
// Default is DefaultEmbedChunkSize.
func WithChunkSize(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.chunkSize = n
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates an index builder.
func NewBuilder(idx VectorIndex, embedder ai.Embedder, opts ...BuilderOption) (*Builder, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	b := &Builder{
		index:     idx,
		embedder:  embedder,
		chunkSize: DefaultEmbedChunkSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// BuildFromDir embeds every tag-set file under tagsDir and upserts the
// resulting vectors. Unreadable or malformed tag files are skipped with a
// warning, mirroring the pipeline's per-item isolation. Returns the number
// of records upserted.
func (b *Builder) BuildFromDir(ctx context.Context, tagsDir string) (int, error) {
	entries, err := os.ReadDir(tagsDir)
	if err != nil {
		return 0, fmt.Errorf("reading tags directory: %w", err)
	}

	var ids []string
	var texts []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, corpus.TagFileExt) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(tagsDir, name))
		if err != nil {
			b.logger.Warn("skipping unreadable tag file", "file", name, "err", err)
			continue
		}

		var ts core.TagSet
		if err := json.Unmarshal(data, &ts); err != nil {
			b.logger.Warn("skipping malformed tag file", "file", name, "err", err)
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, corpus.TagFileExt))
		texts = append(texts, TagSetText(ts))
	}

	total := 0
	for start := 0; start < len(ids); start += b.chunkSize {
		end := start + b.chunkSize
		if end > len(ids) {
			end = len(ids)
		}

		embeddings, err := b.embedder.EmbedTexts(ctx, texts[start:end])
		if err != nil {
			return total, fmt.Errorf("embedding chunk at %d: %w", start, err)
		}
		if len(embeddings) != end-start {
			return total, fmt.Errorf("embedding count mismatch: expected %d, got %d", end-start, len(embeddings))
		}

		records := make([]Record, len(embeddings))
		for i, e := range embeddings {
			records[i] = Record{ID: ids[start+i], Vector: NormalizeVector(e)}
		}

		if err := b.index.Upsert(ctx, records); err != nil {
			return total, fmt.Errorf("upserting chunk at %d: %w", start, err)
		}
		total += len(records)
	}

	b.logger.Info("index build complete", "records", total, "skipped", len(entries)-len(ids))
	return total, nil
}
