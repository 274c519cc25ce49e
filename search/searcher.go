package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/mailtag/ai"
	"github.com/poiesic/mailtag/corpus"
	"github.com/poiesic/mailtag/index"
)

// DefaultTopK is the number of results returned per query.
const DefaultTopK = 5

// Result is one retrieved email image.
type Result struct {
	// ID is the derived item id of the matched image.
	ID string

	// Score is the similarity score reported by the index.
	Score float32

	// ImagePath is the resolved source image path, or "" when the image
	// could not be located under the corpus directory.
	ImagePath string
}

// Searcher retrieves email images by querying a tag-keyword index and,
// when configured, a separate image-embedding index.
type Searcher struct {
	tagIndex      index.VectorIndex
	embedder      ai.Embedder
	imageIndex    index.VectorIndex
	imageEmbedder ai.ImageEmbedder
	imagesDir     string
	topK          int
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithImageSearch enables the image-embedding retrieval strategy.
func WithImageSearch(idx index.VectorIndex, embedder ai.ImageEmbedder) Option {
	return func(s *Searcher) {
		s.imageIndex = idx
		s.imageEmbedder = embedder
	}
}

// WithTopK sets the number of results per query.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(s *Searcher) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSearcher creates a searcher over a tag-keyword index.
func NewSearcher(tagIndex index.VectorIndex, embedder ai.Embedder, imagesDir string, opts ...Option) (*Searcher, error) {
	if tagIndex == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		tagIndex:  tagIndex,
		embedder:  embedder,
		imagesDir: imagesDir,
		topK:      DefaultTopK,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SearchTags embeds the query text and returns the most similar images from
// the tag-keyword index.
func (s *Searcher) SearchTags(ctx context.Context, query string) ([]Result, error) {
	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.tagIndex.Query(ctx, vector, s.topK)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("tag search", "query", query, "matches", len(matches))
	return s.resolve(matches), nil
}

// SearchImages embeds the query text into the image-embedding space and
// returns the most similar images. Returns ErrImageSearchUnavailable when
// the searcher was built without WithImageSearch.
func (s *Searcher) SearchImages(ctx context.Context, query string) ([]Result, error) {
	if s.imageIndex == nil || s.imageEmbedder == nil {
		return nil, ErrImageSearchUnavailable
	}

	vector, err := s.imageEmbedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.imageIndex.Query(ctx, vector, s.topK)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("image search", "query", query, "matches", len(matches))
	return s.resolve(matches), nil
}

// resolve maps matches back to source image paths. A match whose image
// cannot be located is kept with an empty path so callers can still see the
// hit.
func (s *Searcher) resolve(matches []index.Match) []Result {
	results := make([]Result, len(matches))
	for i, m := range matches {
		path := corpus.ResolveImagePath(s.imagesDir, m.ID)
		if path == "" {
			s.logger.Warn("no source image found for match", "id", m.ID)
		}
		results[i] = Result{ID: m.ID, Score: m.Score, ImagePath: path}
	}
	return results
}
