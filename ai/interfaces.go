package ai

import "context"

// Tagger extracts structured tags from a single image synchronously.
// Implementations must be thread-safe for concurrent use.
type Tagger interface {
	// TagImage submits one image to the vision model with the given
	// extraction prompt and returns the model's textual JSON payload.
	// The image data must already be preprocessed (resized, re-encoded).
	// Returns an error if the inference call fails.
	TagImage(ctx context.Context, imageData []byte, prompt string) (string, error)
}

// BatchTagService is the asynchronous batch interface of the remote
// inference service. Jobs are submitted fire-and-forget, polled for status,
// and their results retrieved as a lazy stream once a job has ended.
// Implementations must be thread-safe for concurrent use.
type BatchTagService interface {
	// SubmitBatch submits one asynchronous job containing the given items
	// and returns an opaque job handle. It does not wait for completion.
	SubmitBatch(ctx context.Context, items []BatchItem) (string, error)

	// BatchStatus reports the remote processing status of a job.
	BatchStatus(ctx context.Context, handle string) (BatchStatus, error)

	// BatchResults streams the per-item results of a terminal job, calling
	// fn once per item. Result sets can be large; items are delivered as
	// they are read, never materialized eagerly. Iteration stops on the
	// first error returned by fn.
	BatchResults(ctx context.Context, handle string, fn func(item BatchResultItem) error) error
}

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as
	// the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ImageEmbedder embeds images and query text into a shared vector space,
// enabling text-to-image similarity search.
// Implementations must be thread-safe for concurrent use.
type ImageEmbedder interface {
	// EmbedImage generates an embedding for raw image bytes.
	EmbedImage(ctx context.Context, imageData []byte) ([]float32, error)

	// EmbedQuery generates an embedding for query text in the same vector
	// space as EmbedImage.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
