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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// APIKey is the credential for the vision/batch inference service.
	APIKey string

	// TaggingModel is the vision model used for tag extraction.
	// Example: "claude-3-5-sonnet-20241022"
	TaggingModel string

	// MaxTokens is the output token ceiling for a single tagging response.
	// Default: 1000
	MaxTokens int

	// BatchBaseURL is the base URL of the batch API.
	// Example: "https://api.anthropic.com/v1"
	BatchBaseURL string

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAPIKey sets the inference service credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithTaggingModel sets the vision model identifier.
func WithTaggingModel(model string) ConfigOption {
	return func(c *Config) {
		c.TaggingModel = model
	}
}

// WithMaxTokens sets the output token ceiling for tagging responses.
func WithMaxTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithBatchBaseURL sets the batch API base URL.
func WithBatchBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BatchBaseURL = url
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// DefaultConfig returns a Config with sensible defaults. The API key has no
// default and must be supplied by the caller or the environment.
func DefaultConfig() *Config {
	return &Config{
		TaggingModel:   "claude-3-5-sonnet-20241022",
		MaxTokens:      1000,
		BatchBaseURL:   "https://api.anthropic.com/v1",
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "embeddinggemma",
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options. This is the recommended way to create a Config.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithAPIKey(key),
//	    ai.WithTaggingModel("claude-3-5-sonnet-20241022"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to the embedding host if missing,
// which is required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	c.BatchBaseURL = strings.TrimSuffix(c.BatchBaseURL, "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.APIKey == "" {
		return errors.New("ai config: APIKey is required")
	}
	if c.TaggingModel == "" {
		return errors.New("ai config: TaggingModel is required")
	}
	if c.MaxTokens <= 0 {
		return errors.New("ai config: MaxTokens must be positive")
	}
	if c.BatchBaseURL == "" {
		return errors.New("ai config: BatchBaseURL is required")
	}
	return nil
}

// ValidateEmbedding checks the fields required by the embedding side only.
// The tagging credential is not needed to build or query an index.
func (c *Config) ValidateEmbedding() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	return nil
}
