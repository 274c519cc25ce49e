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


package anthropic

import (
	"context"
	"log/slog"

	"github.com/poiesic/mailtag/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// Tagger implements ai.Tagger using the Anthropic Messages API.
type Tagger struct {
	client    llms.Model
	maxTokens int
	logger    *slog.Logger
}

// newTagger is an internal constructor that returns the concrete type.
func newTagger(config *ai.Config) (*Tagger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := anthropic.New(
		anthropic.WithToken(config.APIKey),
		anthropic.WithModel(config.TaggingModel),
	)
	if err != nil {
		return nil, err
	}

	return &Tagger{
		client:    client,
		maxTokens: config.MaxTokens,
		logger:    slog.Default().With("component", "anthropic-tagger"),
	}, nil
}

// NewTagger creates a new single-image tagger using the provided
// configuration.
//
// Returns ai.Tagger interface to enforce abstraction.
func NewTagger(config *ai.Config) (ai.Tagger, error) {
	return newTagger(config)
}

// TagImage submits one preprocessed image to the vision model and returns
// the raw textual payload. The extraction prompt is passed as the system
// message; the image is the sole user content, matching the batch request
// shape so both paths share one prompt.
func (t *Tagger) TagImage(ctx context.Context, imageData []byte, prompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mediaTypePNG, imageData),
			},
		},
	}

	response, err := t.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.0),
		llms.WithMaxTokens(t.maxTokens),
	)
	if err != nil {
		t.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		t.logger.Debug("no choices returned from model")
		return "", ErrEmptyResponse
	}

	return response.Choices[0].Content, nil
}
