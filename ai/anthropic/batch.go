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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/mailtag/ai"
)

const (
	apiVersion   = "2023-06-01"
	mediaTypePNG = "image/png"

	// Result lines carry a base64 image payload in neither direction, but a
	// single model response can still be long; size the scanner buffer
	// accordingly.
	maxResultLineBytes = 4 * 1024 * 1024
)

// BatchService implements ai.BatchTagService against the Anthropic Message
// Batches API. The langchaingo client exposes no batch endpoints, so this
// speaks the JSON wire format directly.
type BatchService struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	logger     *slog.Logger
}

// BatchServiceOption configures a BatchService.
type BatchServiceOption func(*BatchService)

// WithHTTPClient sets a custom HTTP client.
// Default is a client with a 60 second timeout.
func WithHTTPClient(client *http.Client) BatchServiceOption {
	return func(s *BatchService) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BatchServiceOption {
	return func(s *BatchService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewBatchService creates a batch tagging service using the provided
// configuration.
//
// Returns ai.BatchTagService interface to enforce abstraction.
func NewBatchService(config *ai.Config, opts ...BatchServiceOption) (ai.BatchTagService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &BatchService{
		baseURL:    config.BatchBaseURL,
		apiKey:     config.APIKey,
		model:      config.TaggingModel,
		maxTokens:  config.MaxTokens,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.Default().With("component", "anthropic-batch"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Request body types for the batches endpoint. Only the fields this service
// uses are modeled; the upstream schema is larger.

type batchCreateRequest struct {
	Requests []batchRequestEntry `json:"requests"`
}

type batchRequestEntry struct {
	CustomID string        `json:"custom_id"`
	Params   messageParams `json:"params"`
}

type messageParams struct {
	Model       string         `json:"model"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
	System      string         `json:"system"`
	Messages    []batchMessage `json:"messages"`
}

type batchMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Source *imageSource `json:"source,omitempty"`
	Text   string       `json:"text,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type batchResponse struct {
	ID               string `json:"id"`
	ProcessingStatus string `json:"processing_status"`
}

type batchResultLine struct {
	CustomID string `json:"custom_id"`
	Result   struct {
		Type    string `json:"type"`
		Message struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"message"`
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"result"`
}

// SubmitBatch submits one asynchronous job and returns its handle.
func (s *BatchService) SubmitBatch(ctx context.Context, items []ai.BatchItem) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyBatch
	}

	body := batchCreateRequest{Requests: make([]batchRequestEntry, len(items))}
	for i, item := range items {
		body.Requests[i] = batchRequestEntry{
			CustomID: item.ID,
			Params: messageParams{
				Model:       s.model,
				MaxTokens:   s.maxTokens,
				Temperature: 0,
				System:      item.Prompt,
				Messages: []batchMessage{
					{
						Role: "user",
						Content: []contentBlock{
							{
								Type: "image",
								Source: &imageSource{
									Type:      "base64",
									MediaType: item.MediaType,
									Data:      item.Data,
								},
							},
						},
					},
				},
			},
		}
	}

	var resp batchResponse
	if err := s.do(ctx, http.MethodPost, "/messages/batches", &body, &resp); err != nil {
		return "", fmt.Errorf("submit batch: %w", err)
	}

	s.logger.Debug("submitted batch", "handle", resp.ID, "items", len(items))
	return resp.ID, nil
}

// BatchStatus reports the remote processing status of a job.
func (s *BatchService) BatchStatus(ctx context.Context, handle string) (ai.BatchStatus, error) {
	var resp batchResponse
	if err := s.do(ctx, http.MethodGet, "/messages/batches/"+handle, nil, &resp); err != nil {
		return 0, fmt.Errorf("batch status %s: %w", handle, err)
	}

	if resp.ProcessingStatus == "ended" {
		return ai.BatchStatusEnded, nil
	}
	return ai.BatchStatusInProgress, nil
}

// BatchResults streams the per-item results of a terminal job. Results are
// delivered as JSON lines and decoded one at a time, so large jobs never
// buffer fully in memory.
func (s *BatchService) BatchResults(ctx context.Context, handle string, fn func(item ai.BatchResultItem) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/messages/batches/"+handle+"/results", nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("batch results %s: %w", handle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.statusError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxResultLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var result batchResultLine
		if err := json.Unmarshal(line, &result); err != nil {
			// A single undecodable line is surfaced as an errored item so
			// the caller's per-item isolation applies; the id is unknown.
			s.logger.Warn("undecodable result line", "handle", handle, "err", err)
			if err := fn(ai.BatchResultItem{Err: fmt.Errorf("%w: %v", ErrUndecodableResult, err)}); err != nil {
				return err
			}
			continue
		}

		item := ai.BatchResultItem{ID: result.CustomID}
		if result.Result.Type == "succeeded" {
			for _, block := range result.Result.Message.Content {
				if block.Type == "text" {
					item.Payload = block.Text
					break
				}
			}
		} else {
			item.Err = fmt.Errorf("%w: %s: %s", ErrItemFailed,
				result.Result.Error.Type, result.Result.Error.Message)
		}

		if err := fn(item); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("batch results %s: %w", handle, err)
	}
	return nil
}

func (s *BatchService) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	s.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.statusError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *BatchService) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
}

func (s *BatchService) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("%w: %s: %s", ErrRemoteStatus, resp.Status, bytes.TrimSpace(body))
}
