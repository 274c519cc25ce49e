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


package tagging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/mailtag/ai"
	"github.com/poiesic/mailtag/core"
	"github.com/poiesic/mailtag/imageprep"
)

const (
	// DefaultBatchSize is the externally imposed ceiling on job size.
	DefaultBatchSize = 50

	// DefaultSubmitRetries bounds retries of the job-creation call.
	DefaultSubmitRetries = 3

	// DefaultSubmitRetryDelay is the base backoff delay for submission retries.
	DefaultSubmitRetryDelay = 1 * time.Second
)

// Submitter partitions eligible images into fixed-size chunks and submits
// each chunk as one asynchronous batch job. Submission is fire-and-forget:
// no polling happens here, so independent chunks go out back to back.
type Submitter struct {
	svc            ai.BatchTagService
	builder        *imageprep.Builder
	imagesDir      string
	pool           *ants.Pool
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// NewSubmitter creates a batch submitter.
// maxRetries: maximum attempts for each job-creation call
// retryBaseDelay: base delay for exponential backoff between attempts
// Request preparation (decode, resize, encode) runs on a bounded worker
// pool sized to half the CPUs.
func NewSubmitter(svc ai.BatchTagService, builder *imageprep.Builder, imagesDir string, maxRetries int, retryBaseDelay time.Duration) (*Submitter, error) {
	if svc == nil {
		return nil, ErrBatchServiceRequired
	}
	if builder == nil {
		builder = imageprep.NewBuilder()
	}
	if maxRetries <= 0 {
		maxRetries = DefaultSubmitRetries
	}
	if retryBaseDelay <= 0 {
		retryBaseDelay = DefaultSubmitRetryDelay
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &Submitter{
		svc:            svc,
		builder:        builder,
		imagesDir:      imagesDir,
		pool:           pool,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		logger:         slog.Default(),
	}, nil
}

// Submit partitions filenames into contiguous chunks of at most batchSize
// and submits each chunk as one job. Images that fail preparation are
// dropped from their chunk and reported; an all-failed chunk produces no
// job. A chunk whose job-creation call fails after retries loses all of its
// members but does not stop the remaining chunks.
func (s *Submitter) Submit(ctx context.Context, filenames []string, prompt string, batchSize int) ([]*BatchJob, []ItemFailure, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var jobs []*BatchJob
	var failures []ItemFailure

	for start := 0; start < len(filenames); start += batchSize {
		select {
		case <-ctx.Done():
			return jobs, failures, ctx.Err()
		default:
		}

		end := start + batchSize
		if end > len(filenames) {
			end = len(filenames)
		}
		chunk := filenames[start:end]

		items, prepFailures := s.prepareChunk(chunk, prompt)
		failures = append(failures, prepFailures...)

		if len(items) == 0 {
			s.logger.Warn("chunk produced no request units, skipping submission",
				"chunkStart", start, "chunkSize", len(chunk))
			continue
		}

		var handle string
		err := RetryWithBackoff(ctx, func() error {
			var submitErr error
			handle, submitErr = s.svc.SubmitBatch(ctx, items)
			return submitErr
		}, s.maxRetries, s.retryBaseDelay, 0, nil)

		if err != nil {
			if ctx.Err() != nil {
				return jobs, failures, ctx.Err()
			}
			s.logger.Error("failed to submit chunk after retries",
				"chunkStart", start, "items", len(items), "err", err)
			for _, item := range items {
				failures = append(failures, ItemFailure{
					ID:   item.ID,
					Kind: FailureSubmit,
					Err:  err,
				})
			}
			continue
		}

		memberIDs := make([]string, len(items))
		for i, item := range items {
			memberIDs[i] = item.ID
		}
		jobs = append(jobs, &BatchJob{
			Handle:    handle,
			MemberIDs: memberIDs,
			Status:    JobSubmitted,
		})

		s.logger.Info("submitted batch job", "handle", handle, "items", len(items))
	}

	return jobs, failures, nil
}

// prepareChunk builds one request unit per filename on the worker pool,
// dropping and reporting any image that fails preparation. Order within the
// chunk is preserved.
func (s *Submitter) prepareChunk(chunk []string, prompt string) ([]ai.BatchItem, []ItemFailure) {
	type prepared struct {
		item ai.BatchItem
		fail *ItemFailure
	}

	results := make([]prepared, len(chunk))
	var wg sync.WaitGroup

	for i, filename := range chunk {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			id := core.ItemID(filename)

			data, err := os.ReadFile(filepath.Join(s.imagesDir, filename))
			if err == nil {
				var payload string
				payload, err = s.builder.PrepareBase64(data)
				if err == nil {
					results[i] = prepared{item: ai.BatchItem{
						ID:        id,
						Data:      payload,
						MediaType: imageprep.MediaType,
						Prompt:    prompt,
					}}
					return
				}
			}

			results[i] = prepared{fail: &ItemFailure{
				ID:       id,
				Filename: filename,
				Kind:     FailurePrepare,
				Err:      fmt.Errorf("preparing %s: %w", filename, err),
			}}
		}

		if err := s.pool.Submit(task); err != nil {
			// Pool released or saturated; degrade to inline preparation.
			task()
		}
	}
	wg.Wait()

	items := make([]ai.BatchItem, 0, len(chunk))
	var failures []ItemFailure
	for _, r := range results {
		if r.fail != nil {
			s.logger.Warn("dropping image from chunk",
				"filename", r.fail.Filename, "err", r.fail.Err)
			failures = append(failures, *r.fail)
			continue
		}
		items = append(items, r.item)
	}
	return items, failures
}

// Release releases the preparation worker pool.
// The submitter should not be used after calling Release.
func (s *Submitter) Release() {
	s.pool.Release()
}
