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
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/mailtag/ai"
	"github.com/poiesic/mailtag/corpus"
	"github.com/poiesic/mailtag/imageprep"
)

// Config holds configuration for a tagging pipeline.
type Config struct {
	// BatchSize is the maximum number of items per batch job.
	BatchSize int

	// MaxPollAttempts is the poll retry budget per job.
	MaxPollAttempts int

	// PollBaseDelay is the base delay for poll backoff (doubles per attempt).
	PollBaseDelay time.Duration

	// PollMaxDelay caps the poll backoff.
	PollMaxDelay time.Duration

	// SubmitRetries is the maximum number of attempts per job-creation call.
	SubmitRetries int

	// SubmitRetryDelay is the base delay for submission backoff.
	SubmitRetryDelay time.Duration

	// ReportInterval is how often to report progress (number of images).
	ReportInterval int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:        DefaultBatchSize,
		MaxPollAttempts:  DefaultMaxPollAttempts,
		PollBaseDelay:    DefaultPollBaseDelay,
		PollMaxDelay:     DefaultPollMaxDelay,
		SubmitRetries:    DefaultSubmitRetries,
		SubmitRetryDelay: DefaultSubmitRetryDelay,
		ReportInterval:   DefaultBatchSize,
	}
}

// RunParams identifies the corpus and prompt of one pipeline run.
type RunParams struct {
	// ImagesDir holds the source images.
	ImagesDir string

	// TagsDir receives one tag-set file per successfully processed image.
	// Created if absent.
	TagsDir string

	// Prompt is the data extraction prompt applied to every image.
	Prompt string

	// TagsToIgnore names tags stripped from every payload before persisting.
	TagsToIgnore []string

	// BatchSize overrides Config.BatchSize when positive.
	BatchSize int
}

// Pipeline orchestrates one tagging run: scan, submit all chunks, then poll
// and reconcile each job in submission order, one job at a time. Polling
// and reconciling jobs concurrently would be sound since jobs are
// independent; the sequential policy trades latency for simplicity.
type Pipeline struct {
	svc      ai.BatchTagService
	builder  *imageprep.Builder
	scanner  *corpus.Scanner
	poller   *Poller
	config   *Config
	progress io.Writer
	sleep    SleepFunc
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBuilder sets a custom request builder.
// Default uses the standard email screenshot geometry.
func WithBuilder(builder *imageprep.Builder) Option {
	return func(p *Pipeline) {
		if builder != nil {
			p.builder = builder
		}
	}
}

// WithProgress sets where progress output is written.
// Default is os.Stderr.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) {
		if w != nil {
			p.progress = w
		}
	}
}

// WithSleep sets the wait primitive used between poll attempts.
// Default is a context-aware timer. Tests inject a recording
// implementation to avoid wall-clock delays.
func WithSleep(sleep SleepFunc) Option {
	return func(p *Pipeline) {
		p.sleep = sleep
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a tagging pipeline around an injected batch service.
func NewPipeline(svc ai.BatchTagService, config *Config, opts ...Option) (*Pipeline, error) {
	if svc == nil {
		return nil, ErrBatchServiceRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pipeline{
		svc:      svc,
		builder:  imageprep.NewBuilder(),
		scanner:  corpus.NewScanner(),
		config:   config,
		progress: os.Stderr,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	poller, err := NewPoller(svc, config.MaxPollAttempts, config.PollBaseDelay, config.PollMaxDelay, p.sleep)
	if err != nil {
		return nil, err
	}
	p.poller = poller

	return p, nil
}

// Run executes one pipeline run and returns its summary. Only unrecoverable
// setup problems (unreadable directories, context cancellation) surface as
// errors; item and job failures are recorded in the summary so the run
// always continues past them.
func (p *Pipeline) Run(ctx context.Context, params RunParams) (*Summary, error) {
	summary := &Summary{RunID: uuid.New().String()}
	logger := p.logger.With("run", summary.RunID)

	if err := os.MkdirAll(params.TagsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating tags directory: %w", err)
	}

	eligible, err := p.scanner.Scan(params.ImagesDir, params.TagsDir)
	if err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}
	summary.Eligible = len(eligible)

	if len(eligible) == 0 {
		fmt.Fprintf(p.progress, "No untagged images found (0 images)\n")
		return summary, nil
	}

	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = p.config.BatchSize
	}

	fmt.Fprintf(p.progress, "Starting tagging of %d images (batch size: %d)\n",
		len(eligible), batchSize)

	submitter, err := NewSubmitter(p.svc, p.builder, params.ImagesDir,
		p.config.SubmitRetries, p.config.SubmitRetryDelay)
	if err != nil {
		return nil, err
	}
	defer submitter.Release()

	reconciler, err := NewReconciler(p.svc, params.TagsDir, params.TagsToIgnore)
	if err != nil {
		return nil, err
	}

	jobs, submitFailures, err := submitter.Submit(ctx, eligible, params.Prompt, batchSize)
	summary.Failures = append(summary.Failures, submitFailures...)
	summary.Jobs = len(jobs)
	if err != nil {
		return summary, err
	}

	tracker := NewProgressTracker(p.progress, len(eligible), p.config.ReportInterval)
	tracker.Start()
	tracker.Fail(len(submitFailures))
	tracker.Increment(len(submitFailures))

	// Poll and reconcile in submission order. A timed-out job is skipped at
	// reconciliation and recorded; the run moves on to the next job.
	for _, job := range jobs {
		if err := p.poller.WaitUntilTerminal(ctx, job); err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			logger.Error("batch job failed", "handle", job.Handle, "err", err)
			summary.JobsFailed++
			for _, id := range job.MemberIDs {
				summary.Failures = append(summary.Failures, ItemFailure{
					ID:   id,
					Kind: FailureTimeout,
					Err:  err,
				})
			}
			tracker.Fail(len(job.MemberIDs))
			tracker.Increment(len(job.MemberIDs))
			continue
		}

		report, err := reconciler.Reconcile(ctx, job)
		if report != nil {
			summary.Succeeded += report.Succeeded
			summary.Failures = append(summary.Failures, report.Failures...)
			tracker.Fail(len(report.Failures))
		}
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			// Items not reached by the stream are unaccounted for; the next
			// run's scan picks them up again.
			logger.Error("reconciliation incomplete", "handle", job.Handle, "err", err)
			summary.JobsFailed++
		}
		tracker.Increment(len(job.MemberIDs))
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(p.progress, "Tagging complete. %d tagged, %d failed in %v\n",
		summary.Succeeded, summary.Failed(), elapsed.Round(time.Second))
	logger.Info("pipeline run finished",
		"eligible", summary.Eligible,
		"jobs", summary.Jobs,
		"jobsFailed", summary.JobsFailed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed())

	return summary, nil
}
