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
	"time"

	"github.com/poiesic/mailtag/ai"
)

const (
	// DefaultMaxPollAttempts is the poll retry budget per job.
	DefaultMaxPollAttempts = 5

	// DefaultPollBaseDelay is the delay before the second status check;
	// it doubles on each subsequent attempt.
	DefaultPollBaseDelay = 5 * time.Second

	// DefaultPollMaxDelay caps the backoff between status checks.
	DefaultPollMaxDelay = 120 * time.Second
)

// Poller drives a batch job to a terminal state by polling the remote
// status with bounded exponential backoff. Transient remote unavailability
// is indistinguishable from "still processing" and receives the same
// backoff; the poller never busy-polls.
type Poller struct {
	svc         ai.BatchTagService
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleep       SleepFunc
	logger      *slog.Logger
}

// NewPoller creates a batch poller.
// maxAttempts: status checks before the job is declared timed out
// baseDelay, maxDelay: exponential backoff parameters between checks
// sleep: wait primitive, nil for a context-aware timer (tests inject a
// recording implementation to avoid real delays)
func NewPoller(svc ai.BatchTagService, maxAttempts int, baseDelay, maxDelay time.Duration, sleep SleepFunc) (*Poller, error) {
	if svc == nil {
		return nil, ErrBatchServiceRequired
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPollAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultPollBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultPollMaxDelay
	}

	return &Poller{
		svc:         svc,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		sleep:       sleep,
		logger:      slog.Default(),
	}, nil
}

// WaitUntilTerminal polls the job until the remote reports it ended,
// short-circuiting the backoff loop on the first terminal status. A job
// still not terminal after the retry budget is marked failed and reported
// as ErrBatchTimeout; the error is scoped to this job and must not stop the
// polling of other jobs. Context cancellation propagates unchanged.
func (p *Poller) WaitUntilTerminal(ctx context.Context, job *BatchJob) error {
	job.Status = JobPolling
	p.logger.Info("waiting for batch job", "handle", job.Handle, "members", len(job.MemberIDs))

	attempt := 0
	err := RetryWithBackoff(ctx, func() error {
		attempt++
		status, err := p.svc.BatchStatus(ctx, job.Handle)
		if err != nil {
			// Network errors and rate limiting get the same backoff as a
			// job that is simply still processing.
			p.logger.Debug("status check failed", "handle", job.Handle, "attempt", attempt, "err", err)
			return err
		}

		p.logger.Debug("batch status", "handle", job.Handle, "attempt", attempt, "status", status.String())
		if !status.Terminal() {
			return errStillProcessing
		}
		return nil
	}, p.maxAttempts, p.baseDelay, p.maxDelay, p.sleep)

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		job.Status = JobFailed
		return fmt.Errorf("%w: job %s after %d attempts: %v", ErrBatchTimeout, job.Handle, p.maxAttempts, err)
	}

	job.Status = JobEnded
	p.logger.Info("batch job ended", "handle", job.Handle, "attempts", attempt)
	return nil
}
