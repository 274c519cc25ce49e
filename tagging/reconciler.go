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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/mailtag/ai"
	"github.com/poiesic/mailtag/corpus"
	"github.com/poiesic/mailtag/core"
)

// Reconciler turns the result stream of a terminal job into one JSON
// tag-set file per successful item. Per-item failures (remote error,
// malformed payload, write error) are recorded and never abort the
// remaining items of the job.
type Reconciler struct {
	svc          ai.BatchTagService
	tagsDir      string
	tagsToIgnore []string
	logger       *slog.Logger
}

// NewReconciler creates a result reconciler writing to tagsDir.
// tagsToIgnore names tags removed from every payload before persisting.
func NewReconciler(svc ai.BatchTagService, tagsDir string, tagsToIgnore []string) (*Reconciler, error) {
	if svc == nil {
		return nil, ErrBatchServiceRequired
	}
	return &Reconciler{
		svc:          svc,
		tagsDir:      tagsDir,
		tagsToIgnore: tagsToIgnore,
		logger:       slog.Default(),
	}, nil
}

// Reconcile streams the job's per-item results lazily and persists one
// tag-set file per successful item. It returns ErrBatchNotTerminal for a
// job that has not ended. A stream-level transport failure is returned
// alongside the partial report accumulated so far.
func (r *Reconciler) Reconcile(ctx context.Context, job *BatchJob) (*ReconcileReport, error) {
	if job.Status != JobEnded {
		return nil, fmt.Errorf("%w: job %s is %s", ErrBatchNotTerminal, job.Handle, job.Status)
	}

	report := &ReconcileReport{Handle: job.Handle}

	err := r.svc.BatchResults(ctx, job.Handle, func(item ai.BatchResultItem) error {
		if fail := r.reconcileItem(item); fail != nil {
			r.logger.Warn("result item failed",
				"handle", job.Handle, "id", fail.ID, "kind", fail.Kind.String(), "err", fail.Err)
			report.Failures = append(report.Failures, *fail)
			return nil
		}
		report.Succeeded++
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("streaming results for job %s: %w", job.Handle, err)
	}

	r.logger.Info("reconciled batch job",
		"handle", job.Handle, "succeeded", report.Succeeded, "failed", report.Failed())
	return report, nil
}

// reconcileItem persists one item's tags. A nil return means the tag-set
// file was written.
func (r *Reconciler) reconcileItem(item ai.BatchResultItem) *ItemFailure {
	if item.Err != nil {
		return &ItemFailure{ID: item.ID, Kind: FailureResult, Err: item.Err}
	}

	tags, err := core.ParseTagSet(item.Payload)
	if err != nil {
		return &ItemFailure{ID: item.ID, Kind: FailureParse, Err: err}
	}
	tags = tags.WithoutTags(r.tagsToIgnore)

	data, err := json.MarshalIndent(tags, "", "    ")
	if err != nil {
		return &ItemFailure{ID: item.ID, Kind: FailureParse, Err: err}
	}

	path := filepath.Join(r.tagsDir, item.ID+corpus.TagFileExt)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &ItemFailure{ID: item.ID, Kind: FailureWrite, Err: err}
	}
	return nil
}
