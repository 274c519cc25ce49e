// Package tagging implements the batch tagging pipeline: it turns a corpus
// of local email screenshots into one JSON tag-set file per image by
// submitting asynchronous batch jobs to a remote vision model, polling them
// to a terminal state, and reconciling their results to disk.
//
// The pipeline is resumable by construction: a tag-set file's existence is
// the sole "already processed" marker, so re-running after a crash re-scans
// the corpus and resubmits only images still missing a file. Failures are
// isolated to the smallest unit that can bear them (item, then job) and
// collected into a run summary instead of aborting the run.
//
// This package supports retry with exponential backoff, per-item failure
// reports, progress tracking, and injectable sleep for testing backoff
// without wall-clock delay.
package tagging
