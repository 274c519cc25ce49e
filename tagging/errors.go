package tagging

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrBatchTimeout is returned when a job fails to reach a terminal
	// state within the poll retry budget. It fails that job only; other
	// jobs keep polling.
	ErrBatchTimeout = errors.New("batch did not reach a terminal state within the retry budget")

	// ErrBatchNotTerminal is returned when reconciliation is attempted on a
	// job that has not ended.
	ErrBatchNotTerminal = errors.New("batch job is not in a terminal state")

	// ErrBatchServiceRequired is returned when a batch tag service is not provided.
	ErrBatchServiceRequired = errors.New("batch tag service required")

	// ErrTaggerRequired is returned when a tagger is not provided.
	ErrTaggerRequired = errors.New("tagger required")

	// errStillProcessing marks a poll attempt that found the job not yet
	// terminal; it drives the retry loop and never escapes the poller.
	errStillProcessing = errors.New("batch still processing")
)
