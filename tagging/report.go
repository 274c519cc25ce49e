package tagging

// FailureKind classifies where in the pipeline an item was lost. Failures
// are collected into reports rather than raised, so failure visibility does
// not depend on log output.
type FailureKind int

const (
	// FailurePrepare: the image could not be decoded or re-encoded.
	FailurePrepare FailureKind = iota + 1
	// FailureSubmit: the job-creation call failed after retries; every
	// member of the chunk is lost.
	FailureSubmit
	// FailureTimeout: the job never reached a terminal state within the
	// poll budget; every member of the job is lost.
	FailureTimeout
	// FailureResult: the remote service marked the item as errored.
	FailureResult
	// FailureParse: the item's payload was missing or not valid JSON.
	FailureParse
	// FailureWrite: the tag-set file could not be written.
	FailureWrite
)

// String returns a readable kind name.
func (k FailureKind) String() string {
	switch k {
	case FailurePrepare:
		return "prepare"
	case FailureSubmit:
		return "submit"
	case FailureTimeout:
		return "timeout"
	case FailureResult:
		return "result"
	case FailureParse:
		return "parse"
	case FailureWrite:
		return "write"
	default:
		return "unknown"
	}
}

// ItemFailure records the loss of a single item.
type ItemFailure struct {
	// ID is the derived item id. May be empty when the remote result line
	// carried no usable id.
	ID string

	// Filename is the source image filename, when known.
	Filename string

	// Kind classifies the failure.
	Kind FailureKind

	// Err is the underlying error.
	Err error
}

// ReconcileReport summarizes the reconciliation of one job.
type ReconcileReport struct {
	// Handle is the job handle the report belongs to.
	Handle string

	// Succeeded counts items whose tag-set file was written.
	Succeeded int

	// Failures are the items lost during reconciliation.
	Failures []ItemFailure
}

// Failed returns the number of failed items in the job.
func (r *ReconcileReport) Failed() int {
	return len(r.Failures)
}

// Summary is the outcome of one pipeline run. The orchestrator reports
// failure counts so that silent data loss is observable.
type Summary struct {
	// RunID identifies the pipeline run in logs.
	RunID string

	// Eligible is the number of images the scan found untagged.
	Eligible int

	// Jobs is the number of batch jobs submitted.
	Jobs int

	// JobsFailed is the number of jobs that timed out or failed submission.
	JobsFailed int

	// Succeeded counts images whose tag-set file was written this run.
	Succeeded int

	// Failures are all items lost during the run, across every stage.
	Failures []ItemFailure
}

// Failed returns the number of failed items in the run.
func (s *Summary) Failed() int {
	return len(s.Failures)
}
