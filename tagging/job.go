package tagging

// JobStatus is the local lifecycle state of a batch job.
type JobStatus int

const (
	// JobSubmitted means the job was created remotely and awaits polling.
	JobSubmitted JobStatus = iota + 1
	// JobPolling means the poller is waiting for the job to end.
	JobPolling
	// JobEnded means the remote service reported the job terminal.
	JobEnded
	// JobFailed means the poll retry budget was exhausted.
	JobFailed
)

// String returns a readable status name.
func (s JobStatus) String() string {
	switch s {
	case JobSubmitted:
		return "submitted"
	case JobPolling:
		return "polling"
	case JobEnded:
		return "ended"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition occurs.
func (s JobStatus) Terminal() bool {
	return s == JobEnded || s == JobFailed
}

// BatchJob is one outstanding remote asynchronous job. Jobs are created by
// the Submitter, transitioned only by the Poller, and owned exclusively by
// the pipeline run that created them: a crashed run's jobs are abandoned,
// not resumed, and a re-run resubmits only images still missing a tag file.
type BatchJob struct {
	// Handle is the opaque remote job identifier.
	Handle string

	// MemberIDs are the derived item ids included in the job, in
	// submission order.
	MemberIDs []string

	// Status is the job's local lifecycle state.
	Status JobStatus
}
