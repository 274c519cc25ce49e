package ai

// BatchStatus is the remote processing status of a batch job.
type BatchStatus int

const (
	// BatchStatusInProgress means the job has not yet finished processing.
	BatchStatusInProgress BatchStatus = iota + 1
	// BatchStatusEnded means the job reached its terminal state and results
	// are available.
	BatchStatusEnded
)

// String returns the status name used by the remote service.
func (s BatchStatus) String() string {
	switch s {
	case BatchStatusInProgress:
		return "in_progress"
	case BatchStatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further status transition will occur.
func (s BatchStatus) Terminal() bool {
	return s == BatchStatusEnded
}

// BatchItem is one image's tagging request within a batch job.
type BatchItem struct {
	// ID is the derived item identifier, used as the remote item key.
	ID string

	// Data is the base64-encoded, preprocessed image payload.
	Data string

	// MediaType is the MIME type of the encoded image, e.g. "image/png".
	MediaType string

	// Prompt is the data extraction prompt applied to the image.
	Prompt string
}

// BatchResultItem is one item's outcome within a terminal batch job.
type BatchResultItem struct {
	// ID is the derived item identifier the result belongs to.
	ID string

	// Payload is the model's textual JSON output. Empty when Err is set.
	Payload string

	// Err is non-nil when the remote service marked the item as errored.
	Err error
}
