package anthropic

import "errors"

var (
	// ErrEmptyResponse is returned when the model produces no choices.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrEmptyBatch is returned when SubmitBatch is called with no items.
	ErrEmptyBatch = errors.New("batch contains no items")

	// ErrItemFailed wraps a per-item error reported by the remote service.
	ErrItemFailed = errors.New("batch item failed remotely")

	// ErrUndecodableResult indicates a result line that could not be parsed.
	ErrUndecodableResult = errors.New("undecodable batch result line")

	// ErrRemoteStatus indicates a non-200 HTTP response from the service.
	ErrRemoteStatus = errors.New("unexpected response status")
)
