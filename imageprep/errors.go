package imageprep

import "errors"

var (
	// ErrImagePrepare indicates an image that could not be decoded or
	// re-encoded. Recovered per-item: the image is dropped from its batch,
	// never fatal to a run.
	ErrImagePrepare = errors.New("image cannot be prepared")
)
