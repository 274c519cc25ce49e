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


package imageprep

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

const (
	// DefaultTargetWidth is the width every image is resized to before
	// submission.
	DefaultTargetWidth = 600

	// DefaultMaxHeight caps the resized image height. Taller images are
	// cropped from the top: the most relevant content of an email
	// screenshot sits near the top.
	DefaultMaxHeight = 1400

	// MediaType is the MIME type of the canonical re-encoded image.
	MediaType = "image/png"
)

// Builder prepares images for submission to the vision model: decode,
// resize to a fixed width preserving aspect ratio, top-anchored crop,
// re-encode to PNG.
type Builder struct {
	targetWidth int
	maxHeight   int
	logger      *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithDimensions overrides the target width and maximum height.
// Non-positive values keep the defaults.
func WithDimensions(targetWidth, maxHeight int) Option {
	return func(b *Builder) {
		if targetWidth > 0 {
			b.targetWidth = targetWidth
		}
		if maxHeight > 0 {
			b.maxHeight = maxHeight
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a request builder with the default email screenshot
// geometry.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		targetWidth: DefaultTargetWidth,
		maxHeight:   DefaultMaxHeight,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Prepare decodes raw image bytes, resizes and crops them, and returns the
// canonical PNG encoding. A decode or encode failure is reported as
// ErrImagePrepare; callers drop the item rather than aborting their batch.
func (b *Builder) Prepare(imageData []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImagePrepare, err)
	}

	// Resize to target width while maintaining aspect ratio
	resized := imaging.Resize(img, b.targetWidth, 0, imaging.Lanczos)

	// Crop from the top if height exceeds the maximum (keep the top portion)
	if resized.Bounds().Dy() > b.maxHeight {
		resized = imaging.Crop(resized, image.Rect(0, 0, b.targetWidth, b.maxHeight))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImagePrepare, err)
	}
	return buf.Bytes(), nil
}

// PrepareBase64 is Prepare followed by standard base64 encoding, the payload
// form the batch API expects.
func (b *Builder) PrepareBase64(imageData []byte) (string, error) {
	prepared, err := b.Prepare(imageData)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(prepared), nil
}
