package tagging

import (
	"context"
	"fmt"
	"os"

	"github.com/poiesic/mailtag/ai"
	"github.com/poiesic/mailtag/core"
	"github.com/poiesic/mailtag/imageprep"
)

// TagOne tags a single image synchronously, sharing the request builder's
// preprocessing with the batch path. The returned tag set has the ignored
// tags already removed.
func TagOne(ctx context.Context, tagger ai.Tagger, builder *imageprep.Builder, imagePath, prompt string, tagsToIgnore []string) (core.TagSet, error) {
	if tagger == nil {
		return nil, ErrTaggerRequired
	}
	if builder == nil {
		builder = imageprep.NewBuilder()
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	prepared, err := builder.Prepare(data)
	if err != nil {
		return nil, err
	}

	payload, err := tagger.TagImage(ctx, prepared, prompt)
	if err != nil {
		return nil, fmt.Errorf("tagging image: %w", err)
	}

	tags, err := core.ParseTagSet(payload)
	if err != nil {
		return nil, err
	}
	return tags.WithoutTags(tagsToIgnore), nil
}
