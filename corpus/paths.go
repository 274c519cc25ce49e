package corpus

import (
	"os"
	"path/filepath"

	"github.com/poiesic/mailtag/core"
)

// RecognizedExtensions are the image extensions probed when resolving a
// derived id back to its source image.
var RecognizedExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".bmp", ".avif",
	".tiff", ".tif", ".webp",
	".heic", ".heif",
}

// ResolveImagePath finds the source image for a derived id by probing the
// recognized extensions in order. The reverse mapping is only exact for
// corpora whose filenames already satisfy the id character set; ids derived
// from sanitized filenames cannot be reversed and resolve to "".
func ResolveImagePath(imagesDir, id string) string {
	for _, ext := range RecognizedExtensions {
		candidate := filepath.Join(imagesDir, id+ext)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}

// TagFilePath returns the tag-set file path for an image filename.
func TagFilePath(tagsDir, filename string) string {
	return filepath.Join(tagsDir, core.ItemID(filename)+TagFileExt)
}
