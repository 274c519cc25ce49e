// Package search retrieves email images by similarity. Two strategies are
// exposed: keyword search over the embedded tag index, and text-to-image
// search over a separate image-embedding index when one is configured.
// Matches resolve back to source image paths by derived item id.
package search
