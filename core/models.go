package core

import (
	"path/filepath"
	"regexp"
	"strings"
)

// ItemIDMaxLength is the maximum length of a derived item identifier.
// The batch service rejects longer item keys.
const ItemIDMaxLength = 64

var itemIDDisallowed = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// ItemID derives the batch item identifier for an image filename.
// The identifier is the filename's stem with every character outside
// [A-Za-z0-9_-] replaced by underscore, truncated to ItemIDMaxLength.
// It doubles as the base name of the tag-set file written for the image,
// so it is the only link between a submitted item and its result.
//
// The derivation is deterministic but not injective: filenames differing
// only in replaced characters or beyond the truncation point collide.
// The corpus scanner detects and reports such collisions.
func ItemID(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	id := itemIDDisallowed.ReplaceAllString(stem, "_")
	if len(id) > ItemIDMaxLength {
		id = id[:ItemIDMaxLength]
	}
	return id
}

// TagValue is a single tag value. The extraction model emits either a bare
// string or a list of strings; both forms are preserved through JSON
// round-trips.
type TagValue struct {
	Items  []string
	Scalar bool // true when the value was a bare string
}

// StringValue creates a scalar TagValue.
func StringValue(s string) TagValue {
	return TagValue{Items: []string{s}, Scalar: true}
}

// ListValue creates a list TagValue.
func ListValue(items ...string) TagValue {
	return TagValue{Items: items}
}

// TagSet is the structured metadata extracted for one image, keyed by tag
// name. A tag-set file exists iff its image was successfully tagged and
// reconciled; file existence is the sole "already processed" marker.
type TagSet map[string]TagValue

// WithoutTags returns a copy of the tag set with the named tags removed.
// Unknown names are ignored.
func (ts TagSet) WithoutTags(names []string) TagSet {
	if len(names) == 0 {
		return ts
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := make(TagSet, len(ts))
	for k, v := range ts {
		if !drop[k] {
			out[k] = v
		}
	}
	return out
}
