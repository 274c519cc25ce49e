package index

import (
	"sort"
	"strings"

	"github.com/poiesic/mailtag/core"
)

// TagSetText flattens a tag set into the text that gets embedded. Scalar
// tags render as "name: value", list tags as a bulleted block. Keys are
// sorted so the same tag set always embeds the same text.
func TagSetText(ts core.TagSet) string {
	names := make([]string, 0, len(ts))
	for name := range ts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		v := ts[name]
		b.WriteString("\n\n")
		b.WriteString(name)
		if v.Scalar {
			b.WriteString(": ")
			if len(v.Items) > 0 {
				b.WriteString(v.Items[0])
			}
			continue
		}
		b.WriteString(":")
		for _, item := range v.Items {
			b.WriteString("\n - ")
			b.WriteString(item)
		}
	}
	return b.String()
}
