package legal

import (
	"regexp"
	"strings"
)

var bundleSeparator = regexp.MustCompile(`(?m)^[ \t]*_{5,}[ \t]*\r?$`)

// SplitBundle splits a file holding several cases separated by a line of
// underscores. Blank segments are dropped. A file without separators
// yields a single segment.
func SplitBundle(content string) []string {
	parts := bundleSeparator.Split(content, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
