package legal

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	pageMarkerLine = regexp.MustCompile(`(?im)^[ \t]*-{2,}[ \t]*page[ \t]*\d+[ \t]*-{2,}[ \t]*(\n|$)`)
	pageMarker     = regexp.MustCompile(`(?i)-{2,}\s*page\s*\d+\s*-{2,}`)
	pageNumberLine = regexp.MustCompile(`(?im)^[ \t]*page[ \t]+\d+([ \t]+of[ \t]+\d+)?[ \t]*(\n|$)`)
	headingMarker  = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	ruleLine       = regexp.MustCompile(`(?m)^[ \t]*([-*=_][ \t]*){3,}$`)
	mdLink         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	blanks         = regexp.MustCompile(`[ \t]+`)
	manyNewlines   = regexp.MustCompile(`\n{3,}`)
)

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

var spaceReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u2002", " ",
	"\u2003", " ",
	"\u2009", " ",
	"\u202f", " ",
	"\u3000", " ",
	"\u200b", "",
	"\u2060", "",
	"\ufeff", "",
	"\t", " ",
	"**", "",
	"__", "",
)

// repeatThreshold is how often a line must recur on a paged document
// before it is treated as a running header or footer.
const repeatThreshold = 3

// maxHeaderLen bounds the runes of a line that can count as a running header.
const maxHeaderLen = 120

// decode validates raw bytes as text and returns them as a string.
func decode(content []byte) (string, bool) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(content)) == 0 {
		return "", false
	}
	if !utf8.Valid(content) || bytes.IndexByte(content, 0) >= 0 {
		return "", false
	}
	return string(content), true
}

// clean runs the boilerplate and whitespace rules.
func clean(text string) string {
	text = norm.NFC.String(text)
	text = newlineReplacer.Replace(text)
	text = ruleLine.ReplaceAllString(text, "")
	text = spaceReplacer.Replace(text)

	pages := len(pageMarker.FindAllStringIndex(text, -1))
	text = pageMarkerLine.ReplaceAllString(text, "")
	text = pageMarker.ReplaceAllString(text, " ")
	text = pageNumberLine.ReplaceAllString(text, "")
	text = headingMarker.ReplaceAllString(text, "")
	text = mdLink.ReplaceAllString(text, "$1")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(blanks.ReplaceAllString(line, " "))
	}
	if pages >= 2 {
		lines = dropRepeated(lines)
	}

	text = strings.Join(lines, "\n")
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// dropRepeated keeps the first occurrence of short lines that recur on
// several pages and removes the rest.
func dropRepeated(lines []string) []string {
	counts := make(map[string]int)
	for _, l := range lines {
		if l != "" && utf8.RuneCountInString(l) <= maxHeaderLen {
			counts[l]++
		}
	}

	seen := make(map[string]bool)
	out := lines[:0]
	for _, l := range lines {
		if counts[l] >= repeatThreshold {
			if seen[l] {
				continue
			}
			seen[l] = true
		}
		out = append(out, l)
	}
	return out
}
