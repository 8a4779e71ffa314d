package legal

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// headerLines bounds how far into a document caption rules look.
const headerLines = 40

var (
	labelledCaseNumber = regexp.MustCompile(
		`(?i)(?:case|appeal|petition|application|suit|cause|matter|หมายเลขแดงที่|หมายเลขดำที่|คดีที่)` +
			`\s*(?:no\.?|number)?\s*[:.]?\s*(?:[^\s\d]{1,4}\.\s*)?(\d+/\d{4})`)
	bareCaseNumber = regexp.MustCompile(`\d+/\d{4}`)

	courtLine        = regexp.MustCompile(`(?i)\b(court|tribunal)\b|ศาล`)
	inThe            = regexp.MustCompile(`(?i)^in\s+the\s+`)
	jurisdictionLine = regexp.MustCompile(`(?im)^jurisdiction\s*:\s*(.+)$`)
	courtOf          = regexp.MustCompile(`(?i)\b(?:court|tribunal)\s+of\s+([a-z][a-z ]*?)(?:\s+at\b|\s*,|\s*$)`)

	partiesLine = regexp.MustCompile(`(?i)^(.{2,120}?)\s+(?:v\.|v|vs\.?|versus)\s+(.{2,120})$`)
	plaintiff   = regexp.MustCompile(`^(.{2,120}?)\s*(?:โจทก์)$`)
	defendant   = regexp.MustCompile(`^(.{2,120}?)\s*(?:จำเลย)$`)

	dateLabel = regexp.MustCompile(`(?i)\b(dated|delivered|decided|date|judgment)\b|วันที่`)
	isoDate   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	dmyDate   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:day\s+of\s+)?` + monthPattern + `,?\s+(\d{4})\b`)
	mdyDate   = regexp.MustCompile(`(?i)\b` + monthPattern + `\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	numDate   = regexp.MustCompile(`\b(\d{1,2})[./](\d{1,2})[./](\d{4})\b`)

	documentTitle = regexp.MustCompile(
		`(?i)^(?:(?:final|interim|reserved|supreme\s+court)\s+)?(?:judg(?:e)?ment|ruling|order|decision|opinion)\b`)
	thaiTitle = regexp.MustCompile(`^คำ(?:พิพากษา|สั่ง|วินิจฉัย)[^\s]*`)

	englishLaw = regexp.MustCompile(`\b(?:[A-Z][\w'-]*[ \t]+){1,6}(?:Act|Code)\b(?:,?[ \t]+(?:of[ \t]+)?\d{4})?`)
	thaiLaw    = regexp.MustCompile(`(?:พระราชบัญญัติ|ประมวลกฎหมาย|รัฐธรรมนูญ)[^\s,()]*(?:\s+พ\.ศ\.\s*\d{4})?`)
)

const monthPattern = `(january|february|march|april|may|june|july|august|september|october|november|december)`

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var titleCase = cases.Title(language.English)

// ExtractMetadata applies every rule to normalised text.
func ExtractMetadata(text string) domain.CaseMetadata {
	lines := strings.Split(text, "\n")
	header := lines
	if len(header) > headerLines {
		header = header[:headerLines]
	}

	m := domain.CaseMetadata{}
	if cn, ok := ExtractCaseNumber(text); ok {
		m.CaseNumber = &cn
	}
	if court, ok := extractCourt(header); ok {
		m.Court = &court
		if j, ok := jurisdictionFromCourt(court); ok {
			m.Jurisdiction = &j
		}
	}
	if j, ok := extractJurisdiction(text); ok {
		m.Jurisdiction = &j
	}
	if date, ok := extractDate(lines); ok {
		m.Date = &date
	}
	m.Parties = extractParties(header)
	if t, ok := extractDocumentType(header); ok {
		m.DocumentType = &t
	}
	m.ReferencedLaws = extractLaws(text)
	return m
}

// ExtractCaseNumber finds the case number. A labelled number ("Case No.",
// "หมายเลขแดงที่") wins; otherwise the first N/YYYY token that is not part
// of a numeric date is used.
func ExtractCaseNumber(text string) (string, bool) {
	if m := labelledCaseNumber.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	for _, loc := range bareCaseNumber.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && isDateByte(text[loc[0]-1]) {
			continue
		}
		if loc[1] < len(text) && isDigit(text[loc[1]]) {
			continue
		}
		return text[loc[0]:loc[1]], true
	}
	return "", false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isDateByte(b byte) bool { return isDigit(b) || b == '/' || b == '.' }

func extractCourt(lines []string) (string, bool) {
	for _, l := range lines {
		if l == "" || len(l) > 150 || !courtLine.MatchString(l) {
			continue
		}
		court := inThe.ReplaceAllString(l, "")
		court = strings.TrimRight(court, " .,:;")
		if court != "" {
			return court, true
		}
	}
	return "", false
}

func jurisdictionFromCourt(court string) (string, bool) {
	m := courtOf.FindStringSubmatch(court)
	if m == nil {
		return "", false
	}
	j := strings.TrimSpace(m[1])
	if courtKinds[strings.ToLower(j)] {
		return "", false
	}
	return titleCase.String(j), true
}

// courtKinds are words that follow "Court of" without naming a place.
var courtKinds = map[string]bool{
	"appeal": true, "appeals": true, "justice": true, "cassation": true,
	"first instance": true, "claims": true, "session": true, "sessions": true,
}

func extractJurisdiction(text string) (string, bool) {
	m := jurisdictionLine.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	j := strings.TrimRight(strings.TrimSpace(m[1]), " .,;")
	if j == "" {
		return "", false
	}
	return titleCase.String(j), true
}

func extractParties(lines []string) []string {
	var plaintiffs, defendants []string
	for _, l := range lines {
		if l == "" {
			continue
		}
		if m := partiesLine.FindStringSubmatch(l); m != nil {
			return []string{trimParty(m[1]), trimParty(m[2])}
		}
		if m := plaintiff.FindStringSubmatch(l); m != nil {
			plaintiffs = append(plaintiffs, trimParty(m[1]))
		}
		if m := defendant.FindStringSubmatch(l); m != nil {
			defendants = append(defendants, trimParty(m[1]))
		}
	}
	if len(plaintiffs) == 0 && len(defendants) == 0 {
		return nil
	}
	return append(plaintiffs, defendants...)
}

func trimParty(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".,;:")
}

type dateCandidate struct {
	line, pos int
	value     string
}

func extractDate(lines []string) (string, bool) {
	var first, labelled *dateCandidate
	for i, l := range lines {
		for _, c := range datesIn(l) {
			c.line = i
			if first == nil {
				cc := c
				first = &cc
			}
			if labelled == nil && dateLabel.MatchString(l) {
				cc := c
				labelled = &cc
			}
		}
		if labelled != nil {
			break
		}
	}
	switch {
	case labelled != nil:
		return labelled.value, true
	case first != nil:
		return first.value, true
	default:
		return "", false
	}
}

// datesIn returns the valid dates on a line in order of position.
func datesIn(line string) []dateCandidate {
	var out []dateCandidate
	add := func(pos, y, mo, d int) {
		if v, ok := isoOf(y, mo, d); ok {
			out = append(out, dateCandidate{pos: pos, value: v})
		}
	}
	for _, m := range isoDate.FindAllStringSubmatchIndex(line, -1) {
		add(m[0], atoi(line[m[2]:m[3]]), atoi(line[m[4]:m[5]]), atoi(line[m[6]:m[7]]))
	}
	for _, m := range dmyDate.FindAllStringSubmatchIndex(line, -1) {
		add(m[0], atoi(line[m[6]:m[7]]), int(months[strings.ToLower(line[m[4]:m[5]])]), atoi(line[m[2]:m[3]]))
	}
	for _, m := range mdyDate.FindAllStringSubmatchIndex(line, -1) {
		add(m[0], atoi(line[m[6]:m[7]]), int(months[strings.ToLower(line[m[2]:m[3]])]), atoi(line[m[4]:m[5]]))
	}
	for _, m := range numDate.FindAllStringSubmatchIndex(line, -1) {
		add(m[0], atoi(line[m[6]:m[7]]), atoi(line[m[4]:m[5]]), atoi(line[m[2]:m[3]]))
	}
	slices.SortStableFunc(out, func(a, b dateCandidate) int {
		return cmp.Compare(a.pos, b.pos)
	})
	return out
}

// extractDocumentType reads the first title line that names a kind of
// decision.
func extractDocumentType(lines []string) (string, bool) {
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || len(l) > 150 {
			continue
		}
		if t := thaiTitle.FindString(l); t != "" {
			return t, true
		}
		if t := documentTitle.FindString(l); t != "" {
			return titleCase.String(strings.Join(strings.Fields(t), " ")), true
		}
	}
	return "", false
}

// extractLaws lists cited statutes and codes by first mention.
func extractLaws(text string) []string {
	type mention struct {
		pos  int
		name string
	}
	var found []mention
	for _, re := range []*regexp.Regexp{englishLaw, thaiLaw} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			name := strings.TrimPrefix(text[loc[0]:loc[1]], "The ")
			found = append(found, mention{pos: loc[0], name: strings.Join(strings.Fields(name), " ")})
		}
	}
	slices.SortStableFunc(found, func(a, b mention) int {
		return cmp.Compare(a.pos, b.pos)
	})

	var out []string
	for _, f := range found {
		if !slices.Contains(out, f.name) {
			out = append(out, f.name)
		}
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// isoOf formats a calendar date, rejecting impossible ones such as 31 February.
func isoOf(y, mo, d int) (string, bool) {
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, mo, d), true
}
