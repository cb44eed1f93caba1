package ingestion

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	spaceRun = regexp.MustCompile(`[ \t]+`)
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// invisible maps characters that render as nothing or as a plain space
var invisible = strings.NewReplacer(
	"\uFEFF", "",
	"\u200B", "",
	"\u200C", "",
	"\u200D", "",
	"\u00A0", " ",
	"\u2007", " ",
	"\u202F", " ",
)

// CleanText normalizes free text (model output, pasted documents) into NFC with LF line
// endings, single spaces within a line and at most one blank line between blocks.
// List markers and headings are left for the caller to interpret.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = invisible.Replace(norm.NFC.String(content))

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, line)
	return strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
}
