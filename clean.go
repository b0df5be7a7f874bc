package guji

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// boilerplateRule removes one kind of site furniture.
type boilerplateRule struct {
	name    string
	pattern *regexp.Regexp
}

// lineSpace matches what strings.TrimSpace removes, except newlines.
const lineSpace = `[\pZ\t\v\f\x{85}]*`

// boilerplateRules are applied in order; every match is deleted.
var boilerplateRules = []boilerplateRule{
	// Site copyright notice, from the site name to the marker, across lines.
	{name: "copyright", pattern: regexp.MustCompile(`(?s)识典古籍.*?版权所有`)},
	{name: "fetch-info", pattern: regexp.MustCompile(`(?s)获取时间.*?获取方式`)},
	{name: "login", pattern: regexp.MustCompile(`登录后阅读更方便`)},
	// Navigation labels that also occur in body text are removed only as
	// whole lines.
	{name: "library", pattern: regexp.MustCompile(`(?m)^` + lineSpace + `书库` + lineSpace + `$`)},
	{name: "contents", pattern: regexp.MustCompile(`(?m)^` + lineSpace + `目录` + lineSpace + `$`)},
	// Trailers run to the end of their line.
	{name: "next-chapter", pattern: regexp.MustCompile(`(?m)下一篇.*$`)},
	{name: "previous-chapter", pattern: regexp.MustCompile(`(?m)上一章.*$`)},
	{name: "source-link", pattern: regexp.MustCompile(`(?m)来源链接.*$`)},
}

const numerals = `[零〇一二三四五六七八九十百千两0-9０-９]+`

// titlePatterns recognise classical-text heading lines: volume, chapter,
// section and discourse markers.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^第` + numerals + `[卷章回节節篇部册冊]`),
	regexp.MustCompile(`^卷[之第]?` + numerals),
	// Headings prefixed with the book or part name.
	regexp.MustCompile(`^\p{Han}{1,12}卷[之第]?` + numerals + `$`),
	regexp.MustCompile(`^\p{Han}{0,12}卷[上中下]$`),
	regexp.MustCompile(`^\p{Han}{1,12}篇之` + numerals + `$`),
	regexp.MustCompile(`^[上中下][卷篇]$`),
	regexp.MustCompile(`^\p{Han}{1,12}[论論]第` + numerals + `$`),
	regexp.MustCompile(`(?i)^(?:volume|chapter|section|book)\s+[0-9ivxlc]+\b`),
}

// maxTitleLength bounds title lines; longer lines are body text even if
// they open with a heading marker.
const maxTitleLength = 40

var blankRun = regexp.MustCompile(`\n{3,}`)

// Clean turns raw extracted text into canonical chapter text.
// It is pure and idempotent: Clean(Clean(x)) == Clean(x).
//
// The canonical form is a sequence of trimmed, non-blank paragraphs
// separated by exactly one empty line, with no repeated title lines and
// no two equal adjacent paragraphs.
func Clean(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = StripBoilerplate(text)
	lines := dropRepeatedTitles(strings.Split(text, "\n"))
	lines = dropBlankLines(lines)
	lines = collapseDuplicates(lines)

	return blankRun.ReplaceAllString(strings.Join(lines, "\n\n"), "\n\n")
}

// StripBoilerplate deletes site furniture. Rules are reapplied until
// nothing changes, since a deletion can splice two fragments into a new
// match.
func StripBoilerplate(text string) string {
	for {
		prev := text
		for _, rule := range boilerplateRules {
			text = rule.pattern.ReplaceAllString(text, "")
		}
		if text == prev {
			return text
		}
	}
}

// IsTitleLine reports whether line is a heading of the source text.
func IsTitleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) > maxTitleLength {
		return false
	}
	for _, re := range titlePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// dropRepeatedTitles keeps the first occurrence of each title line.
// Non-title lines are never touched.
func dropRepeatedTitles(lines []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if IsTitleLine(line) {
			key := strings.TrimSpace(line)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, line)
	}
	return out
}

// dropBlankLines trims every line and drops the empty ones.
func dropBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// collapseDuplicates collapses runs of equal consecutive lines into one.
func collapseDuplicates(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i > 0 && line == lines[i-1] {
			continue
		}
		out = append(out, line)
	}
	return out
}
