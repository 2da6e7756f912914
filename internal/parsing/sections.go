// Package parsing provides heuristic CV structure analysis and
// line-oriented section editing. No LLM calls happen here; structure
// detection has to work offline and deterministically.
package parsing

import (
	"strings"
	"unicode"

	"github.com/jonathan/cv-optimizer/internal/types"
)

// maxHeaderLen is the longest line still considered a potential section
// header. Real headers are short; anything longer is body text.
const maxHeaderLen = 50

// knownHeaders are common CV section names, matched case-insensitively
// as the leading word(s) of a candidate header line.
var knownHeaders = []string{
	"experience",
	"work experience",
	"professional experience",
	"education",
	"skills",
	"technical skills",
	"summary",
	"profile",
	"projects",
	"certifications",
	"languages",
	"interests",
	"publications",
	"references",
}

// AnalyzeStructure splits CV text into named sections by detecting
// header lines. Content before the first header lands in a leading
// "Body" section; when no header is found at all, the whole document
// becomes a single "Body" section. The result is
// never empty for non-empty input, and section ranges cover every line
// exactly once.
func AnalyzeStructure(text string) *types.CVStructure {
	lines := strings.Split(text, "\n")

	structure := &types.CVStructure{}
	currentName := ""
	currentStart := 0

	flush := func(end int) {
		if end <= currentStart {
			return
		}
		name := currentName
		if name == "" {
			name = "Body"
		}
		structure.Sections = append(structure.Sections, types.Section{
			Name:      name,
			StartLine: currentStart,
			EndLine:   end,
		})
	}

	for i, line := range lines {
		name, ok := headerName(line)
		if !ok {
			continue
		}
		flush(i)
		currentName = name
		currentStart = i
	}
	flush(len(lines))

	if len(structure.Sections) == 0 {
		structure.Sections = append(structure.Sections, types.Section{
			Name:      "Body",
			StartLine: 0,
			EndLine:   len(lines),
		})
	}

	return structure
}

// headerName reports whether a line looks like a section header and
// returns its canonical name.
func headerName(line string) (string, bool) {
	trimmed := strings.TrimSpace(strings.TrimRight(line, ":"))
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" || len(trimmed) > maxHeaderLen {
		return "", false
	}

	lower := strings.ToLower(trimmed)
	for _, known := range knownHeaders {
		if lower == known {
			return titleCase(trimmed), true
		}
	}

	// An all-uppercase short line with no digits reads as a header even
	// when we don't recognize the name.
	if isAllUpper(trimmed) && wordCount(trimmed) <= 4 {
		return titleCase(trimmed), true
	}

	return "", false
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// titleCase renders a header name in Title Case for stable section keys.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
