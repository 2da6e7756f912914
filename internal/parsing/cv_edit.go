package parsing

import (
	"strings"
)

// UpdateSection replaces the named section's content in the CV text,
// keeping the header line. Matching is case-insensitive on the section
// name. When the section does not exist, a new section with that header
// is appended at the end. The returned text is the complete updated CV.
func UpdateSection(cvText, section, content string) string {
	structure := AnalyzeStructure(cvText)
	lines := strings.Split(cvText, "\n")

	target := strings.ToLower(strings.TrimSpace(section))
	for _, sec := range structure.Sections {
		if strings.ToLower(sec.Name) != target {
			continue
		}

		var out []string
		out = append(out, lines[:sec.StartLine]...)
		if sec.Name != "Body" || looksLikeHeader(lines[sec.StartLine]) {
			// Keep the original header line.
			out = append(out, lines[sec.StartLine])
		}
		out = append(out, strings.Split(strings.TrimRight(content, "\n"), "\n")...)
		out = append(out, lines[sec.EndLine:]...)
		return strings.Join(out, "\n")
	}

	// Section absent: append it with a fresh header.
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(cvText, "\n"))
	if sb.Len() > 0 {
		sb.WriteString("\n\n")
	}
	sb.WriteString(titleCase(section))
	sb.WriteString("\n")
	sb.WriteString(strings.TrimRight(content, "\n"))
	return sb.String()
}

func looksLikeHeader(line string) bool {
	_, ok := headerName(line)
	return ok
}

// Search returns the lines of text containing term, case-insensitively.
// Results preserve document order.
func Search(text, term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	var matches []string
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(strings.ToLower(line), term) {
			matches = append(matches, line)
		}
	}
	return matches
}
