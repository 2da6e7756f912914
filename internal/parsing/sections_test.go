package parsing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCV = `Jane Doe
jane@example.com

Summary
Senior backend engineer with 8 years of experience.

Experience
Acme Corp - Backend Engineer (2019-2024)
Built billing pipelines in Go.

Skills
Go, PostgreSQL, Docker
`

func TestAnalyzeStructure_DetectsNamedSections(t *testing.T) {
	structure := AnalyzeStructure(sampleCV)

	names := structure.SectionNames()
	assert.Contains(t, names, "Summary")
	assert.Contains(t, names, "Experience")
	assert.Contains(t, names, "Skills")
}

func TestAnalyzeStructure_LeadingContentBecomesBody(t *testing.T) {
	structure := AnalyzeStructure(sampleCV)

	require.NotEmpty(t, structure.Sections)
	first := structure.Sections[0]
	assert.Equal(t, "Body", first.Name)
	assert.Equal(t, 0, first.StartLine)
}

func TestAnalyzeStructure_RangesCoverAllLines(t *testing.T) {
	structure := AnalyzeStructure(sampleCV)
	lineCount := len(strings.Split(sampleCV, "\n"))

	prev := 0
	for _, sec := range structure.Sections {
		assert.Equal(t, prev, sec.StartLine)
		assert.Greater(t, sec.EndLine, sec.StartLine)
		prev = sec.EndLine
	}
	assert.Equal(t, lineCount, prev)
}

func TestAnalyzeStructure_NoHeadersFallsBackToBody(t *testing.T) {
	text := "just a paragraph of plain text\nwith no structure at all"
	structure := AnalyzeStructure(text)

	require.Len(t, structure.Sections, 1)
	assert.Equal(t, "Body", structure.Sections[0].Name)
	assert.Equal(t, 0, structure.Sections[0].StartLine)
	assert.Equal(t, 2, structure.Sections[0].EndLine)
}

func TestAnalyzeStructure_UppercaseHeaders(t *testing.T) {
	text := "WORK EXPERIENCE\nsome job\nEDUCATION\nsome school"
	structure := AnalyzeStructure(text)

	names := structure.SectionNames()
	assert.Equal(t, []string{"Work Experience", "Education"}, names)
}

func TestAnalyzeStructure_TrailingColonStripped(t *testing.T) {
	text := "Skills:\nGo, SQL"
	structure := AnalyzeStructure(text)

	require.Len(t, structure.Sections, 1)
	assert.Equal(t, "Skills", structure.Sections[0].Name)
}

func TestHeaderName_Rejections(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"long line", strings.Repeat("EXPERIENCE ", 10)},
		{"body sentence", "I worked on distributed systems."},
		{"line with digits", "2019-2024 ACME CORP"},
		{"empty", ""},
		{"whitespace", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := headerName(tt.line)
			assert.False(t, ok)
		})
	}
}

func TestHeaderName_KnownHeadersCaseInsensitive(t *testing.T) {
	name, ok := headerName("  technical skills  ")
	require.True(t, ok)
	assert.Equal(t, "Technical Skills", name)
}
