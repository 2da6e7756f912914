// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/pipeline"
	"github.com/jonathan/cv-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintComparison outputs a human-readable summary of the skill comparison.
func (p *Printer) PrintComparison(comparison *types.SkillComparison) {
	if comparison == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match: %.1f%%  (%d of %d job skills)\n",
		comparison.Stats.MatchPercentage,
		comparison.Stats.MatchedCount,
		comparison.Stats.TotalJob))
	sb.WriteString("\n")

	if len(comparison.Matched) > 0 {
		sb.WriteString("Matched:\n")
		count := min(len(comparison.Matched), maxItemsToShow)
		for i := 0; i < count; i++ {
			m := comparison.Matched[i]
			sb.WriteString(fmt.Sprintf("  • %s (%.2f)\n", m.JobSkill, m.Similarity))
		}
		if len(comparison.Matched) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(comparison.Matched)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(comparison.Missing) > 0 {
		sb.WriteString("Missing:\n")
		count := min(len(comparison.Missing), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", comparison.Missing[i]))
		}
		if len(comparison.Missing) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(comparison.Missing)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(comparison.Interesting) > 0 {
		sb.WriteString("Worth highlighting:\n")
		count := min(len(comparison.Interesting), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", comparison.Interesting[i]))
		}
	}

	p.printBox("SKILL COMPARISON", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunLog outputs the per-stage pipeline log.
func (p *Printer) PrintRunLog(logs []string) {
	if len(logs) == 0 {
		return
	}
	p.printBox("PIPELINE RUN", strings.Join(logs, "\n"))
}

// PrintSources outputs the retrieved chunks that grounded generation.
func (p *Printer) PrintSources(sources pipeline.Sources) {
	if len(sources.CVChunks) == 0 && len(sources.JobChunks) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CV chunks: %d, job chunks: %d\n",
		len(sources.CVChunks), len(sources.JobChunks)))
	for i, chunk := range sources.CVChunks {
		sb.WriteString(fmt.Sprintf("\nCV #%d: %s", i+1, firstLine(chunk)))
	}
	for i, chunk := range sources.JobChunks {
		sb.WriteString(fmt.Sprintf("\njob #%d: %s", i+1, firstLine(chunk)))
	}

	p.printBox("GENERATION SOURCES", sb.String())
}

// PrintStructure outputs the detected CV sections.
func (p *Printer) PrintStructure(structure *types.CVStructure) {
	if structure == nil || len(structure.Sections) == 0 {
		return
	}

	var sb strings.Builder
	for _, sec := range structure.Sections {
		sb.WriteString(fmt.Sprintf("%s  (lines %d-%d)\n", sec.Name, sec.StartLine, sec.EndLine))
	}
	p.printBox("CV STRUCTURE", strings.TrimSuffix(sb.String(), "\n"))
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}
