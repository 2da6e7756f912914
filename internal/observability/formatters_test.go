package observability

import (
	"bytes"
	"testing"

	"github.com/jonathan/cv-optimizer/internal/pipeline"
	"github.com/jonathan/cv-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintComparison(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	comparison := &types.SkillComparison{
		Matched: []types.SkillMatch{
			{CVSkill: "Go", JobSkill: "Go", Similarity: 1.0},
		},
		Missing:     []string{"Kubernetes"},
		Interesting: []string{"Terraform"},
		Stats: types.ComparisonStats{
			TotalJob:        2,
			MatchedCount:    1,
			MatchPercentage: 50.0,
		},
	}

	p.PrintComparison(comparison)
	output := buf.String()

	assert.Contains(t, output, "SKILL COMPARISON")
	assert.Contains(t, output, "50.0%")
	assert.Contains(t, output, "Go")
	assert.Contains(t, output, "Kubernetes")
	assert.Contains(t, output, "Terraform")
}

func TestPrintComparison_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintComparison(nil)

	assert.Empty(t, buf.String())
}

func TestPrintRunLog(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunLog([]string{"✓ analyze_structure", "✓ extract_cv_skills"})
	output := buf.String()

	assert.Contains(t, output, "PIPELINE RUN")
	assert.Contains(t, output, "✓ analyze_structure")
}

func TestPrintRunLog_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunLog(nil)

	assert.Empty(t, buf.String())
}

func TestPrintSources(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSources(pipeline.Sources{
		CVChunks:  []string{"Built billing pipelines in Go.\nMore detail."},
		JobChunks: []string{"Strong Go experience required."},
	})
	output := buf.String()

	assert.Contains(t, output, "GENERATION SOURCES")
	assert.Contains(t, output, "CV chunks: 1, job chunks: 1")
	assert.Contains(t, output, "Built billing pipelines in Go.")
	// Only the first line of each chunk is shown.
	assert.NotContains(t, output, "More detail.")
}

func TestPrintStructure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStructure(&types.CVStructure{
		Sections: []types.Section{
			{Name: "Experience", StartLine: 0, EndLine: 10},
			{Name: "Skills", StartLine: 10, EndLine: 14},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "CV STRUCTURE")
	assert.Contains(t, output, "Experience")
	assert.Contains(t, output, "lines 0-10")
}
