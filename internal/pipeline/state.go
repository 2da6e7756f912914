// Package pipeline orchestrates CV optimization as a sequence of
// fail-fast stages over a shared state value.
package pipeline

import (
	"fmt"

	"github.com/jonathan/cv-optimizer/internal/rag"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// Stage names, in execution order.
const (
	StageAnalyzeStructure = "analyze_structure"
	StageExtractCVSkills  = "extract_cv_skills"
	StageIndexCV          = "index_cv"
	StageExtractJobSkills = "extract_job_skills"
	StageIndexJob         = "index_job"
	StageCompareSkills    = "compare_skills"
	StageGenerateCV       = "generate_cv"
)

// Error kinds carried by StageError, used by callers to map failures to
// responses without string matching.
const (
	ErrKindInput      = "input"
	ErrKindExtraction = "extraction"
	ErrKindIndexing   = "indexing"
	ErrKindComparison = "comparison"
	ErrKindGeneration = "generation"
	ErrKindCanceled   = "canceled"
)

// StageError records which stage failed and why. Once set on a State,
// no further stage runs.
type StageError struct {
	Stage   string
	Kind    string
	Message string
	Cause   error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stage %s failed: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("stage %s failed: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// Sources holds the retrieved context that grounded the generated CV.
type Sources struct {
	CVChunks  []string `json:"cv_chunks"`
	JobChunks []string `json:"job_chunks"`
}

// State carries everything the stages read and write. Inputs are set
// before the run; each stage fills in its own outputs and appends one
// log line. Logs is append-only.
type State struct {
	// Inputs
	CVText   string
	JobText  string
	Settings types.OptimizeSettings

	// Stage outputs
	Structure   *types.CVStructure
	CVSkills    []string
	JobSkills   []string
	CVIndex     *rag.Index
	JobIndex    *rag.Index
	Comparison  *types.SkillComparison
	OptimizedCV string
	Sources     Sources
	ModelUsed   string

	// Run log, one line per executed stage.
	Logs []string

	// Err is set by the first failing stage and stops the run.
	Err *StageError
}

// ok appends a success log line for a stage.
func (s *State) ok(stage string) {
	s.Logs = append(s.Logs, fmt.Sprintf("✓ %s", stage))
}

// fail records a stage failure and its log line.
func (s *State) fail(stage, kind, message string, cause error) {
	s.Err = &StageError{Stage: stage, Kind: kind, Message: message, Cause: cause}
	detail := message
	if cause != nil {
		detail = fmt.Sprintf("%s: %v", message, cause)
	}
	s.Logs = append(s.Logs, fmt.Sprintf("✗ %s: %s", stage, detail))
}
