package skills

import "fmt"

// ExtractionError represents a failed skill extraction, either an API
// failure or malformed model output.
type ExtractionError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("skill extraction (%s) failed: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("skill extraction (%s) failed: %s", e.Kind, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ComparisonError represents a failed skill comparison, usually an
// embedding API failure.
type ComparisonError struct {
	Message string
	Cause   error
}

func (e *ComparisonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("skill comparison failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("skill comparison failed: %s", e.Message)
}

func (e *ComparisonError) Unwrap() error {
	return e.Cause
}
