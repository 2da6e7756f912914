package letter

import "fmt"

// GenerationError represents a failed cover letter generation, usually
// an API failure or empty model output.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cover letter generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cover letter generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
