// Package server provides the HTTP REST API for the CV optimizer.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-optimizer/internal/letter"
	"github.com/jonathan/cv-optimizer/internal/pipeline"
	"github.com/jonathan/cv-optimizer/internal/skills"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrSessionNotFound indicates the session does not exist
type ErrSessionNotFound struct {
	SessionID string
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// ErrIngestFailed indicates a job posting URL could not be ingested
type ErrIngestFailed struct {
	URL   string
	Cause error
}

func (e *ErrIngestFailed) Error() string {
	return fmt.Sprintf("failed to ingest %s: %v", e.URL, e.Cause)
}

func (e *ErrIngestFailed) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Pipeline stage failures map by kind: bad inputs are the client's
// fault, everything downstream of the LLM is a bad gateway.
func HTTPStatus(err error) int {
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Kind {
		case pipeline.ErrKindInput:
			return http.StatusBadRequest
		case pipeline.ErrKindCanceled:
			return http.StatusServiceUnavailable
		default:
			return http.StatusBadGateway
		}
	}

	var extractionErr *skills.ExtractionError
	var comparisonErr *skills.ComparisonError
	var letterErr *letter.GenerationError
	if errors.As(err, &extractionErr) || errors.As(err, &comparisonErr) || errors.As(err, &letterErr) {
		return http.StatusBadGateway
	}

	switch err.(type) {
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrSessionNotFound:
		return http.StatusNotFound
	case *ErrIngestFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
