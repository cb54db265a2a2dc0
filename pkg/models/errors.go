package models

import "fmt"

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	KindInsufficientPopulation ErrorKind = "INSUFFICIENT_POPULATION"
	KindDegenerateBounds       ErrorKind = "DEGENERATE_BOUNDS"
	KindMissingField           ErrorKind = "MISSING_FIELD"
	KindUpstreamUnavailable    ErrorKind = "UPSTREAM_UNAVAILABLE"
)

// PipelineError is the error type surfaced by every stage of the pipeline.
type PipelineError struct {
	Kind    ErrorKind `json:"kind"`
	Track   string    `json:"track,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Sentinels for errors.Is. They match any PipelineError of the same kind.
var (
	ErrInsufficientPopulation = &PipelineError{Kind: KindInsufficientPopulation}
	ErrDegenerateBounds       = &PipelineError{Kind: KindDegenerateBounds}
	ErrMissingField           = &PipelineError{Kind: KindMissingField}
	ErrUpstreamUnavailable    = &PipelineError{Kind: KindUpstreamUnavailable}
)

// NewPipelineError creates a new pipeline error
func NewPipelineError(kind ErrorKind, track, message string, cause error) *PipelineError {
	return &PipelineError{
		Kind:    kind,
		Track:   track,
		Message: message,
		Cause:   cause,
	}
}

func (e *PipelineError) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Track != "" {
		msg = fmt.Sprintf("%s (track %s)", msg, e.Track)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is matches sentinels by kind.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Track == ""
}
