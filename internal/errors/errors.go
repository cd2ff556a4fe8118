package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	ErrMalformedResponse = errors.New("oracle response malformed")
	ErrOracleTimeout     = errors.New("oracle call timed out")
	ErrNoAudio           = errors.New("no audio available to work with")
	ErrToolNotInstalled  = errors.New("required tool not installed")
)

// Capability stages, one per external collaborator
const (
	StageFetch      = "fetch"
	StageSearch     = "search"
	StageTranscribe = "transcription"
	StageNotation   = "notation"
	StageTrim       = "trim"
	StageStems      = "stem_separation"
)

// CapabilityError represents a failure in an external tool or service
type CapabilityError struct {
	Tool     string // "yt-dlp", "ffmpeg", "transkun", "demucs", "notation"
	Stage    string // StageFetch, StageTranscribe, ...
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *CapabilityError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed at %s (exit %d): %s", e.Tool, e.Stage, e.ExitCode, e.Stderr)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s failed at %s: %v", e.Tool, e.Stage, e.Cause)
	}
	return fmt.Sprintf("%s failed at %s (exit %d)", e.Tool, e.Stage, e.ExitCode)
}

func (e *CapabilityError) Unwrap() error {
	return e.Cause
}

// NewCapabilityError creates a CapabilityError
func NewCapabilityError(tool, stage string, exitCode int, stderr string, cause error) *CapabilityError {
	return &CapabilityError{
		Tool:     tool,
		Stage:    stage,
		ExitCode: exitCode,
		Stderr:   stderr,
		Cause:    cause,
	}
}
