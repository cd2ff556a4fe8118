package media

import (
	"context"
	"path/filepath"

	apperrors "github.com/dygy/scorebot/internal/errors"
	"github.com/dygy/scorebot/internal/exec"
	"github.com/dygy/scorebot/internal/workspace"
)

// Transcriber converts audio to MIDI using the transkun model CLI.
type Transcriber struct {
	runner   *exec.Runner
	transkun string
	layout   *workspace.Layout
	useGPU   bool
}

// NewTranscriber creates a transcriber writing into the results dir.
func NewTranscriber(runner *exec.Runner, transkunPath string, layout *workspace.Layout, useGPU bool) *Transcriber {
	return &Transcriber{runner: runner, transkun: transkunPath, layout: layout, useGPU: useGPU}
}

// Transcribe converts an audio file to MIDI and returns the output path.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	midiPath := filepath.Join(t.layout.Results(), baseName(audioPath)+".mid")

	args := []string{audioPath, midiPath}
	if t.useGPU {
		args = append(args, "--device", "cuda")
	}

	result, err := t.runner.Run(ctx, t.transkun, args...)
	if err != nil {
		exitCode, stderr := 0, ""
		if result != nil {
			exitCode, stderr = result.ExitCode, result.Stderr
		}
		return "", apperrors.NewCapabilityError("transkun", apperrors.StageTranscribe, exitCode, stderr, err)
	}

	return midiPath, nil
}
