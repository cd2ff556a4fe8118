package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/dygy/scorebot/internal/errors"
	"github.com/dygy/scorebot/internal/exec"
	"github.com/dygy/scorebot/internal/intent"
	"github.com/dygy/scorebot/internal/workspace"
)

// demucsModel is the six-source model, the only variant that yields
// piano and guitar stems alongside the standard four.
const demucsModel = "htdemucs_6s"

// StemSeparator extracts a single instrument stem using Demucs.
type StemSeparator struct {
	runner *exec.Runner
	layout *workspace.Layout
}

// NewStemSeparator creates a separator writing into the separated dir.
func NewStemSeparator(runner *exec.Runner, layout *workspace.Layout) *StemSeparator {
	return &StemSeparator{runner: runner, layout: layout}
}

// Separate runs the six-stem model and returns the path of the requested
// instrument's stem.
func (s *StemSeparator) Separate(ctx context.Context, inputPath string, instrument intent.Instrument) (string, error) {
	result, err := s.runner.RunModule(ctx, "demucs.separate",
		"--mp3",
		"-n", demucsModel,
		"-o", s.layout.Separated(),
		inputPath,
	)
	if err != nil {
		exitCode, stderr := 0, ""
		if result != nil {
			exitCode, stderr = result.ExitCode, result.Stderr
		}
		return "", apperrors.NewCapabilityError("demucs", apperrors.StageStems, exitCode, stderr, err)
	}

	stemPath := filepath.Join(s.layout.Separated(), demucsModel, baseName(inputPath), string(instrument)+".mp3")
	if _, err := os.Stat(stemPath); err != nil {
		return "", apperrors.NewCapabilityError("demucs", apperrors.StageStems, 0,
			fmt.Sprintf("%s stem not found in output", instrument), err)
	}

	return stemPath, nil
}
