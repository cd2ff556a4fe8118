package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	apperrors "github.com/dygy/scorebot/internal/errors"
	"github.com/dygy/scorebot/internal/exec"
	"github.com/dygy/scorebot/internal/workspace"
)

// Trimmer cuts audio between two timestamps using ffmpeg.
type Trimmer struct {
	runner *exec.Runner
	ffmpeg string
	layout *workspace.Layout
}

// NewTrimmer creates a trimmer writing into the layout's uploads dir.
func NewTrimmer(runner *exec.Runner, ffmpegPath string, layout *workspace.Layout) *Trimmer {
	return &Trimmer{runner: runner, ffmpeg: ffmpegPath, layout: layout}
}

// Trim extracts [start, end) seconds from the input into a new MP3.
// Stream copy is tried first; on failure the audio is re-encoded, which
// handles inputs whose container does not cut cleanly on frame bounds.
func (t *Trimmer) Trim(ctx context.Context, inputPath string, start, end int) (string, error) {
	outPath := TrimOutputPath(t.layout.Uploads(), inputPath, start, end)

	args := trimArgs(inputPath, outPath, start, end, true)
	result, err := t.runner.Run(ctx, t.ffmpeg, args...)
	if err != nil {
		args = trimArgs(inputPath, outPath, start, end, false)
		result, err = t.runner.Run(ctx, t.ffmpeg, args...)
	}
	if err != nil {
		exitCode, stderr := 0, ""
		if result != nil {
			exitCode, stderr = result.ExitCode, result.Stderr
		}
		return "", apperrors.NewCapabilityError("ffmpeg", apperrors.StageTrim, exitCode, stderr, err)
	}

	return outPath, nil
}

// TrimOutputPath names trimmed artifacts <start>_<end>_<original name>.
func TrimOutputPath(dir, inputPath string, start, end int) string {
	name := fmt.Sprintf("%d_%d_%s.mp3", start, end, baseName(inputPath))
	return filepath.Join(dir, name)
}

func trimArgs(in, out string, start, end int, copyCodec bool) []string {
	args := []string{
		"-y",
		"-ss", strconv.Itoa(start),
		"-to", strconv.Itoa(end),
		"-i", in,
	}
	if copyCodec {
		args = append(args, "-c", "copy")
	} else {
		args = append(args, "-codec:a", "libmp3lame", "-qscale:a", "2")
	}
	return append(args, out)
}
