package media

import (
	"context"
	"path/filepath"
	"strings"

	apperrors "github.com/dygy/scorebot/internal/errors"
	"github.com/dygy/scorebot/internal/exec"
	"github.com/dygy/scorebot/internal/workspace"
)

// Fetcher downloads audio from a streaming reference using yt-dlp.
type Fetcher struct {
	runner *exec.Runner
	ytdlp  string
	layout *workspace.Layout
}

// NewFetcher creates a fetcher writing into the layout's uploads dir.
func NewFetcher(runner *exec.Runner, ytdlpPath string, layout *workspace.Layout) *Fetcher {
	return &Fetcher{runner: runner, ytdlp: ytdlpPath, layout: layout}
}

// Fetch downloads the best audio for a reference and converts it to MP3.
// The output is keyed by video ID so refetching the same link is a
// filesystem hit, not a second download.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (string, error) {
	id := VideoID(ref)
	var outTemplate, outPath string
	if id != "" {
		outTemplate = filepath.Join(f.layout.Uploads(), id+".%(ext)s")
		outPath = filepath.Join(f.layout.Uploads(), id+".mp3")
	} else {
		outTemplate = filepath.Join(f.layout.Uploads(), "%(id)s.%(ext)s")
	}

	result, err := f.runner.Run(ctx, f.ytdlp,
		"--no-playlist",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "192K",
		"--output", outTemplate,
		"--no-warnings",
		"--print", "after_move:filepath",
		ref,
	)
	if err != nil {
		exitCode, stderr := 0, ""
		if result != nil {
			exitCode, stderr = result.ExitCode, result.Stderr
		}
		return "", apperrors.NewCapabilityError("yt-dlp", apperrors.StageFetch, exitCode, stderr, err)
	}

	// yt-dlp prints the final path; fall back to the templated guess.
	if printed := lastLine(result.Stdout); printed != "" {
		outPath = printed
	}
	if outPath == "" {
		return "", apperrors.NewCapabilityError("yt-dlp", apperrors.StageFetch, 0, "no output path reported", nil)
	}
	return outPath, nil
}

// Title fetches the video title for display names.
func (f *Fetcher) Title(ctx context.Context, ref string) string {
	result, err := f.runner.Run(ctx, f.ytdlp, "--get-title", "--no-warnings", ref)
	if err != nil {
		return ref
	}
	title := strings.TrimSpace(result.Stdout)
	if title == "" {
		return ref
	}
	if len(title) > 80 {
		title = title[:77] + "..."
	}
	return title
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
