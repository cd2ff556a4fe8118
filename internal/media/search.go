package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/dygy/scorebot/internal/errors"
	"github.com/dygy/scorebot/internal/exec"
)

const searchCandidates = 10

// Searcher finds songs on YouTube via yt-dlp's search extractor.
type Searcher struct {
	runner     *exec.Runner
	ytdlp      string
	maxSeconds int // skip candidates longer than this
}

// NewSearcher creates a searcher. maxSeconds bounds result duration;
// non-positive means 300 (full songs, not hour-long mixes).
func NewSearcher(runner *exec.Runner, ytdlpPath string, maxSeconds int) *Searcher {
	if maxSeconds <= 0 {
		maxSeconds = 300
	}
	return &Searcher{runner: runner, ytdlp: ytdlpPath, maxSeconds: maxSeconds}
}

// Search returns the first candidate within the duration cap, or nil
// when nothing qualifies.
func (s *Searcher) Search(ctx context.Context, query string) (*SearchResult, error) {
	result, err := s.runner.Run(ctx, s.ytdlp,
		"--dump-json",
		"--flat-playlist",
		"--no-warnings",
		fmt.Sprintf("ytsearch%d:%s", searchCandidates, query),
	)
	if err != nil {
		exitCode, stderr := 0, ""
		if result != nil {
			exitCode, stderr = result.ExitCode, result.Stderr
		}
		return nil, apperrors.NewCapabilityError("yt-dlp", apperrors.StageSearch, exitCode, stderr, err)
	}

	return pickResult(result.Stdout, s.maxSeconds), nil
}

// searchEntry is one line of yt-dlp --dump-json output.
type searchEntry struct {
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Webpage  string  `json:"webpage_url"`
	Duration float64 `json:"duration"`
}

// pickResult scans the JSON-lines output for the first entry within the
// duration cap. Entries without a duration are skipped: flat extraction
// sometimes omits it and an unknown length defeats the cap.
func pickResult(output string, maxSeconds int) *SearchResult {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry searchEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Duration <= 0 || int(entry.Duration) > maxSeconds {
			continue
		}
		ref := entry.URL
		if entry.Webpage != "" {
			ref = entry.Webpage
		}
		if ref == "" {
			continue
		}
		return &SearchResult{
			Title:           entry.Title,
			Reference:       ref,
			DurationSeconds: int(entry.Duration),
		}
	}
	return nil
}
