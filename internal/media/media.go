// Package media implements the external processing capabilities the
// router dispatches to: YouTube download and search, audio trimming,
// MIDI transcription, notation rendering, and stem separation.
//
// Each capability wraps a real tool (yt-dlp, ffmpeg, transkun, demucs)
// or service; failures surface as *errors.CapabilityError so the router
// can degrade per action instead of aborting the batch.
package media

import (
	"regexp"
	"strings"
)

// SearchResult is the structured outcome of a song search. It is not a
// file: the formatter renders it as text while the router separately
// fetches its audio.
type SearchResult struct {
	Title           string
	Reference       string // video URL
	DurationSeconds int
}

var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([\w-]+)`),
	regexp.MustCompile(`youtube\.com/shorts/([\w-]+)`),
	regexp.MustCompile(`youtu\.be/([\w-]+)`),
	regexp.MustCompile(`music\.youtube\.com/watch\?v=([\w-]+)`),
}

// VideoID extracts the video ID from the usual YouTube URL shapes,
// returning "" when the reference is not a recognized link.
func VideoID(ref string) string {
	for _, re := range youtubePatterns {
		matches := re.FindStringSubmatch(ref)
		if len(matches) > 1 {
			id := matches[1]
			if idx := strings.IndexAny(id, "&?"); idx != -1 {
				id = id[:idx]
			}
			return id
		}
	}
	return ""
}

// baseName strips the directory and extension from a path.
func baseName(path string) string {
	base := path
	if idx := strings.LastIndexByte(base, '/'); idx != -1 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx != -1 {
		base = base[:idx]
	}
	return base
}
