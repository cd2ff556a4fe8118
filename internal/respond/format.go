// Package respond maps orchestrator results onto transport-agnostic
// reply messages. This is the only place that knows how an artifact is
// presented; the router and cache stay presentation-agnostic.
package respond

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dygy/scorebot/internal/router"
)

// Message is one transport-agnostic reply: text, optionally with an
// attached file.
type Message struct {
	Text     string
	FilePath string // non-empty means attach this file
}

// Media extensions the transport should send as file attachments.
var attachableExts = map[string]bool{
	".mp3":      true,
	".wav":      true,
	".mid":      true,
	".midi":     true,
	".musicxml": true,
}

// Format renders a single result. A recognized media file becomes an
// attachment message; a search result becomes rendered text; anything
// else is plain text.
func Format(res router.Result) Message {
	if res.Search != nil {
		return Message{Text: renderSearch(res)}
	}

	if res.Path != "" && attachableExts[strings.ToLower(filepath.Ext(res.Path))] {
		return Message{Text: res.Label, FilePath: res.Path}
	}

	if res.Path != "" {
		// Unrecognized artifact: point at it rather than attach it.
		return Message{Text: res.Label + res.Path}
	}

	return Message{Text: res.Label}
}

// FormatAll renders a batch in order.
func FormatAll(results []router.Result) []Message {
	out := make([]Message, 0, len(results))
	for _, res := range results {
		out = append(out, Format(res))
	}
	return out
}

func renderSearch(res router.Result) string {
	s := res.Search
	return fmt.Sprintf("%s\n%s (%s)\n%s", strings.TrimSpace(res.Label), s.Title, formatDuration(s.DurationSeconds), s.Reference)
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
