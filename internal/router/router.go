// Package router executes a parsed action batch against a session's
// asset cache and the external processing capabilities.
//
// Parse-time failures are fatal to the batch and handled by the caller;
// here every capability failure is converted into a result item so the
// caller can always iterate the full list. Execute never returns an
// error and never lets a panic escape.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dygy/scorebot/internal/asset"
	apperrors "github.com/dygy/scorebot/internal/errors"
	"github.com/dygy/scorebot/internal/intent"
	"github.com/dygy/scorebot/internal/media"
)

// RefusalMessage is the fixed reply for unrecognized requests.
const RefusalMessage = "Sorry, I can't help with that. I can transcribe songs to MIDI, create sheet music, trim audio, separate instrument stems, and search for songs."

// Result is one orchestrator output: a label plus either a file artifact,
// a structured search result, or nothing (the label is the whole message,
// which is how failures surface).
type Result struct {
	Label  string
	Path   string
	Search *media.SearchResult
}

// Fetcher downloads audio for a remote reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (string, error)
	Title(ctx context.Context, ref string) string
}

// Searcher finds a song for a free-text query; nil result means no hit.
type Searcher interface {
	Search(ctx context.Context, query string) (*media.SearchResult, error)
}

// Transcriber converts audio to MIDI.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Notator renders MIDI as editable sheet music.
type Notator interface {
	Render(ctx context.Context, midiPath string) (string, error)
}

// Trimmer cuts audio between two timestamps.
type Trimmer interface {
	Trim(ctx context.Context, path string, start, end int) (string, error)
}

// StemSeparator extracts one instrument stem.
type StemSeparator interface {
	Separate(ctx context.Context, path string, instrument intent.Instrument) (string, error)
}

// Capabilities bundles the external collaborators the router drives.
type Capabilities struct {
	Fetcher     Fetcher
	Searcher    Searcher
	Transcriber Transcriber
	Notator     Notator
	Trimmer     Trimmer
	Separator   StemSeparator
}

// Router dispatches actions to capabilities and keeps the cache current.
type Router struct {
	caps Capabilities
	log  *slog.Logger
}

// New creates a router.
func New(caps Capabilities, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{caps: caps, log: log}
}

// Execute runs the batch sequentially in parsed order. Later actions see
// cache entries written by earlier ones: a trim followed by an
// unspecified-reference transcribe transcribes the trimmed audio.
func (r *Router) Execute(ctx context.Context, actions []intent.Action, cache *asset.Cache) []Result {
	if intent.HasNone(actions) {
		return []Result{{Label: RefusalMessage}}
	}

	results := make([]Result, 0, len(actions))
	for _, a := range actions {
		results = append(results, r.executeOne(ctx, a, cache))
	}
	return results
}

// executeOne runs a single action, converting any failure or panic into
// a result item.
func (r *Router) executeOne(ctx context.Context, a intent.Action, cache *asset.Cache) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("action panicked", "kind", a.Kind.String(), "panic", rec)
			res = Result{Label: failureSentence(a)}
		}
	}()

	switch a.Kind {
	case intent.KindSearch:
		return r.runSearch(ctx, a, cache)
	case intent.KindTrim:
		return r.runTrim(ctx, a, cache)
	case intent.KindTranscribe:
		return r.runTranscribe(ctx, a, cache)
	case intent.KindSheetMusic:
		return r.runSheetMusic(ctx, a, cache)
	case intent.KindStemSeparate:
		return r.runStems(ctx, a, cache)
	default:
		return Result{Label: RefusalMessage}
	}
}

// resolve finds the audio an action applies to, in strict precedence:
// explicit file reference, keyed cache entry, most-recent artifact, then
// fetch-on-demand for a novel remote reference. The returned display
// name follows the resolved asset.
func (r *Router) resolve(ctx context.Context, a intent.Action, cache *asset.Cache) (string, string, error) {
	if a.FileRef != "" {
		return a.FileRef, a.FileRef, nil
	}

	if known, ok := cache.Lookup(a.SourceRef); ok {
		return known.LocalPath, known.DisplayName, nil
	}

	if a.SourceRef == "" {
		recent, ok := cache.Recent()
		if !ok {
			return "", "", apperrors.ErrNoAudio
		}
		return recent.LocalPath, recent.DisplayName, nil
	}

	// Novel reference: fetch and register it.
	path, err := r.caps.Fetcher.Fetch(ctx, a.SourceRef)
	if err != nil {
		return "", "", err
	}
	name := r.caps.Fetcher.Title(ctx, a.SourceRef)
	cache.Register(asset.Asset{SourceRef: a.SourceRef, LocalPath: path, DisplayName: name})
	return path, name, nil
}

func (r *Router) runSearch(ctx context.Context, a intent.Action, cache *asset.Cache) Result {
	found, err := r.caps.Searcher.Search(ctx, a.Query)
	if err != nil {
		r.log.Warn("search failed", "query", a.Query, "error", err)
		return Result{Label: fmt.Sprintf("I couldn't search for %q right now.", a.Query)}
	}
	if found == nil {
		return Result{Label: fmt.Sprintf("No results found for %q.", a.Query)}
	}

	// Fetch eagerly so follow-up actions in this batch (and later
	// messages) can target the found song without a reference.
	path, err := r.caps.Fetcher.Fetch(ctx, found.Reference)
	if err != nil {
		r.log.Warn("fetching search result failed", "reference", found.Reference, "error", err)
		return Result{Label: fmt.Sprintf("I found %q but couldn't download its audio.", found.Title)}
	}
	cache.Register(asset.Asset{SourceRef: found.Reference, LocalPath: path, DisplayName: found.Title})

	return Result{Label: "Search results", Search: found}
}

func (r *Router) runTrim(ctx context.Context, a intent.Action, cache *asset.Cache) Result {
	path, name, err := r.resolve(ctx, a, cache)
	if err != nil {
		return r.failure(a, err)
	}

	trimmed, err := r.caps.Trimmer.Trim(ctx, path, a.Start, a.End)
	if err != nil {
		return r.failure(a, err)
	}

	cache.Register(asset.Asset{
		SourceRef:   a.SourceRef,
		LocalPath:   trimmed,
		DisplayName: fmt.Sprintf("%s (%d-%ds)", name, a.Start, a.End),
	})
	return Result{Label: "Trimmed audio: ", Path: trimmed}
}

func (r *Router) runTranscribe(ctx context.Context, a intent.Action, cache *asset.Cache) Result {
	path, name, err := r.resolve(ctx, a, cache)
	if err != nil {
		return r.failure(a, err)
	}

	midiPath, err := r.caps.Transcriber.Transcribe(ctx, path)
	if err != nil {
		return r.failure(a, err)
	}

	cache.Register(asset.Asset{
		SourceRef:   a.SourceRef,
		LocalPath:   midiPath,
		DisplayName: name + " (MIDI)",
	})
	return Result{Label: "MIDI: ", Path: midiPath}
}

func (r *Router) runSheetMusic(ctx context.Context, a intent.Action, cache *asset.Cache) Result {
	path, name, err := r.resolve(ctx, a, cache)
	if err != nil {
		return r.failure(a, err)
	}

	midiPath, err := r.caps.Transcriber.Transcribe(ctx, path)
	if err != nil {
		return r.failure(a, err)
	}

	// The intermediate MIDI is a useful asset in its own right: keep it
	// under a derived key so "now send the MIDI too" needs no second
	// transcription.
	if a.SourceRef != "" {
		cache.Register(asset.Asset{
			SourceRef:   a.SourceRef + "#midi",
			LocalPath:   midiPath,
			DisplayName: name + " (MIDI)",
		})
	}

	xmlPath, err := r.caps.Notator.Render(ctx, midiPath)
	if err != nil {
		return r.failure(a, err)
	}

	cache.Register(asset.Asset{
		SourceRef:   a.SourceRef,
		LocalPath:   xmlPath,
		DisplayName: name + " (sheet music)",
	})
	return Result{Label: "Editable sheet music: ", Path: xmlPath}
}

func (r *Router) runStems(ctx context.Context, a intent.Action, cache *asset.Cache) Result {
	path, name, err := r.resolve(ctx, a, cache)
	if err != nil {
		return r.failure(a, err)
	}

	stemPath, err := r.caps.Separator.Separate(ctx, path, a.Instrument)
	if err != nil {
		return r.failure(a, err)
	}

	cache.Register(asset.Asset{
		SourceRef:   a.SourceRef,
		LocalPath:   stemPath,
		DisplayName: fmt.Sprintf("%s (%s stem)", name, a.Instrument),
	})
	return Result{Label: fmt.Sprintf("Stem separation for %s: ", a.Instrument), Path: stemPath}
}

// failure logs the underlying error and produces the user-facing item.
func (r *Router) failure(a intent.Action, err error) Result {
	r.log.Warn("action failed", "kind", a.Kind.String(), "error", err)
	if errors.Is(err, apperrors.ErrNoAudio) {
		return Result{Label: "I don't have any audio to work with yet. Send a link or a file first."}
	}
	return Result{Label: failureSentence(a)}
}

// failureSentence is the short diagnostic substituted for an artifact.
func failureSentence(a intent.Action) string {
	switch a.Kind {
	case intent.KindTranscribe:
		return "I couldn't transcribe that audio to MIDI."
	case intent.KindSheetMusic:
		return "I couldn't create sheet music for that audio."
	case intent.KindTrim:
		return "I couldn't trim that audio."
	case intent.KindStemSeparate:
		return fmt.Sprintf("I couldn't separate the %s stem from that audio.", a.Instrument)
	case intent.KindSearch:
		return "The song search didn't work out."
	default:
		return RefusalMessage
	}
}
