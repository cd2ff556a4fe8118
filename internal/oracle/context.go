// Package oracle builds the classifier prompt and calls the language
// model that maps free-form chat into the typed action list.
package oracle

import (
	"encoding/json"
	"strings"

	"github.com/dygy/scorebot/internal/asset"
)

// Delimiters around the known-audio inventory. The oracle locates the
// list between these markers, so they must never collide with ordinary
// message text (braces alone would).
const (
	AssetsOpen  = "<<KNOWN_AUDIO>>"
	AssetsClose = "<<END_KNOWN_AUDIO>>"
)

const systemPrompt = `You are a music assistant that classifies user requests into structured actions.

The user may ask to: transcribe a song to MIDI, convert a song to sheet music, trim audio between two times, separate an instrument stem, or search for a song.

Respond ONLY with a JSON array of action objects, no other text. Each object has a "type" field:
- {"type": "MIDI", "youtube_link": <link or "none">, "file_path": <path or "none">}
- {"type": "SHEET_MUSIC", "youtube_link": <link or "none">, "file_path": <path or "none">}
- {"type": "TRIM", "youtube_link": <link or "none">, "start_time": <integer seconds>, "end_time": <integer seconds>}
- {"type": "STEM_SEPARATION", "youtube_link": <link or "none">, "file_path": <path or "none">, "instrument": <one of vocals, drums, bass, other, piano, guitar>}
- {"type": "SEARCH", "query": <search query>}
- {"type": "none"} if the request matches nothing above

Rules:
- Use the literal string "none" when a link or file path is not available. Never invent links.
- If the user refers to audio already known, fill file_path from the known audio list below.
- If a SEARCH action is present, every youtube_link in other actions must be "none": the search result is the target.
- Order the array: SEARCH first, then TRIM, then the rest.
- start_time and end_time are whole seconds from the start of the audio.

The audio already known in this conversation is listed between the markers, as objects of {"youtube_link", "file_path", "name"}:`

// PromptPayload is the exact oracle-facing contract.
type PromptPayload struct {
	System string
	User   string
}

// assetRecord is the serialized inventory entry. Field names match the
// action wire format so the oracle can copy values verbatim.
type assetRecord struct {
	YouTubeLink string `json:"youtube_link"`
	FilePath    string `json:"file_path"`
	Name        string `json:"name"`
}

// BuildContext assembles the classifier prompt from prior history, the
// known-assets inventory and the new message. Pure transform.
//
// The delimiter pair is always emitted, with an empty list literal when
// nothing is known yet.
func BuildContext(history []string, assets []asset.Asset, newMessage string) PromptPayload {
	records := make([]assetRecord, 0, len(assets))
	for _, a := range assets {
		records = append(records, assetRecord{
			YouTubeLink: orNone(a.SourceRef),
			FilePath:    orNone(a.LocalPath),
			Name:        a.DisplayName,
		})
	}

	inventory, err := json.Marshal(records)
	if err != nil {
		inventory = []byte("[]")
	}

	var sys strings.Builder
	sys.WriteString(systemPrompt)
	sys.WriteString("\n")
	sys.WriteString(AssetsOpen)
	sys.WriteString("\n")
	sys.Write(inventory)
	sys.WriteString("\n")
	sys.WriteString(AssetsClose)

	var user strings.Builder
	if len(history) > 0 {
		user.WriteString("Conversation so far:\n")
		for _, line := range history {
			user.WriteString(line)
			user.WriteString("\n")
		}
		user.WriteString("\nNew message:\n")
	}
	user.WriteString(newMessage)

	return PromptPayload{System: sys.String(), User: user.String()}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
