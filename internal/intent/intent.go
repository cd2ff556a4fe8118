// Package intent defines the typed action vocabulary the oracle is
// prompted to produce, and the validating parser that turns the oracle's
// raw text into an ordered action batch.
package intent

import "strings"

// Kind tags an action variant.
type Kind int

const (
	KindNone Kind = iota // unrecognized request
	KindTranscribe
	KindSheetMusic
	KindTrim
	KindStemSeparate
	KindSearch
)

// Wire values of the "type" field in the oracle response.
const (
	wireMIDI       = "MIDI"
	wireSheetMusic = "SHEET_MUSIC"
	wireTrim       = "TRIM"
	wireSearch     = "SEARCH"
	wireStems      = "STEM_SEPARATION"
	wireNone       = "none"
)

func (k Kind) String() string {
	switch k {
	case KindTranscribe:
		return wireMIDI
	case KindSheetMusic:
		return wireSheetMusic
	case KindTrim:
		return wireTrim
	case KindStemSeparate:
		return wireStems
	case KindSearch:
		return wireSearch
	default:
		return wireNone
	}
}

// Instrument is a stem-separation target.
type Instrument string

const (
	InstrumentVocals Instrument = "vocals"
	InstrumentDrums  Instrument = "drums"
	InstrumentBass   Instrument = "bass"
	InstrumentOther  Instrument = "other"
	InstrumentPiano  Instrument = "piano"
	InstrumentGuitar Instrument = "guitar"
)

// NormalizeInstrument maps free-form oracle output onto the enumerated
// set, case-insensitively. Absent or unknown values default to vocals.
func NormalizeInstrument(s string) Instrument {
	switch Instrument(strings.ToLower(strings.TrimSpace(s))) {
	case InstrumentDrums:
		return InstrumentDrums
	case InstrumentBass:
		return InstrumentBass
	case InstrumentOther:
		return InstrumentOther
	case InstrumentPiano:
		return InstrumentPiano
	case InstrumentGuitar:
		return InstrumentGuitar
	default:
		return InstrumentVocals
	}
}

// Action is one typed request parsed from the oracle response.
//
// SourceRef and FileRef are empty when the oracle answered with the
// "none" sentinel; nothing past the parser compares against that string.
type Action struct {
	Kind      Kind
	SourceRef string // remote origin the action refers to
	FileRef   string // concrete local file the action refers to

	// Trim fields, seconds
	Start int
	End   int

	// StemSeparate field
	Instrument Instrument

	// Search field
	Query string
}

// HasNone reports whether the batch contains a None action. Such a batch
// is terminal: nothing in it executes and the fixed refusal is returned.
func HasNone(actions []Action) bool {
	for _, a := range actions {
		if a.Kind == KindNone {
			return true
		}
	}
	return false
}

// HasSearch reports whether the batch contains a Search action.
func HasSearch(actions []Action) bool {
	for _, a := range actions {
		if a.Kind == KindSearch {
			return true
		}
	}
	return false
}
