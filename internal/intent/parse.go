package intent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/dygy/scorebot/internal/errors"
)

// refSentinel is the wire marker for "no reference available". It is the
// same literal the "type" field uses for the none action; the two never
// collide because they live in different fields.
const refSentinel = "none"

// wireAction mirrors the JSON shape the oracle is prompted to emit.
// Pointers distinguish absent fields from empty ones.
type wireAction struct {
	Type        *string  `json:"type"`
	YouTubeLink *string  `json:"youtube_link"`
	FilePath    *string  `json:"file_path"`
	StartTime   *seconds `json:"start_time"`
	EndTime     *seconds `json:"end_time"`
	Query       *string  `json:"query"`
	Instrument  *string  `json:"instrument"`
}

// seconds accepts either a JSON number of seconds or a "mm:ss" /
// "h:mm:ss" string. The oracle is prompted for integers but clock-style
// timestamps show up often enough to be worth accepting.
type seconds int

func (s *seconds) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = seconds(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("not a number or timestamp: %s", data)
	}
	v, err := ParseTimestamp(str)
	if err != nil {
		return err
	}
	*s = seconds(v)
	return nil
}

// ParseTimestamp converts "90", "1:30" or "1:02:03" to whole seconds.
func ParseTimestamp(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		total = total*60 + n
	}
	return total, nil
}

// Parse validates the oracle's raw text and produces an ordered action
// batch. Any structural problem fails the whole batch with
// ErrMalformedResponse: the router then executes nothing.
func Parse(raw string) ([]Action, error) {
	payload := stripFences(raw)

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &elements); err != nil {
		// Tolerate a bare single object.
		var single json.RawMessage
		if err2 := json.Unmarshal([]byte(payload), &single); err2 != nil || !strings.HasPrefix(strings.TrimSpace(payload), "{") {
			return nil, fmt.Errorf("%w: not a JSON action list: %v", apperrors.ErrMalformedResponse, err)
		}
		elements = []json.RawMessage{single}
	}

	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: empty action list", apperrors.ErrMalformedResponse)
	}

	actions := make([]Action, 0, len(elements))
	for i, el := range elements {
		var w wireAction
		if err := json.Unmarshal(el, &w); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", apperrors.ErrMalformedResponse, i, err)
		}
		a, err := convert(w)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", apperrors.ErrMalformedResponse, i, err)
		}
		actions = append(actions, a)
	}

	// The oracle is contracted not to pair a search with fabricated
	// links, but contracts on model output are unenforceable at the
	// source. Clear stray references so search results stay the target.
	if HasSearch(actions) {
		for i := range actions {
			if actions[i].Kind != KindSearch {
				actions[i].SourceRef = ""
			}
		}
	}

	// Search runs before trim, trim before everything else; the rest
	// keep their relative order.
	sort.SliceStable(actions, func(i, j int) bool {
		return priority(actions[i].Kind) < priority(actions[j].Kind)
	})

	return actions, nil
}

func priority(k Kind) int {
	switch k {
	case KindSearch:
		return 0
	case KindTrim:
		return 1
	default:
		return 2
	}
}

func convert(w wireAction) (Action, error) {
	if w.Type == nil {
		return Action{}, fmt.Errorf("missing type field")
	}

	switch *w.Type {
	case wireNone:
		return Action{Kind: KindNone}, nil

	case wireMIDI, wireSheetMusic:
		kind := KindTranscribe
		if *w.Type == wireSheetMusic {
			kind = KindSheetMusic
		}
		if w.YouTubeLink == nil {
			return Action{}, fmt.Errorf("%s missing youtube_link", *w.Type)
		}
		if w.FilePath == nil {
			return Action{}, fmt.Errorf("%s missing file_path", *w.Type)
		}
		return Action{
			Kind:      kind,
			SourceRef: fromSentinel(*w.YouTubeLink),
			FileRef:   fromSentinel(*w.FilePath),
		}, nil

	case wireTrim:
		if w.YouTubeLink == nil {
			return Action{}, fmt.Errorf("TRIM missing youtube_link")
		}
		if w.StartTime == nil || w.EndTime == nil {
			return Action{}, fmt.Errorf("TRIM missing start_time or end_time")
		}
		start, end := int(*w.StartTime), int(*w.EndTime)
		if start < 0 {
			return Action{}, fmt.Errorf("TRIM start_time %d is negative", start)
		}
		if end <= start {
			return Action{}, fmt.Errorf("TRIM end_time %d not after start_time %d", end, start)
		}
		a := Action{
			Kind:      KindTrim,
			SourceRef: fromSentinel(*w.YouTubeLink),
			Start:     start,
			End:       end,
		}
		if w.FilePath != nil {
			a.FileRef = fromSentinel(*w.FilePath)
		}
		return a, nil

	case wireStems:
		if w.YouTubeLink == nil {
			return Action{}, fmt.Errorf("STEM_SEPARATION missing youtube_link")
		}
		if w.FilePath == nil {
			return Action{}, fmt.Errorf("STEM_SEPARATION missing file_path")
		}
		inst := ""
		if w.Instrument != nil {
			inst = *w.Instrument
		}
		return Action{
			Kind:       KindStemSeparate,
			SourceRef:  fromSentinel(*w.YouTubeLink),
			FileRef:    fromSentinel(*w.FilePath),
			Instrument: NormalizeInstrument(inst),
		}, nil

	case wireSearch:
		if w.Query == nil || strings.TrimSpace(*w.Query) == "" {
			return Action{}, fmt.Errorf("SEARCH missing query")
		}
		return Action{Kind: KindSearch, Query: strings.TrimSpace(*w.Query)}, nil

	default:
		return Action{}, fmt.Errorf("unknown type %q", *w.Type)
	}
}

// fromSentinel maps the wire "none" marker to an empty reference.
func fromSentinel(s string) string {
	s = strings.TrimSpace(s)
	if s == refSentinel || s == "" {
		return ""
	}
	return s
}

// stripFences removes a markdown code fence the oracle sometimes wraps
// its JSON in, despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
