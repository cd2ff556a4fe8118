package respond

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dygy/scorebot/internal/media"
	"github.com/dygy/scorebot/internal/router"
)

func TestFormatAttachments(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		attach bool
	}{
		{"MP3", "/uploads/90_165_song.mp3", true},
		{"MIDI", "/results/song.mid", true},
		{"MusicXML", "/results/song.musicxml", true},
		{"WAV", "/uploads/take.wav", true},
		{"UppercaseExt", "/uploads/SONG.MP3", true},
		{"Unrecognized", "/results/song.pdf", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := Format(router.Result{Label: "Artifact: ", Path: tc.path})
			if tc.attach {
				assert.Equal(t, tc.path, msg.FilePath)
				assert.Equal(t, "Artifact: ", msg.Text)
			} else {
				assert.Empty(t, msg.FilePath)
				assert.Contains(t, msg.Text, tc.path, "unattachable artifacts are referenced in text")
			}
		})
	}
}

func TestFormatSearchResult(t *testing.T) {
	msg := Format(router.Result{
		Label: "Search results",
		Search: &media.SearchResult{
			Title:           "Fur Elise",
			Reference:       "https://youtube.com/watch?v=abc",
			DurationSeconds: 178,
		},
	})

	assert.Empty(t, msg.FilePath, "a search result is not a file")
	assert.Contains(t, msg.Text, "Fur Elise")
	assert.Contains(t, msg.Text, "2:58")
	assert.Contains(t, msg.Text, "https://youtube.com/watch?v=abc")
}

func TestFormatPlainText(t *testing.T) {
	msg := Format(router.Result{Label: "I couldn't trim that audio."})
	assert.Equal(t, "I couldn't trim that audio.", msg.Text)
	assert.Empty(t, msg.FilePath)
}

func TestFormatAllKeepsOrder(t *testing.T) {
	msgs := FormatAll([]router.Result{
		{Label: "Trimmed audio: ", Path: "/a.mp3"},
		{Label: "failed"},
	})
	assert.Len(t, msgs, 2)
	assert.Equal(t, "/a.mp3", msgs[0].FilePath)
	assert.Equal(t, "failed", msgs[1].Text)
}
