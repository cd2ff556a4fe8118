package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":       "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                      "dQw4w9WgXcQ",
		"https://youtube.com/shorts/abc-123_X":              "abc-123_X",
		"https://music.youtube.com/watch?v=xyz&list=RDxyz":  "xyz",
		"https://www.youtube.com/watch?v=abc&t=42":          "abc",
		"https://example.com/song.mp3":                      "",
		"not a url":                                         "",
	}

	for url, want := range cases {
		assert.Equal(t, want, VideoID(url), url)
	}
}

func TestPickResult(t *testing.T) {
	t.Run("FirstWithinCap", func(t *testing.T) {
		output := `{"title": "Ten Hour Mix", "webpage_url": "https://youtu.be/long", "duration": 36000}
{"title": "Fur Elise", "webpage_url": "https://youtu.be/short", "duration": 178}
{"title": "Also Fine", "webpage_url": "https://youtu.be/other", "duration": 120}`

		got := pickResult(output, 300)
		require.NotNil(t, got)
		assert.Equal(t, "Fur Elise", got.Title)
		assert.Equal(t, "https://youtu.be/short", got.Reference)
		assert.Equal(t, 178, got.DurationSeconds)
	})

	t.Run("SkipsMissingDuration", func(t *testing.T) {
		output := `{"title": "No Duration", "webpage_url": "https://youtu.be/na"}
{"title": "Known", "webpage_url": "https://youtu.be/ok", "duration": 60}`

		got := pickResult(output, 300)
		require.NotNil(t, got)
		assert.Equal(t, "Known", got.Title)
	})

	t.Run("NothingQualifies", func(t *testing.T) {
		output := `{"title": "Too Long", "webpage_url": "https://youtu.be/x", "duration": 9999}`
		assert.Nil(t, pickResult(output, 300))
	})

	t.Run("GarbageLinesIgnored", func(t *testing.T) {
		output := "not json\n" + `{"title": "Song", "url": "https://youtu.be/ok", "duration": 90}`
		got := pickResult(output, 300)
		require.NotNil(t, got)
		assert.Equal(t, "https://youtu.be/ok", got.Reference)
	})

	t.Run("EmptyOutput", func(t *testing.T) {
		assert.Nil(t, pickResult("", 300))
	})
}

func TestTrimOutputPath(t *testing.T) {
	got := TrimOutputPath("/media/uploads", "/media/uploads/dQw4w9WgXcQ.mp3", 90, 165)
	assert.Equal(t, "/media/uploads/90_165_dQw4w9WgXcQ.mp3", got)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "song", baseName("/a/b/song.mp3"))
	assert.Equal(t, "song", baseName("song.wav"))
	assert.Equal(t, "song", baseName("song"))
}
