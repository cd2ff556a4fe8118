package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dygy/scorebot/internal/workspace"
)

func newTestServer(t *testing.T) (*Server, *workspace.Layout) {
	t.Helper()
	layout, err := workspace.New(t.TempDir())
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Config{}, nil, layout, logger), layout
}

func TestFileEndpointServesWorkspaceArtifacts(t *testing.T) {
	srv, layout := newTestServer(t)

	clip := filepath.Join(layout.Uploads(), "clip.mp3")
	require.NoError(t, os.WriteFile(clip, []byte("audio-bytes"), 0644))

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/files/uploads/clip.mp3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio-bytes", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "clip.mp3")
}

func TestFileEndpointRejectsPathsOutsideWorkspace(t *testing.T) {
	srv, layout := newTestServer(t)

	// A file one level above the workspace root stands in for anything
	// sensitive sitting next to the process, like a config with a key.
	secret := filepath.Join(filepath.Dir(layout.Root), "scorebot-secrets.yaml")
	require.NoError(t, os.WriteFile(secret, []byte("oracle_api_key: sk-123"), 0644))

	for _, target := range []string{
		"/v1/files/../scorebot-secrets.yaml",
		"/v1/files/uploads/../../scorebot-secrets.yaml",
		"/v1/files/" + secret,
	} {
		t.Run(target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.NotContains(t, rec.Body.String(), "sk-123")
		})
	}
}

func TestFileEndpointMissingFile(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/files/results/nope.mid", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
