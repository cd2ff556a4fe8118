package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dygy/scorebot/internal/session"
)

// messageRequest is the inbound chat webhook payload. Attachments are
// paths the transport layer has already written to disk.
type messageRequest struct {
	SessionID   string              `json:"session_id,omitempty"`
	Text        string              `json:"text"`
	Attachments []attachmentPayload `json:"attachments,omitempty"`
}

type attachmentPayload struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type messageResponse struct {
	SessionID string         `json:"session_id"`
	Replies   []replyPayload `json:"replies"`
}

type replyPayload struct {
	Text     string `json:"text"`
	FilePath string `json:"file_path,omitempty"`
}

// handleMessage runs one chat message through the dispatcher.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Attachments) == 0 {
		writeError(w, http.StatusBadRequest, "message has no text and no attachments")
		return
	}

	sess := s.sessions.Get(req.SessionID)

	attachments := make([]session.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, session.Attachment{Name: a.Name, Path: a.Path})
	}

	replies := sess.Handle(r.Context(), req.Text, attachments)

	resp := messageResponse{SessionID: sess.ID}
	for _, reply := range replies {
		resp.Replies = append(resp.Replies, replyPayload{Text: reply.Text, FilePath: reply.FilePath})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAssets lists what a session already knows about.
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(chi.URLParam(r, "id"))

	type assetPayload struct {
		SourceRef   string `json:"source_ref,omitempty"`
		LocalPath   string `json:"local_path"`
		DisplayName string `json:"display_name"`
	}

	assets := sess.Assets()
	out := make([]assetPayload, 0, len(assets))
	for _, a := range assets {
		out = append(out, assetPayload{SourceRef: a.SourceRef, LocalPath: a.LocalPath, DisplayName: a.DisplayName})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleFile serves produced artifacts so the transport can forward them.
// Only files under the workspace root are reachable; anything else is a 404.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	if rel == "" || s.files == nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	path, err := s.resolveArtifact(rel)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	http.ServeFile(w, r, path)
}

// resolveArtifact maps a requested path onto the workspace root. Both forms
// are accepted: paths relative to the root, and paths as they appear in
// replies (which already carry the root prefix). The cleaned result must
// stay inside the root.
func (s *Server) resolveArtifact(rel string) (string, error) {
	root, err := filepath.Abs(s.files.Root)
	if err != nil {
		return "", err
	}

	if abs, err := filepath.Abs(rel); err == nil {
		if inRoot, err := filepath.Rel(root, abs); err == nil && !strings.HasPrefix(inRoot, "..") {
			return abs, nil
		}
	}

	// Join with a rooted clean so ".." segments cannot climb out.
	return filepath.Join(root, filepath.Clean("/"+rel)), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
