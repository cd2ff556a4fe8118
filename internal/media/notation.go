package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	apperrors "github.com/dygy/scorebot/internal/errors"
	"github.com/dygy/scorebot/internal/workspace"
)

// Notator renders a MIDI file into editable sheet music (MusicXML) by
// posting it to the notation model's inference endpoint.
type Notator struct {
	url    string
	client *http.Client
	layout *workspace.Layout
}

// NewNotator creates a notator for the given inference URL.
func NewNotator(url string, layout *workspace.Layout) *Notator {
	return &Notator{
		url:    url,
		client: &http.Client{},
		layout: layout,
	}
}

// Render converts a MIDI file to MusicXML and returns the output path.
func (n *Notator) Render(ctx context.Context, midiPath string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(midiPath))
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}

	f, err := os.Open(midiPath)
	if err != nil {
		return "", apperrors.NewCapabilityError("notation", apperrors.StageNotation, 0, "", err)
	}
	defer f.Close()

	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("writing midi: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := n.client.Do(req)
	if err != nil {
		return "", apperrors.NewCapabilityError("notation", apperrors.StageNotation, 0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", apperrors.NewCapabilityError("notation", apperrors.StageNotation, resp.StatusCode, string(respBody), nil)
	}

	xmlPath := filepath.Join(n.layout.Results(), baseName(midiPath)+".musicxml")
	out, err := os.Create(xmlPath)
	if err != nil {
		return "", fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("writing musicxml: %w", err)
	}

	return xmlPath, nil
}
