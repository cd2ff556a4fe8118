package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout manages the on-disk directories the media tools write into.
// The directory names mirror what the tools themselves produce, so
// artifacts land where a user poking around would expect them.
type Layout struct {
	Root string
}

// New creates a layout rooted at dir and ensures its subdirectories exist.
func New(dir string) (*Layout, error) {
	l := &Layout{Root: dir}
	for _, d := range []string{l.Uploads(), l.Results(), l.Separated()} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("create media dir: %w", err)
		}
	}
	return l, nil
}

// Uploads holds downloaded and trimmed audio.
func (l *Layout) Uploads() string { return filepath.Join(l.Root, "uploads") }

// Results holds MIDI transcriptions and rendered sheet music.
func (l *Layout) Results() string { return filepath.Join(l.Root, "results") }

// Separated holds demucs output trees.
func (l *Layout) Separated() string { return filepath.Join(l.Root, "separated") }

// CopyFile copies a file into the uploads directory under dstName.
func (l *Layout) CopyFile(src, dstName string) (string, error) {
	dst := filepath.Join(l.Uploads(), dstName)
	input, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if err := os.WriteFile(dst, input, 0644); err != nil {
		return "", fmt.Errorf("write destination: %w", err)
	}
	return dst, nil
}
