package exec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Result holds command execution output
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes external tools with context support
type Runner struct {
	PythonPath string
}

// NewRunner creates a new command runner. If pythonPath is empty it
// prefers a virtual environment under venvDir, falling back to python3.
func NewRunner(pythonPath, venvDir string) *Runner {
	if pythonPath == "" {
		venvPython := filepath.Join(venvDir, ".venv", "bin", "python")
		if _, err := os.Stat(venvPython); err == nil {
			pythonPath = venvPython
		} else {
			pythonPath = "python3"
		}
	}
	return &Runner{PythonPath: pythonPath}
}

// Run executes a named tool and captures output
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	}

	if err != nil {
		return result, fmt.Errorf("command %s failed: %w", name, err)
	}

	return result, nil
}

// RunModule executes a Python module with -m flag
func (r *Runner) RunModule(ctx context.Context, module string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, r.PythonPath, append([]string{"-m", module}, args...)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	}

	if err != nil {
		return result, fmt.Errorf("module %s failed: %w\nstderr: %s", module, err, result.Stderr)
	}

	return result, nil
}

// CheckTool verifies an external tool is reachable on PATH
func (r *Runner) CheckTool(ctx context.Context, name string) error {
	cmd := exec.CommandContext(ctx, name, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s not installed or not on PATH", name)
	}
	return nil
}
