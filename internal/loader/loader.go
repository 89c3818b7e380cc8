// Package loader reads brochure files from a local directory and extracts
// their raw text. PDF extraction shells out to pdftotext; plain text files
// are read directly. Unreadable files are skipped and reported, never fatal.
package loader

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"santerag/internal/domain"
	"santerag/internal/logger"
)

// CommandRunner executes an external command and returns its stdout.
// It exists so tests can substitute a double for pdftotext.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Loader produces Documents from a brochure directory.
type Loader struct {
	runner        CommandRunner
	pdftotextPath string
}

// New creates a Loader that extracts PDF text with the pdftotext binary at
// the given path ("pdftotext" to use PATH lookup).
func New(pdftotextPath string) *Loader {
	return NewWithRunner(execRunner{}, pdftotextPath)
}

// NewWithRunner creates a Loader with a custom command runner.
func NewWithRunner(runner CommandRunner, pdftotextPath string) *Loader {
	if pdftotextPath == "" {
		pdftotextPath = "pdftotext"
	}
	return &Loader{runner: runner, pdftotextPath: pdftotextPath}
}

// Load scans dir for .pdf and .txt files and returns one Document per
// readable file, in file name order. Files that cannot be read are skipped
// with a warning.
func (l *Loader) Load(ctx context.Context, dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading brochures directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".pdf", ".txt":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var docs []domain.Document
	for _, name := range names {
		path := filepath.Join(dir, name)
		text, err := l.extract(ctx, path)
		if err != nil {
			logger.Warn("skipping unreadable document %s: %v", name, err)
			continue
		}
		docs = append(docs, domain.Document{
			ID:      hashString(path),
			Path:    path,
			Title:   name,
			RawText: text,
		})
		logger.Debug("loaded %s (%d chars)", name, len(text))
	}
	return docs, nil
}

func (l *Loader) extract(ctx context.Context, path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		// "-" writes the extracted text to stdout.
		out, err := l.runner.Run(ctx, l.pdftotextPath, "-enc", "UTF-8", path, "-")
		if err != nil {
			return "", fmt.Errorf("pdftotext: %w", err)
		}
		return string(out), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
