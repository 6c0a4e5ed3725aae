// Package ingest loads corpus documents from disk and prepares their raw
// text for chunking and indexing.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/petalhealth/petal/pkg/textutil"
)

// ErrUnsupported is returned for file types the loader cannot handle.
var ErrUnsupported = errors.New("unsupported file type")

// Document is a loaded source file's raw text plus provenance.
type Document struct {
	// Path is the file path the document was loaded from.
	Path string

	// Title is a display title derived from the file name.
	Title string

	// Text is the full extracted text.
	Text string
}

// Loader reads supported document types from a directory tree.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a document loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadFile loads a single document. Unsupported extensions return
// ErrUnsupported; unreadable or empty files return a descriptive error.
func (l *Loader) LoadFile(path string) (*Document, error) {
	var text string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		text, err = loadText(path)
	case ".pdf":
		text, err = loadPDF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	if err != nil {
		return nil, err
	}

	text = textutil.Clean(text)
	if text == "" {
		return nil, fmt.Errorf("no text content in %s", path)
	}

	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))

	return &Document{Path: path, Title: title, Text: text}, nil
}

// LoadDir walks root and loads every supported document. Unreadable or
// unsupported files are logged and skipped; the walk continues so one corrupt
// file never aborts an ingestion run. Returns the loaded documents and the
// number of files skipped.
func (l *Loader) LoadDir(root string) ([]Document, int, error) {
	var docs []Document
	skipped := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		doc, err := l.LoadFile(path)
		if err != nil {
			if errors.Is(err, ErrUnsupported) {
				l.logger.Debug("skipping unsupported file", "path", path)
			} else {
				skipped++
				l.logger.Warn("ingestion error, skipping file", "path", path, "error", err)
			}
			return nil
		}

		docs = append(docs, *doc)
		return nil
	})
	if err != nil {
		return nil, skipped, fmt.Errorf("walking corpus dir %s: %w", root, err)
	}

	l.logger.Info("loaded corpus documents", "count", len(docs), "skipped", skipped)
	return docs, skipped, nil
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func loadPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text from %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("reading pdf text from %s: %w", path, err)
	}
	return buf.String(), nil
}
