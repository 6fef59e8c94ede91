// Package documents loads mentor profiles from a folder.
package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// ErrUnsupported is returned by LoadFile for file types without a reader.
var ErrUnsupported = errors.New("unsupported document type")

// Document is one profile. ID is the file name.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Supported reports whether name has an extension Load can read.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".html", ".htm", ".pdf":
		return true
	}
	return false
}

// Load reads every supported file of dir, sorted by ID. Subdirectories, hidden
// files and unsupported types are skipped.
func Load(ctx context.Context, dir string, logger *zap.Logger) ([]Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading documents dir %q: %w", dir, err)
	}

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		if !Supported(name) {
			logger.Debug("skipping unsupported document", zap.String("document", name))
			continue
		}

		doc, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	logger.Info("documents loaded", zap.String("dir", dir), zap.Int("count", len(docs)))

	return docs, nil
}

// LoadFile reads one document. HTML is converted to markdown text and PDF pages
// are concatenated as plain text.
func LoadFile(path string) (Document, error) {
	name := filepath.Base(path)
	if !Supported(name) {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		text, err = readPDF(path)
	case ".html", ".htm":
		text, err = readHTML(path)
	default:
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	}
	if err != nil {
		return Document{}, fmt.Errorf("reading document %q: %w", path, err)
	}

	return Document{ID: name, Text: strings.TrimSpace(text)}, nil
}

func readHTML(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return htmltomarkdown.ConvertString(string(data))
}

func readPDF(path string) (text string, err error) {
	// the pdf reader panics on some malformed objects
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
