// Package ingest reads policy documents from a directory into per-page text.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

// DefaultExtensions are the file types LoadDocuments reads.
var DefaultExtensions = []string{".pdf", ".txt"}

// pageBreak separates pages in plain-text documents.
const pageBreak = "\f"

// Loader extracts pages from the supported files in a directory.
type Loader struct {
	extensions []string
	logger     *zap.Logger
}

// NewLoader creates a loader. Empty extensions fall back to DefaultExtensions.
func NewLoader(extensions []string, logger *zap.Logger) *Loader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	norm := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		norm = append(norm, ext)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{extensions: norm, logger: logger}
}

// LoadDocuments returns the non-blank pages of every supported file in dir,
// files in name order. A file that cannot be read contributes no pages.
func (l *Loader) LoadDocuments(ctx context.Context, dir string) ([]domain.Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read documents dir %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if slices.Contains(l.extensions, strings.ToLower(filepath.Ext(name))) {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		l.logger.Warn("No supported documents found", zap.String("dir", dir))
		return []domain.Page{}, nil
	}

	pages := make([]domain.Page, 0)
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load documents: %w", err)
		}

		path := filepath.Join(dir, name)
		var texts []string
		switch strings.ToLower(filepath.Ext(name)) {
		case ".pdf":
			texts, err = readPDF(path)
		default:
			texts, err = readText(path)
		}
		if err != nil {
			l.logger.Warn("Could not read document", zap.String("doc", name), zap.Error(err))
			continue
		}

		loaded := 0
		for i, text := range texts {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			pages = append(pages, domain.Page{
				DocName:  name,
				PageNum:  i + 1,
				Text:     text,
				Headings: ExtractHeadings(text),
			})
			loaded++
		}
		l.logger.Debug("Loaded document", zap.String("doc", name), zap.Int("pages", loaded))
	}

	l.logger.Info("Documents loaded",
		zap.Int("pages", len(pages)),
		zap.Int("documents", len(files)),
	)
	return pages, nil
}

func readText(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(text, pageBreak), nil
}
