// Package converter turns source documents into raw markdown plus an
// outline and document metadata, ready for the processing pipeline.
package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdchunk/mdchunk/internal/document"
	"github.com/mdchunk/mdchunk/internal/outline"
)

// Result is a converted document before any repair or chunking.
type Result struct {
	Markdown string
	Outline  []outline.Entry
	Metadata document.Metadata
}

// Converter produces a Result from a file on disk.
type Converter interface {
	Convert(path string) (*Result, error)
}

// SupportedExtensions lists file extensions this tool can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".pdf":      true,
}

// ForFile returns the appropriate converter for a filename.
func ForFile(path string) (Converter, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownConverter{}, nil
	case ".pdf":
		return &PDFConverter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(path string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// MarkdownConverter reads an existing markdown file. The outline is
// inferred from the document's own headings, so downstream stages that
// need one still get a usable index.
type MarkdownConverter struct{}

func (c *MarkdownConverter) Convert(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	md := string(data)

	return &Result{
		Markdown: md,
		Outline:  outline.InferFromMarkdown(md),
		Metadata: document.Metadata{
			Title:      titleFromPath(path),
			SourceFile: filepath.Base(path),
		},
	}, nil
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
