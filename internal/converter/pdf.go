package converter

import (
	"fmt"
	"path/filepath"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/mdchunk/mdchunk/internal/document"
	"github.com/mdchunk/mdchunk/internal/outline"
)

// PDFConverter extracts text, the embedded outline, and document info
// from a PDF. Pages that fail text extraction are skipped rather than
// failing the whole document.
type PDFConverter struct{}

func (c *PDFConverter) Convert(path string) (*Result, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(text)
	}

	meta := pdfMetadata(reader)
	meta.PageCount = numPages
	meta.SourceFile = filepath.Base(path)
	if meta.Title == "" {
		meta.Title = titleFromPath(path)
	}

	return &Result{
		Markdown: buf.String(),
		Outline:  flattenOutline(reader.Outline(), 1),
		Metadata: meta,
	}, nil
}

// flattenOutline walks the PDF bookmark tree depth first. Bookmark
// depth becomes the heading level; page numbers are not resolvable
// through the bookmark destinations here, so entries carry page 0.
func flattenOutline(o pdflib.Outline, level int) []outline.Entry {
	var entries []outline.Entry
	for _, child := range o.Child {
		title := strings.TrimSpace(child.Title)
		if title != "" {
			entries = append(entries, outline.Entry{
				Level: level,
				Title: title,
			})
		}
		entries = append(entries, flattenOutline(child, level+1)...)
	}
	return entries
}

// pdfMetadata reads the trailer Info dictionary. Malformed PDFs can
// panic inside the reader, so the whole lookup is recovered.
func pdfMetadata(reader *pdflib.Reader) (meta document.Metadata) {
	defer func() {
		if r := recover(); r != nil {
			meta = document.Metadata{}
		}
	}()

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	meta.Title = infoString(info, "Title")
	meta.Author = infoString(info, "Author")
	meta.Subject = infoString(info, "Subject")
	meta.CreationDate = infoString(info, "CreationDate")
	meta.ModificationDate = infoString(info, "ModDate")
	return meta
}

func infoString(info pdflib.Value, key string) string {
	v := info.Key(key)
	if v.Kind() != pdflib.String {
		return ""
	}
	return strings.TrimSpace(v.RawString())
}
