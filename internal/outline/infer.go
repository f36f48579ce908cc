package outline

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InferFromMarkdown derives outline entries from markdown headings when the
// extraction step yields no outline. Page numbers are unknowable from
// markdown alone and are left at zero.
func InferFromMarkdown(markdown string) []Entry {
	src := []byte(markdown)

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var entries []Entry
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		title := strings.TrimSpace(string(h.Text(src)))
		if title == "" {
			continue
		}
		entries = append(entries, Entry{
			Level: h.Level,
			Title: title,
		})
	}
	return entries
}
