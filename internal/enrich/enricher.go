// Package enrich annotates chunks with retrieval metadata: global
// indexes, word counts, and semantic labels derived from section titles
// and content.
package enrich

import (
	"strings"

	"github.com/mdchunk/mdchunk/internal/document"
)

// Config controls which annotations are produced.
type Config struct {
	IncludeDocumentMetadata bool
	GenerateSemanticLabels  bool
	AddWordCount            bool
}

// DefaultConfig enables all annotations.
func DefaultConfig() Config {
	return Config{
		IncludeDocumentMetadata: true,
		GenerateSemanticLabels:  true,
		AddWordCount:            true,
	}
}

// labelKeywords maps a semantic label to the keywords that trigger it.
// A label applies when any keyword occurs in the chunk's section path,
// or failing that in its content.
var labelKeywords = map[string][]string{
	"installation":    {"install", "setup", "deploy", "configure"},
	"troubleshooting": {"troubleshoot", "error", "issue", "problem", "fix"},
	"configuration":   {"config", "setting", "option", "parameter"},
	"reference":       {"reference", "api", "command", "syntax"},
	"overview":        {"overview", "introduction", "about", "summary"},
	"procedure":       {"step", "procedure", "how to", "guide"},
	"specification":   {"spec", "requirement", "dimension", "capacity"},
	"safety":          {"warning", "caution", "safety", "danger"},
}

// labelOrder keeps emitted labels deterministic.
var labelOrder = []string{
	"installation", "troubleshooting", "configuration", "reference",
	"overview", "procedure", "specification", "safety",
}

// Enricher annotates chunks for a single document.
type Enricher struct {
	meta document.Metadata
	cfg  Config
}

// New creates an Enricher bound to one document's metadata.
func New(meta document.Metadata, cfg Config) *Enricher {
	return &Enricher{meta: meta, cfg: cfg}
}

// Enrich annotates chunks in place and returns the same slice. Chunk
// indexes are reassigned globally so they stay contiguous even when the
// caller filtered or reordered chunks.
func (e *Enricher) Enrich(chunks []document.Chunk) []document.Chunk {
	for i := range chunks {
		chunks[i].ChunkIndex = i
		if e.cfg.AddWordCount {
			chunks[i].WordCount = len(strings.Fields(chunks[i].Content))
		}
		if e.cfg.GenerateSemanticLabels {
			chunks[i].SemanticLabels = semanticLabels(&chunks[i])
		}
	}
	return chunks
}

// Metadata returns the document metadata the enricher was built with.
func (e *Enricher) Metadata() document.Metadata {
	return e.meta
}

func semanticLabels(ch *document.Chunk) []string {
	pathText := strings.ToLower(strings.Join(ch.SectionPath, " "))
	contentText := strings.ToLower(ch.Content)

	var labels []string
	for _, label := range labelOrder {
		if matchesAny(pathText, labelKeywords[label]) || matchesAny(contentText, labelKeywords[label]) {
			labels = append(labels, label)
		}
	}

	switch ch.ContentType {
	case document.ContentTable:
		labels = append(labels, "tabular_data")
	case document.ContentCodeBlock:
		labels = append(labels, "code_example")
	case document.ContentList:
		labels = append(labels, "enumerated")
	}
	return labels
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
