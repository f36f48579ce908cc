package enrich

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mdchunk/mdchunk/internal/cleanup"
	"github.com/mdchunk/mdchunk/internal/document"
)

// chunkFrontmatter is the YAML shape emitted above each chunk. Field
// order here is the order in the output.
type chunkFrontmatter struct {
	SectionPath      []string `yaml:"section_path"`
	SectionLevel     int      `yaml:"section_level"`
	PrecedingSection string   `yaml:"preceding_section,omitempty"`
	FollowingSection string   `yaml:"following_section,omitempty"`
	ContentType      string   `yaml:"content_type"`
	HasTables        bool     `yaml:"has_tables"`
	HasCodeBlocks    bool     `yaml:"has_code_blocks"`
	ChunkIndex       int      `yaml:"chunk_index"`
	PageNumber       int      `yaml:"page_number,omitempty"`
	WordCount        int      `yaml:"word_count,omitempty"`
	SemanticLabels   []string `yaml:"semantic_labels,omitempty"`
	DocumentTitle    string   `yaml:"document_title,omitempty"`
	SourceFile       string   `yaml:"source_file,omitempty"`
}

type documentFrontmatter struct {
	Title      string `yaml:"title,omitempty"`
	Author     string `yaml:"author,omitempty"`
	SourceFile string `yaml:"source_file,omitempty"`
	PageCount  int    `yaml:"page_count,omitempty"`
	ChunkCount int    `yaml:"chunk_count"`
}

// Frontmatter renders one chunk's YAML frontmatter block, fenced by
// `---` lines.
func (e *Enricher) Frontmatter(ch document.Chunk) (string, error) {
	fm := chunkFrontmatter{
		SectionPath:      ch.SectionPath,
		SectionLevel:     ch.SectionLevel,
		PrecedingSection: ch.PrecedingSection,
		FollowingSection: ch.FollowingSection,
		ContentType:      string(ch.ContentType),
		HasTables:        ch.HasTables,
		HasCodeBlocks:    ch.HasCodeBlocks,
		ChunkIndex:       ch.ChunkIndex,
		PageNumber:       ch.PageNumber,
		WordCount:        ch.WordCount,
		SemanticLabels:   ch.SemanticLabels,
	}
	if e.cfg.IncludeDocumentMetadata {
		fm.DocumentTitle = e.meta.Title
		fm.SourceFile = e.meta.SourceFile
	}
	body, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal chunk frontmatter: %w", err)
	}
	return "---\n" + string(body) + "---", nil
}

// RenderMarkdown assembles enriched chunks back into a single markdown
// document. With frontmatter enabled, a document-level block leads and
// each chunk carries its own block.
func (e *Enricher) RenderMarkdown(chunks []document.Chunk, includeFrontmatter bool) (string, error) {
	var b strings.Builder

	if includeFrontmatter && e.cfg.IncludeDocumentMetadata {
		dm := documentFrontmatter{
			Title:      e.meta.Title,
			Author:     e.meta.Author,
			SourceFile: e.meta.SourceFile,
			PageCount:  e.meta.PageCount,
			ChunkCount: len(chunks),
		}
		body, err := yaml.Marshal(dm)
		if err != nil {
			return "", fmt.Errorf("marshal document frontmatter: %w", err)
		}
		b.WriteString("---\n")
		b.Write(body)
		b.WriteString("---\n\n")
	}

	for i, ch := range chunks {
		if includeFrontmatter {
			fm, err := e.Frontmatter(ch)
			if err != nil {
				return "", err
			}
			b.WriteString(fm)
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(ch.Content))
		if i+1 < len(chunks) {
			b.WriteString("\n\n")
		}
	}
	b.WriteString("\n")

	return cleanup.CollapseBlankRuns(b.String()), nil
}
