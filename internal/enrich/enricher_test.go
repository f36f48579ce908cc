package enrich

import (
	"strings"
	"testing"

	"github.com/mdchunk/mdchunk/internal/document"
)

func sampleChunks() []document.Chunk {
	return []document.Chunk{
		{
			Content:      "# Installation\n\nRun the setup wizard to deploy the unit.",
			SectionPath:  []string{"Installation"},
			SectionLevel: 1,
			ContentType:  document.ContentProse,
		},
		{
			Content:      "| Part | Qty |\n|---|---|\n| Screw | 4 |",
			SectionPath:  []string{"Installation", "Parts"},
			SectionLevel: 2,
			ContentType:  document.ContentTable,
			HasTables:    true,
		},
		{
			Content:      "If the fan reports an error, check the connector.",
			SectionPath:  []string{"Troubleshooting"},
			SectionLevel: 1,
			ContentType:  document.ContentProse,
		},
	}
}

func TestEnrich_IndexesAndWordCounts(t *testing.T) {
	e := New(document.Metadata{Title: "Server Guide"}, DefaultConfig())
	chunks := e.Enrich(sampleChunks())

	for i, ch := range chunks {
		if ch.ChunkIndex != i {
			t.Errorf("chunk %d index = %d", i, ch.ChunkIndex)
		}
		if ch.WordCount == 0 {
			t.Errorf("chunk %d has zero word count", i)
		}
	}
	if want := len(strings.Fields(chunks[0].Content)); chunks[0].WordCount != want {
		t.Errorf("word count = %d, want %d", chunks[0].WordCount, want)
	}
}

func TestEnrich_SemanticLabels(t *testing.T) {
	e := New(document.Metadata{}, DefaultConfig())
	chunks := e.Enrich(sampleChunks())

	if !hasLabel(chunks[0], "installation") {
		t.Errorf("chunk 0 labels = %v, want installation", chunks[0].SemanticLabels)
	}
	if !hasLabel(chunks[1], "tabular_data") {
		t.Errorf("chunk 1 labels = %v, want tabular_data", chunks[1].SemanticLabels)
	}
	// Path keyword inherited from the parent section.
	if !hasLabel(chunks[1], "installation") {
		t.Errorf("chunk 1 labels = %v, want installation from path", chunks[1].SemanticLabels)
	}
	if !hasLabel(chunks[2], "troubleshooting") {
		t.Errorf("chunk 2 labels = %v, want troubleshooting", chunks[2].SemanticLabels)
	}
	if hasLabel(chunks[2], "installation") {
		t.Errorf("chunk 2 labels = %v, installation should not apply", chunks[2].SemanticLabels)
	}
}

func TestEnrich_DisabledAnnotations(t *testing.T) {
	e := New(document.Metadata{}, Config{})
	chunks := e.Enrich(sampleChunks())

	for i, ch := range chunks {
		if ch.WordCount != 0 {
			t.Errorf("chunk %d word count = %d, want 0 when disabled", i, ch.WordCount)
		}
		if ch.SemanticLabels != nil {
			t.Errorf("chunk %d labels = %v, want none when disabled", i, ch.SemanticLabels)
		}
		if ch.ChunkIndex != i {
			t.Errorf("chunk indexes are always assigned, got %d at %d", ch.ChunkIndex, i)
		}
	}
}

func TestFrontmatter_Fields(t *testing.T) {
	e := New(document.Metadata{Title: "Server Guide", SourceFile: "guide.pdf"}, DefaultConfig())
	chunks := e.Enrich(sampleChunks())

	fm, err := e.Frontmatter(chunks[1])
	if err != nil {
		t.Fatalf("Frontmatter: %v", err)
	}
	if !strings.HasPrefix(fm, "---\n") || !strings.HasSuffix(fm, "---") {
		t.Errorf("frontmatter not fenced:\n%s", fm)
	}
	for _, want := range []string{
		"section_path:",
		"- Installation",
		"- Parts",
		"content_type: table",
		"has_tables: true",
		"chunk_index: 1",
		"document_title: Server Guide",
		"source_file: guide.pdf",
	} {
		if !strings.Contains(fm, want) {
			t.Errorf("frontmatter missing %q:\n%s", want, fm)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	e := New(document.Metadata{Title: "Server Guide", PageCount: 12}, DefaultConfig())
	chunks := e.Enrich(sampleChunks())

	out, err := e.RenderMarkdown(chunks, true)
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if !strings.HasPrefix(out, "---\n") {
		t.Errorf("missing document frontmatter:\n%.80s", out)
	}
	if !strings.Contains(out, "chunk_count: 3") {
		t.Errorf("missing chunk count:\n%.200s", out)
	}
	if strings.Contains(out, "\n\n\n") {
		t.Errorf("blank runs survived rendering")
	}
	for _, ch := range chunks {
		if !strings.Contains(out, strings.TrimSpace(ch.Content)) {
			t.Errorf("rendered output missing chunk %d", ch.ChunkIndex)
		}
	}
}

func TestRenderMarkdown_NoFrontmatter(t *testing.T) {
	e := New(document.Metadata{Title: "Server Guide"}, DefaultConfig())
	chunks := e.Enrich(sampleChunks())

	out, err := e.RenderMarkdown(chunks, false)
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if strings.Contains(out, "---\nsection_path") || strings.Contains(out, "chunk_index:") {
		t.Errorf("frontmatter emitted when disabled:\n%.200s", out)
	}
	if !strings.HasPrefix(out, "# Installation") {
		t.Errorf("output should start with first chunk:\n%.80s", out)
	}
}

func hasLabel(ch document.Chunk, label string) bool {
	for _, l := range ch.SemanticLabels {
		if l == label {
			return true
		}
	}
	return false
}
