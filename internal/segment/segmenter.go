// Package segment splits cleaned markdown into size-bounded chunks that
// respect section boundaries. Tables and fenced code blocks are atomic:
// they are never split across chunks, even when oversized.
package segment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mdchunk/mdchunk/internal/document"
)

// Config controls segmentation.
type Config struct {
	// TargetChunkSize is the size a chunk accumulates toward, in characters.
	TargetChunkSize int
	// MaxChunkSize forces a sub-split of any larger section.
	MaxChunkSize int
	// MinChunkSize is advisory only: tiny trailing chunks are emitted as-is
	// rather than merged back into a neighbor.
	MinChunkSize int
	// PreserveTables keeps each table grid in a single chunk.
	PreserveTables bool
	// PreserveCodeBlocks keeps each fenced block in a single chunk.
	PreserveCodeBlocks bool
}

// DefaultConfig returns the standard segmentation configuration.
func DefaultConfig() Config {
	return Config{
		TargetChunkSize:    2000,
		MaxChunkSize:       4000,
		MinChunkSize:       200,
		PreserveTables:     true,
		PreserveCodeBlocks: true,
	}
}

// Validate rejects structurally invalid size bounds. Run at construction,
// never mid-pipeline.
func (c Config) Validate() error {
	if c.TargetChunkSize <= 0 || c.MaxChunkSize <= 0 {
		return fmt.Errorf("chunk sizes must be positive (target=%d, max=%d)", c.TargetChunkSize, c.MaxChunkSize)
	}
	if c.MinChunkSize < 0 {
		return fmt.Errorf("min chunk size must not be negative (min=%d)", c.MinChunkSize)
	}
	if c.TargetChunkSize > c.MaxChunkSize {
		return fmt.Errorf("target chunk size %d exceeds max %d", c.TargetChunkSize, c.MaxChunkSize)
	}
	if c.MinChunkSize > c.MaxChunkSize {
		return fmt.Errorf("min chunk size %d exceeds max %d", c.MinChunkSize, c.MaxChunkSize)
	}
	return nil
}

var (
	headingLine = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	tableGrid   = regexp.MustCompile(`\|[^\n]+\|\n\|[-:| ]+\|\n(?:\|[^\n]+\|\n)*`)
	tableRow    = regexp.MustCompile(`\|.+\|`)
	fencedCode  = regexp.MustCompile("(?s)```.*?```")
	listLine    = regexp.MustCompile(`^[ \t]*(?:[-*+]|\d+\.)[ \t]`)
	paragraphs  = regexp.MustCompile(`\n\n+`)
	tableStart  = regexp.MustCompile(`\|.+\|\n\|[-:| ]+\|`)
)

// Segmenter splits documents into chunks.
type Segmenter struct {
	cfg Config
}

// New creates a Segmenter, validating the configuration eagerly.
func New(cfg Config) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Segmenter{cfg: cfg}, nil
}

// section is one heading-delimited region with its ancestor path.
type section struct {
	title   string
	level   int
	content string // includes the heading line
	path    []string
}

// Segment splits markdown into ordered chunks. Chunk indexes are assigned
// afterwards by the enricher; here they follow emission order.
func (s *Segmenter) Segment(markdown string) []document.Chunk {
	sections := splitByHeadings(markdown)

	var chunks []document.Chunk
	for i, sec := range sections {
		var preceding, following string
		if i > 0 {
			preceding = sections[i-1].title
		}
		if i+1 < len(sections) {
			following = sections[i+1].title
		}
		for _, ch := range s.processSection(sec, preceding, following) {
			ch.ChunkIndex = len(chunks)
			chunks = append(chunks, ch)
		}
	}
	return chunks
}

// splitByHeadings cuts the document at heading lines, maintaining a path
// stack so each section knows its ancestors. A document without headings
// becomes a single root section.
func splitByHeadings(markdown string) []section {
	matches := headingLine.FindAllStringSubmatchIndex(markdown, -1)
	if len(matches) == 0 {
		return []section{{title: "Document", content: markdown}}
	}

	type stackEntry struct {
		level int
		title string
	}
	var stack []stackEntry

	var sections []section
	for i, m := range matches {
		level := m[3] - m[2]
		title := strings.TrimSpace(markdown[m[4]:m[5]])

		bodyStart := m[1]
		bodyEnd := len(markdown)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := strings.TrimSpace(markdown[bodyStart:bodyEnd])

		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		path := make([]string, len(stack))
		for j, e := range stack {
			path[j] = e.title
		}
		stack = append(stack, stackEntry{level: level, title: title})

		content := strings.Repeat("#", level) + " " + title
		if body != "" {
			content += "\n\n" + body
		}
		sections = append(sections, section{
			title:   title,
			level:   level,
			content: content,
			path:    path,
		})
	}
	return sections
}

func (s *Segmenter) processSection(sec section, preceding, following string) []document.Chunk {
	hasTables := tableRow.MatchString(sec.content)
	hasCode := fencedCode.MatchString(sec.content)

	base := document.Chunk{
		SectionPath:      append(append([]string(nil), sec.path...), sec.title),
		SectionLevel:     sec.level,
		PrecedingSection: preceding,
		FollowingSection: following,
	}

	if len(sec.content) <= s.cfg.MaxChunkSize {
		ch := base
		ch.Content = sec.content
		ch.ContentType = DetectContentType(sec.content)
		ch.HasTables = hasTables
		ch.HasCodeBlocks = hasCode
		return []document.Chunk{ch}
	}
	return s.splitLargeSection(sec, base)
}

// splitLargeSection protects atomic elements behind placeholder paragraphs,
// splits the rest at blank lines, and accumulates paragraphs greedily up to
// the target size. A placeholder always flushes as its own chunk.
func (s *Segmenter) splitLargeSection(sec section, base document.Chunk) []document.Chunk {
	working := sec.content
	protected := map[string]protectedElement{}

	if s.cfg.PreserveTables {
		for i, grid := range tableGrid.FindAllString(sec.content, -1) {
			ph := fmt.Sprintf("__TABLE_%d__", i)
			protected[ph] = protectedElement{content: strings.TrimSpace(grid), kind: document.ContentTable}
			// The grid match owns its trailing newline; keep it so the
			// placeholder stays a standalone paragraph.
			working = strings.ReplaceAll(working, grid, ph+"\n")
		}
	}
	if s.cfg.PreserveCodeBlocks {
		for i, block := range fencedCode.FindAllString(working, -1) {
			ph := fmt.Sprintf("__CODE_%d__", i)
			protected[ph] = protectedElement{content: block, kind: document.ContentCodeBlock}
			working = strings.ReplaceAll(working, block, ph)
		}
	}

	var chunks []document.Chunk
	var current []string
	size := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		content := restore(strings.Join(current, "\n\n"), protected)
		ch := base
		ch.Content = content
		ch.ContentType = DetectContentType(content)
		ch.HasTables = tableRow.MatchString(content)
		ch.HasCodeBlocks = fencedCode.MatchString(content)
		chunks = append(chunks, ch)
		current = nil
		size = 0
	}

	for _, para := range paragraphs.Split(working, -1) {
		if strings.TrimSpace(para) == "" {
			continue
		}

		if el, ok := protected[strings.TrimSpace(para)]; ok {
			flush()
			ch := base
			ch.Content = el.content
			ch.ContentType = el.kind
			ch.HasTables = el.kind == document.ContentTable
			ch.HasCodeBlocks = el.kind == document.ContentCodeBlock
			chunks = append(chunks, ch)
			continue
		}

		if size+len(para) > s.cfg.TargetChunkSize && len(current) > 0 {
			flush()
		}
		current = append(current, para)
		size += len(para)
	}
	flush()

	return chunks
}

type protectedElement struct {
	content string
	kind    document.ContentType
}

func restore(content string, protected map[string]protectedElement) string {
	for ph, el := range protected {
		content = strings.ReplaceAll(content, ph, el.content)
	}
	return content
}

// DetectContentType classifies a block by its dominant structure. First
// match wins: table grid, then fenced code, then a list majority, then a
// lone heading line, else prose.
func DetectContentType(content string) document.ContentType {
	if tableStart.MatchString(content) {
		return document.ContentTable
	}
	if fencedCode.MatchString(content) {
		return document.ContentCodeBlock
	}

	lines := strings.Split(content, "\n")
	listLines := 0
	for _, line := range lines {
		if listLine.MatchString(line) {
			listLines++
		}
	}
	if len(lines) > 0 && float64(listLines)/float64(len(lines)) > 0.5 {
		return document.ContentList
	}

	trimmed := strings.TrimSpace(content)
	if !strings.Contains(trimmed, "\n") && headingLine.MatchString(trimmed) {
		return document.ContentHeading
	}
	return document.ContentProse
}
