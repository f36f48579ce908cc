// Package pipeline runs the full repair and chunking sequence over a
// converted document: artifact cleanup, heading correction, table
// merging, segmentation, and metadata enrichment.
package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mdchunk/mdchunk/internal/cleanup"
	"github.com/mdchunk/mdchunk/internal/converter"
	"github.com/mdchunk/mdchunk/internal/document"
	"github.com/mdchunk/mdchunk/internal/enrich"
	"github.com/mdchunk/mdchunk/internal/headings"
	"github.com/mdchunk/mdchunk/internal/outline"
	"github.com/mdchunk/mdchunk/internal/segment"
	"github.com/mdchunk/mdchunk/internal/tables"
)

// OutputFormat selects the rendered form of a processed document.
type OutputFormat string

const (
	FormatMarkdown OutputFormat = "markdown"
	FormatJSON     OutputFormat = "json"
)

// Config aggregates per-stage options plus switches to skip stages
// entirely.
type Config struct {
	RunCleanup     bool
	FixHeadings    bool
	FixLinks       bool
	MergeTables    bool
	SegmentContent bool
	EnrichMetadata bool

	IncludeFrontmatter bool
	OutputFormat       OutputFormat

	Cleanup  cleanup.Config
	Links    cleanup.LinkConfig
	Headings headings.Config
	Tables   tables.Config
	Segment  segment.Config
	Enrich   enrich.Config
}

// DefaultConfig enables every stage with its standard options.
func DefaultConfig() Config {
	return Config{
		RunCleanup:         true,
		FixHeadings:        true,
		FixLinks:           true,
		MergeTables:        true,
		SegmentContent:     true,
		EnrichMetadata:     true,
		IncludeFrontmatter: true,
		OutputFormat:       FormatMarkdown,
		Cleanup:            cleanup.DefaultConfig(),
		Links:              cleanup.DefaultLinkConfig(),
		Headings:           headings.DefaultConfig(),
		Tables:             tables.DefaultConfig(),
		Segment:            segment.DefaultConfig(),
		Enrich:             enrich.DefaultConfig(),
	}
}

// Validate checks every enabled stage's options up front so a bad
// configuration fails before any document is touched.
func (c Config) Validate() error {
	switch c.OutputFormat {
	case FormatMarkdown, FormatJSON, "":
	default:
		return fmt.Errorf("unknown output format %q", c.OutputFormat)
	}
	if c.SegmentContent {
		if err := c.Segment.Validate(); err != nil {
			return fmt.Errorf("segment config: %w", err)
		}
	}
	return nil
}

// Pipeline applies the configured stages in a fixed order.
type Pipeline struct {
	cfg Config
	log *slog.Logger
}

// New builds a Pipeline. A nil logger falls back to slog.Default.
func New(cfg Config, log *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{cfg: cfg, log: log}, nil
}

// Run processes one converted document. Stage order is fixed: cleanup
// first so later stages see normalized text, heading correction before
// table merging so merged regions sit under their final sections, a
// second cleanup pass to collapse gaps the merges left behind, then
// segmentation and enrichment.
func (p *Pipeline) Run(in *converter.Result) (*document.Result, error) {
	if in == nil {
		return nil, fmt.Errorf("nil conversion input")
	}
	log := p.log.With("source", in.Metadata.SourceFile)

	md := cleanup.NormalizeLineEndings(in.Markdown)

	if p.cfg.RunCleanup {
		md = cleanup.New(p.cfg.Cleanup).Clean(md)
		log.Debug("cleanup complete", "chars", len(md))
	}
	if p.cfg.FixLinks {
		md = cleanup.NewLinkFixer(p.cfg.Links).Fix(md)
	}

	entries := in.Outline
	if p.cfg.FixHeadings {
		if len(entries) == 0 {
			entries = outline.InferFromMarkdown(md)
			log.Debug("outline inferred from headings", "entries", len(entries))
		}
		corrector, err := headings.New(outline.NewIndex(entries), p.cfg.Headings)
		if err != nil {
			return nil, fmt.Errorf("heading corrector: %w", err)
		}
		md = corrector.Fix(md)
	}

	if p.cfg.MergeTables {
		merger, err := tables.New(p.cfg.Tables)
		if err != nil {
			return nil, fmt.Errorf("table merger: %w", err)
		}
		md = merger.Merge(md)
	}

	if p.cfg.RunCleanup {
		md = cleanup.CollapseBlankRuns(md)
	}

	out := &document.Result{
		Markdown: md,
		Outline:  entries,
		Metadata: in.Metadata,
	}

	if p.cfg.SegmentContent {
		seg, err := segment.New(p.cfg.Segment)
		if err != nil {
			return nil, fmt.Errorf("segmenter: %w", err)
		}
		out.Chunks = seg.Segment(md)
		assignPages(out.Chunks, entries)
		log.Debug("segmented", "chunks", len(out.Chunks))

		if p.cfg.EnrichMetadata {
			out.Chunks = enrich.New(in.Metadata, p.cfg.Enrich).Enrich(out.Chunks)
		}
	}

	return out, nil
}

// assignPages stamps each chunk with the start page of its section,
// resolved through the outline. Outlines without page numbers (inferred
// ones, bookmark trees) leave chunks at page zero.
func assignPages(chunks []document.Chunk, entries []outline.Entry) {
	pages := make(map[string]int)
	for _, sec := range outline.NewIndex(entries).Flatten() {
		key := outline.Normalize(sec.Title)
		if _, seen := pages[key]; !seen && sec.PageStart > 0 {
			pages[key] = sec.PageStart
		}
	}
	if len(pages) == 0 {
		return
	}
	for i := range chunks {
		path := chunks[i].SectionPath
		for j := len(path) - 1; j >= 0; j-- {
			if page, ok := pages[outline.Normalize(path[j])]; ok {
				chunks[i].PageNumber = page
				break
			}
		}
	}
}

// Render produces the final output text for a processed document in
// the configured format.
func (p *Pipeline) Render(res *document.Result) (string, error) {
	if p.cfg.OutputFormat == FormatJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal result: %w", err)
		}
		return string(data), nil
	}
	if !p.cfg.SegmentContent || len(res.Chunks) == 0 {
		return res.Markdown, nil
	}
	e := enrich.New(res.Metadata, p.cfg.Enrich)
	return e.RenderMarkdown(res.Chunks, p.cfg.IncludeFrontmatter)
}
