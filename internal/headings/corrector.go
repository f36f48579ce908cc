// Package headings rewrites markdown heading levels using the document
// outline. PDF extraction infers heading levels from font sizes and gets
// them wrong; the outline carries the true hierarchy.
package headings

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mdchunk/mdchunk/internal/cleanup"
	"github.com/mdchunk/mdchunk/internal/outline"
)

// Config controls heading correction.
type Config struct {
	// MinMatchRatio is the similarity threshold for fuzzy outline matching.
	MinMatchRatio float64
	// RemoveBoldFromHeadings strips inline bold from heading text.
	RemoveBoldFromHeadings bool
	// Strict demotes headings with no outline counterpart to bold emphasis
	// instead of keeping them. Disambiguates figure/table captions that
	// were extracted as headings.
	Strict bool
}

// DefaultConfig returns the standard correction configuration.
func DefaultConfig() Config {
	return Config{
		MinMatchRatio:          0.8,
		RemoveBoldFromHeadings: true,
	}
}

var (
	headingLine = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	boldLine    = regexp.MustCompile(`^\s*\*\*([^*]+)\*\*\s*$`)
	inlineBold  = regexp.MustCompile(`\*+([^*]+)\*+`)

	// Split-heading merge shapes. A chapter number and its title often
	// arrive on separate lines.
	mergeNumHeading = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(\d+)[ \t]*\n\s*#{1,6}[ \t]+([^\n]+)`)
	mergeNumText    = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(\d+)[ \t]*\n\s*([A-Z][^\n]{1,100})$`)
	mergeBoldNum    = regexp.MustCompile(`(?m)^[ \t]*\*\*(\d+)\*\*[ \t]*\n\s*(#{1,6})[ \t]+([^\n]+)`)
)

// Corrector fixes heading levels against an outline index.
type Corrector struct {
	idx *outline.Index
	cfg Config
}

// New creates a Corrector. The ratio must lie in [0,1].
func New(idx *outline.Index, cfg Config) (*Corrector, error) {
	if cfg.MinMatchRatio < 0 || cfg.MinMatchRatio > 1 {
		return nil, fmt.Errorf("min match ratio %v out of range [0,1]", cfg.MinMatchRatio)
	}
	if cfg.MinMatchRatio == 0 {
		cfg.MinMatchRatio = 0.8
	}
	return &Corrector{idx: idx, cfg: cfg}, nil
}

// Fix rewrites heading levels throughout the document. Split headings are
// merged both before and after level correction: promoting a bold number
// to a heading creates new merge opportunities.
func (c *Corrector) Fix(markdown string) string {
	result := cleanup.NormalizeLineEndings(markdown)
	result = mergeSplitHeadings(result)

	lines := strings.Split(result, "\n")
	for i, line := range lines {
		if m := headingLine.FindStringSubmatch(line); m != nil {
			lines[i] = c.fixHeading(m[1], m[2])
			continue
		}
		if m := boldLine.FindStringSubmatch(line); m != nil {
			text := strings.TrimSpace(m[1])
			// Table captions are the table merger's business.
			if strings.HasPrefix(strings.ToLower(text), "table") {
				continue
			}
			if level, ok := c.findLevel(text); ok {
				lines[i] = strings.Repeat("#", level) + " " + text
			}
		}
	}

	return mergeSplitHeadings(strings.Join(lines, "\n"))
}

func (c *Corrector) fixHeading(hashes, text string) string {
	clean := text
	if c.cfg.RemoveBoldFromHeadings {
		clean = strings.TrimSpace(inlineBold.ReplaceAllString(clean, "$1"))
	}

	if level, ok := c.findLevel(text); ok {
		return strings.Repeat("#", level) + " " + clean
	}
	if c.cfg.Strict {
		return "**" + clean + "**"
	}
	return hashes + " " + clean
}

// findLevel looks a title up in the outline: exact match after
// normalization first, then best fuzzy match at or above the threshold.
func (c *Corrector) findLevel(title string) (int, bool) {
	if c.idx == nil || c.idx.Len() == 0 {
		return 0, false
	}
	if level, ok := c.idx.LookupLevel(title); ok {
		return level, true
	}
	return c.idx.FuzzyLookup(title, c.cfg.MinMatchRatio)
}

func mergeSplitHeadings(markdown string) string {
	result := mergeNumHeading.ReplaceAllString(markdown, "$1 $2 $3")
	result = mergeNumText.ReplaceAllString(result, "$1 $2 $3")
	return mergeBoldNum.ReplaceAllString(result, "$2 $1 $3")
}

// Stats summarizes how the document's headings relate to the outline.
type Stats struct {
	TotalHeadings    int      `json:"total_headings"`
	MatchedToOutline int      `json:"matched_to_outline"`
	LevelCorrections int      `json:"level_corrections"`
	Unmatched        []string `json:"unmatched,omitempty"`
}

// Stats analyzes headings without modifying the document. At most ten
// unmatched titles are reported.
func (c *Corrector) Stats(markdown string) Stats {
	var st Stats
	for _, line := range strings.Split(markdown, "\n") {
		m := headingLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		st.TotalHeadings++
		level, ok := c.findLevel(m[2])
		if !ok {
			if len(st.Unmatched) < 10 {
				title := m[2]
				if len(title) > 50 {
					title = title[:50]
				}
				st.Unmatched = append(st.Unmatched, title)
			}
			continue
		}
		st.MatchedToOutline++
		if level != len(m[1]) {
			st.LevelCorrections++
		}
	}
	return st
}
