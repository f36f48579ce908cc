// Package cleanup strips page-layout artifacts from extracted markdown:
// running footers, orphan page numbers, physical table-of-contents listings,
// and malformed formatting left behind by PDF text extraction.
package cleanup

import (
	"regexp"
	"strings"
)

// Config controls which cleanup steps run.
type Config struct {
	MaxConsecutiveBlanks    int
	RemovePageFooters       bool
	RemoveOrphanPageNumbers bool
	NormalizeHR             bool
	FixHyphenBreaks         bool
	CleanupBold             bool
	TrimTrailingWhitespace  bool
	RemoveRedundantTOC      bool

	// MaxFooterTextLen is the length below which a bold text span paired
	// with a bold page number is treated as a footer even when it matches
	// no known section name. Deliberately aggressive: short bold captions
	// adjacent to a page number are rare in real content.
	MaxFooterTextLen int

	// KnownFooterSections are recurring footer names matched
	// case-insensitively as substrings.
	KnownFooterSections []string
}

// DefaultConfig returns the standard cleanup configuration.
func DefaultConfig() Config {
	return Config{
		MaxConsecutiveBlanks:    1,
		RemovePageFooters:       true,
		RemoveOrphanPageNumbers: true,
		NormalizeHR:             true,
		FixHyphenBreaks:         true,
		CleanupBold:             true,
		TrimTrailingWhitespace:  true,
		RemoveRedundantTOC:      true,
		MaxFooterTextLen:        50,
		KnownFooterSections:     []string{"contents", "chapter", "rev.", "revision history"},
	}
}

var (
	footerTextNum = regexp.MustCompile(`^[ \t]*\*\*(.+?)\*\*[ \t]+\*\*(\d{1,4})\*\*[ \t]*$`)
	footerNumText = regexp.MustCompile(`^[ \t]*\*\*(\d{1,4})\*\*[ \t]+\*\*(.+?)\*\*[ \t]*$`)
	boldPageNum   = regexp.MustCompile(`^[ \t]*\*\*\d{1,4}\*\*[ \t]*$`)
	orphanNum     = regexp.MustCompile(`^\d{1,4}[ \t]*$`)

	dotLeaderLine = regexp.MustCompile(`\.{5,}.*\d`)
	residualDots  = regexp.MustCompile(`^[ \t]*\.{6,}[ \t]*$`)
	boldBlock     = regexp.MustCompile(`(?s)\*\*.*?\*\*`)
	hasDigit      = regexp.MustCompile(`\d`)

	hrLine     = regexp.MustCompile(`^[-_*]{3,}[ \t]*$`)
	doubleBold = regexp.MustCompile(`\*{4,}([^*]+)\*{4,}`)

	bulletBreak = regexp.MustCompile(`[●○■•▪‣⁃]\s*(?:<br/?>\s*)+`)
	bulletSpace = regexp.MustCompile(`(?m)(^|[| \t])[●○■•▪‣⁃][ \t]*`)
	doubleDash  = regexp.MustCompile(`(?m)^- +- `)
	tableDash   = regexp.MustCompile(`\| +- +- `)

	listItem = regexp.MustCompile(`^[ \t]*(?:[-*+]|\d+\.)[ \t]+`)
)

// Cleaner removes layout artifacts from markdown. Safe for concurrent use.
type Cleaner struct {
	cfg Config
}

// New creates a Cleaner with the given configuration. Zero-valued numeric
// fields fall back to defaults.
func New(cfg Config) *Cleaner {
	if cfg.MaxConsecutiveBlanks <= 0 {
		cfg.MaxConsecutiveBlanks = 1
	}
	if cfg.MaxFooterTextLen <= 0 {
		cfg.MaxFooterTextLen = 50
	}
	return &Cleaner{cfg: cfg}
}

// Clean runs all enabled cleanup steps. Re-running Clean on its own output
// yields the same output.
func (c *Cleaner) Clean(markdown string) string {
	result := NormalizeLineEndings(markdown)

	if c.cfg.RemovePageFooters {
		result = c.removePageFooters(result)
	}
	if c.cfg.RemoveOrphanPageNumbers {
		result = removeLines(result, func(line string) bool {
			return orphanNum.MatchString(line)
		})
	}
	if c.cfg.FixHyphenBreaks {
		result = fixHyphenBreaks(result)
	}
	if c.cfg.CleanupBold {
		result = doubleBold.ReplaceAllString(result, "**$1**")
	}
	if c.cfg.NormalizeHR {
		result = mapLines(result, func(line string) string {
			if hrLine.MatchString(line) {
				return "---"
			}
			return line
		})
	}
	if c.cfg.TrimTrailingWhitespace {
		result = mapLines(result, func(line string) string {
			return strings.TrimRight(line, " \t")
		})
	}
	if c.cfg.RemoveRedundantTOC {
		result = c.removeRedundantTOC(result)
	}
	result = normalizeBullets(result)
	result = c.normalizeBlankLines(result)

	return result
}

// removePageFooters deletes bold text/page-number pairs and standalone bold
// page numbers.
func (c *Cleaner) removePageFooters(markdown string) string {
	return removeLines(markdown, func(line string) bool {
		if boldPageNum.MatchString(line) {
			return true
		}
		var text string
		if m := footerTextNum.FindStringSubmatch(line); m != nil {
			text = m[1]
		} else if m := footerNumText.FindStringSubmatch(line); m != nil {
			text = m[2]
		} else {
			return false
		}

		text = strings.TrimSpace(text)
		lower := strings.ToLower(text)
		for _, known := range c.cfg.KnownFooterSections {
			if strings.Contains(lower, known) {
				return true
			}
		}
		return len(text) < c.cfg.MaxFooterTextLen
	})
}

// removeRedundantTOC deletes physical table-of-contents listings: lines
// with a dot-leader run followed by a digit, bold blocks wrapping such
// listings, and leftover pure-dot lines.
func (c *Cleaner) removeRedundantTOC(markdown string) string {
	result := removeLines(markdown, func(line string) bool {
		return dotLeaderLine.MatchString(line)
	})

	// Whole-page TOC sections are sometimes wrapped in one bold span that
	// spans many lines.
	result = boldBlock.ReplaceAllStringFunc(result, func(block string) string {
		if strings.Contains(block, ".....") && hasDigit.MatchString(block) {
			return ""
		}
		return block
	})

	return removeLines(result, func(line string) bool {
		return residualDots.MatchString(line)
	})
}

// fixHyphenBreaks joins a word broken by a trailing hyphen with the
// lowercase continuation on the next line.
func fixHyphenBreaks(markdown string) string {
	lines := strings.Split(markdown, "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if skipJoin(line) {
			out = append(out, line)
			continue
		}
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasSuffix(trimmed, "-") && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next != "" && !skipJoin(next) && next[0] >= 'a' && next[0] <= 'z' {
				out = append(out, trimmed[:len(trimmed)-1]+next)
				i++
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// skipJoin reports whether a line must never participate in sentence joins.
func skipJoin(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return true
	}
	switch {
	case strings.HasPrefix(s, "#"),
		strings.HasPrefix(s, "-"),
		strings.HasPrefix(s, "|"),
		strings.HasPrefix(s, "```"),
		strings.HasPrefix(s, ">"):
		return true
	case strings.HasPrefix(s, "*") && !strings.HasPrefix(s, "**"):
		return true
	}
	return false
}

// normalizeBullets rewrites malformed PDF bullet characters into list
// markers and deduplicates any double markers that produces.
func normalizeBullets(markdown string) string {
	result := bulletBreak.ReplaceAllString(markdown, "- ")
	result = bulletSpace.ReplaceAllString(result, "$1- ")
	result = doubleDash.ReplaceAllString(result, "- ")
	result = tableDash.ReplaceAllString(result, "| - ")
	return result
}

// normalizeBlankLines tightens list spacing, caps consecutive blank lines,
// strips the leading blank run, and ends the document with one newline.
func (c *Cleaner) normalizeBlankLines(markdown string) string {
	lines := strings.Split(markdown, "\n")

	// Drop blank runs between consecutive list items.
	var tight []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		tight = append(tight, line)
		if !listItem.MatchString(line) {
			continue
		}
		j := i + 1
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		if j > i+1 && j < len(lines) && listItem.MatchString(lines[j]) {
			i = j - 1
		}
	}

	var out []string
	blanks := 0
	for _, line := range tight {
		if strings.TrimSpace(line) == "" {
			blanks++
			if len(out) == 0 || blanks > c.cfg.MaxConsecutiveBlanks {
				continue
			}
			out = append(out, "")
			continue
		}
		blanks = 0
		out = append(out, line)
	}

	result := strings.Join(out, "\n")
	return strings.TrimRight(result, " \t\n") + "\n"
}

// NormalizeLineEndings converts CRLF and CR line endings to LF.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// CollapseBlankRuns reduces runs of three or more newlines to a single
// blank line and guarantees a trailing newline. Used as the final
// normalization pass after all text edits.
func CollapseBlankRuns(markdown string) string {
	if markdown == "" {
		return ""
	}
	lines := strings.Split(markdown, "\n")
	var out []string
	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blanks = 0
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), " \t\n") + "\n"
}

func removeLines(s string, drop func(string) bool) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if drop(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func mapLines(s string, fn func(string) string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = fn(line)
	}
	return strings.Join(lines, "\n")
}
