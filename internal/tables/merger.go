// Package tables merges markdown tables that a page break split in two.
// A table spanning two PDF pages arrives as two grids, often with the
// header repeated; this package stitches them back together.
package tables

import (
	"fmt"
	"regexp"
	"strings"
)

// Config controls merge candidate detection.
type Config struct {
	// MaxGapLines is the most non-blank lines tolerated between fragments
	// once page artifacts are stripped from the gap.
	MaxGapLines int
	// StrictGapCheck requires the gap to be pure whitespace/artifacts.
	StrictGapCheck bool
	// MinColumnMatch is the header-cell similarity ratio above which two
	// differing headers still count as the same table.
	MinColumnMatch float64
}

// DefaultConfig returns the standard merge configuration.
func DefaultConfig() Config {
	return Config{
		MaxGapLines:    5,
		MinColumnMatch: 0.8,
	}
}

var (
	tableGrid = regexp.MustCompile(`(\|[^\n]+\|\n\|[-:| ]+\|\n(?:\|[^\n]+\|\n)*)`)

	gapFooterPair = regexp.MustCompile(`\*\*[^*]+\*\*\s*\*\*\d+\*\*`)
	gapBoldNum    = regexp.MustCompile(`\*\*\d+\*\*`)
	gapPlainNum   = regexp.MustCompile(`(?m)^\d+$`)
	gapEmptyBold  = regexp.MustCompile(`\*\*\s*\*\*`)
)

var continuationMarkers = []string{"continued", "cont.", "(cont)", "..."}

// fragment is one detected table with its source position. Recomputed on
// every pass, never persisted.
type fragment struct {
	start, end int
	text       string
	headerCols []string
	colCount   int
	rows       []string // data rows only
}

// Merger merges adjacent table fragments.
type Merger struct {
	cfg Config
}

// New creates a Merger. The column-match ratio must lie in [0,1].
func New(cfg Config) (*Merger, error) {
	if cfg.MinColumnMatch < 0 || cfg.MinColumnMatch > 1 {
		return nil, fmt.Errorf("min column match %v out of range [0,1]", cfg.MinColumnMatch)
	}
	if cfg.MaxGapLines <= 0 {
		cfg.MaxGapLines = 5
	}
	if cfg.MinColumnMatch == 0 {
		cfg.MinColumnMatch = 0.8
	}
	return &Merger{cfg: cfg}, nil
}

// Merge finds split tables and joins them. Candidates are identified
// left-to-right; edits are applied in reverse document order so earlier
// offsets stay valid.
func (m *Merger) Merge(markdown string) string {
	frags := findFragments(markdown)
	if len(frags) < 2 {
		return markdown
	}

	type pair struct{ first, second fragment }
	var merges []pair
	skip := map[int]bool{}
	for i := 0; i+1 < len(frags); i++ {
		if skip[i] {
			continue
		}
		if m.shouldMerge(frags[i], frags[i+1], markdown) {
			merges = append(merges, pair{frags[i], frags[i+1]})
			skip[i+1] = true
		}
	}

	result := markdown
	for i := len(merges) - 1; i >= 0; i-- {
		result = applyMerge(result, merges[i].first, merges[i].second)
	}
	return result
}

func findFragments(markdown string) []fragment {
	var frags []fragment
	for _, loc := range tableGrid.FindAllStringIndex(markdown, -1) {
		text := markdown[loc[0]:loc[1]]
		rows := strings.Split(strings.TrimSpace(text), "\n")
		if len(rows) < 2 {
			continue
		}
		f := fragment{
			start:      loc[0],
			end:        loc[1],
			text:       text,
			headerCols: splitCells(rows[0]),
		}
		f.colCount = len(f.headerCols)
		if len(rows) > 2 {
			f.rows = rows[2:]
		}
		frags = append(frags, f)
	}
	return frags
}

func splitCells(row string) []string {
	var cells []string
	for _, c := range strings.Split(row, "|") {
		c = strings.TrimSpace(c)
		if c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func (m *Merger) shouldMerge(a, b fragment, markdown string) bool {
	if a.colCount != b.colCount {
		return false
	}
	if !m.validGap(markdown[a.end:b.start]) {
		return false
	}
	return m.isContinuation(a, b)
}

// validGap accepts gaps holding only whitespace and page artifacts, or a
// bounded number of leftover lines.
func (m *Merger) validGap(gap string) bool {
	cleaned := gapFooterPair.ReplaceAllString(gap, "")
	cleaned = gapBoldNum.ReplaceAllString(cleaned, "")
	cleaned = gapPlainNum.ReplaceAllString(cleaned, "")
	cleaned = gapEmptyBold.ReplaceAllString(cleaned, "")

	if strings.TrimSpace(cleaned) == "" {
		return true
	}
	if m.cfg.StrictGapCheck {
		return false
	}
	count := 0
	for _, line := range strings.Split(cleaned, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count <= m.cfg.MaxGapLines
}

// isContinuation reports whether b structurally continues a: a repeated
// header, an explicit continuation marker, or near-identical header cells.
func (m *Merger) isContinuation(a, b fragment) bool {
	if equalCells(a.headerCols, b.headerCols) {
		return true
	}

	headerText := strings.ToLower(strings.Join(b.headerCols, " "))
	for _, marker := range continuationMarkers {
		if strings.Contains(headerText, marker) {
			return true
		}
	}

	if a.colCount == 0 {
		return false
	}
	matches := 0
	for i := range a.headerCols {
		if i < len(b.headerCols) && strings.EqualFold(a.headerCols[i], b.headerCols[i]) {
			matches++
		}
	}
	return float64(matches)/float64(a.colCount) >= m.cfg.MinColumnMatch
}

func equalCells(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// applyMerge appends b's continuation rows to a and removes b along with
// everything between them. When b's header differs from a's it is kept as
// a data row: it probably never was a header.
func applyMerge(markdown string, a, b fragment) string {
	rows := b.rows
	if !equalCells(a.headerCols, b.headerCols) {
		all := strings.Split(strings.TrimSpace(b.text), "\n")
		if len(all) > 2 {
			rows = append([]string{all[0]}, all[2:]...)
		} else {
			rows = nil
		}
	}

	if len(rows) == 0 {
		return markdown[:b.start] + markdown[b.end:]
	}
	// a.text ends with a newline; splice the rows in before it.
	return markdown[:a.end-1] + "\n" + strings.Join(rows, "\n") + markdown[b.end-1:]
}

// Stats summarizes the tables found in a document.
type Stats struct {
	TotalTables     int         `json:"total_tables"`
	PotentialMerges int         `json:"potential_merges"`
	ByColumnCount   map[int]int `json:"tables_by_column_count,omitempty"`
}

// Stats counts tables and pending merges without modifying the document.
func (m *Merger) Stats(markdown string) Stats {
	frags := findFragments(markdown)
	st := Stats{
		TotalTables:   len(frags),
		ByColumnCount: make(map[int]int),
	}
	for _, f := range frags {
		st.ByColumnCount[f.colCount]++
	}
	for i := 0; i+1 < len(frags); i++ {
		if m.shouldMerge(frags[i], frags[i+1], markdown) {
			st.PotentialMerges++
		}
	}
	return st
}
