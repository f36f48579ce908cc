// Package outline builds a queryable hierarchical index from the flat
// outline list produced by document extraction. Heading correction and
// page lookups are driven by this index; it is read-only after construction.
package outline

import (
	"regexp"
	"strings"
)

// Entry is one item of the flat document outline.
type Entry struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// Section is a flattened view of an index node with its page range.
// PageEnd is -1 when the node is the last of its siblings and the range
// is open-ended.
type Section struct {
	Title     string   `json:"title"`
	Level     int      `json:"level"`
	PageStart int      `json:"page_start"`
	PageEnd   int      `json:"page_end"`
	Path      []string `json:"path,omitempty"`
}

// node lives in an append-only arena; parent and children hold arena
// indices, never pointers, so the tree has no cycles to manage.
type node struct {
	entry    Entry
	parent   int // -1 for roots
	children []int
}

// Index is the hierarchical view over the outline entries.
type Index struct {
	nodes  []node
	roots  []int
	levels map[string]int // normalized title -> level, first occurrence wins
	titles []string       // normalized titles in document order
}

// NewIndex builds the index from the ordered entry list. Construction is
// stack-based: the parent of an entry is the nearest preceding entry with a
// strictly smaller level.
func NewIndex(entries []Entry) *Index {
	x := &Index{
		nodes:  make([]node, 0, len(entries)),
		levels: make(map[string]int, len(entries)),
	}

	var stack []int // arena indices of currently open ancestors
	for _, e := range entries {
		for len(stack) > 0 && x.nodes[stack[len(stack)-1]].entry.Level >= e.Level {
			stack = stack[:len(stack)-1]
		}

		i := len(x.nodes)
		n := node{entry: e, parent: -1}
		if len(stack) > 0 {
			p := stack[len(stack)-1]
			n.parent = p
			x.nodes = append(x.nodes, n)
			x.nodes[p].children = append(x.nodes[p].children, i)
		} else {
			x.nodes = append(x.nodes, n)
			x.roots = append(x.roots, i)
		}
		stack = append(stack, i)

		norm := Normalize(e.Title)
		if _, ok := x.levels[norm]; !ok {
			x.levels[norm] = e.Level
		}
		x.titles = append(x.titles, norm)
	}

	return x
}

// Len returns the number of outline entries.
func (x *Index) Len() int { return len(x.nodes) }

// Entries returns the entries in document order.
func (x *Index) Entries() []Entry {
	out := make([]Entry, len(x.nodes))
	for i, n := range x.nodes {
		out[i] = n.entry
	}
	return out
}

// LookupLevel returns the outline level for a title after normalization.
func (x *Index) LookupLevel(title string) (int, bool) {
	level, ok := x.levels[Normalize(title)]
	return level, ok
}

// FuzzyLookup returns the level of the best similarity match across all
// outline titles. Matches below minRatio are rejected; ties keep the first
// title in document order. A title that strictly contains the other (or is
// strictly contained by it) never matches: caption text like
// "Figure 44. Installing the air shroud" must not hit the shorter outline
// entry it embeds.
func (x *Index) FuzzyLookup(title string, minRatio float64) (int, bool) {
	norm := Normalize(title)
	if norm == "" {
		return 0, false
	}

	bestRatio := 0.0
	bestLevel := 0
	found := false
	for _, candidate := range x.titles {
		if candidate != norm &&
			(strings.Contains(candidate, norm) || strings.Contains(norm, candidate)) {
			continue
		}
		r := Ratio(norm, candidate)
		if r >= minRatio && r > bestRatio {
			bestRatio = r
			bestLevel = x.levels[candidate]
			found = true
		}
	}
	return bestLevel, found
}

// Node is a read-only view of one index node.
type Node struct {
	x *Index
	i int
}

// Entry returns the outline entry for this node.
func (n Node) Entry() Entry { return n.x.nodes[n.i].entry }

// Path returns ancestor titles from the root down to this node's parent.
func (n Node) Path() []string {
	var rev []string
	for p := n.x.nodes[n.i].parent; p >= 0; p = n.x.nodes[p].parent {
		rev = append(rev, n.x.nodes[p].entry.Title)
	}
	path := make([]string, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

// SectionAtPage finds the deepest node whose page is at or before the target
// and whose next sibling starts after it.
func (x *Index) SectionAtPage(page int) (Node, bool) {
	i, ok := x.findAtPage(x.roots, page)
	if !ok {
		return Node{}, false
	}
	return Node{x: x, i: i}, true
}

func (x *Index) findAtPage(siblings []int, page int) (int, bool) {
	for pos, i := range siblings {
		if x.nodes[i].entry.Page > page {
			continue
		}
		// Later sibling also covers the page: keep scanning.
		if pos+1 < len(siblings) && x.nodes[siblings[pos+1]].entry.Page <= page {
			continue
		}
		if child, ok := x.findAtPage(x.nodes[i].children, page); ok {
			return child, true
		}
		return i, true
	}
	return 0, false
}

// Flatten returns every section with its page range in document order.
// A node's range ends one page before its next sibling starts.
func (x *Index) Flatten() []Section {
	var out []Section
	var walk func(siblings []int, path []string)
	walk = func(siblings []int, path []string) {
		for pos, i := range siblings {
			n := x.nodes[i]
			end := -1
			if pos+1 < len(siblings) {
				end = x.nodes[siblings[pos+1]].entry.Page - 1
			}
			out = append(out, Section{
				Title:     n.entry.Title,
				Level:     n.entry.Level,
				PageStart: n.entry.Page,
				PageEnd:   end,
				Path:      append([]string(nil), path...),
			})
			walk(n.children, append(path, n.entry.Title))
		}
	}
	walk(x.roots, nil)
	return out
}

var boldMarkers = regexp.MustCompile(`\*+`)

// Normalize prepares a title for matching: bold markers stripped,
// whitespace collapsed, case folded.
func Normalize(title string) string {
	title = boldMarkers.ReplaceAllString(title, "")
	title = strings.Join(strings.Fields(title), " ")
	return strings.ToLower(title)
}
