package outline

import "testing"

func sampleEntries() []Entry {
	return []Entry{
		{Level: 1, Title: "Overview", Page: 5},
		{Level: 2, Title: "Key features", Page: 6},
		{Level: 2, Title: "Supported browsers", Page: 9},
		{Level: 1, Title: "Logging in", Page: 12},
		{Level: 2, Title: "Login using local credentials", Page: 13},
		{Level: 3, Title: "Password recovery", Page: 15},
		{Level: 1, Title: "Troubleshooting", Page: 40},
	}
}

func TestNewIndex_TreeShape(t *testing.T) {
	x := NewIndex(sampleEntries())

	if x.Len() != 7 {
		t.Fatalf("expected 7 nodes, got %d", x.Len())
	}

	node, ok := x.SectionAtPage(15)
	if !ok {
		t.Fatal("expected a section at page 15")
	}
	if node.Entry().Title != "Password recovery" {
		t.Errorf("expected deepest node 'Password recovery', got %q", node.Entry().Title)
	}
	wantPath := []string{"Logging in", "Login using local credentials"}
	path := node.Path()
	if len(path) != len(wantPath) {
		t.Fatalf("expected path %v, got %v", wantPath, path)
	}
	for i := range wantPath {
		if path[i] != wantPath[i] {
			t.Errorf("path[%d]: expected %q, got %q", i, wantPath[i], path[i])
		}
	}
}

func TestSectionAtPage_Boundaries(t *testing.T) {
	x := NewIndex(sampleEntries())

	tests := []struct {
		page  int
		title string
		found bool
	}{
		{4, "", false},           // before the first entry
		{5, "Overview", true},    // exact start
		{11, "Supported browsers", true},
		{13, "Login using local credentials", true},
		{99, "Troubleshooting", true}, // open-ended last sibling
	}

	for _, tt := range tests {
		node, ok := x.SectionAtPage(tt.page)
		if ok != tt.found {
			t.Errorf("page %d: expected found=%v, got %v", tt.page, tt.found, ok)
			continue
		}
		if ok && node.Entry().Title != tt.title {
			t.Errorf("page %d: expected %q, got %q", tt.page, tt.title, node.Entry().Title)
		}
	}
}

func TestLookupLevel_Normalization(t *testing.T) {
	x := NewIndex(sampleEntries())

	level, ok := x.LookupLevel("**Key   Features**")
	if !ok {
		t.Fatal("expected a match for bolded, oddly spaced title")
	}
	if level != 2 {
		t.Errorf("expected level 2, got %d", level)
	}

	if _, ok := x.LookupLevel("Not in outline"); ok {
		t.Error("expected no match for unknown title")
	}
}

func TestLookupLevel_FirstOccurrenceWins(t *testing.T) {
	x := NewIndex([]Entry{
		{Level: 1, Title: "Setup", Page: 1},
		{Level: 3, Title: "Setup", Page: 8},
	})

	level, ok := x.LookupLevel("setup")
	if !ok || level != 1 {
		t.Errorf("expected first-seen level 1, got %d (found=%v)", level, ok)
	}
}

func TestFuzzyLookup_SlightVariation(t *testing.T) {
	x := NewIndex(sampleEntries())

	// Trailing punctuation added by the converter should not block a match.
	level, ok := x.FuzzyLookup("Supported browsers.", 0.8)
	if !ok {
		t.Fatal("expected fuzzy match for near-identical title")
	}
	if level != 2 {
		t.Errorf("expected level 2, got %d", level)
	}
}

func TestFuzzyLookup_BelowThresholdRejected(t *testing.T) {
	x := NewIndex(sampleEntries())

	if _, ok := x.FuzzyLookup("Completely unrelated text", 0.8); ok {
		t.Error("expected no match below the similarity threshold")
	}
}

func TestFuzzyLookup_ContainmentRejected(t *testing.T) {
	x := NewIndex([]Entry{
		{Level: 2, Title: "Installing the air shroud", Page: 44},
	})

	// A figure caption embedding the outline title must not match, even
	// though the raw similarity ratio is high.
	if _, ok := x.FuzzyLookup("Figure 44. Installing the air shroud", 0.8); ok {
		t.Error("caption containing the outline title must not fuzzy-match")
	}
}

func TestFlatten_PageRanges(t *testing.T) {
	x := NewIndex(sampleEntries())
	flat := x.Flatten()

	if len(flat) != 7 {
		t.Fatalf("expected 7 sections, got %d", len(flat))
	}

	// Top-level "Overview" ends right before "Logging in".
	if flat[0].Title != "Overview" || flat[0].PageStart != 5 || flat[0].PageEnd != 11 {
		t.Errorf("unexpected first section: %+v", flat[0])
	}
	// Last top-level sibling is open-ended.
	last := flat[len(flat)-1]
	if last.Title != "Troubleshooting" || last.PageEnd != -1 {
		t.Errorf("unexpected last section: %+v", last)
	}
	// Nested section carries its ancestor path.
	for _, s := range flat {
		if s.Title == "Password recovery" {
			if len(s.Path) != 2 || s.Path[0] != "Logging in" {
				t.Errorf("unexpected path for nested section: %v", s.Path)
			}
		}
	}
}

func TestRatio_Bounds(t *testing.T) {
	if r := Ratio("", ""); r != 1 {
		t.Errorf("empty strings: expected 1, got %f", r)
	}
	if r := Ratio("abc", "abc"); r != 1 {
		t.Errorf("identical: expected 1, got %f", r)
	}
	if r := Ratio("abc", "xyz"); r != 0 {
		t.Errorf("disjoint: expected 0, got %f", r)
	}
	if r := Ratio("overview", "overviews"); r < 0.9 {
		t.Errorf("near-identical: expected ratio > 0.9, got %f", r)
	}
}

func TestInferFromMarkdown(t *testing.T) {
	md := "# Intro\n\nSome text.\n\n## Details\n\nMore text.\n"
	entries := InferFromMarkdown(md)

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != 1 || entries[0].Title != "Intro" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Level != 2 || entries[1].Title != "Details" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}
