package tables

import (
	"strings"
	"testing"
)

func newMerger(t *testing.T, cfg Config) *Merger {
	t.Helper()
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

const splitTable = `Intro paragraph.

| Name | Qty | Price |
|---|---|---|
| Bolt | 10 | 0.20 |
| Nut | 10 | 0.10 |

**12**

| Name | Qty | Price |
|---|---|---|
| Washer | 20 | 0.05 |

After text.
`

func TestMerge_RepeatedHeaderDropped(t *testing.T) {
	m := newMerger(t, DefaultConfig())
	got := m.Merge(splitTable)

	if strings.Count(got, "| Name | Qty | Price |") != 1 {
		t.Errorf("expected one header after merge, got:\n%s", got)
	}
	if strings.Count(got, "|---|---|---|") != 1 {
		t.Errorf("expected one separator after merge, got:\n%s", got)
	}
	for _, row := range []string{"| Bolt | 10 | 0.20 |", "| Washer | 20 | 0.05 |"} {
		if !strings.Contains(got, row) {
			t.Errorf("expected row %q preserved, got:\n%s", row, got)
		}
	}
	if strings.Contains(got, "**12**") {
		t.Errorf("expected page artifact removed from the gap, got:\n%s", got)
	}
	if !strings.Contains(got, "After text.") {
		t.Errorf("expected trailing content preserved, got:\n%s", got)
	}
}

func TestMerge_DifferentHeaderKeptAsData(t *testing.T) {
	m := newMerger(t, DefaultConfig())

	// Second fragment's "header" is really a data row that the grid parser
	// mistook for a header; a continuation marker identifies the fragment.
	input := `| Name | Qty | Price |
|---|---|---|
| Bolt | 10 | 0.20 |

| Screw (continued) | 5 | 0.30 |
|---|---|---|
| Nail | 50 | 0.02 |
`
	got := m.Merge(input)

	if !strings.Contains(got, "| Screw (continued) | 5 | 0.30 |") {
		t.Errorf("expected false header kept as data, got:\n%s", got)
	}
	if strings.Count(got, "|---|---|---|") != 1 {
		t.Errorf("expected one separator after merge, got:\n%s", got)
	}
}

func TestMerge_ColumnCountMismatchRejected(t *testing.T) {
	m := newMerger(t, DefaultConfig())

	input := `| A | B | C |
|---|---|---|
| 1 | 2 | 3 |

| A | B |
|---|---|
| 4 | 5 |
`
	if got := m.Merge(input); got != input {
		t.Errorf("expected mismatched tables untouched, got:\n%s", got)
	}
}

func TestMerge_ContentGapRejected(t *testing.T) {
	m := newMerger(t, Config{MaxGapLines: 1, MinColumnMatch: 0.8})

	input := `| A | B |
|---|---|
| 1 | 2 |

A paragraph of real prose.
Another real line.
A third line of content.

| A | B |
|---|---|
| 3 | 4 |
`
	if got := m.Merge(input); got != input {
		t.Errorf("expected tables separated by prose untouched, got:\n%s", got)
	}
}

func TestMerge_SimilarHeaders(t *testing.T) {
	m := newMerger(t, DefaultConfig())

	// Two of three header cells match case-insensitively; below the 0.8
	// default ratio, so no merge.
	input := `| Name | Qty | Price |
|---|---|---|
| Bolt | 10 | 0.20 |

| NAME | QTY | Total |
|---|---|---|
| Nut | 10 | 0.10 |
`
	if got := m.Merge(input); got != input {
		t.Errorf("expected 2/3 header match rejected at ratio 0.8, got:\n%s", got)
	}

	loose := newMerger(t, Config{MaxGapLines: 5, MinColumnMatch: 0.6})
	got := loose.Merge(input)
	if strings.Count(got, "|---|---|---|") != 1 {
		t.Errorf("expected merge at ratio 0.6, got:\n%s", got)
	}
}

func TestMerge_ChainOfThreeFragments(t *testing.T) {
	m := newMerger(t, DefaultConfig())

	input := `| A | B |
|---|---|
| 1 | 2 |

| A | B |
|---|---|
| 3 | 4 |

| A | B |
|---|---|
| 5 | 6 |
`
	got := m.Merge(input)

	// Left-to-right candidate scan pairs (0,1) and leaves 2 for the next
	// pass; a second run completes the chain.
	got = m.Merge(got)
	if strings.Count(got, "| A | B |") != 1 {
		t.Errorf("expected a single table after two passes, got:\n%s", got)
	}
	for _, row := range []string{"| 1 | 2 |", "| 3 | 4 |", "| 5 | 6 |"} {
		if !strings.Contains(got, row) {
			t.Errorf("expected row %q preserved, got:\n%s", row, got)
		}
	}
}

func TestMerge_Idempotent(t *testing.T) {
	m := newMerger(t, DefaultConfig())

	once := m.Merge(splitTable)
	twice := m.Merge(once)
	if once != twice {
		t.Errorf("merge is not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestNew_RejectsBadRatio(t *testing.T) {
	if _, err := New(Config{MinColumnMatch: 2}); err == nil {
		t.Error("expected error for ratio above 1")
	}
}

func TestStats(t *testing.T) {
	m := newMerger(t, DefaultConfig())
	st := m.Stats(splitTable)

	if st.TotalTables != 2 {
		t.Errorf("expected 2 tables, got %d", st.TotalTables)
	}
	if st.PotentialMerges != 1 {
		t.Errorf("expected 1 potential merge, got %d", st.PotentialMerges)
	}
	if st.ByColumnCount[3] != 2 {
		t.Errorf("expected 2 three-column tables, got %v", st.ByColumnCount)
	}
}
