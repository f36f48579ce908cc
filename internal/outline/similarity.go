package outline

import "github.com/sergi/go-diff/diffmatchpatch"

// Ratio computes a sequence-similarity ratio in [0,1] between two strings:
// twice the number of characters shared by a minimal diff, divided by the
// total length of both inputs. Equal strings score 1, disjoint ones 0.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	common := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			common += len(d.Text)
		}
	}
	return 2 * float64(common) / float64(total)
}
