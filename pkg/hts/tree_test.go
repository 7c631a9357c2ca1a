package hts

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func item(code string, depth int) LineItem {
	return LineItem{Code: code, IndentDepth: depth, Description: "desc " + code}
}

func codesOf(nodes []*TreeNode) []string {
	codes := make([]string, len(nodes))
	for i, n := range nodes {
		codes[i] = n.Code
	}
	return codes
}

func TestBuildTree(t *testing.T) {
	items := []LineItem{
		item("8501", 0),
		item("8501.10", 1),
		item("8501.10.20", 2),
		item("8501.10.40", 2),
		item("8501.20", 1),
		item("8502", 0),
	}

	roots := BuildTree(items)

	if diff := cmp.Diff([]string{"8501", "8502"}, codesOf(roots)); diff != "" {
		t.Fatalf("roots mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"8501.10", "8501.20"}, codesOf(roots[0].Children)); diff != "" {
		t.Errorf("8501 children mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"8501.10.20", "8501.10.40"}, codesOf(roots[0].Children[0].Children)); diff != "" {
		t.Errorf("8501.10 children mismatch (-want +got):\n%s", diff)
	}
	if len(roots[1].Children) != 0 {
		t.Errorf("8502 children = %d, want 0", len(roots[1].Children))
	}
}

func TestBuildTreeMalformedDepth(t *testing.T) {
	t.Run("orphan_becomes_root", func(t *testing.T) {
		roots := BuildTree([]LineItem{item("A", 0), item("B", 2)})
		if diff := cmp.Diff([]string{"A", "B"}, codesOf(roots)); diff != "" {
			t.Errorf("roots mismatch (-want +got):\n%s", diff)
		}
		if len(roots[0].Children) != 0 {
			t.Errorf("A should not receive a synthesized child, got %d", len(roots[0].Children))
		}
	})

	t.Run("first_item_deep", func(t *testing.T) {
		roots := BuildTree([]LineItem{item("A", 3), item("B", 4)})
		if diff := cmp.Diff([]string{"A"}, codesOf(roots)); diff != "" {
			t.Errorf("roots mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"B"}, codesOf(roots[0].Children)); diff != "" {
			t.Errorf("B should attach under A at depth 3 (-want +got):\n%s", diff)
		}
	})

	t.Run("negative_depth_is_root", func(t *testing.T) {
		roots := BuildTree([]LineItem{item("A", -1), item("B", 1)})
		if diff := cmp.Diff([]string{"A"}, codesOf(roots)); diff != "" {
			t.Errorf("roots mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"B"}, codesOf(roots[0].Children)); diff != "" {
			t.Errorf("children mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("huge_depth_becomes_root", func(t *testing.T) {
		roots := BuildTree([]LineItem{item("8501", 0), item("8501.10", 1<<40), item("8502", 0)})
		if diff := cmp.Diff([]string{"8501", "8501.10", "8502"}, codesOf(roots)); diff != "" {
			t.Errorf("roots mismatch (-want +got):\n%s", diff)
		}
		if len(roots[0].Children) != 0 {
			t.Errorf("8501 children = %d, want 0", len(roots[0].Children))
		}
	})

	t.Run("stale_entries_are_reused", func(t *testing.T) {
		roots := BuildTree([]LineItem{
			item("A", 0), item("A1", 1), item("A1a", 2),
			item("B", 0), item("X", 2),
		})
		if diff := cmp.Diff([]string{"A", "B"}, codesOf(roots)); diff != "" {
			t.Fatalf("roots mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"A1a", "X"}, codesOf(roots[0].Children[0].Children)); diff != "" {
			t.Errorf("X should attach to the last depth-1 node (-want +got):\n%s", diff)
		}
	})
}

func TestBuildTreeEmpty(t *testing.T) {
	if roots := BuildTree(nil); len(roots) != 0 {
		t.Errorf("BuildTree(nil) = %d roots, want 0", len(roots))
	}
}

func TestFlattenTreeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
	}{
		{
			name: "schedule",
			items: []LineItem{
				item("7208", 0),
				item("7208.10", 1),
				item("7208.10.15", 2),
				{Code: "7208.10.15.00", IndentDepth: 3, HasStatisticalSuffix: true,
					GeneralRateText: "Free", OtherRateText: "20%",
					Footnotes: []Footnote{{Columns: []Column{ColumnGeneral}, Text: "See 9903.80.01."}}},
				item("7208.10.30", 2),
				item("7208.25", 1),
				item("7209", 0),
			},
		},
		{
			name:  "flat",
			items: []LineItem{item("A", 0), item("B", 0), item("C", 0)},
		},
		{
			name:  "deep_chain",
			items: []LineItem{item("A", 0), item("B", 1), item("C", 2), item("D", 3), item("E", 1)},
		},
		{
			name:  "leading_orphan",
			items: []LineItem{item("A", 1), item("B", 0), item("C", 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlattenTree(BuildTree(tt.items))
			if diff := cmp.Diff(tt.items, got); diff != "" {
				t.Errorf("FlattenTree(BuildTree()) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWalkLevels(t *testing.T) {
	roots := BuildTree([]LineItem{item("A", 0), item("B", 1), item("C", 2), item("D", 0)})

	var visited []string
	var levels []int
	Walk(roots, func(node *TreeNode, level int) {
		visited = append(visited, node.Code)
		levels = append(levels, level)
	})

	if diff := cmp.Diff([]string{"A", "B", "C", "D"}, visited); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 0}, levels); diff != "" {
		t.Errorf("levels mismatch (-want +got):\n%s", diff)
	}
	if got := CountNodes(roots); got != 4 {
		t.Errorf("CountNodes() = %d, want 4", got)
	}
}
