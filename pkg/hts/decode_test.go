package hts

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleExport = `[
  {"htsno": "7208", "indent": "0", "description": "Flat-rolled products of iron", "general": "", "other": "", "footnotes": []},
  {"htsno": "7208.10.15", "indent": 1, "description": "Pickled", "general": "Free", "special": "", "other": "20%",
   "statisticalSuffix": "",
   "footnotes": [{"columns": ["general"], "value": "See 9903.80.01.", "type": "endnote"}]},
  {"htsno": "7208.10.15.00", "indent": "2", "statisticalSuffix": "00", "general": "", "other": ""},
  {"htsno": "9903.80.01", "indent": "x", "general": "The duty provided in the applicable subheading + 25%", "statisticalSuffix": true},
  {"htsno": "9903.88.15", "indent": -3, "general": "7.5%"}
]`

func TestDecode(t *testing.T) {
	items, stats, err := Decode(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if stats.Rows != 5 {
		t.Errorf("Rows = %d, want 5", stats.Rows)
	}
	if stats.NormalizedIndent != 2 {
		t.Errorf("NormalizedIndent = %d, want 2", stats.NormalizedIndent)
	}
	if stats.Chapter99Rows != 2 {
		t.Errorf("Chapter99Rows = %d, want 2", stats.Chapter99Rows)
	}

	wantDepths := []int{0, 1, 2, 0, 0}
	wantSuffix := []bool{false, false, true, true, false}
	for i, it := range items {
		if it.IndentDepth != wantDepths[i] {
			t.Errorf("items[%d].IndentDepth = %d, want %d", i, it.IndentDepth, wantDepths[i])
		}
		if it.HasStatisticalSuffix != wantSuffix[i] {
			t.Errorf("items[%d].HasStatisticalSuffix = %t, want %t", i, it.HasStatisticalSuffix, wantSuffix[i])
		}
	}

	wantNotes := []Footnote{{Columns: []Column{ColumnGeneral}, Text: "See 9903.80.01.", Type: "endnote"}}
	if diff := cmp.Diff(wantNotes, items[1].Footnotes); diff != "" {
		t.Errorf("footnotes mismatch (-want +got):\n%s", diff)
	}
	if items[1].OtherRateText != "20%" {
		t.Errorf("OtherRateText = %q, want %q", items[1].OtherRateText, "20%")
	}
}

func TestDecodeTrimsCodes(t *testing.T) {
	data := `[
  {"htsno": "  9903.88.15 ", "indent": "0"},
  {"htsno": "8501.10", "indent": "4000000000"}
]`
	items, stats, err := Decode(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if items[0].Code != "9903.88.15" {
		t.Errorf("Code = %q, want %q", items[0].Code, "9903.88.15")
	}
	if stats.Chapter99Rows != 1 {
		t.Errorf("Chapter99Rows = %d, want 1", stats.Chapter99Rows)
	}

	roots := BuildTree(items)
	if len(roots) != 2 {
		t.Errorf("BuildTree() = %d roots, want 2", len(roots))
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	if _, _, err := Decode(strings.NewReader(`{"htsno":`)); err == nil {
		t.Error("Decode() should fail on malformed JSON")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	items, _, err := Decode(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, items); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	restored, _, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() of encoded data error = %v", err)
	}

	// Encode writes empty footnote lists rather than null.
	for i := range items {
		if items[i].Footnotes == nil {
			items[i].Footnotes = []Footnote{}
		}
	}
	if diff := cmp.Diff(items, restored); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "hts.json")
		if err := os.WriteFile(path, []byte(sampleExport), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		items, err := LoadFile(path, nil)
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if len(items) != 5 {
			t.Errorf("LoadFile() = %d items, want 5", len(items))
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(dir, "nope.json"), nil); err == nil {
			t.Error("LoadFile() should fail for a missing file")
		}
	})

	t.Run("empty", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if _, err := LoadFile(path, nil); err == nil {
			t.Error("LoadFile() should fail for an empty file")
		}
	})
}
