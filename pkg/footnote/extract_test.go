package footnote

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coolbeans/dutyrate/pkg/hts"
)

func note(text string, columns ...hts.Column) hts.Footnote {
	return hts.Footnote{Columns: columns, Text: text}
}

func TestExtractChapter99References(t *testing.T) {
	footnotes := []hts.Footnote{
		note("See 9903.88.15 and 9903.88.03.", hts.ColumnGeneral),
		note("See 9903.88.15.", hts.ColumnGeneral, hts.ColumnOther),
		note("See 9903.90.09.", hts.ColumnOther),
		note("Statistical reporting number 8501.10.40.20", hts.ColumnGeneral),
	}

	tests := []struct {
		name   string
		column hts.Column
		want   []string
	}{
		{"general", hts.ColumnGeneral, []string{"9903.88.15", "9903.88.03", "9903.88.15"}},
		{"other", hts.ColumnOther, []string{"9903.88.15", "9903.90.09"}},
		{"special", hts.ColumnSpecial, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractChapter99References(footnotes, tt.column)
			if diff := cmp.Diff(tt.want, got.Codes); diff != "" {
				t.Errorf("Codes mismatch (-want +got):\n%s", diff)
			}
			if got.HasNationalSecurityNote {
				t.Error("HasNationalSecurityNote = true, want false")
			}
		})
	}
}

func TestExtractColumnIsolation(t *testing.T) {
	otherOnly := []hts.Footnote{note("See 9903.88.03; subchapter III, chapter 99", hts.ColumnOther)}
	general := ExtractChapter99References(otherOnly, hts.ColumnGeneral)
	if len(general.Codes) != 0 || general.HasNationalSecurityNote {
		t.Errorf("other-only footnote leaked into general: %+v", general)
	}

	generalOnly := []hts.Footnote{note("See 9903.80.01; note 16", hts.ColumnGeneral)}
	other := ExtractChapter99References(generalOnly, hts.ColumnOther)
	if len(other.Codes) != 0 || other.HasNationalSecurityNote {
		t.Errorf("general-only footnote leaked into other: %+v", other)
	}
}

func TestExtractNationalSecurityNote(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"note_16", "See headings 9903.80.01 and U.S. note 16 to subchapter III", true},
		{"subchapter_iii", "Subject to subchapter III, chapter 99", true},
		{"note_19_not_flagged", "See U.S. note 19", false},
		{"case_sensitive", "See Note 16", false},
		{"plain", "See 9903.88.15", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractChapter99References([]hts.Footnote{note(tt.text, hts.ColumnGeneral)}, hts.ColumnGeneral)
			if got.HasNationalSecurityNote != tt.want {
				t.Errorf("HasNationalSecurityNote = %t, want %t", got.HasNationalSecurityNote, tt.want)
			}
		})
	}
}

func TestExtractFlagIsSticky(t *testing.T) {
	footnotes := []hts.Footnote{
		note("note 16", hts.ColumnGeneral),
		note("See 9903.81.87.", hts.ColumnGeneral),
	}
	got := ExtractChapter99References(footnotes, hts.ColumnGeneral)
	if !got.HasNationalSecurityNote {
		t.Error("flag set by the first footnote was lost")
	}
	if diff := cmp.Diff([]string{"9903.81.87"}, got.Codes); diff != "" {
		t.Errorf("later footnotes not scanned (-want +got):\n%s", diff)
	}
}

func TestFindChapter99Codes(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"See 9903.88.15.", []string{"9903.88.15"}},
		{"9903.01.25 then 9903.01.33", []string{"9903.01.25", "9903.01.33"}},
		{"8501.10.40", nil},
		{"9903.8.15", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, FindChapter99Codes(tt.text)); diff != "" {
			t.Errorf("FindChapter99Codes(%q) mismatch (-want +got):\n%s", tt.text, diff)
		}
	}
}
