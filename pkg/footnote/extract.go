// Package footnote extracts Chapter 99 cross-references and legal notes from
// the footnotes of tariff line items.
package footnote

import (
	"regexp"

	"github.com/coolbeans/dutyrate/pkg/hts"
)

// chapter99Pattern matches a Chapter 99 heading code, e.g. "9903.88.15".
var chapter99Pattern = regexp.MustCompile(`99\d{2}\.\d{2}\.\d{2}`)

// References holds the Chapter 99 codes referenced from one rate column.
type References struct {
	// Codes in order of appearance, duplicates preserved.
	Codes []string `json:"codes"`

	// HasNationalSecurityNote is set when any footnote on the column cites a
	// national security note.
	HasNationalSecurityNote bool `json:"has_national_security_note"`
}

// ExtractChapter99References scans the footnotes attached to column and
// collects every Chapter 99 code they mention.
func ExtractChapter99References(footnotes []hts.Footnote, column hts.Column) References {
	var refs References
	for _, note := range footnotes {
		if !note.AppliesTo(column) {
			continue
		}
		refs.Codes = append(refs.Codes, FindChapter99Codes(note.Text)...)
		if ContainsAny(note.Text, NationalSecurityNotes) {
			refs.HasNationalSecurityNote = true
		}
	}
	return refs
}

// FindChapter99Codes returns every Chapter 99 code in text, in order.
func FindChapter99Codes(text string) []string {
	return chapter99Pattern.FindAllString(text, -1)
}
