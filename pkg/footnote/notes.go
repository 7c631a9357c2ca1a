package footnote

import "strings"

// Note is a literal legal phrase recognized in footnote text.
type Note string

const (
	// NoteSubchapterIII cites the national security provisions of the schedule.
	NoteSubchapterIII Note = "subchapter III, chapter 99"

	// Note16 cites U.S. note 16 to subchapter III (steel and aluminum).
	Note16 Note = "note 16"

	// Note19 cites U.S. note 19 to subchapter III (derivative products).
	Note19 Note = "note 19"
)

// NationalSecurityNotes are the phrases that flag a column reference as a
// national security duty.
var NationalSecurityNotes = []Note{Note16, NoteSubchapterIII}

// Section232Notes are the phrases that make a line subject to Section 232
// duties.
var Section232Notes = []Note{NoteSubchapterIII, Note16, Note19}

// ContainsAny reports whether text contains one of notes. Matching is
// case-sensitive, following the schedule's literal phrasing.
func ContainsAny(text string, notes []Note) bool {
	for _, note := range notes {
		if strings.Contains(text, string(note)) {
			return true
		}
	}
	return false
}
