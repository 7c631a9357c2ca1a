// Package section232 decides whether Section 232 national security duties
// apply to a tariff line.
//
// Lines carrying a statistical suffix inherit the answer from their code
// prefix ("8501.10.40.10" from "8501.10.40"). Indentation parentage plays no
// part here.
package section232

import (
	"github.com/coolbeans/dutyrate/pkg/footnote"
	"github.com/coolbeans/dutyrate/pkg/hts"
)

// Result is the outcome of resolving one line.
type Result struct {
	Applicable bool `json:"applicable"`

	// Path lists the codes visited, starting at the resolved line.
	Path []string `json:"path"`

	// EvidenceCode is the code whose footnotes cite a Section 232 note.
	// Empty when not applicable.
	EvidenceCode string `json:"evidence_code,omitempty"`
}

// IsApplicable reports whether Section 232 duties apply to item.
func IsApplicable(item hts.LineItem, index *hts.Index) bool {
	return Trace(item, index).Applicable
}

// IsSection232Applicable reports whether Section 232 duties apply to item,
// resolving code prefixes against allItems. Callers checking many lines
// should build one hts.Index and use IsApplicable.
func IsSection232Applicable(item hts.LineItem, allItems []hts.LineItem) bool {
	return IsApplicable(item, hts.NewIndex(allItems))
}

// Trace walks item's code-prefix ancestors until one cites a Section 232 note.
// Every step removes one code segment, so the walk ends within the code depth.
func Trace(item hts.LineItem, index *hts.Index) Result {
	current := &item
	var result Result
	for {
		result.Path = append(result.Path, current.Code)
		if hasSection232Note(current.Footnotes) {
			result.Applicable = true
			result.EvidenceCode = current.Code
			return result
		}
		if !current.HasStatisticalSuffix {
			return result
		}

		parentCode := hts.ParentCode(current.Code)
		if parentCode == "" {
			return result
		}
		parent, ok := index.Lookup(parentCode)
		if !ok {
			return result
		}
		current = parent
	}
}

func hasSection232Note(footnotes []hts.Footnote) bool {
	for _, note := range footnotes {
		if footnote.ContainsAny(note.Text, footnote.Section232Notes) {
			return true
		}
	}
	return false
}
