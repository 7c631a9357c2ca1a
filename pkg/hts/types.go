// Package hts models rows of the Harmonized Tariff Schedule and rebuilds the
// schedule's indentation hierarchy from a flat export.
package hts

// Column identifies a rate column of the schedule.
type Column string

const (
	ColumnGeneral Column = "general"
	ColumnSpecial Column = "special"
	ColumnOther   Column = "other"
)

// Footnote is a note attached to a line item, scoped to one or more rate columns.
type Footnote struct {
	Columns []Column `json:"columns"`
	Text    string   `json:"value"`
	Type    string   `json:"type,omitempty"`
}

// AppliesTo reports whether the footnote is attached to the given column.
func (f Footnote) AppliesTo(column Column) bool {
	for _, c := range f.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// LineItem is one row of the tariff schedule.
type LineItem struct {
	// Code is the dotted heading/subheading number, e.g. "8501.10.40" or "9903.88.15".
	Code string

	// IndentDepth is the row's indentation level; 0 is top level.
	IndentDepth int

	Description string

	GeneralRateText string
	SpecialRateText string
	OtherRateText   string

	// HasStatisticalSuffix marks rows whose code carries a statistical suffix
	// segment. Such rows inherit Section 232 evidence from their code prefix.
	HasStatisticalSuffix bool

	Footnotes []Footnote
}

// RateText returns the rate text of the given column.
func (item LineItem) RateText(column Column) string {
	switch column {
	case ColumnGeneral:
		return item.GeneralRateText
	case ColumnSpecial:
		return item.SpecialRateText
	case ColumnOther:
		return item.OtherRateText
	default:
		return ""
	}
}

// TreeNode is a line item together with its indentation children.
type TreeNode struct {
	LineItem
	Children []*TreeNode
}
