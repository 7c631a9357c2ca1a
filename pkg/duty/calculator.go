// Package duty computes the total ad valorem duty of a tariff line by
// combining its base rates with the Chapter 99 surtaxes its footnotes
// reference.
package duty

import (
	"encoding/json"

	"github.com/coolbeans/dutyrate/pkg/footnote"
	"github.com/coolbeans/dutyrate/pkg/hts"
	"github.com/coolbeans/dutyrate/pkg/rate"
)

// National security anchors. When a line's general column cites a national
// security note, the presence of these headings in the schedule switches on
// the fixed surtaxes below.
const (
	NationalSecurityGeneralAnchor = "9903.91.01"
	NationalSecurityOtherAnchor   = "9903.90.09"

	NationalSecurityGeneralRate = 25.0
	NationalSecurityOtherRate   = 70.0
)

// Totals is the computed duty of one line, in percent.
type Totals struct {
	General float64
	Other   float64

	// AdditionalGeneral and AdditionalOther are the Chapter 99 contributions
	// included in General and Other.
	AdditionalGeneral float64
	AdditionalOther   float64

	HasAdditionalDuty bool

	// Resolved is false when there was no schedule to resolve references
	// against; all other fields are then zero.
	Resolved bool
}

type totalsJSON struct {
	General           float64 `json:"general_total"`
	Other             float64 `json:"other_total"`
	AdditionalGeneral float64 `json:"additional_general"`
	AdditionalOther   float64 `json:"additional_other"`
	HasAdditionalDuty *bool   `json:"has_additional_duty,omitempty"`
}

// MarshalJSON omits has_additional_duty for unresolved totals so consumers
// can tell "no data" apart from "no additional duty".
func (t Totals) MarshalJSON() ([]byte, error) {
	out := totalsJSON{
		General:           t.General,
		Other:             t.Other,
		AdditionalGeneral: t.AdditionalGeneral,
		AdditionalOther:   t.AdditionalOther,
	}
	if t.Resolved {
		hasAdditional := t.HasAdditionalDuty
		out.HasAdditionalDuty = &hasAdditional
	}
	return json.Marshal(out)
}

// Calculator computes line totals. It is immutable and safe for concurrent use.
type Calculator struct {
	parser *rate.Parser
}

// NewCalculator creates a calculator using parser for rate text. A nil
// parser means rate.DefaultParser.
func NewCalculator(parser *rate.Parser) *Calculator {
	if parser == nil {
		parser = rate.DefaultParser
	}
	return &Calculator{parser: parser}
}

// Compute returns the totals of item, resolving Chapter 99 references
// against index. A nil index yields unresolved zero totals.
func (c *Calculator) Compute(item hts.LineItem, index *hts.Index) Totals {
	if index == nil {
		return Totals{}
	}

	baseGeneral := c.parser.BaseRate(item.GeneralRateText)
	baseOther := c.parser.BaseRate(item.OtherRateText)

	generalRefs := footnote.ExtractChapter99References(item.Footnotes, hts.ColumnGeneral)
	// The other column's national security flag is not consulted: the
	// 9903.90.09 surtax below is keyed off the general column's note only.
	otherRefs := footnote.ExtractChapter99References(item.Footnotes, hts.ColumnOther)

	// General column surtaxes are alternatives; the highest one applies.
	additionalGeneral := 0.0
	for _, code := range generalRefs.Codes {
		ref, ok := index.Lookup(code)
		if !ok || ref.GeneralRateText == "" {
			continue
		}
		candidate, compound := c.parser.CompoundRate(ref.GeneralRateText)
		if !compound {
			candidate = c.parser.Chapter99Rate(ref.GeneralRateText)
		}
		if candidate > additionalGeneral {
			additionalGeneral = candidate
		}
	}

	// Other column surtaxes stack.
	additionalOther := 0.0
	for _, code := range otherRefs.Codes {
		ref, ok := index.Lookup(code)
		if !ok || ref.OtherRateText == "" {
			continue
		}
		additionalOther += c.parser.Chapter99Rate(ref.OtherRateText)
	}

	totalGeneral := baseGeneral + additionalGeneral
	totalOther := baseOther + additionalOther

	if generalRefs.HasNationalSecurityNote {
		if index.Contains(NationalSecurityGeneralAnchor) {
			totalGeneral = NationalSecurityGeneralRate + additionalGeneral
		}
		if index.Contains(NationalSecurityOtherAnchor) {
			totalOther = baseOther + NationalSecurityOtherRate + additionalOther
		}
	}

	return Totals{
		General:           totalGeneral,
		Other:             totalOther,
		AdditionalGeneral: additionalGeneral,
		AdditionalOther:   additionalOther,
		HasAdditionalDuty: generalRefs.HasNationalSecurityNote || additionalGeneral > 0 || additionalOther > 0,
		Resolved:          true,
	}
}

// LineTotals pairs a line's code with its totals.
type LineTotals struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Totals      Totals `json:"totals"`
}

// ComputeAll computes totals for every item against one shared index.
func (c *Calculator) ComputeAll(items []hts.LineItem) []LineTotals {
	index := hts.NewIndex(items)
	results := make([]LineTotals, len(items))
	for i, item := range items {
		results[i] = LineTotals{
			Code:        item.Code,
			Description: item.Description,
			Totals:      c.Compute(item, index),
		}
	}
	return results
}

// ComputeTotalRates computes item's totals against allItems with the
// default parser. A nil allItems yields unresolved zero totals. Callers
// computing many lines should build one hts.Index and use Calculator.Compute.
func ComputeTotalRates(item hts.LineItem, allItems []hts.LineItem) Totals {
	if allItems == nil {
		return Totals{}
	}
	return NewCalculator(nil).Compute(item, hts.NewIndex(allItems))
}
