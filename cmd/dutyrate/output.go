package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/coolbeans/dutyrate/pkg/duty"
	"github.com/coolbeans/dutyrate/pkg/footnote"
	"github.com/coolbeans/dutyrate/pkg/hts"
	"github.com/coolbeans/dutyrate/pkg/rate"
	"github.com/coolbeans/dutyrate/pkg/section232"
)

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to serialize JSON: %w", err)
	}
	return nil
}

func unknownFormat(format string) error {
	return fmt.Errorf("unknown format: %s (use table or json)", format)
}

func renderTotals(w io.Writer, format string, results []duty.LineTotals) error {
	switch format {
	case "json":
		return writeJSON(w, results)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tGENERAL\tOTHER\tADDITIONAL")
		for _, r := range results {
			additional := "-"
			if r.Totals.HasAdditionalDuty {
				additional = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				r.Code,
				rate.FormatRate(r.Totals.General),
				rate.FormatRate(r.Totals.Other),
				additional)
		}
		return tw.Flush()
	default:
		return unknownFormat(format)
	}
}

type treeJSON struct {
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Indent      int         `json:"indent"`
	Children    []*treeJSON `json:"children,omitempty"`
}

func toTreeJSON(nodes []*hts.TreeNode, level, maxDepth int) []*treeJSON {
	if maxDepth >= 0 && level > maxDepth {
		return nil
	}
	out := make([]*treeJSON, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, &treeJSON{
			Code:        node.Code,
			Description: node.Description,
			Indent:      node.IndentDepth,
			Children:    toTreeJSON(node.Children, level+1, maxDepth),
		})
	}
	return out
}

func renderTree(w io.Writer, format string, roots []*hts.TreeNode, maxDepth int) error {
	switch format {
	case "json":
		return writeJSON(w, toTreeJSON(roots, 0, maxDepth))
	case "table":
		hts.Walk(roots, func(node *hts.TreeNode, level int) {
			if maxDepth >= 0 && level > maxDepth {
				return
			}
			code := node.Code
			if code == "" {
				code = "-"
			}
			fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat("  ", level), code, node.Description)
		})
		return nil
	default:
		return unknownFormat(format)
	}
}

func renderSection232(w io.Writer, format string, code string, result section232.Result) error {
	switch format {
	case "json":
		return writeJSON(w, struct {
			Code string `json:"code"`
			section232.Result
		}{code, result})
	case "table":
		fmt.Fprintf(w, "Section 232: %s\n", code)
		fmt.Fprintln(w, strings.Repeat("=", 40))
		fmt.Fprintf(w, "Applicable: %t\n", result.Applicable)
		fmt.Fprintf(w, "Path:       %s\n", strings.Join(result.Path, " -> "))
		if result.EvidenceCode != "" {
			fmt.Fprintf(w, "Evidence:   %s\n", result.EvidenceCode)
		}
		return nil
	default:
		return unknownFormat(format)
	}
}

type resolvedRef struct {
	Code     string `json:"code"`
	Found    bool   `json:"found"`
	RateText string `json:"rate_text,omitempty"`
}

func renderRefs(w io.Writer, format string, code, column string, refs footnote.References, index *hts.Index) error {
	resolved := make([]resolvedRef, len(refs.Codes))
	for i, ref := range refs.Codes {
		resolved[i] = resolvedRef{Code: ref}
		if item, ok := index.Lookup(ref); ok {
			resolved[i].Found = true
			resolved[i].RateText = item.RateText(hts.Column(column))
		}
	}

	switch format {
	case "json":
		return writeJSON(w, struct {
			Code                    string        `json:"code"`
			Column                  string        `json:"column"`
			References              []resolvedRef `json:"references"`
			HasNationalSecurityNote bool          `json:"has_national_security_note"`
		}{code, column, resolved, refs.HasNationalSecurityNote})
	case "table":
		fmt.Fprintf(w, "Chapter 99 references: %s (%s)\n", code, column)
		fmt.Fprintln(w, strings.Repeat("=", 40))
		if len(resolved) == 0 {
			fmt.Fprintln(w, "No references")
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, ref := range resolved {
			rateText := ref.RateText
			if !ref.Found {
				rateText = "(not in schedule)"
			}
			fmt.Fprintf(tw, "  %s\t%s\n", ref.Code, rateText)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "National security note: %t\n", refs.HasNationalSecurityNote)
		return nil
	default:
		return unknownFormat(format)
	}
}

func renderPhrases(w io.Writer, format string, table rate.PhraseTable) error {
	switch format {
	case "json":
		return writeJSON(w, table.Phrases())
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tMATCH\tEFFECT\tRATE\tTEXT")
		for _, p := range table.Phrases() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%q\n", p.Source, p.Match, p.Effect, rate.FormatRate(p.Rate), p.Text)
		}
		return tw.Flush()
	default:
		return unknownFormat(format)
	}
}
