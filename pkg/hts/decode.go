package hts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// exportRow is one object of the HTS REST export.
type exportRow struct {
	HTSNo             string     `json:"htsno"`
	Indent            flexIndent `json:"indent"`
	Description       string     `json:"description"`
	General           string     `json:"general"`
	Special           string     `json:"special"`
	Other             string     `json:"other"`
	StatisticalSuffix flexBool   `json:"statisticalSuffix"`
	Footnotes         []Footnote `json:"footnotes"`
}

// flexIndent accepts a number or a numeric string. Anything else, and any
// negative value, decodes to 0 with valid set to false.
type flexIndent struct {
	value int
	valid bool
}

func (f *flexIndent) UnmarshalJSON(data []byte) error {
	f.value, f.valid = 0, false
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fl, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || fl != float64(int(fl)) {
			return nil
		}
		n = int(fl)
	}
	if n < 0 {
		return nil
	}
	f.value, f.valid = n, true
	return nil
}

// flexBool accepts a bool, a string (non-blank is true) or a number (non-zero is true).
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	*f = false
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case bool:
		*f = flexBool(t)
	case string:
		*f = strings.TrimSpace(t) != ""
	case float64:
		*f = t != 0
	}
	return nil
}

// DecodeStats reports normalizations applied while decoding.
type DecodeStats struct {
	Rows             int
	NormalizedIndent int
	Chapter99Rows    int
}

// Decode reads a JSON array of HTS export rows.
func Decode(r io.Reader) ([]LineItem, *DecodeStats, error) {
	var rows []exportRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, nil, fmt.Errorf("failed to decode schedule: %w", err)
	}

	stats := &DecodeStats{Rows: len(rows)}
	items := make([]LineItem, len(rows))
	for i, row := range rows {
		if !row.Indent.valid {
			stats.NormalizedIndent++
		}
		code := strings.TrimSpace(row.HTSNo)
		if IsChapter99(code) {
			stats.Chapter99Rows++
		}
		items[i] = LineItem{
			Code:                 code,
			IndentDepth:          row.Indent.value,
			Description:          row.Description,
			GeneralRateText:      row.General,
			SpecialRateText:      row.Special,
			OtherRateText:        row.Other,
			HasStatisticalSuffix: bool(row.StatisticalSuffix),
			Footnotes:            row.Footnotes,
		}
	}
	return items, stats, nil
}

// LoadFile reads and decodes a schedule export from disk.
func LoadFile(path string, logger *zap.Logger) ([]LineItem, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("schedule %s is empty", path)
	}

	items, stats, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug("Loaded schedule",
		zap.String("path", path),
		zap.Int("rows", stats.Rows),
		zap.Int("chapter99_rows", stats.Chapter99Rows))
	if stats.NormalizedIndent > 0 {
		logger.Warn("Rows with missing or invalid indent treated as top level",
			zap.String("path", path),
			zap.Int("rows", stats.NormalizedIndent))
	}
	return items, nil
}

// Encode writes items in the HTS export shape.
func Encode(w io.Writer, items []LineItem) error {
	rows := make([]encodedRow, len(items))
	for i, item := range items {
		footnotes := item.Footnotes
		if footnotes == nil {
			footnotes = []Footnote{}
		}
		rows[i] = encodedRow{
			HTSNo:             item.Code,
			Indent:            strconv.Itoa(item.IndentDepth),
			Description:       item.Description,
			General:           item.GeneralRateText,
			Special:           item.SpecialRateText,
			Other:             item.OtherRateText,
			StatisticalSuffix: item.HasStatisticalSuffix,
			Footnotes:         footnotes,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}
	return nil
}

type encodedRow struct {
	HTSNo             string     `json:"htsno"`
	Indent            string     `json:"indent"`
	Description       string     `json:"description"`
	General           string     `json:"general"`
	Special           string     `json:"special"`
	Other             string     `json:"other"`
	StatisticalSuffix bool       `json:"statisticalSuffix"`
	Footnotes         []Footnote `json:"footnotes"`
}
