// Package rate turns duty-rate text from the tariff schedule into ad valorem
// percentages.
//
// Parsing never fails: empty, "Free" and unparseable text all yield 0, and no
// result is ever negative.
package rate

import (
	"regexp"
	"strconv"
	"strings"
)

const freeText = "Free"

var (
	numberPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
)

// Parser parses rate text using a phrase table for Chapter 99 phrasings.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	phrases PhraseTable
}

// NewParser creates a parser recognizing the phrasings in table.
func NewParser(table PhraseTable) *Parser {
	return &Parser{phrases: table}
}

// DefaultParser recognizes the built-in phrasings only.
var DefaultParser = NewParser(DefaultPhraseTable())

// Phrases returns the parser's phrase table.
func (p *Parser) Phrases() PhraseTable {
	return p.phrases
}

// BaseRate returns the first decimal number in text.
func (p *Parser) BaseRate(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == freeText {
		return 0
	}
	return parseNumber(numberPattern.FindString(trimmed))
}

// Chapter99Rate returns the additional duty expressed by Chapter 99 rate
// text. Recognized phrasings take precedence over the first "<n>%" token.
func (p *Parser) Chapter99Rate(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	if phrase, ok := p.phrases.Match(text); ok {
		return phrase.Rate
	}
	match := percentPattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	return parseNumber(match[1])
}

// CompoundRate returns the increment of an "applicable subheading + N%"
// phrasing, if text is one.
func (p *Parser) CompoundRate(text string) (float64, bool) {
	phrase, ok := p.phrases.MatchEffect(text, EffectAddToSubheading)
	if !ok {
		return 0, false
	}
	return phrase.Rate, true
}

// ParseBaseRate parses text with the default parser.
func ParseBaseRate(text string) float64 {
	return DefaultParser.BaseRate(text)
}

// ParseChapter99Rate parses text with the default parser.
func ParseChapter99Rate(text string) float64 {
	return DefaultParser.Chapter99Rate(text)
}

// FormatRate renders a rate for display: "Free" for 0, otherwise the
// shortest decimal form followed by "%".
func FormatRate(rate float64) string {
	if rate == 0 {
		return freeText
	}
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}

func parseNumber(token string) float64 {
	if token == "" {
		return 0
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
