package rate

import (
	"fmt"
	"strings"
)

// MatchKind says how a phrase is compared against rate text.
type MatchKind string

const (
	// MatchExact requires the trimmed rate text to equal the phrase.
	MatchExact MatchKind = "exact"

	// MatchContains requires the phrase to appear anywhere in the rate text.
	MatchContains MatchKind = "contains"
)

// Effect is what a recognized Chapter 99 phrasing means for the duty.
type Effect string

const (
	// EffectFixedRate is a standalone ad valorem rate.
	EffectFixedRate Effect = "fixed"

	// EffectAddToSubheading is an increment on top of the rate of the
	// subheading the goods are classified under ("applicable subheading + 25%").
	EffectAddToSubheading Effect = "add_to_subheading"
)

// Phrase maps one literal Chapter 99 rate phrasing to its effect.
type Phrase struct {
	Text   string    `yaml:"text" json:"text"`
	Match  MatchKind `yaml:"match" json:"match"`
	Effect Effect    `yaml:"effect" json:"effect"`
	Rate   float64   `yaml:"rate" json:"rate"`
	Source string    `yaml:"-" json:"source,omitempty"`
}

// Matches reports whether text is this phrasing.
func (p Phrase) Matches(text string) bool {
	switch p.Match {
	case MatchExact:
		return strings.TrimSpace(text) == p.Text
	case MatchContains:
		return p.Text != "" && strings.Contains(text, p.Text)
	default:
		return false
	}
}

// Validate checks that the phrase is usable.
func (p Phrase) Validate() error {
	if strings.TrimSpace(p.Text) == "" {
		return fmt.Errorf("phrase text is required")
	}
	switch p.Match {
	case MatchExact, MatchContains:
	default:
		return fmt.Errorf("phrase %q: unknown match kind %q", p.Text, p.Match)
	}
	switch p.Effect {
	case EffectFixedRate, EffectAddToSubheading:
	default:
		return fmt.Errorf("phrase %q: unknown effect %q", p.Text, p.Effect)
	}
	if p.Rate < 0 {
		return fmt.Errorf("phrase %q: rate must not be negative", p.Text)
	}
	return nil
}

const (
	// CompoundPhrase is the short form of the "applicable subheading + 25%" phrasing.
	CompoundPhrase = "applicable subheading + 25%"

	// CompoundPhraseLong is the long form of the same phrasing.
	CompoundPhraseLong = "The duty provided in the applicable subheading + 25%"
)

var defaultPhrases = []Phrase{
	{Text: "70%", Match: MatchExact, Effect: EffectFixedRate, Rate: 70, Source: "builtin"},
	{Text: CompoundPhraseLong, Match: MatchContains, Effect: EffectAddToSubheading, Rate: 25, Source: "builtin"},
	{Text: CompoundPhrase, Match: MatchContains, Effect: EffectAddToSubheading, Rate: 25, Source: "builtin"},
}

// PhraseTable is an ordered, closed set of recognized Chapter 99 phrasings.
// The first matching phrase wins. The zero value recognizes nothing.
type PhraseTable struct {
	phrases []Phrase
}

// DefaultPhraseTable returns the phrasings found in the published schedule.
func DefaultPhraseTable() PhraseTable {
	return NewPhraseTable(defaultPhrases...)
}

// NewPhraseTable builds a table from phrases in priority order.
func NewPhraseTable(phrases ...Phrase) PhraseTable {
	copied := make([]Phrase, len(phrases))
	copy(copied, phrases)
	return PhraseTable{phrases: copied}
}

// With returns a new table with phrases appended after the existing ones.
func (t PhraseTable) With(phrases ...Phrase) PhraseTable {
	combined := make([]Phrase, 0, len(t.phrases)+len(phrases))
	combined = append(combined, t.phrases...)
	combined = append(combined, phrases...)
	return PhraseTable{phrases: combined}
}

// Match returns the first phrase recognizing text.
func (t PhraseTable) Match(text string) (Phrase, bool) {
	for _, p := range t.phrases {
		if p.Matches(text) {
			return p, true
		}
	}
	return Phrase{}, false
}

// MatchEffect returns the first phrase with the given effect that recognizes text.
func (t PhraseTable) MatchEffect(text string, effect Effect) (Phrase, bool) {
	for _, p := range t.phrases {
		if p.Effect == effect && p.Matches(text) {
			return p, true
		}
	}
	return Phrase{}, false
}

// Phrases returns a copy of the table's phrases.
func (t PhraseTable) Phrases() []Phrase {
	copied := make([]Phrase, len(t.phrases))
	copy(copied, t.phrases)
	return copied
}

// Len returns the number of phrases.
func (t PhraseTable) Len() int {
	return len(t.phrases)
}
