// Package phrasebook loads additional Chapter 99 rate phrasings from YAML
// files so newly published wording can be recognized without a code change.
package phrasebook

import (
	"fmt"
	"strings"

	"github.com/coolbeans/dutyrate/pkg/rate"
)

// Book is one YAML phrasebook file.
type Book struct {
	Name        string        `yaml:"name" json:"name"`
	Version     string        `yaml:"version" json:"version"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Phrases     []rate.Phrase `yaml:"phrases" json:"phrases"`

	// path is the file the book was loaded from, if any.
	path string
}

// Path returns the file the book was loaded from.
func (b *Book) Path() string {
	return b.path
}

// normalize fills defaults: phrases match by substring and carry a fixed
// rate unless stated otherwise.
func (b *Book) normalize() {
	b.Name = strings.TrimSpace(b.Name)
	for i := range b.Phrases {
		p := &b.Phrases[i]
		if p.Match == "" {
			p.Match = rate.MatchContains
		}
		if p.Effect == "" {
			p.Effect = rate.EffectFixedRate
		}
		p.Source = b.Name
	}
}

// Validate checks the book and each of its phrases.
func (b *Book) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("name is required")
	}
	if b.Version == "" {
		return fmt.Errorf("book %q: version is required", b.Name)
	}
	if len(b.Phrases) == 0 {
		return fmt.Errorf("book %q: at least one phrase is required", b.Name)
	}
	for i, p := range b.Phrases {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("book %q phrase %d: %w", b.Name, i, err)
		}
	}
	return nil
}
