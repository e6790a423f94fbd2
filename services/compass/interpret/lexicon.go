// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package interpret

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var lexiconYAML []byte

// LexiconEntry maps one phrase, emoji or sentiment token onto a
// fraction of the target scale.
type LexiconEntry struct {
	Match    string  `yaml:"match"`
	Fraction float64 `yaml:"fraction"`
}

// LexiconCategory groups entries sharing a fixed confidence level.
type LexiconCategory struct {
	Name       string         `yaml:"name"`
	Confidence float64        `yaml:"confidence"`
	Entries    []LexiconEntry `yaml:"entries"`
}

type intensifierConfig struct {
	Boost           float64  `yaml:"boost"`
	ConfidenceBonus float64  `yaml:"confidence_bonus"`
	Tokens          []string `yaml:"tokens"`
}

// Lexicon is the rule set mapping qualitative language onto scale
// fractions. Immutable after load; safe for concurrent use.
type Lexicon struct {
	categories   []LexiconCategory
	intensifiers intensifierConfig
}

// LexiconMatch is the outcome of a lexicon lookup.
type LexiconMatch struct {
	Fraction    float64
	Confidence  float64
	Category    string
	Matched     string
	Intensified bool
}

// LoadLexicon parses a lexicon document.
func LoadLexicon(raw []byte) (*Lexicon, error) {
	var doc struct {
		Categories   []LexiconCategory `yaml:"categories"`
		Intensifiers intensifierConfig `yaml:"intensifiers"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing lexicon: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("lexicon has no categories")
	}
	// Longest-match-first within each category so "not important" never
	// shadows "not that important".
	for _, cat := range doc.Categories {
		sort.SliceStable(cat.Entries, func(i, j int) bool {
			return len(cat.Entries[i].Match) > len(cat.Entries[j].Match)
		})
	}
	return &Lexicon{categories: doc.Categories, intensifiers: doc.Intensifiers}, nil
}

// StandardLexicon returns the built-in lexicon.
func StandardLexicon() *Lexicon { return standardLexicon }

// Match scans text for the first lexicon hit, category order being
// authoritative (phrases beat emoji beat bare sentiment). Intensifiers
// found anywhere in the text push the fraction toward the nearer
// extreme and raise confidence slightly.
func (l *Lexicon) Match(text string) (LexiconMatch, bool) {
	lowered := strings.ToLower(text)
	for _, cat := range l.categories {
		for _, entry := range cat.Entries {
			if !strings.Contains(lowered, entry.Match) {
				continue
			}
			m := LexiconMatch{
				Fraction:   entry.Fraction,
				Confidence: cat.Confidence,
				Category:   cat.Name,
				Matched:    entry.Match,
			}
			if l.hasIntensifier(lowered) {
				m.Fraction = intensify(m.Fraction, l.intensifiers.Boost)
				m.Confidence = clamp01(m.Confidence + l.intensifiers.ConfidenceBonus)
				m.Intensified = true
			}
			return m, true
		}
	}
	return LexiconMatch{}, false
}

func (l *Lexicon) hasIntensifier(lowered string) bool {
	for _, token := range l.intensifiers.Tokens {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}

// intensify moves a fraction toward whichever extreme it already
// leans. A dead-center fraction stays put.
func intensify(fraction, boost float64) float64 {
	switch {
	case fraction > 0.5:
		return clamp01(fraction + boost)
	case fraction < 0.5:
		return clamp01(fraction - boost)
	default:
		return fraction
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var standardLexicon *Lexicon

func init() {
	var err error
	standardLexicon, err = LoadLexicon(lexiconYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon is invalid: %v", err))
	}
}
