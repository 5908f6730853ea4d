// Package keywords finds fixed phrases inside chat messages with an Aho-Corasick automaton.
// Matching is a case-insensitive substring search over NFC-normalised text.
package keywords

import (
	"fmt"
	"sort"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"golang.org/x/text/unicode/norm"
)

// Matcher maps every phrase to the labels it was registered under.
type Matcher struct {
	machine *goahocorasick.Machine
	labels  map[string][]string
}

// NewMatcher builds one automaton over all phrases of all groups.
// The group key is the label reported when one of its phrases occurs.
func NewMatcher(groups map[string][]string) (*Matcher, error) {
	labels := make(map[string][]string)
	for label, phrases := range groups {
		for _, phrase := range phrases {
			key := string(normalize(phrase))
			if key == "" {
				continue
			}
			labels[key] = append(labels[key], label)
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("keywords: no phrase to match")
	}

	// The double array trie expects sorted, unique keys
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	patterns := make([][]rune, len(keys))
	for i, key := range keys {
		patterns[i] = []rune(key)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	return &Matcher{machine: m, labels: labels}, nil
}

// Labels returns the sorted, distinct labels whose phrases occur in text.
func (m *Matcher) Labels(text string) []string {
	content := normalize(text)
	if len(content) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	for _, term := range m.machine.MultiPatternSearch(content, false) {
		for _, label := range m.labels[string(term.Word)] {
			seen[label] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	found := make([]string, 0, len(seen))
	for label := range seen {
		found = append(found, label)
	}
	sort.Strings(found)
	return found
}

// Contains reports whether any phrase occurs in text.
func (m *Matcher) Contains(text string) bool {
	content := normalize(text)
	if len(content) == 0 {
		return false
	}
	return len(m.machine.MultiPatternSearch(content, true)) > 0
}

// normalize composes Vietnamese diacritics so that decomposed input still matches, then lowercases.
func normalize(s string) []rune {
	runes := []rune(norm.NFC.String(s))
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}
