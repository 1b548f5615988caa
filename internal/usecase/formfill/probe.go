package formfill

import (
	"regexp"
	"sort"
	"strings"
)

// Probe is the typed capability surface over a page observation. The
// decision loop depends only on these questions, never on the raw
// phrasing of the observation text, so the keyword implementation below
// can be swapped for a structured DOM query without touching the loop.
type Probe interface {
	AddToBooking(obs []string) (line string, ok bool)
	BookService(obs []string) (line string, ok bool)
	ServiceOption(obs []string) (line string, ok bool)
	EmptyInput(obs []string) (line string, ok bool)
	CheckboxGroup(obs []string) (labels []string, ok bool)
	NavigationButton(obs []string) (line string, ok bool)
}

// Default keyword seeds. These are a starting vocabulary observed in the
// wild, not a closed set; construct a KeywordProbe with your own lists
// to extend them.
var (
	DefaultAddToBookingWords = []string{"add to booking"}
	DefaultBookServiceWords  = []string{"book service", "book now", "book online", "book an appointment"}
	DefaultOptionWords       = []string{"service option", "rate option", "pricing option"}
	DefaultEmptyInputWords   = []string{"empty"}
	DefaultCheckboxWords     = []string{"checkbox", "radio"}
	DefaultButtonWords       = []string{"button"}
)

// KeywordProbe classifies observation lines by case-insensitive
// substring presence.
type KeywordProbe struct {
	AddToBookingWords []string
	BookServiceWords  []string
	OptionWords       []string
	EmptyInputWords   []string
	CheckboxWords     []string
	ButtonWords       []string
}

// NewKeywordProbe returns a probe seeded with the default keyword lists.
func NewKeywordProbe() *KeywordProbe {
	return &KeywordProbe{
		AddToBookingWords: DefaultAddToBookingWords,
		BookServiceWords:  DefaultBookServiceWords,
		OptionWords:       DefaultOptionWords,
		EmptyInputWords:   DefaultEmptyInputWords,
		CheckboxWords:     DefaultCheckboxWords,
		ButtonWords:       DefaultButtonWords,
	}
}

var _ Probe = (*KeywordProbe)(nil)

func (p *KeywordProbe) AddToBooking(obs []string) (string, bool) {
	return firstMatch(obs, p.AddToBookingWords)
}

func (p *KeywordProbe) BookService(obs []string) (string, bool) {
	return firstMatch(obs, p.BookServiceWords)
}

// ServiceOption matches an option line that is not yet selected.
func (p *KeywordProbe) ServiceOption(obs []string) (string, bool) {
	for _, line := range obs {
		lower := strings.ToLower(line)
		if !isUnselected(lower) {
			continue
		}
		for _, w := range p.OptionWords {
			if strings.Contains(lower, w) {
				return line, true
			}
		}
	}
	return "", false
}

func (p *KeywordProbe) EmptyInput(obs []string) (string, bool) {
	for _, line := range obs {
		lower := strings.ToLower(line)
		for _, w := range p.EmptyInputWords {
			if strings.Contains(lower, w) && (strings.Contains(lower, "input") ||
				strings.Contains(lower, "field") || strings.Contains(lower, "textarea")) {
				return line, true
			}
		}
	}
	return "", false
}

// CheckboxGroup returns the labels of all unselected checkbox/radio
// lines. The caller compares CheckboxSignature of the result against the
// previous iteration to avoid re-selecting the same control forever.
func (p *KeywordProbe) CheckboxGroup(obs []string) ([]string, bool) {
	var labels []string
	for _, line := range obs {
		lower := strings.ToLower(line)
		if !isUnselected(lower) {
			continue
		}
		for _, w := range p.CheckboxWords {
			if strings.Contains(lower, w) {
				labels = append(labels, labelOf(line))
				break
			}
		}
	}
	return labels, len(labels) > 0
}

func (p *KeywordProbe) NavigationButton(obs []string) (string, bool) {
	return firstMatch(obs, p.ButtonWords)
}

func firstMatch(obs []string, words []string) (string, bool) {
	for _, line := range obs {
		lower := strings.ToLower(line)
		for _, w := range words {
			if strings.Contains(lower, w) {
				return line, true
			}
		}
	}
	return "", false
}

func isUnselected(lower string) bool {
	return strings.Contains(lower, "unchecked") ||
		strings.Contains(lower, "unselected") ||
		strings.Contains(lower, "not selected")
}

var quotedLabel = regexp.MustCompile(`'([^']*)'`)

// labelOf pulls the single-quoted label out of an observation line,
// falling back to the whole line.
func labelOf(line string) string {
	if m := quotedLabel.FindStringSubmatch(line); len(m) > 1 {
		return m[1]
	}
	return strings.TrimSpace(line)
}

// CheckboxSignature folds a set of checkbox labels into a coarse,
// order-independent fingerprint. Equal signatures on consecutive
// iterations mean the page did not react to the last selection.
func CheckboxSignature(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	normalized := make([]string, len(labels))
	for i, l := range labels {
		normalized[i] = strings.ToLower(strings.TrimSpace(l))
	}
	sort.Strings(normalized)
	return strings.Join(normalized, "|")
}
