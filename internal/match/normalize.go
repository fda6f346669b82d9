package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// defaultStopwords are generic food-service nouns and articles that carry no
// identity signal. "The Italian Kitchen" and "Italian" are the same venue.
var defaultStopwords = []string{
	"the", "a", "an",
	"restaurant", "kitchen", "bar", "grill", "cafe", "bistro",
	"eatery", "diner", "tavern", "brasserie",
}

// Normalizer canonicalizes free-text venue names into comparable token form.
// It is pure and deterministic: the same input always yields the same output.
type Normalizer struct {
	stop map[string]struct{}
}

// NewNormalizer builds a normalizer with the given stopword list, falling
// back to the default list when none is supplied.
func NewNormalizer(stopwords []string) *Normalizer {
	if len(stopwords) == 0 {
		stopwords = defaultStopwords
	}
	stop := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &Normalizer{stop: stop}
}

// Normalize lowercases, folds diacritics, strips punctuation, collapses
// whitespace, and removes stopwords. Empty input normalizes to "".
func (n *Normalizer) Normalize(s string) string {
	s = foldDiacritics(s)
	s = strings.ToLower(s)
	s = stripPunct(s)

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if _, drop := n.stop[f]; drop {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// foldDiacritics decomposes accented characters and drops the combining
// marks, so "Café" compares equal to "Cafe".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// stripPunct replaces anything that is not a letter, digit, or whitespace
// with a space so adjacent tokens stay separated ("Fish&Chips" → "fish chips").
func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
}
