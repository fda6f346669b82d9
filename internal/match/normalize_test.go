package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"stopwords only", "The Restaurant", ""},
		{"article and generic noun", "The Italian Kitchen", "italian"},
		{"punctuation stripped", "Joe's Grill", "joe s"},
		{"ampersand separates tokens", "Fish&Chips Co", "fish chips co"},
		{"diacritics folded", "Café Müller", "muller"},
		{"whitespace collapsed", "  Golden   Dragon  ", "golden dragon"},
		{"case insensitive", "BRASSERIE ZeDeL", "zedel"},
		{"digits kept", "Pizza 101", "pizza 101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := NewNormalizer(nil)
	in := "Thé Gréât Büfé & Grill"
	first := n.Normalize(in)
	for range 10 {
		assert.Equal(t, first, n.Normalize(in))
	}
}

func TestNormalizeCustomStopwords(t *testing.T) {
	n := NewNormalizer([]string{"curry", "house"})
	assert.Equal(t, "bombay", n.Normalize("Bombay Curry House"))
	// Custom list replaces the defaults entirely.
	assert.Equal(t, "the grill", n.Normalize("The Grill"))
}
