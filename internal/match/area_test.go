package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAreaMatch(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name     string
		area     string
		location string
		want     bool
	}{
		{"empty area never matches", "", "12 Greek Street, Soho, London", false},
		{"stopword-only area never matches", "The", "The Strand, London", false},
		{"simple containment", "Soho", "12 Greek Street, Soho, London W1D", true},
		{"case insensitive", "soho", "SOHO, London", true},
		{"punctuation insensitive", "Covent Garden", "Covent-Garden Piazza", true},
		{"diacritics folded", "Café Quarter", "cafe quarter, leeds", true},
		{"absent from location", "Shoreditch", "Mayfair, London", false},
		{"empty location", "Soho", "", false},
		{"multi word area", "Notting Hill", "104 Notting Hill Gate, London", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.AreaMatch(tt.area, tt.location))
		})
	}
}
