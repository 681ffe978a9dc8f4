package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestVocabulary_Infer(t *testing.T) {
	vocab := DefaultVocabulary()

	tests := []struct {
		location      string
		wantCountry   any
		wantContinent any
	}{
		{"Some Reef, Bonaire", "Bonaire", nil},
		{"Blue Hole, Belize, North America", "Belize", "North America"},
		{"Wreck Alley,  usa ,north america", "usa", "north america"},
		{"Somewhere in the ocean", nil, nil},
		{"", nil, nil},
		{"Mushroom Forest, Curaçao", "Curaçao", nil},
		{"Roches Noires, Réunion, Africa", "Réunion", "Africa"},
		// Last match wins.
		{"Belize, Egypt, Asia, Africa", "Egypt", "Africa"},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			country, continent := vocab.Infer(tt.location)
			assert.Equal(t, tt.wantCountry, strOrNil(country), "country")
			assert.Equal(t, tt.wantContinent, strOrNil(continent), "continent")
		})
	}
}

func TestNameKey(t *testing.T) {
	assert.Equal(t, "curacao", nameKey("Curaçao"))
	assert.Equal(t, "cote d'ivoire", nameKey("CÔTE D\u2019IVOIRE"))
	assert.Equal(t, "north america", nameKey("North America"))
}

func TestDefaultVocabulary_IncludesISONamesAndAliases(t *testing.T) {
	vocab := DefaultVocabulary()

	for _, name := range []string{"Belize", "EGYPT", "indonesia", "Vietnam", "sint maarten", "Cook Island"} {
		assert.True(t, vocab.IsCountry(name), "%q should be a country", name)
	}
	assert.False(t, vocab.IsCountry("Blue Hole"))

	for _, name := range []string{"Curaçao", "Réunion", "Saint Barthélemy", "Côte d'Ivoire", "Côte d\u2019Ivoire", "Åland Islands", "São Tomé and Príncipe"} {
		assert.True(t, vocab.IsCountry(name), "%q should be a country", name)
	}
	assert.True(t, vocab.IsContinent("Oceania"))
	assert.False(t, vocab.IsContinent("Antarctica"))
}
