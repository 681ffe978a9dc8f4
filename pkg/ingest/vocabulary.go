package ingest

import (
	"strings"
	"sync"
	"unicode"

	"github.com/biter777/countries"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// countryAliases are short or colloquial names the API uses that the ISO
// list spells differently.
var countryAliases = []string{
	"usa",
	"bolivia",
	"bonaire",
	"bosnia",
	"cocos islands",
	"cook island",
	"falkland islands",
	"iran",
	"korea",
	"micronesia",
	"moldova",
	"palestine",
	"saint martin",
	"sint maarten",
	"taiwan",
	"tanzania",
	"vietnam",
}

var continentNames = []string{"north america", "europe", "south america", "africa", "asia", "oceania"}

var apostrophes = strings.NewReplacer("\u2019", "'", "\u02bc", "'")

// nameKey folds case and diacritics, so "Curaçao" and "Curacao" share a key.
func nameKey(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(apostrophes.Replace(folded))
}

// Vocabulary holds the folded country and continent names used to infer
// geography from a free-text location.
type Vocabulary struct {
	countries  map[string]struct{}
	continents map[string]struct{}
}

// NewVocabulary builds a vocabulary. Names are matched ignoring case and accents.
func NewVocabulary(countryNames, continents []string) *Vocabulary {
	v := &Vocabulary{
		countries:  make(map[string]struct{}, len(countryNames)),
		continents: make(map[string]struct{}, len(continents)),
	}
	for _, c := range countryNames {
		v.countries[nameKey(c)] = struct{}{}
	}
	for _, c := range continents {
		v.continents[nameKey(c)] = struct{}{}
	}
	return v
}

var (
	defaultVocabulary     *Vocabulary
	defaultVocabularyOnce sync.Once
)

// DefaultVocabulary returns the ISO 3166 English country names plus the alias
// list, and the six continents.
func DefaultVocabulary() *Vocabulary {
	defaultVocabularyOnce.Do(func() {
		all := countries.All()
		names := make([]string, 0, len(all)+len(countryAliases))
		for _, code := range all {
			names = append(names, code.String())
		}
		names = append(names, countryAliases...)
		defaultVocabulary = NewVocabulary(names, continentNames)
	})
	return defaultVocabulary
}

// IsCountry reports whether token names a known country.
func (v *Vocabulary) IsCountry(token string) bool {
	_, ok := v.countries[nameKey(token)]
	return ok
}

// IsContinent reports whether token names a known continent.
func (v *Vocabulary) IsContinent(token string) bool {
	_, ok := v.continents[nameKey(token)]
	return ok
}

// Infer splits location on commas and returns the last token that is a
// country and the last that is a continent, in their original case. Either
// result is nil when nothing matches.
func (v *Vocabulary) Infer(location string) (country, continent *string) {
	for _, token := range strings.Split(location, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if v.IsCountry(token) {
			t := token
			country = &t
		}
		if v.IsContinent(token) {
			t := token
			continent = &t
		}
	}
	return country, continent
}
