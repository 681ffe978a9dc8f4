package ingest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/models"
)

func nopLogger() *zap.Logger { return zap.NewNop() }

func testVocabulary() *Vocabulary {
	return NewVocabulary([]string{"Belize", "Bonaire", "Egypt"}, continentNames)
}

func ptr[T any](v T) *T { return &v }

func TestRepairEntities(t *testing.T) {
	tests := map[string]string{
		"Diver&#039;s Cove &amp; Reef": "Diver's Cove & Reef",
		"The &quot;Canyon&quot;":       `The "Canyon"`,
		"Plain":                        "Plain",

		// Output of one replacement is not decoded again.
		"&amp;quot;": "&quot;",
		"&amp;#039;": "&#039;",
		"&amp;amp;":  "&amp;",
	}
	for in, want := range tests {
		assert.Equal(t, want, RepairEntities(in), "input %q", in)
	}
}

func TestNormalizer_DedupFirstSeenWins(t *testing.T) {
	responses := []CachedResponse{
		{Term: "Belize", Body: []byte(`{"data":[
			{"id":"42","name":"First","lat":"17.31","lng":"-87.53","ocean":"Caribbean Sea","Location":"Blue Hole, Belize, North America"},
			{"id":"43","name":"Other","lat":"17.0","lng":"-88.0","Location":"Belize"}
		]}`)},
		{Term: "Caribbean", Body: []byte(`{"data":[
			{"id":"42","name":"Second","lat":"0","lng":"0","Location":"Elsewhere"}
		]}`)},
	}

	sites, report := NewNormalizer(testVocabulary(), nopLogger()).Normalize(responses)

	require.Len(t, sites, 2)
	assert.Equal(t, 1, report.Duplicates)

	var with42 []models.DiveSite
	for _, s := range sites {
		if *s.APIID == "42" {
			with42 = append(with42, s)
		}
	}
	require.Len(t, with42, 1)

	want := models.DiveSite{
		APIID:     ptr("42"),
		Name:      "First",
		Lat:       ptr(17.31),
		Lng:       ptr(-87.53),
		Ocean:     ptr("Caribbean Sea"),
		Location:  ptr("Blue Hole, Belize, North America"),
		Country:   ptr("Belize"),
		Continent: ptr("North America"),
	}
	if diff := cmp.Diff(want, with42[0]); diff != "" {
		t.Errorf("record 42 mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizer_EntityRepairAndGeo(t *testing.T) {
	responses := []CachedResponse{{Term: "Bonaire", Body: []byte(`{"data":[
		{"id":"1","name":"Diver&#039;s Cove &amp; Reef","region":"Kralendijk","lat":"12.15","lng":"-68.27","Location":"Some Reef, Bonaire"}
	]}`)}}

	sites, _ := NewNormalizer(testVocabulary(), nopLogger()).Normalize(responses)

	require.Len(t, sites, 1)
	assert.Equal(t, "Diver's Cove & Reef", sites[0].Name)
	assert.Equal(t, "Bonaire", *sites[0].Country)
	assert.Nil(t, sites[0].Continent)
	assert.Equal(t, "Kralendijk", *sites[0].Region)
}

func TestNormalizer_MalformedSkippedWithoutClaimingID(t *testing.T) {
	responses := []CachedResponse{
		{Term: "A", Body: []byte(`{"data":[
			{"id":"9","name":"Bad","lat":"north","lng":"-87"},
			{"id":"10","name":"No coords"},
			{"name":"No id","lat":"1","lng":"1"},
			"not an object"
		]}`)},
		{Term: "B", Body: []byte(`{"data":[{"id":9,"name":"Good","lat":17.5,"lng":-87.8}]}`)},
	}

	sites, report := NewNormalizer(testVocabulary(), nopLogger()).Normalize(responses)

	assert.Equal(t, 4, report.Malformed)
	require.Len(t, sites, 1)
	assert.Equal(t, "9", *sites[0].APIID, "a later well-formed copy of a malformed id still loads")
	assert.Equal(t, "Good", sites[0].Name)
	assert.Equal(t, 17.5, *sites[0].Lat)
	assert.Nil(t, sites[0].Location)
	assert.Nil(t, sites[0].Country)
}

func TestNormalizer_SkipsEmptyAndUnreadableDocuments(t *testing.T) {
	responses := []CachedResponse{
		{Term: "Empty", Body: []byte(`{"data":[]}`)},
		{Term: "NoData", Body: []byte(`{"message":"nothing"}`)},
		{Term: "Broken", Body: []byte(`{"data":[`)},
		{Term: "Egypt", Body: []byte(`{"data":[{"id":"5","name":"Thistlegorm","lat":"27.81","lng":"33.92","Location":"Red Sea, Egypt, Africa"}]}`)},
	}

	sites, report := NewNormalizer(testVocabulary(), nopLogger()).Normalize(responses)

	require.Len(t, sites, 1)
	assert.Equal(t, 4, report.Documents)
	assert.Equal(t, 2, report.EmptyDocs)
	assert.Equal(t, 1, report.SkippedDocs)
	assert.Equal(t, "Africa", *sites[0].Continent)
}

func TestNormalizer_FreshSeenSetPerPass(t *testing.T) {
	responses := []CachedResponse{{Term: "Belize", Body: []byte(`{"data":[{"id":"1","name":"x","lat":"1","lng":"1"}]}`)}}
	n := NewNormalizer(testVocabulary(), nopLogger())

	first, _ := n.Normalize(responses)
	second, _ := n.Normalize(responses)

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
}
