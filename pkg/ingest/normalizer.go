package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/jsonutil"
	"github.com/social-scuba/divelog/pkg/models"
)

// rawSiteRecord is one entry of a cached response's "data" array.
type rawSiteRecord struct {
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	Region   *string         `json:"region"`
	Lat      json.RawMessage `json:"lat"`
	Lng      json.RawMessage `json:"lng"`
	Ocean    *string         `json:"ocean"`
	Location *string         `json:"Location"`
}

// responseDocument is the shape of a cached API response.
type responseDocument struct {
	Data []json.RawMessage `json:"data"`
}

// entityRepair decodes the three HTML entities the API leaves in site names.
// strings.Replacer works in a single pass, so text produced by one replacement
// is never decoded again.
var entityRepair = strings.NewReplacer(
	"&#039;", "'",
	"&amp;", "&",
	"&quot;", `"`,
)

// RepairEntities decodes &#039;, &amp; and &quot; in s.
func RepairEntities(s string) string {
	return entityRepair.Replace(s)
}

// NormalizeReport counts what happened to the input of one pass.
type NormalizeReport struct {
	Documents   int // cached responses read
	EmptyDocs   int // responses with no records
	SkippedDocs int // responses that were not valid JSON documents
	RawRecords  int // records seen across all responses
	Records     int // records returned
	Duplicates  int // records skipped because their external id was already seen
	Malformed   int // records skipped because a field could not be parsed
}

// Normalizer turns cached API responses into dive site rows.
type Normalizer struct {
	vocab  *Vocabulary
	logger *zap.Logger
}

func NewNormalizer(vocab *Vocabulary, logger *zap.Logger) *Normalizer {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Normalizer{vocab: vocab, logger: logger.Named("ingest.normalize")}
}

// Normalize processes responses in order. Each external id is kept the first
// time it is seen, across all responses. Malformed records are logged and
// skipped without claiming their id, so a later well-formed copy still loads.
func (n *Normalizer) Normalize(responses []CachedResponse) ([]models.DiveSite, NormalizeReport) {
	var report NormalizeReport
	seen := make(map[string]struct{})
	var sites []models.DiveSite

	for _, resp := range responses {
		report.Documents++

		var doc responseDocument
		if err := json.Unmarshal(resp.Body, &doc); err != nil {
			report.SkippedDocs++
			n.logger.Warn("Skipping unreadable cached response",
				zap.String("term", resp.Term),
				zap.Error(err))
			continue
		}
		if len(doc.Data) == 0 {
			report.EmptyDocs++
			continue
		}

		for _, raw := range doc.Data {
			report.RawRecords++

			site, err := n.normalizeRecord(resp.Term, raw, seen)
			if errors.Is(err, errDuplicate) {
				report.Duplicates++
				continue
			}
			if err != nil {
				report.Malformed++
				n.logger.Warn("Skipping malformed dive site", zap.Error(err))
				continue
			}

			seen[*site.APIID] = struct{}{}
			sites = append(sites, site)
		}
	}

	report.Records = len(sites)
	n.logger.Info("Normalized cached responses",
		zap.Int("documents", report.Documents),
		zap.Int("records", report.Records),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("malformed", report.Malformed),
		zap.Int("skipped_documents", report.SkippedDocs))

	return sites, report
}

var errDuplicate = errors.New("duplicate external id")

func (n *Normalizer) normalizeRecord(term string, raw json.RawMessage, seen map[string]struct{}) (models.DiveSite, error) {
	var rec rawSiteRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.DiveSite{}, &MalformedRecordError{Term: term, Field: "record", Err: err}
	}

	id := jsonutil.FlexibleStringValue(rec.ID)
	if id == "" {
		return models.DiveSite{}, &MalformedRecordError{Term: term, Field: "id", Err: jsonutil.ErrMissingValue}
	}
	if _, dup := seen[id]; dup {
		return models.DiveSite{}, errDuplicate
	}

	lat, err := jsonutil.FlexibleFloat(rec.Lat)
	if err != nil {
		return models.DiveSite{}, &MalformedRecordError{Term: term, ExternalID: id, Field: "lat", Err: err}
	}
	lng, err := jsonutil.FlexibleFloat(rec.Lng)
	if err != nil {
		return models.DiveSite{}, &MalformedRecordError{Term: term, ExternalID: id, Field: "lng", Err: err}
	}

	site := models.DiveSite{
		APIID:    &id,
		Name:     RepairEntities(rec.Name),
		Region:   rec.Region,
		Lat:      &lat,
		Lng:      &lng,
		Ocean:    rec.Ocean,
		Location: rec.Location,
	}
	if rec.Location != nil {
		site.Country, site.Continent = n.vocab.Infer(*rec.Location)
	}
	return site, nil
}

// String renders the report for the seed script's summary line.
func (r NormalizeReport) String() string {
	return fmt.Sprintf("%d documents, %d records, %d duplicates, %d malformed",
		r.Documents, r.Records, r.Duplicates, r.Malformed)
}
