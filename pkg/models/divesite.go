package models

import "strconv"

// Continents is the fixed continent vocabulary, in display case.
var Continents = []string{"Asia", "Africa", "Europe", "South America", "North America", "Oceania"}

// DiveSite is a place people dive. Sites come either from the dive site API
// (APIID holds the external id) or from a user (APIID holds the creator's id).
type DiveSite struct {
	ID        int      `json:"id"`
	APIID     *string  `json:"api_id,omitempty"`
	Name      string   `json:"name"`
	Region    *string  `json:"region,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Ocean     *string  `json:"ocean,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Country   *string  `json:"country,omitempty"`
	Continent *string  `json:"continent,omitempty"`
}

// CreatedBy reports whether userID created the site.
func (s *DiveSite) CreatedBy(userID int) bool {
	return s.APIID != nil && *s.APIID == strconv.Itoa(userID)
}

// DiveSiteMarker is the map payload for one site.
type DiveSiteMarker struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DiveSiteDetail is a site with its rating summary.
type DiveSiteDetail struct {
	DiveSite
	AverageRating string `json:"average_rating"`
}

// NoRatings is shown when a site has no logged dives.
const NoRatings = "No Ratings"

// MapBounds is a lat/lng rectangle given by its north-east and south-west corners.
type MapBounds struct {
	NELat float64
	NELng float64
	SWLat float64
	SWLng float64
}

// Valid reports whether the latitudes are ordered and every corner is inside
// the coordinate range. Longitudes may wrap; see CrossesAntimeridian.
func (b MapBounds) Valid() bool {
	if b.SWLat > b.NELat {
		return false
	}
	return b.SWLat >= -90 && b.NELat <= 90 &&
		b.SWLng >= -180 && b.SWLng <= 180 &&
		b.NELng >= -180 && b.NELng <= 180
}

// CrossesAntimeridian reports whether the view spans the 180th meridian, which
// is how a map reports a window over Fiji or Tonga: the west edge is east of
// the east edge.
func (b MapBounds) CrossesAntimeridian() bool {
	return b.SWLng > b.NELng
}

// NewDiveSite is the input for a user-created site.
type NewDiveSite struct {
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Ocean     string  `json:"ocean"`
	Country   string  `json:"country"`
	Continent string  `json:"continent"`
	Location  string  `json:"location"`
}
