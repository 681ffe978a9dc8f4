package models

import (
	"time"
)

// FeetPerMeter converts depths entered in meters.
const FeetPerMeter = 3.28084

// NoBuddy is the buddy id clients send when a dive had no buddy.
const NoBuddy = -1

// Depth units accepted when logging a dive.
const (
	UnitsFeet   = "feet"
	UnitsMeters = "meters"
)

// Form limits.
const (
	MinRating     = 1
	MaxRating     = 10
	MaxBottomTime = 600
	MaxDepth      = 350
)

// Dive is one logged dive. MaxDepth is stored in feet.
type Dive struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	DiveNo     int       `json:"dive_no"`
	Date       time.Time `json:"date"`
	DiveSiteID int       `json:"divesite_id"`
	Rating     int       `json:"rating"`
	BottomTime float64   `json:"bottom_time"`
	MaxDepth   float64   `json:"max_depth"`
	Comments   string    `json:"comments"`
	BuddyID    *int      `json:"buddy_id,omitempty"`
	Types      DiveTypes `json:"types"`
}

// DiveView is a dive with the names needed to display it.
type DiveView struct {
	Dive
	Diver        UserSummary  `json:"diver"`
	Buddy        *UserSummary `json:"buddy,omitempty"`
	DiveSiteName string       `json:"divesite_name"`
	TypeNames    []string     `json:"type_names"`
}

// DiveTypes flags the kinds of diving done on a dive.
type DiveTypes struct {
	Drysuit   bool `json:"drysuit"`
	Night     bool `json:"night"`
	Cave      bool `json:"cave"`
	Wreck     bool `json:"wreck"`
	Drift     bool `json:"drift"`
	Ice       bool `json:"ice"`
	Deep      bool `json:"deep"`
	Technical bool `json:"technical"`
	Altitude  bool `json:"altitude"`
	Muck      bool `json:"muck"`
}

// DiveTypeNames lists every dive type in display order.
var DiveTypeNames = []string{"drysuit", "night", "cave", "wreck", "drift", "ice", "deep", "technical", "altitude", "muck"}

func (t *DiveTypes) flags() []*bool {
	return []*bool{&t.Drysuit, &t.Night, &t.Cave, &t.Wreck, &t.Drift, &t.Ice, &t.Deep, &t.Technical, &t.Altitude, &t.Muck}
}

// Names returns the set types in display order.
func (t DiveTypes) Names() []string {
	names := []string{}
	for i, f := range t.flags() {
		if *f {
			names = append(names, DiveTypeNames[i])
		}
	}
	return names
}

// DiveTypesFromNames sets the named types. Unknown names are reported.
func DiveTypesFromNames(names []string) (DiveTypes, []string) {
	var t DiveTypes
	flags := t.flags()
	var unknown []string
	for _, name := range names {
		found := false
		for i, known := range DiveTypeNames {
			if name == known {
				*flags[i] = true
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, name)
		}
	}
	return t, unknown
}

// DiveInput is what a client sends to log or edit a dive.
type DiveInput struct {
	Date       string   `json:"date"` // YYYY-MM-DD
	DiveNo     *int     `json:"dive_no,omitempty"`
	Rating     int      `json:"rating"`
	BottomTime float64  `json:"bottom_time"`
	MaxDepth   float64  `json:"max_depth"`
	DepthUnits string   `json:"depth_units"`
	BuddyID    int      `json:"buddy_id"`
	Comments   string   `json:"comments"`
	DiveTypes  []string `json:"dive_types"`
}

// DepthInFeet returns MaxDepth converted to feet.
func (in DiveInput) DepthInFeet() float64 {
	if in.DepthUnits == UnitsMeters {
		return in.MaxDepth * FeetPerMeter
	}
	return in.MaxDepth
}

// Buddy returns the buddy id, or nil for NoBuddy.
func (in DiveInput) Buddy() *int {
	if in.BuddyID == NoBuddy || in.BuddyID == 0 {
		return nil
	}
	id := in.BuddyID
	return &id
}
