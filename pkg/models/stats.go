package models

// UserStats summarizes a diver's log. Numbers are pre-formatted for display.
type UserStats struct {
	MaxDepth      string `json:"max_depth"`       // feet, two decimals
	MaxBottomTime string `json:"max_bottom_time"` // minutes, one decimal
	DiveCount     int    `json:"dive_count"`
	Countries     int    `json:"countries"`
	Continents    int    `json:"continents"`
}

// Profile is a user page: the user, their stats and recent dives.
type Profile struct {
	User  *User      `json:"user"`
	Stats UserStats  `json:"stats"`
	Dives []DiveView `json:"dives"`
}

// Leaderboard categories.
const (
	LeaderboardBottomTime = "bottom_time"
	LeaderboardDepth      = "depth"
	LeaderboardDiveCount  = "dive_count"
)

// LeaderboardSize caps each leaderboard.
const LeaderboardSize = 5

// DiverTotals holds the raw numbers leaderboards rank by.
type DiverTotals struct {
	User          UserSummary
	MaxBottomTime float64
	MaxDepth      float64
	DiveCount     int
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	User  UserSummary `json:"user"`
	Value float64     `json:"value"`
	Unit  string      `json:"unit"` // min, ft, dives
}

// Leaderboards groups the three rankings for a user and their buddies.
type Leaderboards struct {
	BottomTime []LeaderboardEntry `json:"bottom_time"`
	Depth      []LeaderboardEntry `json:"depth"`
	DiveCount  []LeaderboardEntry `json:"dive_count"`
}
