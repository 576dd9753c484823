package model

// Standing is one row of the per-tick leaderboard. Derived from a
// Frame on demand, never persisted.
type Standing struct {
	Position int     `json:"position"`
	Driver   string  `json:"driver"` // driver code
	Lap      int     `json:"lap"`
	RaceDist float64 `json:"raceDist"`
	Gap      float64 `json:"gap"` // metres behind the leader
	Out      bool    `json:"out"`
}
