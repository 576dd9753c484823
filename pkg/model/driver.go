package model

// RGB is a display color as delivered by the provider metadata.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Stint records the compound a driver started a lap on. Stints are
// ordered by lap.
type Stint struct {
	Lap      int      `json:"lap"`
	Compound Compound `json:"compound"`
}

// Driver describes one session entry. Created once from provider
// metadata and never mutated afterwards.
type Driver struct {
	Code   string  `json:"code"`   // display code, e.g. "VER"
	Number string  `json:"number"` // car number
	Name   string  `json:"name"`
	Team   string  `json:"team"`
	Color  RGB     `json:"color"`
	Stints []Stint `json:"stints,omitempty"`
}
