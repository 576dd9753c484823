package model

// DriverState is one driver's interpolated state at a tick.
type DriverState struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Speed    float64  `json:"speed"`
	Gear     int      `json:"gear"`
	Throttle float64  `json:"throttle"`
	Brake    float64  `json:"brake"`
	DRS      int      `json:"drs"`
	Compound Compound `json:"compound"`
	Lap      int      `json:"lap"`
	RaceDist float64  `json:"raceDist"`
	// OnTrack is false before the driver's first sample.
	OnTrack bool `json:"onTrack"`
	// Active turns false once the driver has no samples at or after
	// this tick (retirement or finish).
	Active bool `json:"active"`
}

// Frame is the cross-driver snapshot at one tick. Frames are immutable
// once built.
type Frame struct {
	T       float64                `json:"t"` // seconds since timeline start
	Drivers map[string]DriverState `json:"drivers"`
	Weather *Weather               `json:"weather,omitempty"`
}

// Timeline is the fixed-rate sequence of frames for one session,
// the unit addressed by the playback controller and persisted to cache.
type Timeline struct {
	FPS       int           `json:"fps"`
	Start     float64       `json:"start"` // session time of tick 0
	TotalLaps int           `json:"totalLaps"`
	Drivers   []Driver      `json:"drivers"`
	Statuses  []TrackStatus `json:"statuses,omitempty"`
	Frames    []Frame       `json:"frames"`
}

func (t *Timeline) Len() int { return len(t.Frames) }

// Step returns the tick duration in seconds.
func (t *Timeline) Step() float64 { return 1.0 / float64(t.FPS) }

// StatusAt returns the track status covering the given tick time,
// or an empty string when none applies.
func (t *Timeline) StatusAt(sec float64) string {
	for i := range t.Statuses {
		s := &t.Statuses[i]
		if sec >= s.Start && (s.End < 0 || sec < s.End) {
			return s.Status
		}
	}
	return ""
}
