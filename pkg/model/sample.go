package model

// RawSample is one provider reported telemetry point for one driver.
// Times are session seconds, distances metres, speed km/h.
type RawSample struct {
	SessionTime float64 `json:"t"`
	LapDist     float64 `json:"lapDist"` // distance within the current lap
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Speed       float64 `json:"speed"`
	Gear        int     `json:"gear"`
	Throttle    float64 `json:"throttle"`
	Brake       float64 `json:"brake"`
	DRS         int     `json:"drs"`
}

// LapSamples holds the ordered samples of one driver for one lap,
// as delivered by the provider.
type LapSamples struct {
	Lap      int         `json:"lap"`
	Compound string      `json:"compound"`
	Samples  []RawSample `json:"samples"`
}

// NormalizedPoint is a RawSample placed on the session clock with the
// cumulative race distance computed. Within a driver stream RaceDist
// is non-decreasing.
type NormalizedPoint struct {
	T        float64  `json:"t"`
	Lap      int      `json:"lap"`
	LapDist  float64  `json:"lapDist"`
	RaceDist float64  `json:"raceDist"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Speed    float64  `json:"speed"`
	Gear     int      `json:"gear"`
	Throttle float64  `json:"throttle"`
	Brake    float64  `json:"brake"`
	DRS      int      `json:"drs"`
	Compound Compound `json:"compound"`
	// Hole marks that the gap between this point and its predecessor
	// exceeded the threshold; the resampler must not interpolate across it.
	Hole bool `json:"hole,omitempty"`
}
