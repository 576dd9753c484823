package model

// Track status codes as reported by the provider.
const (
	StatusClear     = "1"
	StatusYellow    = "2"
	StatusSafetyCar = "4"
	StatusRed       = "5"
	StatusVirtualSC = "6"
)

// TrackStatus is a [Start,End) interval on the timeline clock.
// End < 0 means the status was still active at session end.
type TrackStatus struct {
	Status string  `json:"status"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
}

// Weather is an optional per-frame snapshot resampled from the
// provider's weather channel.
type Weather struct {
	TrackTemp float64 `json:"trackTemp"`
	AirTemp   float64 `json:"airTemp"`
	Humidity  float64 `json:"humidity"`
	WindSpeed float64 `json:"windSpeed"`
	Raining   bool    `json:"raining"`
}

// WeatherSample is one provider reported weather point on the session clock.
type WeatherSample struct {
	SessionTime float64 `json:"t"`
	TrackTemp   float64 `json:"trackTemp"`
	AirTemp     float64 `json:"airTemp"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Rainfall    float64 `json:"rainfall"`
}
