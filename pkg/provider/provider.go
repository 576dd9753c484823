// Package provider defines the inbound boundary to the session data
// source. The engine treats everything delivered here as read-only and
// tolerates missing fields, out-of-order samples and absent laps.
package provider

import "github.com/openrace/f1-replay-go/pkg/model"

// SessionProvider delivers metadata and raw telemetry of one finished
// session.
type SessionProvider interface {
	SessionInfo() model.SessionInfo
	Drivers() []model.Driver
	// DriverLaps returns the per-lap sample lists for the given driver
	// code, ordered by lap. May be empty for drivers without telemetry.
	DriverLaps(code string) []model.LapSamples
	TrackStatuses() []model.TrackStatus
	WeatherSamples() []model.WeatherSample
}
