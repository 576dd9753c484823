package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openrace/f1-replay-go/pkg/model"
)

const dumpJSON = `{
  "session": {"year": 2024, "eventName": "Monza", "sessionType": "R", "dataVersion": "v1"},
  "drivers": [
    {"code": "AAA", "number": "1", "name": "Driver A", "team": "Team A",
     "color": {"r": 255, "g": 20, "b": 20}}
  ],
  "laps": {
    "AAA": [
      {"lap": 1, "compound": "SOFT", "samples": [
        {"t": 100.0, "lapDist": 0.0, "x": 1.5, "y": -2.5, "speed": 280.0,
         "gear": 7, "throttle": 100.0, "brake": 0.0, "drs": 12},
        {"t": 101.0, "lapDist": 85.0, "speed": 290.0, "gear": 8}
      ]}
    ]
  },
  "statuses": [{"status": "2", "start": 100.5, "end": 101.0}],
  "weather": [{"t": 100.0, "trackTemp": 41.0, "airTemp": 25.0, "rainfall": 0.0}]
}`

func TestParseDump(t *testing.T) {
	prov, err := ParseDump([]byte(dumpJSON))
	assert.NoError(t, err)

	info := prov.SessionInfo()
	assert.Equal(t, 2024, info.Year)
	assert.Equal(t, "Monza", info.EventName)
	assert.Equal(t, "R", info.SessionType)

	drivers := prov.Drivers()
	if assert.Len(t, drivers, 1) {
		assert.Equal(t, "AAA", drivers[0].Code)
		assert.Equal(t, model.RGB{R: 255, G: 20, B: 20}, drivers[0].Color)
	}

	laps := prov.DriverLaps("AAA")
	if assert.Len(t, laps, 1) {
		assert.Equal(t, "SOFT", laps[0].Compound)
		assert.Len(t, laps[0].Samples, 2)
		assert.Equal(t, 100.0, laps[0].Samples[0].SessionTime)
		assert.Equal(t, 85.0, laps[0].Samples[1].LapDist)
		assert.Equal(t, 8, laps[0].Samples[1].Gear)
	}
	assert.Empty(t, prov.DriverLaps("ZZZ"))

	statuses := prov.TrackStatuses()
	if assert.Len(t, statuses, 1) {
		assert.Equal(t, model.StatusYellow, statuses[0].Status)
	}
	weather := prov.WeatherSamples()
	if assert.Len(t, weather, 1) {
		assert.Equal(t, 41.0, weather[0].TrackTemp)
	}
}

func TestParseDump_rejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "this is not json"},
		{name: "missing event name", data: `{"session": {"year": 2024}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDump([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestNewDumpFileProvider_missingFile(t *testing.T) {
	_, err := NewDumpFileProvider("does-not-exist.json")
	assert.Error(t, err)
}
