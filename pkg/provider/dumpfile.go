package provider

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"

	"github.com/openrace/f1-replay-go/pkg/model"
)

// sessionDump mirrors the layout of an exported session file.
type sessionDump struct {
	Session  model.SessionInfo             `json:"session"`
	Drivers  []model.Driver                `json:"drivers"`
	Laps     map[string][]model.LapSamples `json:"laps"` // key: driver code
	Statuses []model.TrackStatus           `json:"statuses"`
	Weather  []model.WeatherSample         `json:"weather"`
}

// DumpFileProvider serves a session from a JSON dump file previously
// exported from the acquisition tooling.
type DumpFileProvider struct {
	dump sessionDump
}

var _ SessionProvider = (*DumpFileProvider)(nil)

func NewDumpFileProvider(filename string) (*DumpFileProvider, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading session dump: %w", err)
	}
	return ParseDump(data)
}

func ParseDump(data []byte) (*DumpFileProvider, error) {
	ret := &DumpFileProvider{}
	if err := oj.Unmarshal(data, &ret.dump); err != nil {
		return nil, fmt.Errorf("parsing session dump: %w", err)
	}
	if ret.dump.Session.EventName == "" {
		return nil, fmt.Errorf("session dump carries no event name")
	}
	return ret, nil
}

func (p *DumpFileProvider) SessionInfo() model.SessionInfo { return p.dump.Session }
func (p *DumpFileProvider) Drivers() []model.Driver        { return p.dump.Drivers }

func (p *DumpFileProvider) DriverLaps(code string) []model.LapSamples {
	return p.dump.Laps[code]
}

func (p *DumpFileProvider) TrackStatuses() []model.TrackStatus {
	return p.dump.Statuses
}

func (p *DumpFileProvider) WeatherSamples() []model.WeatherSample {
	return p.dump.Weather
}
