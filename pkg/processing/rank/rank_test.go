package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openrace/f1-replay-go/pkg/model"
)

// timelineOf builds a timeline from per-driver distance series; a
// negative distance marks the driver as not yet on track for that tick.
func timelineOf(dists map[string][]float64) *model.Timeline {
	numTicks := 0
	for _, series := range dists {
		if len(series) > numTicks {
			numTicks = len(series)
		}
	}
	frames := make([]model.Frame, numTicks)
	for i := 0; i < numTicks; i++ {
		drivers := make(map[string]model.DriverState)
		for code, series := range dists {
			if i >= len(series) || series[i] < 0 {
				drivers[code] = model.DriverState{}
				continue
			}
			drivers[code] = model.DriverState{
				RaceDist: series[i],
				Lap:      1,
				OnTrack:  true,
				Active:   true,
			}
		}
		frames[i] = model.Frame{T: float64(i), Drivers: drivers}
	}
	return &model.Timeline{FPS: 1, Frames: frames}
}

func TestRanker_ordering(t *testing.T) {
	tl := timelineOf(map[string][]float64{
		"CCC": {300},
		"AAA": {100},
		"BBB": {200},
	})
	standings := NewRanker().Standings(tl, 0)

	assert.Equal(t, []string{"CCC", "BBB", "AAA"},
		[]string{standings[0].Driver, standings[1].Driver, standings[2].Driver})
	for i, s := range standings {
		assert.Equal(t, i+1, s.Position)
	}
	// total order consistent with distance
	for i := 1; i < len(standings); i++ {
		assert.GreaterOrEqual(t, standings[i-1].RaceDist, standings[i].RaceDist)
	}
	assert.Equal(t, 0.0, standings[0].Gap)
	assert.Equal(t, 100.0, standings[1].Gap)
	assert.Equal(t, 200.0, standings[2].Gap)
}

func TestRanker_tieBreakByCode(t *testing.T) {
	tl := timelineOf(map[string][]float64{
		"ZZZ": {100},
		"AAA": {100},
		"MMM": {100},
	})
	standings := NewRanker().Standings(tl, 0)
	assert.Equal(t, []string{"AAA", "MMM", "ZZZ"},
		[]string{standings[0].Driver, standings[1].Driver, standings[2].Driver})
}

func TestRanker_outDetection(t *testing.T) {
	tests := []struct {
		name    string
		dists   map[string][]float64
		tick    int
		wantOut map[string]bool
	}{
		{
			name: "stalled driver while leader gains",
			dists: map[string][]float64{
				"AAA": {0, 10, 20, 30, 40, 50},
				"BBB": {0, 8, 8, 8, 8, 8},
			},
			tick:    5,
			wantOut: map[string]bool{"AAA": false, "BBB": true},
		},
		{
			name: "full field caution is not a retirement",
			dists: map[string][]float64{
				"AAA": {40, 40, 40, 40, 40, 40},
				"BBB": {8, 8, 8, 8, 8, 8},
			},
			tick:    5,
			wantOut: map[string]bool{"AAA": false, "BBB": false},
		},
		{
			name: "not enough history yet",
			dists: map[string][]float64{
				"AAA": {0, 10},
				"BBB": {8, 8},
			},
			tick:    1,
			wantOut: map[string]bool{"AAA": false, "BBB": false},
		},
		{
			name: "late starter gaining distance is not out",
			dists: map[string][]float64{
				"AAA": {0, 10, 20, 30, 40, 50, 60},
				"LLL": {-1, -1, -1, -1, 5, 15, 25},
			},
			tick:    6,
			wantOut: map[string]bool{"AAA": false, "LLL": false},
		},
		{
			name: "late starter gain still exposes a stalled rival",
			dists: map[string][]float64{
				"AAA": {8, 8, 8, 8, 8, 8, 8},
				"LLL": {-1, -1, -1, -1, 5, 15, 25},
			},
			tick:    6,
			wantOut: map[string]bool{"AAA": true, "LLL": false},
		},
		{
			name: "driver on first on-track tick is not out",
			dists: map[string][]float64{
				"AAA": {0, 10, 20, 30, 40, 50, 60},
				"LLL": {-1, -1, -1, -1, -1, -1, 25},
			},
			tick:    6,
			wantOut: map[string]bool{"AAA": false, "LLL": false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRanker(WithStallWindow(3))
			standings := r.Standings(timelineOf(tt.dists), tt.tick)
			for _, s := range standings {
				assert.Equal(t, tt.wantOut[s.Driver], s.Out,
					"driver %s", s.Driver)
			}
		})
	}
}

func TestRanker_notYetStartedExcluded(t *testing.T) {
	tl := timelineOf(map[string][]float64{
		"AAA": {100},
		"BBB": {-1}, // not on track yet
	})
	standings := NewRanker().Standings(tl, 0)
	assert.Len(t, standings, 1)
	assert.Equal(t, "AAA", standings[0].Driver)
}

func TestRanker_tickClamped(t *testing.T) {
	tl := timelineOf(map[string][]float64{"AAA": {1, 2, 3}})
	assert.Len(t, NewRanker().Standings(tl, -4), 1)
	assert.Len(t, NewRanker().Standings(tl, 99), 1)
	assert.Nil(t, NewRanker().Standings(&model.Timeline{}, 0))
}

func TestFormatGap(t *testing.T) {
	assert.Equal(t, "-", FormatGap(0))
	assert.Equal(t, "+42.7m", FormatGap(42.68))
	assert.Equal(t, "+100m", FormatGap(100.0))
}
