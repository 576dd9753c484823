// Package resample merges the normalized per-driver streams onto one
// fixed-rate clock. Resampling is a pure function of its inputs:
// identical streams and FPS always reproduce identical frames, which
// is what makes caching the result valid.
package resample

import (
	"errors"
	"sort"

	"github.com/samber/lo"

	"github.com/openrace/f1-replay-go/log"
	"github.com/openrace/f1-replay-go/pkg/model"
)

var ErrNoStreams = errors.New("no driver streams to resample")

const DefaultFPS = 25

type Resampler struct {
	fps int
	log *log.Logger
}

type Option func(r *Resampler)

func WithFPS(fps int) Option {
	return func(r *Resampler) {
		if fps > 0 {
			r.fps = fps
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Resampler) {
		r.log = l
	}
}

func NewResampler(opts ...Option) *Resampler {
	r := &Resampler{
		fps: DefaultFPS,
		log: log.Default().Named("processing.resample"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// cursor walks one driver's stream in tick order, avoiding a search
// per tick.
type cursor struct {
	pts []model.NormalizedPoint
	idx int
}

// Resample builds the timeline of frames covering min(start) to
// max(end) over all streams. Weather samples are optional.
func (r *Resampler) Resample(
	streams map[string][]model.NormalizedPoint,
	weather []model.WeatherSample,
) (*model.Timeline, error) {
	codes := lo.Keys(streams)
	sort.Strings(codes)
	codes = lo.Filter(codes, func(c string, _ int) bool { return len(streams[c]) > 0 })
	if len(codes) == 0 {
		return nil, ErrNoStreams
	}

	tMin := streams[codes[0]][0].T
	tMax := streams[codes[0]][len(streams[codes[0]])-1].T
	totalLaps := 0
	for _, code := range codes {
		pts := streams[code]
		tMin = min(tMin, pts[0].T)
		tMax = max(tMax, pts[len(pts)-1].T)
		totalLaps = max(totalLaps, pts[len(pts)-1].Lap)
	}

	step := 1.0 / float64(r.fps)
	// the epsilon keeps a span that is an exact multiple of the step
	// from losing its final tick to float truncation
	numTicks := int((tMax-tMin)*float64(r.fps)+1e-9) + 1

	cursors := make(map[string]*cursor, len(codes))
	for _, code := range codes {
		cursors[code] = &cursor{pts: streams[code]}
	}
	wc := &weatherCursor{samples: weather}

	r.log.Debug("resampling",
		log.Int("drivers", len(codes)),
		log.Int("ticks", numTicks),
		log.Int("fps", r.fps))

	frames := make([]model.Frame, 0, numTicks)
	for i := 0; i < numTicks; i++ {
		// index based to keep tick times exact and reproducible
		rel := float64(i) * step
		abs := tMin + rel

		drivers := make(map[string]model.DriverState, len(codes))
		for _, code := range codes {
			drivers[code] = cursors[code].stateAt(abs)
		}
		frame := model.Frame{T: rel, Drivers: drivers}
		if w, ok := wc.at(abs); ok {
			frame.Weather = &w
		}
		frames = append(frames, frame)
	}

	return &model.Timeline{
		FPS:       r.fps,
		Start:     tMin,
		TotalLaps: totalLaps,
		Frames:    frames,
	}, nil
}

// stateAt returns the driver state for the given absolute time,
// advancing the cursor as needed. Callers must pass non-decreasing
// times.
func (c *cursor) stateAt(t float64) model.DriverState {
	first := c.pts[0]
	if t < first.T {
		// not yet on track: excluded from ranking, not OUT
		return model.DriverState{Compound: model.CompoundUnknown}
	}
	for c.idx+1 < len(c.pts) && c.pts[c.idx+1].T <= t {
		c.idx++
	}
	a := c.pts[c.idx]
	state := model.DriverState{
		X:        a.X,
		Y:        a.Y,
		Speed:    a.Speed,
		Gear:     a.Gear,
		Throttle: a.Throttle,
		Brake:    a.Brake,
		DRS:      a.DRS,
		Compound: a.Compound,
		Lap:      a.Lap,
		RaceDist: a.RaceDist,
		OnTrack:  true,
		Active:   true,
	}
	if c.idx == len(c.pts)-1 {
		if t > a.T {
			// stream exhausted: hold last known state, mark inactive
			state.Active = false
		}
		return state
	}
	b := c.pts[c.idx+1]
	if b.Hole || b.T <= a.T {
		// data hole: hold last state instead of inventing motion
		return state
	}
	alpha := (t - a.T) / (b.T - a.T)
	state.X = lerp(a.X, b.X, alpha)
	state.Y = lerp(a.Y, b.Y, alpha)
	state.Speed = lerp(a.Speed, b.Speed, alpha)
	state.Throttle = lerp(a.Throttle, b.Throttle, alpha)
	state.Brake = lerp(a.Brake, b.Brake, alpha)
	state.RaceDist = lerp(a.RaceDist, b.RaceDist, alpha)
	// gear, DRS, compound and lap are discrete: nearest preceding value
	return state
}

type weatherCursor struct {
	samples []model.WeatherSample
	idx     int
}

func (w *weatherCursor) at(t float64) (model.Weather, bool) {
	if len(w.samples) == 0 || t < w.samples[0].SessionTime {
		return model.Weather{}, false
	}
	for w.idx+1 < len(w.samples) && w.samples[w.idx+1].SessionTime <= t {
		w.idx++
	}
	a := w.samples[w.idx]
	ret := model.Weather{
		TrackTemp: a.TrackTemp,
		AirTemp:   a.AirTemp,
		Humidity:  a.Humidity,
		WindSpeed: a.WindSpeed,
	}
	rainfall := a.Rainfall
	if w.idx+1 < len(w.samples) {
		b := w.samples[w.idx+1]
		if b.SessionTime > a.SessionTime {
			alpha := (t - a.SessionTime) / (b.SessionTime - a.SessionTime)
			ret.TrackTemp = lerp(a.TrackTemp, b.TrackTemp, alpha)
			ret.AirTemp = lerp(a.AirTemp, b.AirTemp, alpha)
			ret.Humidity = lerp(a.Humidity, b.Humidity, alpha)
			ret.WindSpeed = lerp(a.WindSpeed, b.WindSpeed, alpha)
			// rainfall interpolates like the other channels, so the
			// flag flips halfway into an onset
			rainfall = lerp(a.Rainfall, b.Rainfall, alpha)
		}
	}
	ret.Raining = rainfall >= 0.5
	return ret, true
}

func lerp(a, b, alpha float64) float64 {
	return a + (b-a)*alpha
}
