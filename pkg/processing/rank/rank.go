// Package rank derives the per-tick leaderboard from a frame: an
// ordered standing per driver plus the OUT flag for retirements.
package rank

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/openrace/f1-replay-go/pkg/model"
)

const (
	DefaultStallWindow = 75 // ticks, 3s at 25 FPS
	// distance gains below this count as "no progress"
	DefaultEpsilon = 1.0 // metres
)

type Ranker struct {
	stallWindow int
	epsilon     float64
}

type Option func(r *Ranker)

// WithStallWindow sets the number of consecutive ticks of flat race
// distance after which a driver is considered OUT.
func WithStallWindow(ticks int) Option {
	return func(r *Ranker) {
		if ticks > 0 {
			r.stallWindow = ticks
		}
	}
}

func WithEpsilon(metres float64) Option {
	return func(r *Ranker) {
		r.epsilon = metres
	}
}

func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		stallWindow: DefaultStallWindow,
		epsilon:     DefaultEpsilon,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Standings computes the ordered leaderboard for the given tick.
// Drivers not yet on track are excluded. Ordering is total: descending
// race distance, ties broken by driver code for stability.
func (r *Ranker) Standings(tl *model.Timeline, tick int) []model.Standing {
	if tl.Len() == 0 {
		return nil
	}
	tick = clamp(tick, 0, tl.Len()-1)
	frame := &tl.Frames[tick]

	codes := lo.Filter(lo.Keys(frame.Drivers), func(code string, _ int) bool {
		return frame.Drivers[code].OnTrack
	})
	sort.Slice(codes, func(i, j int) bool {
		a, b := frame.Drivers[codes[i]], frame.Drivers[codes[j]]
		if a.RaceDist != b.RaceDist {
			return a.RaceDist > b.RaceDist
		}
		return codes[i] < codes[j]
	})
	if len(codes) == 0 {
		return nil
	}

	leaderDist := frame.Drivers[codes[0]].RaceDist
	ret := make([]model.Standing, 0, len(codes))
	for i, code := range codes {
		state := frame.Drivers[code]
		ret = append(ret, model.Standing{
			Position: i + 1,
			Driver:   code,
			Lap:      state.Lap,
			RaceDist: state.RaceDist,
			Gap:      leaderDist - state.RaceDist,
			Out:      r.out(tl, tick, code),
		})
	}
	return ret
}

// out applies the relative stall test: a driver is OUT when their
// distance stayed flat over the stall window while some other driver
// kept gaining. The relative comparison keeps pit stops and full-field
// cautions from being flagged, since there the whole field slows down.
func (r *Ranker) out(tl *model.Timeline, tick int, code string) bool {
	from := tick - r.stallWindow
	if from < 0 {
		return false
	}
	// a driver who entered the track inside the window has not been
	// flat for the full window
	if a, ok := tl.Frames[from].Drivers[code]; !ok || !a.OnTrack {
		return false
	}
	if gain, ok := gainOf(tl, from, tick, code); !ok || gain > r.epsilon {
		return false
	}
	for other := range tl.Frames[tick].Drivers {
		if other == code {
			continue
		}
		if gain, ok := gainOf(tl, from, tick, other); ok && gain > r.epsilon {
			return true
		}
	}
	return false
}

// gainOf returns the race distance the driver gained between the two
// ticks. A driver who entered the track inside the interval is measured
// from their first on-track frame; ok is false when there is nothing to
// measure against.
func gainOf(tl *model.Timeline, from, to int, code string) (float64, bool) {
	b, okB := tl.Frames[to].Drivers[code]
	if !okB || !b.OnTrack {
		return 0, false
	}
	for i := from; i < to; i++ {
		if a, ok := tl.Frames[i].Drivers[code]; ok && a.OnTrack {
			return b.RaceDist - a.RaceDist, true
		}
	}
	return 0, false
}

// FormatGap renders a gap in metres for display, e.g. "+42.7m".
// The leader (gap 0) renders as "-".
func FormatGap(gap float64) string {
	if gap <= 0 {
		return "-"
	}
	return "+" + decimal.NewFromFloat(gap).Round(1).String() + "m"
}

func clamp(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
