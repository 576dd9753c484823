// Package normalize turns the per-driver, per-lap raw sample lists of
// the provider into one clean stream per driver: sorted by time,
// deduplicated, with the cumulative race distance computed.
package normalize

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/openrace/f1-replay-go/log"
	"github.com/openrace/f1-replay-go/pkg/model"
)

// MalformedSampleError marks one driver's raw data as unusable. The
// affected driver is dropped from the session; the pipeline continues.
type MalformedSampleError struct {
	Driver string
	Lap    int
	Reason string
}

func (e *MalformedSampleError) Error() string {
	return fmt.Sprintf("malformed sample data for driver %s lap %d: %s",
		e.Driver, e.Lap, e.Reason)
}

const DefaultGapThreshold = 2 * time.Second

type Normalizer struct {
	gapThreshold float64 // seconds
	year         int
	log          *log.Logger
}

type Option func(n *Normalizer)

func WithGapThreshold(d time.Duration) Option {
	return func(n *Normalizer) {
		n.gapThreshold = d.Seconds()
	}
}

// WithYear selects the season specific tyre compound mapping.
func WithYear(year int) Option {
	return func(n *Normalizer) {
		n.year = year
	}
}

func WithLogger(l *log.Logger) Option {
	return func(n *Normalizer) {
		n.log = l
	}
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		gapThreshold: DefaultGapThreshold.Seconds(),
		log:          log.Default().Named("processing.normalize"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ReferenceLapLengths computes per lap the longest observed in-lap
// distance across all drivers. Using the maximum guards against a
// single driver's truncated lap skewing the race distance scale.
func ReferenceLapLengths(all map[string][]model.LapSamples) map[int]float64 {
	ret := make(map[int]float64)
	for _, laps := range all {
		for i := range laps {
			if len(laps[i].Samples) == 0 {
				continue
			}
			last := lo.MaxBy(laps[i].Samples, func(a, b model.RawSample) bool {
				return a.LapDist > b.LapDist
			})
			if last.LapDist > ret[laps[i].Lap] {
				ret[laps[i].Lap] = last.LapDist
			}
		}
	}
	return ret
}

// NormalizeDriver produces the ordered NormalizedPoint stream for one
// driver. refLens must cover every lap the driver completed.
//
//nolint:funlen // straight pipeline
func (n *Normalizer) NormalizeDriver(
	code string,
	laps []model.LapSamples,
	refLens map[int]float64,
) ([]model.NormalizedPoint, error) {
	ret := make([]model.NormalizedPoint, 0, totalSamples(laps))

	distSoFar := 0.0 // sum of reference lengths of completed laps
	lastDist := 0.0
	lastLap := 0

	for i := range laps {
		lap := &laps[i]
		if lap.Lap <= lastLap {
			return nil, &MalformedSampleError{
				Driver: code, Lap: lap.Lap,
				Reason: fmt.Sprintf("lap number not increasing (prev %d)", lastLap),
			}
		}
		lastLap = lap.Lap

		samples, err := n.cleanLap(code, lap)
		if err != nil {
			return nil, err
		}
		compound := model.CompoundFromName(lap.Compound, n.year)

		for j := range samples {
			s := &samples[j]
			raceDist := distSoFar + s.LapDist
			if raceDist < lastDist {
				// distance anomaly: clamp, never propagate a decrease
				n.log.Debug("clamping race distance",
					log.String("driver", code),
					log.Int("lap", lap.Lap),
					log.Float64("raceDist", raceDist),
					log.Float64("clampedTo", lastDist))
				raceDist = lastDist
			}
			lastDist = raceDist

			p := model.NormalizedPoint{
				T:        s.SessionTime,
				Lap:      lap.Lap,
				LapDist:  s.LapDist,
				RaceDist: raceDist,
				X:        s.X,
				Y:        s.Y,
				Speed:    s.Speed,
				Gear:     s.Gear,
				Throttle: s.Throttle,
				Brake:    s.Brake,
				DRS:      s.DRS,
				Compound: compound,
			}
			ret = append(ret, p)
		}

		// advance by the cross-driver reference, not this driver's own
		// (possibly cut) lap length
		if ref, ok := refLens[lap.Lap]; ok && len(samples) > 0 {
			if distSoFar+ref > lastDist {
				distSoFar += ref
			} else {
				distSoFar = lastDist
			}
		}
	}

	// providers occasionally deliver laps whose samples overlap in time;
	// restore global time order, then re-clamp the distance and re-derive
	// the hole flags against the sorted predecessors
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].T < ret[j].T })
	maxDist := 0.0
	for i := range ret {
		if ret[i].RaceDist < maxDist {
			ret[i].RaceDist = maxDist
		}
		maxDist = ret[i].RaceDist
		ret[i].Hole = i > 0 && ret[i].T-ret[i-1].T > n.gapThreshold
	}
	return ret, nil
}

// cleanLap sorts one lap's samples by time, drops duplicate timestamps
// (keeping the last) and validates required fields.
func (n *Normalizer) cleanLap(
	code string,
	lap *model.LapSamples,
) ([]model.RawSample, error) {
	samples := make([]model.RawSample, len(lap.Samples))
	copy(samples, lap.Samples)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].SessionTime < samples[j].SessionTime
	})

	cleaned := samples[:0]
	for i := range samples {
		s := samples[i]
		switch {
		case s.SessionTime < 0 || !finite(s.SessionTime):
			return nil, &MalformedSampleError{
				Driver: code, Lap: lap.Lap, Reason: "invalid session time",
			}
		case s.LapDist < 0:
			return nil, &MalformedSampleError{
				Driver: code, Lap: lap.Lap,
				Reason: fmt.Sprintf("negative lap distance %.1f", s.LapDist),
			}
		case !finite(s.X) || !finite(s.Y):
			return nil, &MalformedSampleError{
				Driver: code, Lap: lap.Lap, Reason: "non-finite position",
			}
		}
		if len(cleaned) > 0 && cleaned[len(cleaned)-1].SessionTime == s.SessionTime {
			cleaned[len(cleaned)-1] = s // duplicate timestamp: keep last
			continue
		}
		cleaned = append(cleaned, s)
	}
	return cleaned, nil
}

func totalSamples(laps []model.LapSamples) int {
	return lo.SumBy(laps, func(l model.LapSamples) int { return len(l.Samples) })
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
