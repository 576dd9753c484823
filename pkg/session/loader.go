// Package session wires the pipeline together: cache lookup, per
// driver normalization, resampling and cache write-back. The whole
// phase runs before playback starts; playback never sees a partial
// timeline.
package session

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openrace/f1-replay-go/log"
	"github.com/openrace/f1-replay-go/pkg/cache"
	"github.com/openrace/f1-replay-go/pkg/model"
	"github.com/openrace/f1-replay-go/pkg/processing/normalize"
	"github.com/openrace/f1-replay-go/pkg/processing/resample"
	"github.com/openrace/f1-replay-go/pkg/provider"
)

// EmptySessionError is fatal: no driver delivered a usable stream, so
// no timeline can be produced.
type EmptySessionError struct {
	Session model.SessionInfo
}

func (e *EmptySessionError) Error() string {
	return fmt.Sprintf("no usable driver streams for session %s (fingerprint %s)",
		e.Session, e.Session.Fingerprint())
}

type Loader struct {
	store        *cache.Store
	fps          int
	gapThreshold time.Duration
	refresh      bool
	workers      int
	log          *log.Logger
}

type Option func(l *Loader)

// WithStore enables the timeline cache. Without a store every Load
// recomputes.
func WithStore(s *cache.Store) Option {
	return func(l *Loader) {
		l.store = s
	}
}

func WithFPS(fps int) Option {
	return func(l *Loader) {
		if fps > 0 {
			l.fps = fps
		}
	}
}

func WithGapThreshold(d time.Duration) Option {
	return func(l *Loader) {
		l.gapThreshold = d
	}
}

// WithRefresh forces recomputation and overwrites the cache entry.
func WithRefresh(refresh bool) Option {
	return func(l *Loader) {
		l.refresh = refresh
	}
}

func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

func WithLogger(lg *log.Logger) Option {
	return func(l *Loader) {
		l.log = lg
	}
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		fps:          resample.DefaultFPS,
		gapThreshold: normalize.DefaultGapThreshold,
		workers:      runtime.NumCPU(),
		log:          log.Default().Named("session"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the replay timeline for the provider's session, from
// cache when possible. Cache failures are never fatal: the computed
// timeline is returned even when persisting it failed.
func (l *Loader) Load(
	ctx context.Context,
	prov provider.SessionProvider,
) (*model.Timeline, error) {
	info := prov.SessionInfo()
	fingerprint := info.Fingerprint()

	if l.store != nil && !l.refresh {
		if tl, err := l.store.Load(fingerprint); err == nil {
			l.log.Info("loaded precomputed timeline",
				log.String("session", info.String()),
				log.Int("frames", tl.Len()))
			return tl, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			return nil, err
		}
	}

	tl, err := l.build(ctx, prov, info)
	if err != nil {
		return nil, err
	}

	if l.store != nil {
		if err := l.store.Store(ctx, fingerprint, tl); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// cache is an optimization: report, keep going in-memory
			l.log.Warn("could not persist timeline",
				log.String("fingerprint", fingerprint),
				log.ErrorField(err))
		}
	}
	return tl, nil
}

//nolint:funlen // sequential pipeline
func (l *Loader) build(
	ctx context.Context,
	prov provider.SessionProvider,
	info model.SessionInfo,
) (*model.Timeline, error) {
	drivers := prov.Drivers()
	allLaps := make(map[string][]model.LapSamples, len(drivers))
	for i := range drivers {
		if laps := prov.DriverLaps(drivers[i].Code); len(laps) > 0 {
			allLaps[drivers[i].Code] = laps
		}
	}
	refLens := normalize.ReferenceLapLengths(allLaps)

	normalizer := normalize.NewNormalizer(
		normalize.WithGapThreshold(l.gapThreshold),
		normalize.WithYear(info.Year),
		normalize.WithLogger(l.log.Named("normalize")),
	)

	l.log.Info("computing timeline",
		log.String("session", info.String()),
		log.Int("drivers", len(allLaps)),
		log.Int("workers", l.workers))

	var mu sync.Mutex
	streams := make(map[string][]model.NormalizedPoint, len(allLaps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for code, laps := range allLaps {
		code, laps := code, laps
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pts, err := normalizer.NormalizeDriver(code, laps, refLens)
			if err != nil {
				var malformed *normalize.MalformedSampleError
				if errors.As(err, &malformed) {
					// isolated per driver: drop the stream, keep the session
					l.log.Warn("dropping driver", log.ErrorField(err))
					return nil
				}
				return err
			}
			mu.Lock()
			streams[code] = pts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, &EmptySessionError{Session: info}
	}

	resampler := resample.NewResampler(
		resample.WithFPS(l.fps),
		resample.WithLogger(l.log.Named("resample")),
	)
	tl, err := resampler.Resample(streams, prov.WeatherSamples())
	if err != nil {
		if errors.Is(err, resample.ErrNoStreams) {
			return nil, &EmptySessionError{Session: info}
		}
		return nil, err
	}

	tl.Drivers = keptDrivers(drivers, streams, allLaps, info.Year)
	tl.Statuses = shiftStatuses(prov.TrackStatuses(), tl.Start)
	return tl, nil
}

// keptDrivers returns the metadata of drivers that survived
// normalization, with their tyre stints derived from the lap data.
func keptDrivers(
	drivers []model.Driver,
	streams map[string][]model.NormalizedPoint,
	allLaps map[string][]model.LapSamples,
	year int,
) []model.Driver {
	ret := make([]model.Driver, 0, len(streams))
	for i := range drivers {
		d := drivers[i]
		if _, ok := streams[d.Code]; !ok {
			continue
		}
		d.Stints = stintsOf(allLaps[d.Code], year)
		ret = append(ret, d)
	}
	return ret
}

func stintsOf(laps []model.LapSamples, year int) []model.Stint {
	var ret []model.Stint
	for i := range laps {
		c := model.CompoundFromName(laps[i].Compound, year)
		if len(ret) == 0 || ret[len(ret)-1].Compound != c {
			ret = append(ret, model.Stint{Lap: laps[i].Lap, Compound: c})
		}
	}
	return ret
}

// shiftStatuses moves provider track statuses from the session clock
// onto the timeline clock (seconds since tick 0).
func shiftStatuses(statuses []model.TrackStatus, start float64) []model.TrackStatus {
	if len(statuses) == 0 {
		return nil
	}
	ret := make([]model.TrackStatus, 0, len(statuses))
	for _, s := range statuses {
		s.Start -= start
		if s.End >= 0 {
			s.End -= start
		}
		ret = append(ret, s)
	}
	return ret
}
