package cache

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/openrace/f1-replay-go/pkg/model"
)

func sampleTimeline() *model.Timeline {
	return &model.Timeline{
		FPS:       25,
		Start:     3621.04,
		TotalLaps: 2,
		Drivers: []model.Driver{
			{
				Code: "AAA", Number: "1", Name: "Driver A", Team: "Team A",
				Color:  model.RGB{R: 10, G: 20, B: 30},
				Stints: []model.Stint{{Lap: 1, Compound: model.CompoundSoft}},
			},
		},
		Statuses: []model.TrackStatus{
			{Status: model.StatusYellow, Start: 1.5, End: 9.25},
			{Status: model.StatusClear, Start: 9.25, End: -1},
		},
		Frames: []model.Frame{
			{
				T: 0,
				Drivers: map[string]model.DriverState{
					"AAA": {
						X: 1.5, Y: -2.25, Speed: 280.5, Gear: 7, DRS: 12,
						Throttle: 99.5, Brake: 0,
						Compound: model.CompoundSoft, Lap: 1,
						RaceDist: 1234.5, OnTrack: true, Active: true,
					},
				},
			},
			{
				T: 0.04,
				Drivers: map[string]model.DriverState{
					"AAA": {
						X: 4.5, Compound: model.CompoundSoft, Lap: 1,
						RaceDist: 1237.5, OnTrack: true, Active: true,
					},
				},
				Weather: &model.Weather{TrackTemp: 41.5, AirTemp: 22, Raining: true},
			},
		},
	}
}

// recompress unzips a cache entry, patches the JSON and zips it again.
func recompress(t *testing.T, raw []byte, patch func(string) string) []byte {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	assert.NoError(t, err)
	plain, err := io.ReadAll(zr)
	assert.NoError(t, err)
	assert.NoError(t, zr.Close())

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write([]byte(patch(string(plain))))
	assert.NoError(t, err)
	assert.NoError(t, zw.Close())
	return buf.Bytes()
}

func memStore() *Store {
	return NewStore(WithFs(afero.NewMemMapFs()), WithDir("computed-data"))
}

func TestStore_roundTrip(t *testing.T) {
	store := memStore()
	want := sampleTimeline()
	fp := model.SessionInfo{
		Year: 2024, EventName: "Monza", SessionType: "R", DataVersion: "v1",
	}.Fingerprint()

	assert.NoError(t, store.Store(context.Background(), fp, want))

	got, err := store.Load(fp)
	assert.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("timeline did not round-trip (-want +got):\n%s", diff)
	}
}

func TestStore_missOnUnknownFingerprint(t *testing.T) {
	store := memStore()
	fp := model.SessionInfo{Year: 2024, EventName: "Monza"}.Fingerprint()
	assert.NoError(t, store.Store(context.Background(), fp, sampleTimeline()))

	other := model.SessionInfo{Year: 2024, EventName: "Spa"}.Fingerprint()
	_, err := store.Load(other)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestStore_missOnSchemaMismatch(t *testing.T) {
	store := memStore()
	fp := model.SessionInfo{Year: 2023, EventName: "Suzuka"}.Fingerprint()
	assert.NoError(t, store.Store(context.Background(), fp, sampleTimeline()))

	// an entry written by a different engine version must read as a miss
	raw, err := afero.ReadFile(store.fs, store.path(fp))
	assert.NoError(t, err)
	patched := recompress(t, raw, func(s string) string {
		return strings.Replace(s, `"schema":1`, `"schema":99`, 1)
	})
	assert.NoError(t, afero.WriteFile(store.fs, store.path(fp), patched, 0o644))

	_, err = store.Load(fp)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestStore_missOnCorruptEntry(t *testing.T) {
	store := memStore()
	fp := model.SessionInfo{Year: 2023, EventName: "Spa"}.Fingerprint()
	assert.NoError(t,
		afero.WriteFile(store.fs, store.path(fp), []byte("not gzip"), 0o644))

	_, err := store.Load(fp)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestStore_canceledWriteLeavesNothing(t *testing.T) {
	store := memStore()
	fp := model.SessionInfo{Year: 2022, EventName: "Imola"}.Fingerprint()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := store.Store(ctx, fp, sampleTimeline())
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Load(fp)
	assert.ErrorIs(t, err, ErrCacheMiss)

	// no stray temp files either
	entries, err := afero.ReadDir(store.fs, "computed-data")
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_invalidate(t *testing.T) {
	store := memStore()
	fp := model.SessionInfo{Year: 2024, EventName: "Monza"}.Fingerprint()
	assert.NoError(t, store.Store(context.Background(), fp, sampleTimeline()))

	store.Invalidate(fp)
	_, err := store.Load(fp)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
