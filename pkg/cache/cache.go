// Package cache persists resampled timelines keyed by session
// fingerprint so subsequent runs skip the normalize/resample phase.
//
// One gzip compressed JSON file per fingerprint. Writes go to a
// temporary file first and are promoted by rename, so a crash mid-write
// never leaves a corrupt entry behind that a later load would trust.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/afero"

	"github.com/openrace/f1-replay-go/log"
	"github.com/openrace/f1-replay-go/pkg/model"
)

// SchemaVersion is bumped whenever the on-disk layout changes. Entries
// with a different version are treated as a miss, not an error.
const SchemaVersion = 1

var ErrCacheMiss = errors.New("cache miss")

// envelope is the on-disk record.
type envelope struct {
	Schema      int             `json:"schema"`
	Fingerprint string          `json:"fingerprint"`
	Timeline    *model.Timeline `json:"timeline"`
}

type Store struct {
	fs  afero.Fs
	dir string
	log *log.Logger
}

type Option func(s *Store)

// WithFs replaces the backing filesystem (tests use an in-memory one).
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

func WithDir(dir string) Option {
	return func(s *Store) {
		s.dir = dir
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		fs:  afero.NewOsFs(),
		dir: "computed-data",
		log: log.Default().Named("cache"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(fingerprint string) string {
	return filepath.Join(s.dir, fingerprint+".json.gz")
}

// keys sorted for reproducible output
var writeOpts = ojg.Options{Sort: true, OmitNil: true, UseTags: true}

// Load returns the timeline stored for the fingerprint. A missing
// entry, a schema mismatch or a fingerprint mismatch yield
// ErrCacheMiss; callers recompute in that case.
func (s *Store) Load(fingerprint string) (*model.Timeline, error) {
	f, err := s.fs.Open(s.path(fingerprint))
	if err != nil {
		return nil, ErrCacheMiss
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		s.log.Warn("unreadable cache entry",
			log.String("fingerprint", fingerprint), log.ErrorField(err))
		return nil, ErrCacheMiss
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		s.log.Warn("unreadable cache entry",
			log.String("fingerprint", fingerprint), log.ErrorField(err))
		return nil, ErrCacheMiss
	}

	var env envelope
	if err := oj.Unmarshal(data, &env); err != nil {
		s.log.Warn("undecodable cache entry",
			log.String("fingerprint", fingerprint), log.ErrorField(err))
		return nil, ErrCacheMiss
	}
	if env.Schema != SchemaVersion {
		s.log.Info("cache schema mismatch, recomputing",
			log.Int("found", env.Schema), log.Int("want", SchemaVersion))
		return nil, ErrCacheMiss
	}
	if env.Fingerprint != fingerprint || env.Timeline == nil {
		return nil, ErrCacheMiss
	}
	return env.Timeline, nil
}

// Store persists the timeline for the fingerprint. The write is
// atomic; a canceled context leaves no file behind.
func (s *Store) Store(ctx context.Context, fingerprint string, tl *model.Timeline) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	data, err := oj.Marshal(envelope{
		Schema:      SchemaVersion,
		Fingerprint: fingerprint,
		Timeline:    tl,
	}, &writeOpts)
	if err != nil {
		return fmt.Errorf("encoding timeline: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, "."+fingerprint+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		//nolint:errcheck // best effort
		s.fs.Remove(tmpName)
	}

	zw := gzip.NewWriter(tmp)
	if _, err := zw.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		cleanup()
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("writing cache entry: %w", err)
	}
	// do not promote a write raced by cancellation
	if err := ctx.Err(); err != nil {
		//nolint:errcheck // best effort
		s.fs.Remove(tmpName)
		return err
	}
	if err := s.fs.Rename(tmpName, s.path(fingerprint)); err != nil {
		//nolint:errcheck // best effort
		s.fs.Remove(tmpName)
		return fmt.Errorf("promoting cache entry: %w", err)
	}
	s.log.Info("timeline cached",
		log.String("fingerprint", fingerprint),
		log.Int("frames", tl.Len()))
	return nil
}

// Invalidate removes the entry for the fingerprint if present.
func (s *Store) Invalidate(fingerprint string) {
	//nolint:errcheck // best effort
	s.fs.Remove(s.path(fingerprint))
}
