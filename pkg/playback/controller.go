// Package playback holds the replay cursor: current tick, speed
// multiplier and play/pause state. The host render loop calls Advance
// once per tick and reads the selected frame synchronously; the
// controller never mutates the timeline it points into.
package playback

import (
	"time"

	"github.com/openrace/f1-replay-go/pkg/model"
)

// Speeds is the discrete multiplier ladder stepped by SpeedUp/SpeedDown.
var Speeds = []float64{0.1, 0.2, 0.5, 1, 2, 4, 8, 16, 32, 64, 128, 256}

type Controller struct {
	numFrames int
	fps       int
	idx       float64 // fractional frame accumulation
	speed     float64
	playing   bool
}

type Option func(c *Controller)

func WithSpeed(multiplier float64) Option {
	return func(c *Controller) {
		c.speed = clampSpeed(multiplier)
	}
}

func WithAutoPlay() Option {
	return func(c *Controller) {
		c.playing = true
	}
}

// NewController creates a controller addressing the given timeline.
// Only length and rate are kept; the timeline itself stays untouched.
func NewController(tl *model.Timeline, opts ...Option) *Controller {
	c := &Controller{
		numFrames: tl.Len(),
		fps:       tl.FPS,
		speed:     1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Play()         { c.playing = true }
func (c *Controller) Pause()        { c.playing = false }
func (c *Controller) Toggle()       { c.playing = !c.playing }
func (c *Controller) Playing() bool { return c.playing }

func (c *Controller) Len() int       { return c.numFrames }
func (c *Controller) Speed() float64 { return c.speed }

// Tick returns the current frame index, always within
// [0, len(timeline)-1].
func (c *Controller) Tick() int {
	return int(c.idx)
}

// AtEnd reports whether the cursor sits on the last frame.
func (c *Controller) AtEnd() bool {
	return c.Tick() >= c.numFrames-1
}

// Seek jumps to the given tick. Out of range targets clamp silently;
// the play/pause state is unchanged unless the cursor lands on the
// terminal tick.
func (c *Controller) Seek(tick int) {
	c.idx = c.clampIdx(float64(tick))
	c.pauseAtEnd()
}

// Step moves by n ticks (negative rewinds), clamped to the timeline
// bounds.
func (c *Controller) Step(n int) {
	c.idx = c.clampIdx(float64(c.Tick() + n))
	c.pauseAtEnd()
}

// SetSpeed sets the multiplier, clamped to the ladder's range.
func (c *Controller) SetSpeed(multiplier float64) {
	c.speed = clampSpeed(multiplier)
}

// SpeedUp switches to the next higher ladder speed.
func (c *Controller) SpeedUp() {
	for _, s := range Speeds {
		if s > c.speed {
			c.speed = s
			return
		}
	}
}

// SpeedDown switches to the next lower ladder speed.
func (c *Controller) SpeedDown() {
	for i := len(Speeds) - 1; i >= 0; i-- {
		if Speeds[i] < c.speed {
			c.speed = Speeds[i]
			return
		}
	}
}

// Advance moves the cursor by the elapsed wall-clock time while
// playing and returns the current tick. Reaching the last tick pauses
// playback; that is the terminal state, not an error.
func (c *Controller) Advance(elapsed time.Duration) int {
	if !c.playing {
		return c.Tick()
	}
	c.idx = c.clampIdx(c.idx + elapsed.Seconds()*float64(c.fps)*c.speed)
	c.pauseAtEnd()
	return c.Tick()
}

// reaching the last tick is a terminal state: playback pauses there
func (c *Controller) pauseAtEnd() {
	if c.playing && c.AtEnd() {
		c.playing = false
	}
}

func (c *Controller) clampIdx(v float64) float64 {
	if c.numFrames == 0 || v < 0 {
		return 0
	}
	if last := float64(c.numFrames - 1); v > last {
		return last
	}
	return v
}

func clampSpeed(v float64) float64 {
	if v < Speeds[0] {
		return Speeds[0]
	}
	if v > Speeds[len(Speeds)-1] {
		return Speeds[len(Speeds)-1]
	}
	return v
}
