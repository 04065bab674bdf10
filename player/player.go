// Package player implements single-stream media playback: a state machine
// per stream, a worker goroutine that paces decoding against the wall clock,
// and deterministic pause/stop joins. Streams of any kind expose the same
// Handle interface so a coordinator can drive them uniformly.
package player

import (
	"errors"
	"time"

	"github.com/lockstep-cli/lockstep/media"
)

// ErrInvalidPeriod reports a period whose start lies after its end.
var ErrInvalidPeriod = errors.New("invalid period: start after end")

// Period is the half-open time range [Start, End) a stream is allowed to
// render, in seconds.
type Period struct {
	Start, End float64
}

// Duration returns the period length in seconds.
func (p Period) Duration() float64 {
	return p.End - p.Start
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t float64) bool {
	return t >= p.Start && t < p.End
}

// Clamp intersects the period with [0, duration].
func (p Period) Clamp(duration float64) Period {
	start := p.Start
	if start < 0 {
		start = 0
	}
	if start > duration {
		start = duration
	}
	end := p.End
	if end < 0 {
		end = 0
	}
	if end > duration {
		end = duration
	}
	return Period{Start: start, End: end}
}

// Presenter receives decoded video frames for display.
type Presenter interface {
	Present(frame media.Unit)
}

// Handle is one registered media stream.
//
// Boolean mutators follow the convention of the underlying state machine:
// they return false and leave the handle untouched when the transition is
// not legal from the current state.
type Handle interface {
	// Load opens the file and moves the handle from Unknown through Loading
	// to Stopped. The outcome is also delivered on the load channel.
	Load(path string) bool

	Close() error

	Filename() string
	State() State
	Kind() Kind
	Info() media.Info
	Duration() float64
	Framerate() float64

	Period() Period

	// SetPeriod installs a new rendering range, stopping and restarting
	// playback around the change when necessary.
	SetPeriod(start, end float64) error

	// PreparePlay narrows the period to [from, to] and positions the decoder
	// at its start, without starting playback.
	PreparePlay(from, to float64) bool

	Play() bool
	Pause() bool
	Stop() bool

	// Seek repositions a non-playing handle inside its period.
	Seek(t float64) bool

	// Tell returns the current position in seconds. While playing it is
	// extrapolated from the start anchor, never polled from the decoder.
	Tell() float64

	// MediaTell returns the decoder's native offset.
	MediaTell() int64

	// PlayFrame steps a paused or stopped video by the given number of
	// native frames, negative for backward.
	PlayFrame(direction int) bool

	// StartedAt returns the wall instant playback last started, zero when
	// not playing.
	StartedAt() time.Time
}
