package player

import (
	"time"

	"github.com/lockstep-cli/lockstep/log"
	"github.com/lockstep-cli/lockstep/media"
)

// Unsupported stands in for a file no backend can decode. It contributes its
// duration to aggregate queries and refuses every playback operation, so a
// mixed set of streams keeps a uniform shape.
type Unsupported struct {
	filename string
	duration float64
}

// NewUnsupported wraps a file of known length but undecodable content.
func NewUnsupported(path string, duration float64) *Unsupported {
	return &Unsupported{filename: path, duration: duration}
}

func (u *Unsupported) Load(string) bool { return false }

func (u *Unsupported) Close() error { return nil }

func (u *Unsupported) Filename() string { return u.filename }

func (u *Unsupported) State() State { return StateStopped }

func (u *Unsupported) Kind() Kind { return KindUnsupported }

func (u *Unsupported) Info() media.Info { return media.Info{Path: u.filename} }

func (u *Unsupported) Duration() float64 { return u.duration }

func (u *Unsupported) Framerate() float64 { return 0 }

func (u *Unsupported) Period() Period { return Period{} }

func (u *Unsupported) SetPeriod(start, end float64) error {
	if start > end {
		return ErrInvalidPeriod
	}
	return nil
}

func (u *Unsupported) PreparePlay(float64, float64) bool { return false }

func (u *Unsupported) Play() bool {
	log.Warnf("play %s refused: unsupported media", u.filename)
	return false
}

func (u *Unsupported) Pause() bool { return false }

func (u *Unsupported) Stop() bool { return false }

func (u *Unsupported) Seek(float64) bool { return false }

func (u *Unsupported) Tell() float64 { return 0 }

func (u *Unsupported) MediaTell() int64 { return 0 }

func (u *Unsupported) PlayFrame(int) bool { return false }

func (u *Unsupported) StartedAt() time.Time { return time.Time{} }
