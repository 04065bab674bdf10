package player

import (
	"io"
	"time"

	"github.com/lockstep-cli/lockstep/clock"
	"github.com/lockstep-cli/lockstep/log"
	"github.com/lockstep-cli/lockstep/media"
)

// Audio plays one audio stream, pacing sample blocks against the wall clock.
type Audio struct {
	base
}

// NewAudio builds an unloaded audio handle. Load outcomes and position ticks
// are published on the given channels, either of which may be nil.
func NewAudio(clk clock.Clock, loads chan<- LoadResult, ticks chan<- Tick) *Audio {
	a := &Audio{base: newBase(clk, loads, ticks)}
	a.run = a.loop
	return a
}

// Load opens the file and verifies it decodes to audio units.
func (a *Audio) Load(path string) bool {
	return a.load(path, KindAudio, func(path string) (media.Source, error) {
		src, err := media.Open(path)
		if err != nil {
			return nil, err
		}
		if src.Info().Type != media.Audio {
			_ = src.Close()
			return nil, errNotAudio(path)
		}
		return src, nil
	})
}

type errNotAudio string

func (e errNotAudio) Error() string { return string(e) + ": not an audio stream" }

// loop decodes sample blocks from the prepared position to the period's end.
// Each block is scheduled at the absolute instant its first sample is due,
// so pacing errors never accumulate.
func (a *Audio) loop(quit <-chan struct{}) {
	a.mu.Lock()
	src := a.src
	rate := src.Info().Rate
	endOff := a.offsetLocked(a.period.End)
	anchor := a.anchor
	a.mu.Unlock()

	// The worker never starts exactly at the anchor instant; skip the
	// samples that would already have sounded.
	if late := a.clk.Now().Sub(anchor.Wall).Seconds(); late > 0 {
		skip := int64(late * rate)
		if target := src.Position() + skip; skip > 0 && target < endOff {
			if err := src.Seek(target); err != nil {
				log.Errorf("play %s: skip-ahead: %v", a.Filename(), err)
				a.finish()
				return
			}
			log.Debugf("play %s: skipped %d samples of start latency", a.Filename(), skip)
		}
	}

	for {
		select {
		case <-quit:
			return
		default:
		}

		if src.Position() >= endOff {
			a.finish()
			return
		}

		unit, err := src.ReadUnit()
		if err != nil {
			if err != io.EOF {
				log.Errorf("play %s: decode: %v", a.Filename(), err)
			}
			a.finish()
			return
		}

		// Block until the instant the *next* block is due.
		next := float64(unit.Offset+int64(unit.Count)) / rate
		due := anchor.Wall.Add(time.Duration((next - anchor.Position) * float64(time.Second)))
		if wait := due.Sub(a.clk.Now()); wait > 0 {
			select {
			case <-quit:
				return
			case <-a.clk.After(wait):
			}
		}
	}
}
