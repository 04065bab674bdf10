package player

import (
	"io"
	"time"

	"github.com/lockstep-cli/lockstep/clock"
	"github.com/lockstep-cli/lockstep/key"
	"github.com/lockstep-cli/lockstep/log"
	"github.com/lockstep-cli/lockstep/media"
	"github.com/spf13/viper"
)

// minNap is the smallest pause worth scheduling between frames; anything
// shorter is absorbed by decoding the next frame immediately.
const minNap = 5 * time.Millisecond

// Video plays one video stream. Frames are delivered to a Presenter; when
// decoding falls behind the wall clock the loop seeks forward rather than
// letting the stream lag, so a slow machine degrades instead of drifting.
type Video struct {
	base
	presenter Presenter
}

// NewVideo builds an unloaded video handle rendering to presenter, which may
// be nil for headless runs.
func NewVideo(clk clock.Clock, presenter Presenter, loads chan<- LoadResult, ticks chan<- Tick) *Video {
	v := &Video{base: newBase(clk, loads, ticks), presenter: presenter}
	v.run = v.loop
	return v
}

// Load opens the file and verifies it decodes to video frames.
func (v *Video) Load(path string) bool {
	return v.load(path, KindVideo, func(path string) (media.Source, error) {
		src, err := media.Open(path)
		if err != nil {
			return nil, err
		}
		if src.Info().Type != media.Video {
			_ = src.Close()
			return nil, errNotVideo(path)
		}
		return src, nil
	})
}

type errNotVideo string

func (e errNotVideo) Error() string { return string(e) + ": not a video stream" }

func (v *Video) present(frame media.Unit) {
	if v.presenter != nil {
		v.presenter.Present(frame)
	}
}

// loop renders frames from the prepared position to the period's end. Every
// frame is compared against the wall-clock schedule derived from the start
// anchor: early frames nap, late ones trigger a catch-up seek.
func (v *Video) loop(quit <-chan struct{}) {
	v.mu.Lock()
	src := v.src
	fps := src.Info().Rate
	endOff := v.offsetLocked(v.period.End)
	anchor := v.anchor
	v.mu.Unlock()

	margin := time.Duration(viper.GetInt(key.PlayNapMarginMs)) * time.Millisecond
	skipped := 0

	for {
		select {
		case <-quit:
			return
		default:
		}

		if src.Position() >= endOff {
			v.finishRun(skipped)
			return
		}

		unit, err := src.ReadUnit()
		if err != nil {
			if err != io.EOF {
				log.Errorf("play %s: decode: %v", v.Filename(), err)
			}
			v.finishRun(skipped)
			return
		}

		due := anchor.Wall.Add(time.Duration((float64(unit.Offset)/fps - anchor.Position) * float64(time.Second)))
		now := v.clk.Now()

		if now.Before(due) {
			if nap := due.Sub(now) - margin; nap > minNap {
				select {
				case <-quit:
					return
				case <-v.clk.After(nap):
				}
			}
			v.present(unit)
			continue
		}

		// Behind schedule: show the late frame, then jump the decoder to
		// where the clock says we should be.
		v.present(unit)
		expected := int64(anchor.PositionAt(now) * fps)
		if expected > src.Position() && expected < endOff {
			skipped += int(expected - src.Position())
			if err := src.Seek(expected); err != nil {
				log.Errorf("play %s: catch-up seek: %v", v.Filename(), err)
				v.finishRun(skipped)
				return
			}
		}
	}
}

func (v *Video) finishRun(skipped int) {
	if skipped > 0 {
		log.Warnf("play %s: skipped %d frames to hold the schedule", v.Filename(), skipped)
	}
	v.finish()
}

// PlayFrame steps the stream by direction native frames while stopped or
// paused and renders the landed-on frame. The decoder is left one frame
// ahead of the shown one, as after normal playback.
func (v *Video) PlayFrame(direction int) bool {
	if direction == 0 {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.src == nil || (v.state != StateStopped && v.state != StatePaused) {
		log.Warnf("play frame %s refused: handle is %s", v.filename, v.state)
		return false
	}

	info := v.src.Info()
	shown := v.src.Position() - 1
	if shown < 0 {
		shown = 0
	}

	target := shown + int64(direction)
	if target < 0 || target >= info.Units {
		log.Warnf("play frame %s refused: frame %d out of range", v.filename, target)
		return false
	}

	if err := v.src.Seek(target); err != nil {
		log.Errorf("play frame %s: %v", v.filename, err)
		return false
	}
	unit, err := v.src.ReadUnit()
	if err != nil {
		log.Errorf("play frame %s: decode: %v", v.filename, err)
		return false
	}

	if v.presenter != nil {
		v.presenter.Present(unit)
	}
	// Report the instant at the middle of the shown frame.
	v.from = (float64(target) + 0.5) / info.Rate
	return true
}
