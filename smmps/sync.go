package smmps

import (
	"time"

	"github.com/lockstep-cli/lockstep/log"
	"github.com/lockstep-cli/lockstep/player"
	"github.com/lockstep-cli/lockstep/util"
)

// inFlight is the shared-position sentinel while an interval plays.
const inFlight = -1.0

// Period returns the shared rendering range.
func (p *Player) Period() player.Period {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.period
}

// effectivePeriod substitutes the full media range while no period has been
// installed.
func (p *Player) effectivePeriod() player.Period {
	period := p.Period()
	if period.Duration() > 0 {
		return period
	}
	return player.Period{Start: 0, End: p.Duration()}
}

// SetPeriod installs the shared rendering range on every stream. It is only
// legal while everything is at rest, and rewinds streams whose position fell
// outside the new range.
func (p *Player) SetPeriod(start, end float64) error {
	if start > end {
		return player.ErrInvalidPeriod
	}
	if p.IsPlaying() {
		return ErrPlaying
	}
	if p.IsPaused() {
		return ErrPaused
	}

	period := player.Period{Start: start, End: end}.Clamp(p.Duration())

	p.mu.Lock()
	p.period = period
	rewind := p.cur < period.Start || p.cur >= period.End
	p.mu.Unlock()

	for _, h := range p.enabledHandles() {
		if !seekable(h) {
			continue
		}
		if err := h.SetPeriod(period.Start, period.End); err != nil {
			log.Errorf("set period %s: %v", h.Filename(), err)
		}
	}

	if rewind {
		p.mu.Lock()
		p.cur = period.Start
		p.mu.Unlock()
	}
	return nil
}

// Play starts a synchronized run over the shared period, resuming from the
// shared position when it lies inside the range.
func (p *Player) Play() error {
	period := p.effectivePeriod()

	p.mu.Lock()
	from := p.cur
	p.mu.Unlock()

	start := util.Max(period.Start, from)
	return p.PlayInterval(start, period.End)
}

// PlayInterval starts every enabled stream over [from, to] in lock-step.
//
// Videos start first. Audio streams follow in registration order, each one
// asked to start slightly ahead of real time: the launch delay observed for
// every previously started stream is accumulated and added to the requested
// start position, so that once all workers are up, the streams sound and
// render the same instant of media.
func (p *Player) PlayInterval(from, to float64) error {
	if from > to {
		return player.ErrInvalidPeriod
	}
	if p.IsLoading() {
		return ErrLoading
	}
	if p.IsPlaying() {
		return ErrPlaying
	}

	handles := p.enabledHandles()

	p.mu.Lock()
	p.cur = inFlight
	p.mu.Unlock()

	var prev time.Time
	started := 0

	for _, h := range handles {
		if h.Kind() != player.KindVideo {
			continue
		}
		if h.PreparePlay(from, to) && h.Play() {
			if prev.IsZero() {
				prev = h.StartedAt()
			}
			started++
		}
	}

	shift := 0.0
	for _, h := range handles {
		if h.Kind() != player.KindAudio {
			continue
		}

		if !prev.IsZero() {
			delay := p.clk.Now().Sub(prev).Seconds()
			if delay > 0 {
				p.delays.Record(delay)
				shift += delay
			}
		}

		if h.PreparePlay(from+shift, to) && h.Play() {
			if prev.IsZero() {
				// Nothing was timed before the first audio. Back-date its
				// start by the historical mean so the next stream still
				// compensates for this one's spin-up.
				prev = h.StartedAt().Add(-time.Duration(p.delays.Mean() * float64(time.Second)))
			} else {
				prev = h.StartedAt()
			}
			started++
		}
	}

	if started == 0 {
		p.mu.Lock()
		p.cur = util.Clamp(from, p.period.Start, p.period.End)
		p.mu.Unlock()
	}
	log.Debugf("play interval [%v, %v]: started %s", from, to,
		util.Quantify(started, "stream", "streams"))
	return nil
}

// Pause freezes every playing stream and records the position of the first
// one observed pausing as the new shared one. It reports whether anything
// was playing.
func (p *Player) Pause() bool {
	paused := false
	var pos float64
	for _, h := range p.enabledHandles() {
		if !h.Pause() {
			continue
		}
		if !paused {
			pos = h.Tell()
			paused = true
		}
	}
	if !paused {
		return false
	}

	p.mu.Lock()
	p.cur = pos
	p.mu.Unlock()
	return true
}

// Stop halts every stream and rewinds the shared position to the period
// start. It reports whether anything was playing or paused.
func (p *Player) Stop() bool {
	stopped := false
	for _, h := range p.enabledHandles() {
		if h.Stop() {
			stopped = true
		}
	}

	p.mu.Lock()
	p.cur = p.period.Start
	p.mu.Unlock()
	return stopped
}

// Seek moves every stream to t, clamped to the media and the period. A
// playing system is paused around the move and resumed after it.
func (p *Player) Seek(t float64) error {
	if p.IsLoading() {
		return ErrLoading
	}

	period := p.effectivePeriod()
	t = util.Clamp(t, period.Start, util.Min(period.End, p.Duration()))

	wasPlaying := p.IsPlaying()
	if wasPlaying {
		p.Pause()
	}

	for _, h := range p.enabledHandles() {
		if !seekable(h) {
			continue
		}
		h.Seek(t)
	}

	p.mu.Lock()
	p.cur = t
	p.mu.Unlock()

	if wasPlaying {
		return p.PlayInterval(t, period.End)
	}
	return nil
}

// Tell returns the latest position any enabled stream has reached, or the
// shared position when everything is at rest.
func (p *Player) Tell() float64 {
	var tells []float64
	for _, h := range p.enabledHandles() {
		if !seekable(h) {
			continue
		}
		tells = append(tells, h.Tell())
	}

	if len(tells) > 0 {
		return util.Max(tells...)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return util.Max(p.cur, 0)
}

// Reset returns the coordinator to its initial empty state. Playing streams
// must be stopped first; paused ones are stopped here.
func (p *Player) Reset() error {
	if p.IsPlaying() {
		return ErrPlaying
	}
	p.Stop()

	p.mu.Lock()
	entries := p.entries
	p.entries = nil
	p.period = player.Period{}
	p.cur = 0
	p.mu.Unlock()

	for _, e := range entries {
		if err := e.handle.Close(); err != nil {
			log.Errorf("reset %s: close: %v", e.handle.Filename(), err)
		}
	}
	return nil
}

// seekable excludes streams that cannot hold a position: still unknown,
// loading, or undecodable.
func seekable(h player.Handle) bool {
	switch h.Kind() {
	case player.KindAudio, player.KindVideo:
	default:
		return false
	}
	switch h.State() {
	case player.StateUnknown, player.StateLoading:
		return false
	}
	return true
}
