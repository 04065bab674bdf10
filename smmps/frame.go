package smmps

import (
	"math"

	"github.com/lockstep-cli/lockstep/log"
	"github.com/lockstep-cli/lockstep/player"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// PlayFrame steps the whole system by direction frames of the highest-rate
// video, negative for backward. Every other video moves the equivalent
// number of its own frames, at least one, and afterwards every stream is
// re-seeked to the authority's new position so the decoders stay aligned.
func (p *Player) PlayFrame(direction int) error {
	if direction == 0 {
		return nil
	}
	if p.IsLoading() {
		return ErrLoading
	}
	if p.IsPlaying() {
		return ErrPlaying
	}

	authority := p.authority()
	if authority.IsAbsent() {
		return ErrNoVideo
	}
	lead := authority.MustGet()
	leadRate := lead.Framerate()

	for _, h := range p.enabledHandles() {
		if h.Kind() != player.KindVideo || !seekable(h) {
			continue
		}

		step := direction
		if h != lead {
			step = scaleStep(direction, leadRate, h.Framerate())
		}
		if !h.PlayFrame(step) {
			log.Debugf("play frame %s: step %d refused", h.Filename(), step)
		}
	}

	// The authority's landed-on frame defines the system position.
	pos := lead.Tell()
	for _, h := range p.enabledHandles() {
		if !seekable(h) {
			continue
		}
		h.Seek(pos)
	}

	p.mu.Lock()
	p.cur = pos
	p.mu.Unlock()
	return nil
}

// authority picks the enabled video with the highest frame rate.
func (p *Player) authority() mo.Option[player.Handle] {
	videos := lo.Filter(p.enabledHandles(), func(h player.Handle, _ int) bool {
		return h.Kind() == player.KindVideo && seekable(h)
	})
	if len(videos) == 0 {
		return mo.None[player.Handle]()
	}

	return mo.Some(lo.MaxBy(videos, func(a, b player.Handle) bool {
		return a.Framerate() > b.Framerate()
	}))
}

// scaleStep converts an authority-frame step into this stream's frames,
// never rounding a real step down to nothing.
func scaleStep(direction int, leadRate, rate float64) int {
	if leadRate <= 0 || rate <= 0 {
		return direction
	}

	step := int(math.Round(float64(direction) * rate / leadRate))
	if step == 0 {
		if direction > 0 {
			return 1
		}
		return -1
	}
	return step
}
