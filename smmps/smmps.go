// Package smmps implements a synchronized multi-media player system: one
// coordinator driving any number of heterogeneous stream handles so they
// play, pause, seek and frame-step in lock-step.
package smmps

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lockstep-cli/lockstep/clock"
	"github.com/lockstep-cli/lockstep/latency"
	"github.com/lockstep-cli/lockstep/log"
	"github.com/lockstep-cli/lockstep/media"
	"github.com/lockstep-cli/lockstep/player"
	"github.com/samber/lo"
)

// Contract violations: callers must sequence these operations correctly, so
// breaking the sequencing is an error, not a silent no-op.
var (
	ErrPlaying       = errors.New("operation not allowed while a stream is playing")
	ErrPaused        = errors.New("operation not allowed while a stream is paused")
	ErrLoading       = errors.New("operation not allowed while a load is in progress")
	ErrNotRegistered = errors.New("file is not registered")
	ErrNoVideo       = errors.New("no enabled video stream")
)

type entry struct {
	handle  player.Handle
	enabled bool
}

// Options configures a Player.
type Options struct {
	// Clock drives all pacing; defaults to the system wall clock.
	Clock clock.Clock

	// Presenter receives decoded frames of every video stream. May be nil.
	Presenter player.Presenter

	// EventBuffer sizes the load and tick channels; defaults to 64.
	EventBuffer int
}

// Player is the coordinator. All methods are safe for concurrent use, but
// the contract errors above assume a single driving goroutine.
type Player struct {
	mu        sync.Mutex
	clk       clock.Clock
	presenter player.Presenter
	entries   []*entry
	period    player.Period

	// cur is the position shared by every stream while nothing plays; the
	// -1 sentinel marks an in-flight synchronized interval.
	cur float64

	delays *latency.History
	loads  chan player.LoadResult
	ticks  chan player.Tick
}

// New builds an empty coordinator.
func New(opts Options) *Player {
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	buffer := opts.EventBuffer
	if buffer <= 0 {
		buffer = 64
	}

	return &Player{
		clk:       clk,
		presenter: opts.Presenter,
		delays:    latency.NewHistory(),
		loads:     make(chan player.LoadResult, buffer),
		ticks:     make(chan player.Tick, buffer),
	}
}

// Loads delivers the outcome of every requested load, keyed by path.
func (p *Player) Loads() <-chan player.LoadResult {
	return p.loads
}

// Ticks delivers periodic positions of playing streams.
func (p *Player) Ticks() <-chan player.Tick {
	return p.ticks
}

// Delays exposes the start-delay history backing synchronized starts.
func (p *Player) Delays() *latency.History {
	return p.delays
}

// mutable reports whether the registry may change right now.
func (p *Player) mutableLocked() error {
	for _, e := range p.entries {
		switch e.handle.State() {
		case player.StatePlaying:
			return ErrPlaying
		case player.StatePaused:
			return ErrPaused
		}
	}
	return nil
}

func (p *Player) findLocked(path string) (*entry, bool) {
	return lo.Find(p.entries, func(e *entry) bool {
		return e.handle.Filename() == path
	})
}

// AddAudio registers audio streams, disabled until Enable. A single path
// loads synchronously; several load concurrently, with completions reported
// on Loads.
func (p *Player) AddAudio(paths ...string) error {
	return p.add(paths, func() player.Handle {
		return player.NewAudio(p.clk, p.loads, p.ticks)
	})
}

// AddVideo registers video streams, disabled until Enable, rendering to the
// configured presenter.
func (p *Player) AddVideo(paths ...string) error {
	return p.add(paths, func() player.Handle {
		return player.NewVideo(p.clk, p.presenter, p.loads, p.ticks)
	})
}

func (p *Player) add(paths []string, build func() player.Handle) error {
	p.mu.Lock()
	if err := p.mutableLocked(); err != nil {
		p.mu.Unlock()
		return err
	}

	var fresh []player.Handle
	var names []string
	for _, path := range paths {
		if _, ok := p.findLocked(path); ok {
			log.Debugf("add %s skipped: already registered", path)
			continue
		}
		h := build()
		// Fresh streams sit out coordinated playback until Enable.
		p.entries = append(p.entries, &entry{handle: h})
		fresh = append(fresh, h)
		names = append(names, path)
	}
	p.mu.Unlock()

	if len(fresh) == 1 {
		fresh[0].Load(names[0])
		return nil
	}
	for i, h := range fresh {
		go h.Load(names[i])
	}
	return nil
}

// AddUnsupported registers a stream of known duration but undecodable
// content, disabled like any fresh stream, so it still weighs in on
// Duration.
func (p *Player) AddUnsupported(path string, duration float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.mutableLocked(); err != nil {
		return err
	}
	if _, ok := p.findLocked(path); ok {
		return nil
	}
	p.entries = append(p.entries, &entry{
		handle: player.NewUnsupported(path, duration),
	})
	return nil
}

// Remove unregisters a stream and releases its decoder. Streams still
// loading must finish first: wait for the load notification.
func (p *Player) Remove(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.mutableLocked(); err != nil {
		return err
	}

	e, ok := p.findLocked(path)
	if !ok {
		return fmt.Errorf("remove %s: %w", path, ErrNotRegistered)
	}
	if e.handle.State() == player.StateLoading {
		return fmt.Errorf("remove %s: %w", path, ErrLoading)
	}

	if err := e.handle.Close(); err != nil {
		log.Errorf("remove %s: close: %v", path, err)
	}
	p.entries = lo.Without(p.entries, e)
	return nil
}

// Exists reports whether the path is registered.
func (p *Player) Exists(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.findLocked(path)
	return ok
}

// Handle returns the registered handle for the path.
func (p *Player) Handle(path string) (player.Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.findLocked(path)
	if !ok {
		return nil, false
	}
	return e.handle, true
}

// Paths lists registered files in registration order.
func (p *Player) Paths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo.Map(p.entries, func(e *entry, _ int) string {
		return e.handle.Filename()
	})
}

// Enable includes or excludes a stream from coordinated operations. A
// playing stream being disabled is stopped first.
func (p *Player) Enable(path string, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.findLocked(path)
	if !ok {
		return fmt.Errorf("enable %s: %w", path, ErrNotRegistered)
	}

	if !enabled && e.handle.State() == player.StatePlaying {
		e.handle.Stop()
	}
	e.enabled = enabled
	return nil
}

// Enabled reports whether the stream participates in coordinated operations.
func (p *Player) Enabled(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.findLocked(path)
	return ok && e.enabled
}

// match returns the handles a variadic path filter designates: all of them
// for no argument, the named one otherwise.
func (p *Player) match(path ...string) []player.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(path) == 0 {
		return lo.Map(p.entries, func(e *entry, _ int) player.Handle {
			return e.handle
		})
	}

	e, ok := p.findLocked(path[0])
	if !ok {
		return nil
	}
	return []player.Handle{e.handle}
}

// enabledHandles snapshots the enabled entries in registration order.
func (p *Player) enabledHandles() []player.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []player.Handle
	for _, e := range p.entries {
		if e.enabled {
			out = append(out, e.handle)
		}
	}
	return out
}

// IsPlaying reports whether any stream, or the named one, is playing.
func (p *Player) IsPlaying(path ...string) bool {
	return p.anyState(player.StatePlaying, path...)
}

// IsPaused reports whether any stream, or the named one, is paused.
func (p *Player) IsPaused(path ...string) bool {
	return p.anyState(player.StatePaused, path...)
}

// IsStopped reports whether any stream, or the named one, is stopped.
func (p *Player) IsStopped(path ...string) bool {
	return p.anyState(player.StateStopped, path...)
}

// IsLoading reports whether any stream, or the named one, is still loading.
func (p *Player) IsLoading(path ...string) bool {
	return p.anyState(player.StateLoading, path...)
}

// IsUnknown reports whether any stream, or the named one, failed to load.
func (p *Player) IsUnknown(path ...string) bool {
	return p.anyState(player.StateUnknown, path...)
}

func (p *Player) anyState(s player.State, path ...string) bool {
	return lo.SomeBy(p.match(path...), func(h player.Handle) bool {
		return h.State() == s
	})
}

// IsAudio reports whether the named stream decoded as audio.
func (p *Player) IsAudio(path string) bool {
	return p.anyKind(player.KindAudio, path)
}

// IsVideo reports whether the named stream decoded as video.
func (p *Player) IsVideo(path string) bool {
	return p.anyKind(player.KindVideo, path)
}

// IsUnsupported reports whether the named stream is a duration-only stub.
func (p *Player) IsUnsupported(path string) bool {
	return p.anyKind(player.KindUnsupported, path)
}

func (p *Player) anyKind(k player.Kind, path string) bool {
	return lo.SomeBy(p.match(path), func(h player.Handle) bool {
		return h.Kind() == k
	})
}

// ArePlaying reports whether every enabled stream is playing.
func (p *Player) ArePlaying() bool {
	return p.allState(player.StatePlaying)
}

// ArePaused reports whether every enabled stream is paused.
func (p *Player) ArePaused() bool {
	return p.allState(player.StatePaused)
}

// AreStopped reports whether every enabled stream is stopped.
func (p *Player) AreStopped() bool {
	return p.allState(player.StateStopped)
}

func (p *Player) allState(s player.State) bool {
	handles := p.enabledHandles()
	if len(handles) == 0 {
		return false
	}
	return lo.EveryBy(handles, func(h player.Handle) bool {
		return h.State() == s
	})
}

// SampleRate returns the sample rate of the named audio stream, 0 when the
// stream is unknown or carries no decoded audio.
func (p *Player) SampleRate(path string) float64 {
	if p.IsAudio(path) {
		return p.info(path).Rate
	}
	return 0
}

// Channels returns the channel count of the named audio stream.
func (p *Player) Channels(path string) int {
	return p.info(path).Channels
}

// Width returns the frame width of the named video stream, in pixels.
func (p *Player) Width(path string) int {
	return p.info(path).Width
}

// Height returns the frame height of the named video stream, in pixels.
func (p *Player) Height(path string) int {
	return p.info(path).Height
}

func (p *Player) info(path string) media.Info {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.findLocked(path)
	if !ok || e.handle.State() == player.StateLoading {
		return media.Info{}
	}
	return e.handle.Info()
}

// Duration returns the length of the named stream, or the longest one known
// when no path is given.
func (p *Player) Duration(path ...string) float64 {
	durations := lo.FilterMap(p.match(path...), func(h player.Handle, _ int) (float64, bool) {
		if h.State() == player.StateLoading || h.Kind() == player.KindUnknown {
			return 0, false
		}
		return h.Duration(), true
	})
	return lo.Max(durations)
}

// Close stops everything, releases every decoder and persists the delay
// history for the next session.
func (p *Player) Close() error {
	p.Stop()

	p.mu.Lock()
	entries := p.entries
	p.entries = nil
	p.mu.Unlock()

	for _, e := range entries {
		if err := e.handle.Close(); err != nil {
			log.Errorf("close %s: %v", e.handle.Filename(), err)
		}
	}

	if err := p.delays.Persist(); err != nil {
		log.Warnf("persist delay history: %v", err)
	}
	return nil
}
