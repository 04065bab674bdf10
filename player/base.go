package player

import (
	"math"
	"sync"
	"time"

	"github.com/lockstep-cli/lockstep/clock"
	"github.com/lockstep-cli/lockstep/key"
	"github.com/lockstep-cli/lockstep/log"
	"github.com/lockstep-cli/lockstep/media"
	"github.com/lockstep-cli/lockstep/util"
	"github.com/spf13/viper"
)

// base carries the state machine, period bookkeeping and worker lifecycle
// shared by audio and video handles. The concrete handle supplies its pacing
// loop through the run field.
type base struct {
	mu sync.Mutex

	clk      clock.Clock
	filename string
	state    State
	kind     Kind
	src      media.Source
	period   Period

	// from is the resume position: where the next Play starts from and what
	// Tell reports while not playing.
	from   float64
	anchor clock.Anchor

	// quit asks the worker to wind down; done is closed by the worker on
	// exit and is what Pause and Stop join on.
	quit chan struct{}
	done chan struct{}

	loads chan<- LoadResult
	ticks chan<- Tick

	run func(quit <-chan struct{})
}

func newBase(clk clock.Clock, loads chan<- LoadResult, ticks chan<- Tick) base {
	if clk == nil {
		clk = clock.System{}
	}
	return base{clk: clk, loads: loads, ticks: ticks}
}

// load opens the file through the supplied opener and publishes the outcome.
// Failures leave the handle in Unknown and are reported, never returned as
// errors: the notification channel is the contract.
func (b *base) load(path string, kind Kind, open func(string) (media.Source, error)) bool {
	b.mu.Lock()
	if b.state == StatePlaying || b.state == StatePaused {
		b.mu.Unlock()
		log.Warnf("load %s refused: handle is %s", path, b.state)
		return false
	}
	b.state = StateLoading
	b.filename = path
	b.mu.Unlock()

	src, err := open(path)

	b.mu.Lock()
	if err != nil {
		if b.src != nil {
			_ = b.src.Close()
		}
		b.state = StateUnknown
		b.kind = KindUnknown
		b.src = nil
		b.mu.Unlock()
		log.Errorf("load %s: %v", path, err)
		b.notifyLoad(path, false)
		return false
	}

	if b.src != nil {
		_ = b.src.Close()
	}
	b.src = src
	b.state = StateStopped
	b.kind = kind
	b.period = Period{Start: 0, End: src.Info().Duration()}
	b.from = 0
	b.anchor = clock.Anchor{}
	b.mu.Unlock()

	log.Debugf("loaded %s: %s", path, kind)
	b.notifyLoad(path, true)
	return true
}

func (b *base) notifyLoad(path string, loaded bool) {
	if b.loads == nil {
		return
	}
	select {
	case b.loads <- LoadResult{Path: path, Loaded: loaded}:
	default:
	}
}

func (b *base) Close() error {
	b.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	src := b.src
	b.src = nil
	b.state = StateUnknown
	b.kind = KindUnknown
	if src == nil {
		return nil
	}
	return src.Close()
}

func (b *base) Filename() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filename
}

func (b *base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *base) Kind() Kind {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.kind
}

func (b *base) Info() media.Info {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.src == nil {
		return media.Info{}
	}
	return b.src.Info()
}

func (b *base) Duration() float64 {
	return b.Info().Duration()
}

func (b *base) Framerate() float64 {
	return b.Info().Rate
}

func (b *base) Period() Period {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.period
}

// SetPeriod installs a new rendering range. A playing handle is stopped for
// the change and started again afterwards.
func (b *base) SetPeriod(start, end float64) error {
	if start > end {
		return ErrInvalidPeriod
	}

	wasPlaying := b.State() == StatePlaying
	if wasPlaying {
		b.Stop()
	}

	b.mu.Lock()
	if b.src == nil || b.state == StateLoading {
		b.mu.Unlock()
		return nil
	}
	b.period = Period{Start: start, End: end}.Clamp(b.src.Info().Duration())
	_ = b.src.Seek(b.offsetLocked(b.period.Start))
	b.from = b.period.Start
	b.mu.Unlock()

	if wasPlaying {
		b.Play()
	}
	return nil
}

// PreparePlay narrows the period to [from, to] and parks the decoder at its
// start. It is the first half of a coordinated start; Play is the second.
func (b *base) PreparePlay(from, to float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.src == nil || b.state == StateLoading || b.state == StatePlaying {
		return false
	}

	p := Period{Start: from, End: to}.Clamp(b.src.Info().Duration())
	if p.Start >= p.End {
		return false
	}

	if err := b.src.Seek(b.offsetLocked(p.Start)); err != nil {
		log.Errorf("prepare %s: seek: %v", b.filename, err)
		return false
	}
	b.period = p
	b.from = p.Start
	return true
}

// Play starts the worker from max(period start, resume position). It refuses
// when that point has already passed the period's end.
func (b *base) Play() bool {
	b.mu.Lock()

	switch b.state {
	case StateStopped, StatePaused:
	default:
		b.mu.Unlock()
		log.Warnf("play %s refused: handle is %s", b.filename, b.state)
		return false
	}

	start := util.Max(b.period.Start, b.from)
	if start >= b.period.End {
		b.mu.Unlock()
		return false
	}

	if err := b.src.Seek(b.offsetLocked(start)); err != nil {
		b.mu.Unlock()
		log.Errorf("play %s: seek: %v", b.filename, err)
		return false
	}

	b.from = start
	b.state = StatePlaying
	b.anchor = clock.Anchor{Wall: b.clk.Now(), Position: start}
	quit := make(chan struct{})
	done := make(chan struct{})
	b.quit, b.done = quit, done
	run := b.run
	b.mu.Unlock()

	go func() {
		defer close(done)
		run(quit)
	}()
	go b.tickLoop(done)
	return true
}

// Pause freezes a playing handle at its anchored position. It returns only
// after the worker goroutine has exited.
func (b *base) Pause() bool {
	b.mu.Lock()
	if b.state != StatePlaying {
		b.mu.Unlock()
		return false
	}

	pos := util.Min(b.anchor.PositionAt(b.clk.Now()), b.period.End)
	b.state = StatePaused
	quit, done := b.quit, b.done
	b.mu.Unlock()

	close(quit)
	<-done

	b.mu.Lock()
	b.from = pos
	b.anchor = clock.Anchor{}
	b.mu.Unlock()
	return true
}

// Stop halts a playing or paused handle and rewinds it to the period start.
func (b *base) Stop() bool {
	b.mu.Lock()
	switch b.state {
	case StatePlaying:
		b.state = StateStopped
		quit, done := b.quit, b.done
		b.mu.Unlock()
		close(quit)
		<-done
	case StatePaused:
		b.state = StateStopped
		b.mu.Unlock()
	default:
		b.mu.Unlock()
		return false
	}

	b.mu.Lock()
	_ = b.src.Seek(b.offsetLocked(b.period.Start))
	b.from = b.period.Start
	b.anchor = clock.Anchor{}
	b.mu.Unlock()
	return true
}

// finish is the worker-side stop: the loop reached the period's end or the
// decoder failed. External Pause and Stop lose the race gracefully.
func (b *base) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StatePlaying {
		return
	}
	b.state = StateStopped
	_ = b.src.Seek(b.offsetLocked(b.period.Start))
	b.from = b.period.Start
	b.anchor = clock.Anchor{}
}

// Seek repositions a stopped or paused handle. The target is clamped to the
// media and to the period.
func (b *base) Seek(t float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateStopped, StatePaused:
	default:
		return false
	}

	t = util.Clamp(t, b.period.Start, b.period.End)
	if err := b.src.Seek(b.offsetLocked(t)); err != nil {
		log.Errorf("seek %s: %v", b.filename, err)
		return false
	}
	b.from = t
	return true
}

func (b *base) Tell() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StatePlaying:
		return util.Min(b.anchor.PositionAt(b.clk.Now()), b.period.End)
	case StateUnknown, StateLoading:
		return 0
	default:
		return b.from
	}
}

func (b *base) MediaTell() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.src == nil {
		return 0
	}
	if b.state == StatePlaying {
		pos := util.Min(b.anchor.PositionAt(b.clk.Now()), b.period.End)
		return b.offsetLocked(pos)
	}
	return b.src.Position()
}

// PlayFrame is rejected by default; frame-addressable handles override it.
func (b *base) PlayFrame(int) bool {
	log.Warnf("play frame %s refused: not frame addressable", b.Filename())
	return false
}

func (b *base) StartedAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.anchor.Wall
}

// offsetLocked converts seconds to a native offset, bounded by the media.
func (b *base) offsetLocked(t float64) int64 {
	info := b.src.Info()
	off := int64(math.Round(t * info.Rate))
	if off < 0 {
		off = 0
	}
	if off > info.Units {
		off = info.Units
	}
	return off
}

// tickLoop publishes the anchored position at the configured cadence until
// the worker winds down, covering self-finishing workers too. A non-positive
// interval disables ticking.
func (b *base) tickLoop(done <-chan struct{}) {
	if b.ticks == nil {
		return
	}
	interval := time.Duration(viper.GetInt(key.PlayTickIntervalMs)) * time.Millisecond
	if interval <= 0 {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-b.clk.After(interval):
			select {
			case b.ticks <- Tick{Path: b.Filename(), Position: b.Tell()}:
			default:
			}
		}
	}
}
