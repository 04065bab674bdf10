// Package clock abstracts wall-clock access so playback pacing can be driven
// by real time in production and by a scripted timeline in tests.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant and timer channels to playback loops.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time

	// After returns a channel that delivers the current instant once at
	// least d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// System is the real wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Manual is a test clock whose time only moves when the test advances it.
//
// With auto-advance enabled, After fires immediately and moves the clock
// forward by the requested duration, which lets pacing loops run to
// completion without real sleeping.
type Manual struct {
	mu   sync.Mutex
	cond *sync.Cond
	now  time.Time
	auto bool
}

// NewManual returns a Manual clock frozen at start.
func NewManual(start time.Time) *Manual {
	m := &Manual{now: start}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d, waking every pending After.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
	m.cond.Broadcast()
}

// AutoAdvance makes every subsequent After jump the clock instead of waiting.
func (m *Manual) AutoAdvance(enabled bool) {
	m.mu.Lock()
	m.auto = enabled
	m.mu.Unlock()
	m.cond.Broadcast()
}

func (m *Manual) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- m.Now()
		return ch
	}

	m.mu.Lock()
	deadline := m.now.Add(d)
	m.mu.Unlock()

	go func() {
		m.mu.Lock()
		for m.now.Before(deadline) {
			if m.auto {
				m.now = deadline
				break
			}
			m.cond.Wait()
		}
		now := m.now
		m.mu.Unlock()
		m.cond.Broadcast()
		ch <- now
	}()
	return ch
}
