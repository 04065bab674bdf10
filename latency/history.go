package latency

import (
	"sync"

	"github.com/lockstep-cli/lockstep/filesystem"
	"github.com/lockstep-cli/lockstep/key"
	"github.com/lockstep-cli/lockstep/where"
	"github.com/metafates/gache"
	"github.com/spf13/viper"
)

// Summary is the persisted digest of past sessions' delay observations.
type Summary struct {
	Mean    float64 `json:"mean"`
	Samples int     `json:"samples"`
}

var cacher = gache.New[*Summary](
	&gache.Options{
		Path:       where.Latency(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// History accumulates observed worker start delays and estimates the next one.
// Safe for concurrent use.
type History struct {
	mu   sync.Mutex
	ring *Ring[float64]
	seed float64
}

// NewHistory builds a history sized by configuration, seeded from the
// persisted summary of previous sessions when one exists.
func NewHistory() *History {
	h := &History{
		ring: NewRing[float64](viper.GetInt(key.SyncDelayHistory)),
		seed: viper.GetFloat64(key.SyncDelaySeed),
	}

	if cached, expired, err := cacher.Get(); err == nil && !expired && cached != nil && cached.Samples > 0 {
		h.seed = cached.Mean
	}
	return h
}

// Record stores one observed delay in seconds. Negative values are ignored.
func (h *History) Record(delay float64) {
	if delay < 0 {
		return
	}
	h.mu.Lock()
	h.ring.Push(delay)
	h.mu.Unlock()
}

// Mean returns the current delay estimate: the average of recorded delays, or
// the seed before anything has been observed.
func (h *History) Mean() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.meanLocked()
}

// Len returns the number of recorded delays.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ring.Len()
}

// Persist writes the current estimate so future sessions start informed.
func (h *History) Persist() error {
	h.mu.Lock()
	summary := &Summary{Mean: h.meanLocked(), Samples: h.ring.Len()}
	h.mu.Unlock()

	if summary.Samples == 0 {
		return nil
	}
	return cacher.Set(summary)
}

func (h *History) meanLocked() float64 {
	values := h.ring.Values()
	if len(values) == 0 {
		return h.seed
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
