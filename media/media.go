// Package media defines the decoding boundary between stream players and
// concrete file formats. A Source exposes a media file as a sequence of
// native units (video frames or audio sample blocks) addressable by offset.
package media

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Type discriminates the two unit shapes a Source can produce.
type Type int

const (
	Audio Type = iota
	Video
)

func (t Type) String() string {
	if t == Video {
		return "video"
	}
	return "audio"
}

// Info describes an opened media file.
type Info struct {
	Path     string
	Type     Type
	Rate     float64 // native units per second: sample rate or frame rate
	Units    int64   // total native units in the file
	Channels int     // audio only
	Depth    int     // audio only, bytes per sample
	Width    int     // video only, pixels
	Height   int     // video only, pixels
}

// Duration returns the media length in seconds.
func (i Info) Duration() float64 {
	if i.Rate <= 0 {
		return 0
	}
	return float64(i.Units) / i.Rate
}

// Unit is one decoded block: a single video frame or a run of consecutive
// audio sample frames.
type Unit struct {
	Offset int64  // native offset of the first unit in the block
	Count  int    // units in the block, 1 for video
	Data   []byte // presentation payload, format-specific
}

// Source is a positioned decoder over one media file.
//
// Implementations are not safe for concurrent use; a playing stream's worker
// owns its Source exclusively until it is joined.
type Source interface {
	Info() Info

	// ReadUnit decodes the block at the current position and advances past
	// it. It returns io.EOF once the file is exhausted.
	ReadUnit() (Unit, error)

	// Seek repositions the decoder to the given native offset.
	Seek(offset int64) error

	// Position returns the native offset of the next block to decode.
	Position() int64

	Close() error
}

// Backend opens files of one format family.
type Backend interface {
	Open(path string) (Source, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Backend)
)

// Register binds a backend to a lowercase file extension (".wav").
// Registering an extension twice replaces the previous backend.
func Register(ext string, backend Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(ext)] = backend
}

// Open resolves a backend by file extension and opens the file with it.
func Open(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))

	registryMu.RLock()
	backend, ok := registry[ext]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no backend registered for %q", ext)
	}
	return backend.Open(path)
}

// Supported reports whether some backend claims the file's extension.
func Supported(path string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[strings.ToLower(filepath.Ext(path))]
	return ok
}
