package media

import (
	"fmt"
	"io"
)

// Synth is a generator backend producing empty timed units. It stands in for
// real codecs in rehearsal runs and tests, where only timing matters.
type Synth struct {
	Type   Type
	Rate   float64 // units per second
	Units  int64
	Chunk  int // units per ReadUnit; 1 for video
	Width  int // video frame size, pixels
	Height int
}

func (s Synth) Open(path string) (Source, error) {
	if s.Rate <= 0 || s.Units < 0 {
		return nil, fmt.Errorf("synth: bad shape rate=%v units=%d", s.Rate, s.Units)
	}

	chunk := s.Chunk
	if s.Type == Video || chunk < 1 {
		chunk = 1
	}

	return &synthSource{
		info: Info{
			Path:     path,
			Type:     s.Type,
			Rate:     s.Rate,
			Units:    s.Units,
			Channels: 2,
			Depth:    2,
			Width:    s.Width,
			Height:   s.Height,
		},
		chunk: chunk,
	}, nil
}

type synthSource struct {
	info  Info
	chunk int
	pos   int64
}

func (s *synthSource) Info() Info { return s.info }

func (s *synthSource) ReadUnit() (Unit, error) {
	if s.pos >= s.info.Units {
		return Unit{}, io.EOF
	}

	count := s.chunk
	if remaining := s.info.Units - s.pos; int64(count) > remaining {
		count = int(remaining)
	}

	unit := Unit{Offset: s.pos, Count: count}
	s.pos += int64(count)
	return unit, nil
}

func (s *synthSource) Seek(offset int64) error {
	if offset < 0 || offset > s.info.Units {
		return fmt.Errorf("synth: seek %d out of range [0, %d]", offset, s.info.Units)
	}
	s.pos = offset
	return nil
}

func (s *synthSource) Position() int64 { return s.pos }

func (s *synthSource) Close() error { return nil }
