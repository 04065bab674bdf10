package media

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/lockstep-cli/lockstep/filesystem"
	"github.com/lockstep-cli/lockstep/key"
	"github.com/spf13/viper"
)

func init() {
	Register(".wav", WAV{})
}

// WAV decodes RIFF/WAVE files through the beep codec.
type WAV struct{}

func (WAV) Open(path string) (Source, error) {
	f, err := filesystem.API().Open(path)
	if err != nil {
		return nil, err
	}

	stream, format, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	chunks := viper.GetInt(key.PlayAudioChunks)
	if chunks <= 0 {
		chunks = 10
	}
	chunk := int(format.SampleRate) / chunks
	if chunk < 1 {
		chunk = 1
	}

	return &wavSource{
		info: Info{
			Path:     path,
			Type:     Audio,
			Rate:     float64(format.SampleRate),
			Units:    int64(stream.Len()),
			Channels: format.NumChannels,
			Depth:    format.Precision,
		},
		stream: stream,
		buf:    make([][2]float64, chunk),
	}, nil
}

type wavSource struct {
	info   Info
	stream beep.StreamSeekCloser
	buf    [][2]float64
}

func (s *wavSource) Info() Info { return s.info }

func (s *wavSource) ReadUnit() (Unit, error) {
	offset := int64(s.stream.Position())
	n, ok := s.stream.Stream(s.buf)
	if !ok {
		if err := s.stream.Err(); err != nil {
			return Unit{}, err
		}
		return Unit{}, io.EOF
	}

	return Unit{Offset: offset, Count: n, Data: pcm16(s.buf[:n])}, nil
}

func (s *wavSource) Seek(offset int64) error {
	return s.stream.Seek(int(offset))
}

func (s *wavSource) Position() int64 {
	return int64(s.stream.Position())
}

func (s *wavSource) Close() error {
	return s.stream.Close()
}

// pcm16 renders normalized stereo samples as interleaved 16-bit little-endian PCM.
func pcm16(samples [][2]float64) []byte {
	out := make([]byte, 0, len(samples)*4)
	for _, sample := range samples {
		for _, ch := range sample {
			v := int16(math.Round(clampUnit(ch) * math.MaxInt16))
			out = binary.LittleEndian.AppendUint16(out, uint16(v))
		}
	}
	return out
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
