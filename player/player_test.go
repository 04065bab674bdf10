package player

import (
	"sync"
	"testing"
	"time"

	"github.com/lockstep-cli/lockstep/clock"
	"github.com/lockstep-cli/lockstep/key"
	"github.com/lockstep-cli/lockstep/media"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	viper.Set(key.PlayTickIntervalMs, 0)
	viper.Set(key.PlayNapMarginMs, 0)

	// 2 seconds of audio in 100-sample blocks, 2 seconds of video at 25fps.
	media.Register(".tone", media.Synth{Type: media.Audio, Rate: 1000, Units: 2000, Chunk: 100})
	media.Register(".clip", media.Synth{Type: media.Video, Rate: 25, Units: 50})
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

type capturePresenter struct {
	mu     sync.Mutex
	frames []media.Unit
}

func (p *capturePresenter) Present(frame media.Unit) {
	p.mu.Lock()
	p.frames = append(p.frames, frame)
	p.mu.Unlock()
}

func (p *capturePresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

func TestLoad(t *testing.T) {
	Convey("Loading", t, func() {
		clk := clock.NewManual(epoch)
		loads := make(chan LoadResult, 4)

		Convey("A decodable file reaches Stopped and is announced", func() {
			a := NewAudio(clk, loads, nil)
			So(a.Load("song.tone"), ShouldBeTrue)
			So(a.State(), ShouldEqual, StateStopped)
			So(a.Kind(), ShouldEqual, KindAudio)
			So(a.Duration(), ShouldAlmostEqual, 2.0, 1e-9)
			So(a.Period(), ShouldResemble, Period{Start: 0, End: 2.0})
			So(<-loads, ShouldResemble, LoadResult{Path: "song.tone", Loaded: true})
		})

		Convey("An undecodable file falls back to Unknown and is announced", func() {
			a := NewAudio(clk, loads, nil)
			So(a.Load("song.nope"), ShouldBeFalse)
			So(a.State(), ShouldEqual, StateUnknown)
			So(a.Kind(), ShouldEqual, KindUnknown)
			So(<-loads, ShouldResemble, LoadResult{Path: "song.nope", Loaded: false})
		})

		Convey("A video file refuses to load as audio", func() {
			a := NewAudio(clk, loads, nil)
			So(a.Load("movie.clip"), ShouldBeFalse)
			So(a.State(), ShouldEqual, StateUnknown)
		})
	})
}

func TestPlayback(t *testing.T) {
	Convey("Audio playback", t, func() {
		clk := clock.NewManual(epoch)
		a := NewAudio(clk, nil, nil)
		So(a.Load("song.tone"), ShouldBeTrue)

		Convey("Play anchors the position to the wall clock", func() {
			So(a.Play(), ShouldBeTrue)
			So(a.State(), ShouldEqual, StatePlaying)
			So(a.StartedAt(), ShouldEqual, epoch)

			clk.Advance(500 * time.Millisecond)
			So(a.Tell(), ShouldAlmostEqual, 0.5, 1e-9)

			So(a.Stop(), ShouldBeTrue)
		})

		Convey("Play is refused while already playing", func() {
			So(a.Play(), ShouldBeTrue)
			So(a.Play(), ShouldBeFalse)
			So(a.Stop(), ShouldBeTrue)
		})

		Convey("Pause joins the worker and freezes the position", func() {
			So(a.Play(), ShouldBeTrue)
			clk.Advance(300 * time.Millisecond)

			So(a.Pause(), ShouldBeTrue)
			So(a.State(), ShouldEqual, StatePaused)
			So(a.Tell(), ShouldAlmostEqual, 0.3, 1e-9)

			// Time moving on must not move a paused stream.
			clk.Advance(time.Second)
			So(a.Tell(), ShouldAlmostEqual, 0.3, 1e-9)
		})

		Convey("Play after pause resumes from the paused position", func() {
			So(a.Play(), ShouldBeTrue)
			clk.Advance(300 * time.Millisecond)
			So(a.Pause(), ShouldBeTrue)

			So(a.Play(), ShouldBeTrue)
			clk.Advance(200 * time.Millisecond)
			So(a.Tell(), ShouldAlmostEqual, 0.5, 1e-9)
			So(a.Stop(), ShouldBeTrue)
		})

		Convey("Stop rewinds to the period start", func() {
			So(a.Play(), ShouldBeTrue)
			clk.Advance(300 * time.Millisecond)
			So(a.Stop(), ShouldBeTrue)
			So(a.State(), ShouldEqual, StateStopped)
			So(a.Tell(), ShouldAlmostEqual, 0, 1e-9)
		})

		Convey("Pause and Stop from rest are refused", func() {
			So(a.Pause(), ShouldBeFalse)
			So(a.Stop(), ShouldBeFalse)
		})

		Convey("The worker stops itself at the period's end", func() {
			clk.AutoAdvance(true)
			So(a.SetPeriod(0, 0.5), ShouldBeNil)
			So(a.Play(), ShouldBeTrue)

			So(eventually(func() bool { return a.State() == StateStopped }), ShouldBeTrue)
			So(a.Tell(), ShouldAlmostEqual, 0, 1e-9)
		})
	})
}

func TestPeriod(t *testing.T) {
	Convey("Period control", t, func() {
		clk := clock.NewManual(epoch)
		a := NewAudio(clk, nil, nil)
		So(a.Load("song.tone"), ShouldBeTrue)

		Convey("An inverted range is rejected", func() {
			So(a.SetPeriod(1.0, 0.5), ShouldEqual, ErrInvalidPeriod)
		})

		Convey("The range is clamped to the media", func() {
			So(a.SetPeriod(-1, 99), ShouldBeNil)
			So(a.Period(), ShouldResemble, Period{Start: 0, End: 2.0})
		})

		Convey("Setting the period rewinds to its start", func() {
			So(a.SetPeriod(0.5, 1.5), ShouldBeNil)
			So(a.Tell(), ShouldAlmostEqual, 0.5, 1e-9)
			So(a.MediaTell(), ShouldEqual, 500)
		})

		Convey("A playing handle is stopped and restarted around the change", func() {
			So(a.Play(), ShouldBeTrue)
			clk.Advance(100 * time.Millisecond)

			So(a.SetPeriod(0.5, 1.5), ShouldBeNil)
			So(a.State(), ShouldEqual, StatePlaying)
			So(a.Tell(), ShouldAlmostEqual, 0.5, 1e-9)
			So(a.Stop(), ShouldBeTrue)
		})

		Convey("Play refuses a resume position at or past the end", func() {
			So(a.SetPeriod(0, 1.0), ShouldBeNil)
			So(a.Seek(1.0), ShouldBeTrue)
			So(a.Play(), ShouldBeFalse)
		})

		Convey("PreparePlay narrows the period and parks the decoder", func() {
			So(a.PreparePlay(0.25, 1.75), ShouldBeTrue)
			So(a.Period(), ShouldResemble, Period{Start: 0.25, End: 1.75})
			So(a.MediaTell(), ShouldEqual, 250)
		})

		Convey("PreparePlay refuses an empty range", func() {
			So(a.PreparePlay(1.5, 1.5), ShouldBeFalse)
			So(a.PreparePlay(3.0, 4.0), ShouldBeFalse)
		})
	})
}

func TestSeekAndTicks(t *testing.T) {
	Convey("Seeking", t, func() {
		clk := clock.NewManual(epoch)
		a := NewAudio(clk, nil, nil)
		So(a.Load("song.tone"), ShouldBeTrue)

		Convey("Targets are clamped to the period", func() {
			So(a.SetPeriod(0.5, 1.5), ShouldBeNil)
			So(a.Seek(0.1), ShouldBeTrue)
			So(a.Tell(), ShouldAlmostEqual, 0.5, 1e-9)
			So(a.Seek(1.2), ShouldBeTrue)
			So(a.Tell(), ShouldAlmostEqual, 1.2, 1e-9)
		})

		Convey("Seeking a playing handle is refused", func() {
			So(a.Play(), ShouldBeTrue)
			So(a.Seek(1.0), ShouldBeFalse)
			So(a.Stop(), ShouldBeTrue)
		})
	})

	Convey("Ticks", t, func() {
		viper.Set(key.PlayTickIntervalMs, 10)
		defer viper.Set(key.PlayTickIntervalMs, 0)

		clk := clock.NewManual(epoch)
		clk.AutoAdvance(true)
		ticks := make(chan Tick, 64)
		a := NewAudio(clk, nil, ticks)
		So(a.Load("song.tone"), ShouldBeTrue)

		So(a.Play(), ShouldBeTrue)
		So(eventually(func() bool { return a.State() == StateStopped }), ShouldBeTrue)

		So(eventually(func() bool { return len(ticks) > 0 }), ShouldBeTrue)
		tick := <-ticks
		So(tick.Path, ShouldEqual, "song.tone")
		So(tick.Position, ShouldBeBetweenOrEqual, 0, 2.0)
	})
}

func TestVideo(t *testing.T) {
	Convey("Video playback", t, func() {
		clk := clock.NewManual(epoch)
		pres := &capturePresenter{}
		v := NewVideo(clk, pres, nil, nil)
		So(v.Load("movie.clip"), ShouldBeTrue)
		So(v.Kind(), ShouldEqual, KindVideo)

		Convey("Runs to completion and presents frames", func() {
			clk.AutoAdvance(true)
			So(v.Play(), ShouldBeTrue)
			So(eventually(func() bool { return v.State() == StateStopped }), ShouldBeTrue)
			So(pres.count(), ShouldBeGreaterThan, 0)
		})

		Convey("Frame stepping", func() {
			Convey("Steps forward and reports the frame middle", func() {
				So(v.PlayFrame(1), ShouldBeTrue)
				So(v.Tell(), ShouldAlmostEqual, 1.5/25, 1e-9)
				// Decoder rests one frame past the shown one.
				So(v.MediaTell(), ShouldEqual, 2)
			})

			Convey("Steps backward from the current frame", func() {
				So(v.PlayFrame(2), ShouldBeTrue)
				So(v.PlayFrame(-1), ShouldBeTrue)
				So(v.Tell(), ShouldAlmostEqual, 1.5/25, 1e-9)
			})

			Convey("Refuses to step outside the media", func() {
				So(v.PlayFrame(-1), ShouldBeFalse)
				So(v.PlayFrame(100), ShouldBeFalse)
			})

			Convey("Refuses to step while playing", func() {
				So(v.Play(), ShouldBeTrue)
				So(v.PlayFrame(1), ShouldBeFalse)
				So(v.Stop(), ShouldBeTrue)
			})
		})
	})

	Convey("Audio handles are not frame addressable", t, func() {
		a := NewAudio(clock.NewManual(epoch), nil, nil)
		So(a.Load("song.tone"), ShouldBeTrue)
		So(a.PlayFrame(1), ShouldBeFalse)
	})
}

func TestUnsupported(t *testing.T) {
	Convey("Unsupported handle", t, func() {
		u := NewUnsupported("data.bin", 12.5)

		So(u.Kind(), ShouldEqual, KindUnsupported)
		So(u.Duration(), ShouldAlmostEqual, 12.5, 1e-9)
		So(u.Play(), ShouldBeFalse)
		So(u.Pause(), ShouldBeFalse)
		So(u.Seek(1), ShouldBeFalse)
		So(u.PlayFrame(1), ShouldBeFalse)
		So(u.SetPeriod(2, 1), ShouldEqual, ErrInvalidPeriod)
		So(u.SetPeriod(0, 5), ShouldBeNil)
	})
}
