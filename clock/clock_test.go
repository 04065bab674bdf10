package clock

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestManual(t *testing.T) {
	Convey("Manual clock", t, func() {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		m := NewManual(start)

		Convey("Now is frozen until advanced", func() {
			So(m.Now(), ShouldEqual, start)
			m.Advance(time.Second)
			So(m.Now(), ShouldEqual, start.Add(time.Second))
		})

		Convey("After fires once the deadline is reached", func() {
			ch := m.After(100 * time.Millisecond)
			select {
			case <-ch:
				t.Fatal("fired before the clock moved")
			case <-time.After(10 * time.Millisecond):
			}

			m.Advance(100 * time.Millisecond)
			select {
			case now := <-ch:
				So(now, ShouldEqual, start.Add(100*time.Millisecond))
			case <-time.After(time.Second):
				t.Fatal("timer never fired")
			}
		})

		Convey("After with non-positive duration fires immediately", func() {
			select {
			case <-m.After(0):
			case <-time.After(time.Second):
				t.Fatal("timer never fired")
			}
		})

		Convey("AutoAdvance jumps the clock", func() {
			m.AutoAdvance(true)
			select {
			case <-m.After(time.Minute):
			case <-time.After(time.Second):
				t.Fatal("timer never fired")
			}
			So(m.Now(), ShouldEqual, start.Add(time.Minute))
		})
	})
}

func TestAnchor(t *testing.T) {
	Convey("Anchor", t, func() {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		Convey("Zero anchor reports its fixed position", func() {
			var a Anchor
			So(a.Anchored(), ShouldBeFalse)
			So(a.PositionAt(start), ShouldEqual, 0)
		})

		Convey("Anchored position extrapolates from wall time", func() {
			a := Anchor{Wall: start, Position: 2.5}
			So(a.Anchored(), ShouldBeTrue)
			So(a.PositionAt(start.Add(1500*time.Millisecond)), ShouldAlmostEqual, 4.0, 1e-9)
		})
	})
}
