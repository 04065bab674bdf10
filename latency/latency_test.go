package latency

import (
	"testing"

	"github.com/lockstep-cli/lockstep/filesystem"
	"github.com/lockstep-cli/lockstep/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestRing(t *testing.T) {
	Convey("Ring", t, func() {
		Convey("Fills up to capacity", func() {
			r := NewRing[int](3)
			r.Push(1)
			r.Push(2)
			So(r.Len(), ShouldEqual, 2)
			So(r.Values(), ShouldResemble, []int{1, 2})
		})

		Convey("Evicts oldest once full", func() {
			r := NewRing[int](3)
			for i := 1; i <= 5; i++ {
				r.Push(i)
			}
			So(r.Len(), ShouldEqual, 3)
			So(r.Values(), ShouldResemble, []int{3, 4, 5})
		})

		Convey("Degenerate capacity is clamped to one", func() {
			r := NewRing[int](0)
			r.Push(7)
			r.Push(8)
			So(r.Cap(), ShouldEqual, 1)
			So(r.Values(), ShouldResemble, []int{8})
		})
	})
}

func TestHistory(t *testing.T) {
	Convey("History", t, func() {
		viper.Set(key.SyncDelayHistory, 4)
		viper.Set(key.SyncDelaySeed, 0.011)

		Convey("Uses the seed before any observation", func() {
			h := NewHistory()
			So(h.Len(), ShouldEqual, 0)
			So(h.Mean(), ShouldAlmostEqual, 0.011, 1e-9)
		})

		Convey("Averages recorded delays", func() {
			h := NewHistory()
			h.Record(0.010)
			h.Record(0.020)
			So(h.Len(), ShouldEqual, 2)
			So(h.Mean(), ShouldAlmostEqual, 0.015, 1e-9)
		})

		Convey("Ignores negative delays", func() {
			h := NewHistory()
			h.Record(-1)
			So(h.Len(), ShouldEqual, 0)
		})

		Convey("Keeps only the configured window", func() {
			h := NewHistory()
			for i := 0; i < 10; i++ {
				h.Record(float64(i))
			}
			So(h.Len(), ShouldEqual, 4)
			// last four observations: 6, 7, 8, 9
			So(h.Mean(), ShouldAlmostEqual, 7.5, 1e-9)
		})

		Convey("Persisted mean seeds the next session", func() {
			h := NewHistory()
			h.Record(0.030)
			So(h.Persist(), ShouldBeNil)

			fresh := NewHistory()
			So(fresh.Mean(), ShouldAlmostEqual, 0.030, 1e-9)
		})
	})
}
