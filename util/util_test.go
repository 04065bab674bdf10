package util

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "stream", "streams"), ShouldEqual, "1 stream")
		So(Quantify(2, "stream", "streams"), ShouldEqual, "2 streams")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("path/to/file.wav"), ShouldEqual, "file")
		So(FileStem("file"), ShouldEqual, "file")
	})
}

func TestFormatTime(t *testing.T) {
	Convey("FormatTime", t, func() {
		So(FormatTime(0), ShouldEqual, "00:00.000")
		So(FormatTime(61.5), ShouldEqual, "01:01.500")
		So(FormatTime(-3), ShouldEqual, "00:00.000")
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5, 0, 10), ShouldEqual, 5)
		So(Clamp(-1, 0, 10), ShouldEqual, 0)
		So(Clamp(11.0, 0.0, 10.0), ShouldEqual, 10.0)
	})
}
