package model

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestVector3(t *testing.T) {
	Convey("Given two vectors", t, func() {
		a := Vec3(1, 2, 2)
		b := Vec3(4, 6, 2)

		Convey("Arithmetic is component-wise", func() {
			So(a.Add(b), ShouldResemble, Vec3(5, 8, 4))
			So(b.Sub(a), ShouldResemble, Vec3(3, 4, 0))
			So(a.Scale(2), ShouldResemble, Vec3(2, 4, 4))
		})

		Convey("Length and distance are euclidean", func() {
			So(a.Len(), ShouldAlmostEqual, 3, 1e-6)
			So(a.Dist(b), ShouldAlmostEqual, 5, 1e-6)
		})

		Convey("Normalize yields unit length and leaves zero alone", func() {
			So(b.Sub(a).Normalize().Len(), ShouldAlmostEqual, 1, 1e-6)
			So(Vector3{}.Normalize(), ShouldResemble, Vector3{})
		})

		Convey("Lerp hits both ends and the midpoint", func() {
			So(a.Lerp(b, 0), ShouldResemble, a)
			So(a.Lerp(b, 1), ShouldResemble, b)
			So(a.Lerp(b, 0.5), ShouldResemble, Vec3(2.5, 4, 2))
		})

		Convey("IsFinite rejects NaN and infinities", func() {
			So(a.IsFinite(), ShouldBeTrue)
			So(Vec3(float32(math.NaN()), 0, 0).IsFinite(), ShouldBeFalse)
			So(Vec3(0, float32(math.Inf(1)), 0).IsFinite(), ShouldBeFalse)
		})
	})
}

func TestSegmentAndInput(t *testing.T) {
	Convey("Given a segment over [0.25, 0.5)", t, func() {
		s := Segment{Index: 1, Start: 0.25, End: 0.5}

		Convey("Contains is half-open", func() {
			So(s.Contains(0.25), ShouldBeTrue)
			So(s.Contains(0.49), ShouldBeTrue)
			So(s.Contains(0.5), ShouldBeFalse)
			So(s.Contains(0.1), ShouldBeFalse)
		})
	})

	Convey("Given input constructors", t, func() {
		Convey("Kinds and fields are set", func() {
			in := ScrollInput(120, 1000)
			So(in.Kind, ShouldEqual, InputScroll)
			So(in.Offset, ShouldEqual, 120)
			So(in.Extent, ShouldEqual, 1000)
			So(AssetLoadedInput("grass").AssetID, ShouldEqual, "grass")
			So(InputResize.String(), ShouldEqual, "resize")
			So(InputKind(9).String(), ShouldEqual, "unknown")
			So(Backward.String(), ShouldEqual, "backward")
			So(Forward.String(), ShouldEqual, "forward")
		})
	})
}
