package path_test

import (
	"errors"
	"testing"

	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/internal/domain/path"
	. "github.com/smartystreets/goconvey/convey"
)

func monthWaypoints(n int, step float32) []model.Vector3 {
	pts := make([]model.Vector3, n)
	for i := range pts {
		// zig-zag in X so the curve is not a straight line
		x := float32(0)
		if i%2 == 1 {
			x = 4
		}
		pts[i] = model.Vec3(x, float32(i)*step, float32(i%3))
	}
	return pts
}

func TestNewCurve(t *testing.T) {
	Convey("Given too few waypoints", t, func() {
		Convey("When building a curve", func() {
			_, errNone := path.New(nil)
			_, errOne := path.New([]model.Vector3{model.Vec3(1, 2, 3)})

			Convey("Then it fails with ErrInsufficientWaypoints", func() {
				So(errors.Is(errNone, path.ErrInsufficientWaypoints), ShouldBeTrue)
				So(errors.Is(errOne, path.ErrInsufficientWaypoints), ShouldBeTrue)
			})
		})

		Convey("When using the one-shot helper", func() {
			_, err := path.PositionAt(0.5, []model.Vector3{{}})

			Convey("Then it fails the same way", func() {
				So(errors.Is(err, path.ErrInsufficientWaypoints), ShouldBeTrue)
			})
		})
	})

	Convey("Given a waypoint slice", t, func() {
		pts := monthWaypoints(3, 50)
		c, err := path.New(pts)
		So(err, ShouldBeNil)

		Convey("When the caller mutates the slice afterwards", func() {
			pts[0] = model.Vec3(999, 999, 999)

			Convey("Then the curve is unaffected", func() {
				So(c.PositionAt(0), ShouldResemble, model.Vec3(0, 0, 0))
				So(c.Len(), ShouldEqual, 3)
			})
		})
	})
}

func TestPositionAt(t *testing.T) {
	Convey("Given a curve through twelve months", t, func() {
		pts := monthWaypoints(12, 50)
		c, err := path.New(pts)
		So(err, ShouldBeNil)

		Convey("Then every waypoint is hit at i/(n-1)", func() {
			for i, p := range pts {
				got := c.PositionAt(float64(i) / float64(len(pts)-1))
				So(got.Dist(p), ShouldBeLessThan, 1e-3)
			}
		})

		Convey("Then progress outside [0,1] is clamped", func() {
			So(c.PositionAt(-3), ShouldResemble, c.PositionAt(0))
			So(c.PositionAt(7), ShouldResemble, c.PositionAt(1))
		})

		Convey("Then repeated calls return the same point", func() {
			So(c.PositionAt(0.4242), ShouldResemble, c.PositionAt(0.4242))
		})

		Convey("Then the jump at every interior waypoint shrinks with the window", func() {
			jump := func(i int, eps float64) float32 {
				p := float64(i) / float64(len(pts)-1)
				return c.PositionAt(p - eps).Dist(c.PositionAt(p + eps))
			}
			for i := 1; i < len(pts)-1; i++ {
				wide, narrow := jump(i, 1e-3), jump(i, 1e-5)
				So(wide, ShouldBeGreaterThan, 0)
				So(narrow, ShouldBeLessThan, wide/50)
			}
		})

		Convey("Then small progress steps make small moves everywhere", func() {
			const steps = 4000
			maxJump := float32(0)
			prev := c.PositionAt(0)
			for k := 1; k <= steps; k++ {
				cur := c.PositionAt(float64(k) / steps)
				if d := cur.Dist(prev); d > maxJump {
					maxJump = d
				}
				prev = cur
			}
			// 550 units of travel over 4000 steps; a jump would dwarf this bound
			So(maxJump, ShouldBeLessThan, 1.0)
		})
	})
}

func TestTangentAndPose(t *testing.T) {
	Convey("Given a straight vertical path", t, func() {
		c, err := path.New([]model.Vector3{model.Vec3(0, 0, 0), model.Vec3(0, 50, 0), model.Vec3(0, 100, 0)})
		So(err, ShouldBeNil)

		Convey("Then the tangent points along +Y", func() {
			tan := c.TangentAt(0.3)
			So(tan.Y, ShouldAlmostEqual, 1, 1e-4)
			So(tan.X, ShouldAlmostEqual, 0, 1e-4)
		})

		Convey("Then the pose is offset from its target", func() {
			pose := c.PoseAt(0.5, model.Vec3(10, -25, 12))
			So(pose.Target.Dist(model.Vec3(0, 50, 0)), ShouldBeLessThan, 1e-3)
			So(pose.Position.Dist(model.Vec3(10, 25, 12)), ShouldBeLessThan, 1e-3)
		})
	})

	Convey("Given coincident waypoints", t, func() {
		c, err := path.New([]model.Vector3{model.Vec3(1, 1, 1), model.Vec3(1, 1, 1)})
		So(err, ShouldBeNil)

		Convey("Then the tangent is the zero vector, not NaN", func() {
			tan := c.TangentAt(0.5)
			So(tan.IsFinite(), ShouldBeTrue)
		})
	})
}
