package segment_test

import (
	"errors"
	"testing"

	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/internal/domain/segment"
	. "github.com/smartystreets/goconvey/convey"
)

func quarters() []model.Segment {
	return []model.Segment{
		{Index: 0, Start: 0, End: 0.25},
		{Index: 1, Start: 0.25, End: 0.5},
		{Index: 2, Start: 0.5, End: 0.75},
		{Index: 3, Start: 0.75, End: 1.0},
	}
}

func TestNewTimeline(t *testing.T) {
	Convey("Given segment lists", t, func() {
		Convey("When boundaries are contiguous and increasing", func() {
			tl, err := segment.NewTimeline(quarters())

			Convey("Then the timeline is built", func() {
				So(err, ShouldBeNil)
				So(tl.Len(), ShouldEqual, 4)
				So(tl.Start(), ShouldEqual, 0)
				So(tl.End(), ShouldEqual, 1)
			})
		})

		Convey("When the list is empty", func() {
			_, err := segment.NewTimeline(nil)
			So(errors.Is(err, segment.ErrInvalidSegmentOrdering), ShouldBeTrue)
		})

		Convey("When a segment is empty or inverted", func() {
			segs := quarters()
			segs[2].End = segs[2].Start
			_, err := segment.NewTimeline(segs)
			So(errors.Is(err, segment.ErrInvalidSegmentOrdering), ShouldBeTrue)
		})

		Convey("When there is a gap", func() {
			segs := quarters()
			segs[2].Start = 0.55
			_, err := segment.NewTimeline(segs)
			So(errors.Is(err, segment.ErrInvalidSegmentOrdering), ShouldBeTrue)
		})

		Convey("When segments overlap", func() {
			segs := quarters()
			segs[1].End = 0.6
			_, err := segment.NewTimeline(segs)
			So(errors.Is(err, segment.ErrInvalidSegmentOrdering), ShouldBeTrue)
		})

		Convey("When indices are out of order", func() {
			segs := quarters()
			segs[0].Index, segs[1].Index = 1, 0
			_, err := segment.NewTimeline(segs)
			So(errors.Is(err, segment.ErrInvalidSegmentOrdering), ShouldBeTrue)
		})
	})

	Convey("Given Even with twelve months", t, func() {
		tl, err := segment.Even(12, nil, nil)

		Convey("Then it covers [0,1] exactly", func() {
			So(err, ShouldBeNil)
			So(tl.Len(), ShouldEqual, 12)
			So(tl.Start(), ShouldEqual, 0)
			So(tl.End(), ShouldEqual, 1)
		})

		Convey("Then Segments returns a copy", func() {
			segs := tl.Segments()
			segs[0].Start = 42
			So(tl.At(0).Start, ShouldEqual, 0)
		})
	})

	Convey("Given Even with no or a negative count", t, func() {
		Convey("Then it fails with an ordering error instead of panicking", func() {
			for _, n := range []int{0, -1, -12} {
				var err error
				So(func() { _, err = segment.Even(n, nil, nil) }, ShouldNotPanic)
				So(errors.Is(err, segment.ErrInvalidSegmentOrdering), ShouldBeTrue)
			}
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given four quarter segments", t, func() {
		tl, err := segment.NewTimeline(quarters())
		So(err, ShouldBeNil)
		r := segment.NewResolver(tl)

		Convey("Then 0.26 resolves to index 1", func() {
			s, ok := r.Resolve(0.26, model.Forward)
			So(ok, ShouldBeTrue)
			So(s.Index, ShouldEqual, 1)
		})

		Convey("Then 0.25 resolves to index 1 (half-open lower bound)", func() {
			s, ok := r.Resolve(0.25, model.Forward)
			So(ok, ShouldBeTrue)
			So(s.Index, ShouldEqual, 1)
		})

		Convey("Then 1.0 resolves to index 3 (closed upper bound)", func() {
			s, ok := r.Resolve(1.0, model.Forward)
			So(ok, ShouldBeTrue)
			So(s.Index, ShouldEqual, 3)
		})

		Convey("Then 0 resolves to index 0", func() {
			s, ok := r.Resolve(0, model.Forward)
			So(ok, ShouldBeTrue)
			So(s.Index, ShouldEqual, 0)
		})

		Convey("Then values outside the timeline resolve to none", func() {
			_, ok := r.Resolve(-0.01, model.Forward)
			So(ok, ShouldBeFalse)
			_, ok = r.Resolve(1.01, model.Forward)
			So(ok, ShouldBeFalse)
		})

		Convey("Then every progress value maps to exactly the containing segment", func() {
			for k := 0; k <= 1000; k++ {
				p := float64(k) / 1000
				s, ok := r.Resolve(p, model.Forward)
				So(ok, ShouldBeTrue)
				matches := 0
				for _, c := range tl.Segments() {
					if c.Contains(p) || (c.Index == tl.Len()-1 && p == c.End) {
						matches++
					}
				}
				So(matches, ShouldEqual, 1)
				So(s.Contains(p) || p == 1, ShouldBeTrue)
			}
		})
	})

	Convey("Given a timeline that does not start at zero", t, func() {
		tl, err := segment.NewTimeline([]model.Segment{
			{Index: 0, Start: 0.1, End: 0.5},
			{Index: 1, Start: 0.5, End: 0.9},
		})
		So(err, ShouldBeNil)
		r := segment.NewResolver(tl)

		Convey("Then the leading and trailing ranges are dead zones", func() {
			_, ok := r.Resolve(0.05, model.Forward)
			So(ok, ShouldBeFalse)
			_, ok = r.Resolve(0.95, model.Forward)
			So(ok, ShouldBeFalse)
			s, ok := r.Resolve(0.9, model.Forward)
			So(ok, ShouldBeTrue)
			So(s.Index, ShouldEqual, 1)
		})
	})

	Convey("Given an active window of 0.9", t, func() {
		tl, err := segment.Even(4, nil, nil)
		So(err, ShouldBeNil)
		r := segment.NewResolver(tl, segment.WithActiveWindow(0.9))

		Convey("Then the edges of each segment are dead zones", func() {
			_, ok := r.Resolve(0.25, model.Forward)
			So(ok, ShouldBeFalse)
			_, ok = r.Resolve(0.2499, model.Forward)
			So(ok, ShouldBeFalse)
			_, ok = r.Resolve(1.0, model.Forward)
			So(ok, ShouldBeFalse)
		})

		Convey("Then the centers are still active", func() {
			s, ok := r.Resolve(0.375, model.Forward)
			So(ok, ShouldBeTrue)
			So(s.Index, ShouldEqual, 1)
		})

		Convey("Then invalid windows are ignored", func() {
			wide := segment.NewResolver(tl, segment.WithActiveWindow(1.5))
			_, ok := wide.Resolve(0.25, model.Forward)
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given a backward look-ahead of one", t, func() {
		tl, err := segment.NewTimeline(quarters())
		So(err, ShouldBeNil)
		r := segment.NewResolver(tl, segment.WithBackwardLookAhead(1))

		Convey("Then backward resolution reports the following segment", func() {
			s, ok := r.Resolve(0.3, model.Backward)
			So(ok, ShouldBeTrue)
			So(s.Index, ShouldEqual, 2)
		})

		Convey("Then forward resolution is unchanged", func() {
			s, ok := r.Resolve(0.3, model.Forward)
			So(ok, ShouldBeTrue)
			So(s.Index, ShouldEqual, 1)
		})

		Convey("Then the last segment is the upper clamp", func() {
			s, ok := r.Resolve(0.9, model.Backward)
			So(ok, ShouldBeTrue)
			So(s.Index, ShouldEqual, 3)
		})
	})
}
