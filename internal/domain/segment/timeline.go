// Package segment builds validated month timelines and resolves the active
// segment for a progress value.
package segment

import (
	"fmt"
	"math"

	"github.com/okian/isles/internal/domain/model"
)

// Timeline is an immutable, validated, ordered list of segments.
type Timeline struct {
	segments []model.Segment
}

// NewTimeline validates segs and copies them into a Timeline.
func NewTimeline(segs []model.Segment) (*Timeline, error) {
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: no segments", ErrInvalidSegmentOrdering)
	}
	for i, s := range segs {
		if s.Index != i {
			return nil, fmt.Errorf("%w: segment at position %d has index %d", ErrInvalidSegmentOrdering, i, s.Index)
		}
		if math.IsNaN(s.Start) || math.IsNaN(s.End) || !(s.Start < s.End) {
			return nil, fmt.Errorf("%w: segment %d has range [%g, %g)", ErrInvalidSegmentOrdering, i, s.Start, s.End)
		}
		if i > 0 && segs[i-1].End != s.Start {
			return nil, fmt.Errorf("%w: segment %d starts at %g but segment %d ends at %g",
				ErrInvalidSegmentOrdering, i, s.Start, i-1, segs[i-1].End)
		}
	}
	out := make([]model.Segment, len(segs))
	copy(out, segs)
	return &Timeline{segments: out}, nil
}

// Even lays n segments uniformly over [0,1]. payloads and waypoints may be
// shorter than n; missing entries are left zero.
func Even(n int, payloads []model.Payload, waypoints []model.Vector3) (*Timeline, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d segments", ErrInvalidSegmentOrdering, n)
	}
	segs := make([]model.Segment, n)
	for i := range segs {
		segs[i] = model.Segment{
			Index: i,
			Start: float64(i) / float64(n),
			End:   float64(i+1) / float64(n),
		}
		if i < len(payloads) {
			segs[i].Payload = payloads[i]
		}
		if i < len(waypoints) {
			segs[i].Waypoint = waypoints[i]
		}
	}
	// exact upper bound regardless of float rounding
	segs[n-1].End = 1
	return NewTimeline(segs)
}

// Len returns the number of segments.
func (t *Timeline) Len() int { return len(t.segments) }

// At returns the segment at index i.
func (t *Timeline) At(i int) model.Segment { return t.segments[i] }

// Segments returns a copy of the segments.
func (t *Timeline) Segments() []model.Segment {
	out := make([]model.Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Start is the lower bound of the first segment.
func (t *Timeline) Start() float64 { return t.segments[0].Start }

// End is the upper bound of the last segment.
func (t *Timeline) End() float64 { return t.segments[len(t.segments)-1].End }

// Waypoints returns every segment waypoint in order.
func (t *Timeline) Waypoints() []model.Vector3 {
	out := make([]model.Vector3, len(t.segments))
	for i, s := range t.segments {
		out[i] = s.Waypoint
	}
	return out
}
