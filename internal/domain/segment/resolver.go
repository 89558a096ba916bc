package segment

import (
	"math"
	"sort"

	"github.com/okian/isles/internal/domain/model"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithActiveWindow shrinks each segment's active band to a centered fraction
// of its width. The rest of the segment becomes a dead zone. Values outside
// (0,1] are ignored.
func WithActiveWindow(fraction float64) Option {
	return func(r *Resolver) {
		if fraction > 0 && fraction <= 1 {
			r.window = fraction
		}
	}
}

// WithBackwardLookAhead makes Backward resolution report the segment n
// positions after the geometric one, clamped to the last segment.
func WithBackwardLookAhead(n int) Option {
	return func(r *Resolver) {
		if n >= 0 {
			r.lookAhead = n
		}
	}
}

// Resolver maps progress onto at most one segment of a Timeline.
type Resolver struct {
	timeline  *Timeline
	window    float64
	lookAhead int
}

// NewResolver creates a resolver over t.
func NewResolver(t *Timeline, opts ...Option) *Resolver {
	r := &Resolver{
		timeline: t,
		window:   1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeline returns the timeline being resolved.
func (r *Resolver) Timeline() *Timeline { return r.timeline }

// Resolve returns the active segment for progress, or false when progress
// lies before the first boundary, after the last one, or in a dead zone.
//
// Ranges are half-open [Start, End) except the last segment, which includes
// its End.
func (r *Resolver) Resolve(progress float64, dir model.Direction) (model.Segment, bool) {
	i, ok := r.Geometric(progress)
	if !ok {
		return model.Segment{}, false
	}
	if dir == model.Backward && r.lookAhead > 0 {
		i = min(i+r.lookAhead, r.timeline.Len()-1)
	}
	return r.timeline.At(i), true
}

// Geometric returns the index of the segment under progress, ignoring direction.
func (r *Resolver) Geometric(progress float64) (int, bool) {
	segs := r.timeline.segments
	if math.IsNaN(progress) || progress < r.timeline.Start() || progress > r.timeline.End() {
		return 0, false
	}
	last := len(segs) - 1
	// first segment whose End is beyond progress
	i := sort.Search(len(segs), func(k int) bool { return segs[k].End > progress })
	if i > last {
		// progress == End of the last segment
		i = last
	}
	if !r.inWindow(segs[i], progress) {
		return 0, false
	}
	return i, true
}

// inWindow applies the dead-zone margin to a geometric hit.
func (r *Resolver) inWindow(s model.Segment, p float64) bool {
	if r.window >= 1 {
		return true
	}
	margin := (s.End - s.Start) * (1 - r.window) / 2
	return p >= s.Start+margin && p < s.End-margin
}
