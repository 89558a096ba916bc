// Package scroll normalizes raw scroll offsets into progress samples.
package scroll

import (
	"math"

	"github.com/okian/isles/internal/domain/model"
)

// Sampler turns (offset, extent) pairs into ScrollState values.
//
// It remembers the previous offset and direction so that direction holds its
// last value on zero delta. A Sampler is not safe for concurrent use; it is
// owned by the session loop.
type Sampler struct {
	previous  float64
	direction model.Direction
	primed    bool
}

// NewSampler returns a sampler positioned at offset 0 heading Forward.
func NewSampler() *Sampler {
	return &Sampler{direction: model.Forward}
}

// Sample records a new raw offset and returns the derived state.
// A non-positive extent yields progress 0.
func (s *Sampler) Sample(rawOffset, extent float64) model.ScrollState {
	if math.IsNaN(rawOffset) {
		rawOffset = 0
	}
	prev := s.previous
	if !s.primed {
		prev = rawOffset
		s.primed = true
	}

	switch {
	case rawOffset > prev:
		s.direction = model.Forward
	case rawOffset < prev:
		s.direction = model.Backward
	}
	s.previous = rawOffset

	return model.ScrollState{
		RawOffset:         rawOffset,
		PreviousRawOffset: prev,
		Extent:            extent,
		Progress:          Progress(rawOffset, extent),
		Direction:         s.direction,
	}
}

// Direction returns the last recorded direction.
func (s *Sampler) Direction() model.Direction { return s.direction }

// Reset forgets the previous offset.
func (s *Sampler) Reset() {
	s.previous = 0
	s.primed = false
	s.direction = model.Forward
}

// Progress maps an offset onto [0,1].
func Progress(rawOffset, extent float64) float64 {
	if extent <= 0 || math.IsNaN(extent) || math.IsNaN(rawOffset) {
		return 0
	}
	return Clamp(rawOffset/extent, 0, 1)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
