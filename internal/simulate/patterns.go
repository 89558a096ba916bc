package simulate

import (
	"fmt"
	"math/rand"
)

// Trace patterns.
const (
	PatternSweep    = "sweep"
	PatternPingPong = "pingpong"
	PatternJitter   = "jitter"
	PatternJump     = "jump"
)

// jitterStep bounds one random-walk move as a fraction of the extent.
const jitterStep = 0.02

// Trace returns n raw offsets over [0, extent] following pattern.
func Trace(pattern string, n int, extent float64, seed int64) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d", n)
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible traces
	out := make([]float64, n)
	switch pattern {
	case PatternSweep:
		for i := range out {
			out[i] = extent * float64(i) / float64(n-1)
		}
	case PatternPingPong:
		half := n / 2
		for i := range out {
			if i <= half {
				out[i] = extent * float64(i) / float64(half)
			} else {
				out[i] = extent * float64(n-1-i) / float64(n-1-half)
			}
		}
	case PatternJitter:
		pos := extent / 2
		for i := range out {
			pos += (rng.Float64()*2 - 1) * jitterStep * extent
			if pos < 0 {
				pos = 0
			}
			if pos > extent {
				pos = extent
			}
			out[i] = pos
		}
	case PatternJump:
		for i := range out {
			out[i] = rng.Float64() * extent
		}
	default:
		return nil, fmt.Errorf("unknown pattern %q", pattern)
	}
	return out, nil
}
