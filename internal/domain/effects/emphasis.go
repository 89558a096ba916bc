package effects

// Marker sizes used by the timeline; the active marker is the largest.
const (
	SizeActive   = 4
	SizeNear     = 3
	SizeFar      = 2
	emphasisSpan = 2
)

// Emphasis is the display size of one timeline marker.
type Emphasis struct {
	Index int `json:"index"`
	Size  int `json:"size"`
}

// MarkerEmphasis returns sizes for the active marker and its neighbours,
// ordered by index and bounded to [0, count).
func MarkerEmphasis(active, count int) []Emphasis {
	if active < 0 || active >= count {
		return nil
	}
	out := make([]Emphasis, 0, 2*emphasisSpan+1)
	for i := active - emphasisSpan; i <= active+emphasisSpan; i++ {
		if i < 0 || i >= count {
			continue
		}
		out = append(out, Emphasis{Index: i, Size: sizeFor(abs(i - active))})
	}
	return out
}

func sizeFor(distance int) int {
	switch distance {
	case 0:
		return SizeActive
	case 1:
		return SizeNear
	default:
		return SizeFar
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
