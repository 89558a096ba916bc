// Package app assembles the synchronization core into sessions: one
// Experience per connected client, each driven by its own session loop.
package app

import (
	"fmt"

	"github.com/okian/isles/internal/domain/assets"
	"github.com/okian/isles/internal/domain/dataset"
	"github.com/okian/isles/internal/domain/island"
	"github.com/okian/isles/internal/domain/path"
	"github.com/okian/isles/internal/domain/segment"
)

// World is the immutable scene every session shares: the segment
// timeline, the camera path and the model manifest.
type World struct {
	Timeline *segment.Timeline
	Curve    *path.Curve
	Registry *assets.Registry
	Step     float64
}

// NewWorld lays a dataset out with the given vertical step.
func NewWorld(d *dataset.Dataset, step float64, shaper *island.Shaper) (*World, error) {
	timeline, waypoints, err := d.Build(step, shaper)
	if err != nil {
		return nil, err
	}
	curve, err := path.New(waypoints)
	if err != nil {
		return nil, fmt.Errorf("camera path: %w", err)
	}
	reg, err := d.Registry()
	if err != nil {
		return nil, err
	}
	return &World{Timeline: timeline, Curve: curve, Registry: reg, Step: step}, nil
}
