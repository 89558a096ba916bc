// Package path maps normalized progress onto a smooth camera path.
package path

import (
	"fmt"
	"math"

	"github.com/okian/isles/internal/domain/model"
)

// minWaypoints is the smallest curve that has a direction.
const minWaypoints = 2

// Curve is a uniform Catmull-Rom spline through an ordered set of waypoints.
// Waypoint i sits at parameter i/(n-1). A Curve is immutable and safe to
// evaluate from any goroutine.
type Curve struct {
	points []model.Vector3
}

// New builds a curve through waypoints. The slice is copied.
func New(waypoints []model.Vector3) (*Curve, error) {
	if len(waypoints) < minWaypoints {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientWaypoints, len(waypoints))
	}
	pts := make([]model.Vector3, len(waypoints))
	copy(pts, waypoints)
	return &Curve{points: pts}, nil
}

// PositionAt builds a throwaway curve and evaluates it once.
func PositionAt(progress float64, waypoints []model.Vector3) (model.Vector3, error) {
	c, err := New(waypoints)
	if err != nil {
		return model.Vector3{}, err
	}
	return c.PositionAt(progress), nil
}

// Len returns the number of waypoints.
func (c *Curve) Len() int { return len(c.points) }

// Waypoints returns a copy of the control points.
func (c *Curve) Waypoints() []model.Vector3 {
	out := make([]model.Vector3, len(c.points))
	copy(out, c.points)
	return out
}

// PositionAt returns the point on the curve at progress, clamped to [0,1].
func (c *Curve) PositionAt(progress float64) model.Vector3 {
	i, t := c.locate(progress)
	p0, p1, p2, p3 := c.controls(i)
	return catmullRom(p0, p1, p2, p3, t)
}

// TangentAt returns the unit direction of travel at progress.
func (c *Curve) TangentAt(progress float64) model.Vector3 {
	i, t := c.locate(progress)
	p0, p1, p2, p3 := c.controls(i)
	d := catmullRomDerivative(p0, p1, p2, p3, t)
	if d.Len() == 0 {
		// Coincident waypoints: fall back to the chord.
		d = p2.Sub(p1)
	}
	return d.Normalize()
}

// PoseAt places the camera at the curve point plus offset, looking at the point.
func (c *Curve) PoseAt(progress float64, offset model.Vector3) model.CameraPose {
	target := c.PositionAt(progress)
	return model.CameraPose{
		Position: target.Add(offset),
		Target:   target,
		Forward:  c.TangentAt(progress),
	}
}

// locate returns the span index and local parameter for progress.
func (c *Curve) locate(progress float64) (int, float32) {
	if math.IsNaN(progress) {
		progress = 0
	}
	progress = math.Max(0, math.Min(1, progress))
	spans := len(c.points) - 1
	scaled := progress * float64(spans)
	i := int(math.Floor(scaled))
	if i >= spans {
		return spans - 1, 1
	}
	return i, float32(scaled - float64(i))
}

// controls returns the four control points for span i, reflecting the
// endpoints to build phantom neighbours.
func (c *Curve) controls(i int) (p0, p1, p2, p3 model.Vector3) {
	last := len(c.points) - 1
	p1 = c.points[i]
	p2 = c.points[i+1]
	if i > 0 {
		p0 = c.points[i-1]
	} else {
		p0 = p1.Scale(2).Sub(p2)
	}
	if i+2 <= last {
		p3 = c.points[i+2]
	} else {
		p3 = p2.Scale(2).Sub(p1)
	}
	return p0, p1, p2, p3
}

// catmullRom evaluates the uniform spline with tension 0.5.
func catmullRom(p0, p1, p2, p3 model.Vector3, t float32) model.Vector3 {
	return model.Vector3{
		X: interpolate(p0.X, p1.X, p2.X, p3.X, t),
		Y: interpolate(p0.Y, p1.Y, p2.Y, p3.Y, t),
		Z: interpolate(p0.Z, p1.Z, p2.Z, p3.Z, t),
	}
}

func catmullRomDerivative(p0, p1, p2, p3 model.Vector3, t float32) model.Vector3 {
	return model.Vector3{
		X: derivative(p0.X, p1.X, p2.X, p3.X, t),
		Y: derivative(p0.Y, p1.Y, p2.Y, p3.Y, t),
		Z: derivative(p0.Z, p1.Z, p2.Z, p3.Z, t),
	}
}

// interpolate is the cubic Hermite form with tangents (p2-p0)/2 and (p3-p1)/2.
func interpolate(p0, p1, p2, p3, t float32) float32 {
	v0 := (p2 - p0) * 0.5
	v1 := (p3 - p1) * 0.5
	t2 := t * t
	t3 := t * t2
	return (2*p1-2*p2+v0+v1)*t3 + (-3*p1+3*p2-2*v0-v1)*t2 + v0*t + p1
}

func derivative(p0, p1, p2, p3, t float32) float32 {
	v0 := (p2 - p0) * 0.5
	v1 := (p3 - p1) * 0.5
	return 3*(2*p1-2*p2+v0+v1)*t*t + 2*(-3*p1+3*p2-2*v0-v1)*t + v0
}
