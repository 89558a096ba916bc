package path

import "errors"

// ErrInsufficientWaypoints is returned when a curve is built from fewer than two points.
var ErrInsufficientWaypoints = errors.New("path: at least two waypoints are required")
