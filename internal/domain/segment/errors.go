package segment

import "errors"

// ErrInvalidSegmentOrdering is returned when boundaries are not strictly
// increasing and contiguous, or indices are out of order.
var ErrInvalidSegmentOrdering = errors.New("segment: invalid segment ordering")
