package assets

import "errors"

// Sentinel errors returned by the registry and the readiness barrier.
var (
	ErrUnknownAsset   = errors.New("unknown asset")
	ErrDuplicateAsset = errors.New("duplicate asset")
	ErrBarrierClosed  = errors.New("barrier already released")
)
