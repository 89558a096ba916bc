package model

import "time"

// InputKind tags a client input.
type InputKind int

const (
	// InputScroll carries a raw scroll offset and extent.
	InputScroll InputKind = iota
	// InputAssetLoaded reports one asset finished loading.
	InputAssetLoaded
	// InputResize reports a viewport change; the core ignores it.
	InputResize
)

func (k InputKind) String() string {
	switch k {
	case InputScroll:
		return "scroll"
	case InputAssetLoaded:
		return "assetLoaded"
	case InputResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Input is one client event flowing into a session.
type Input struct {
	Kind    InputKind
	Offset  float64
	Extent  float64
	AssetID string
	Width   int
	Height  int
	At      time.Time
}

// ScrollInput builds a scroll input stamped now.
func ScrollInput(offset, extent float64) Input {
	return Input{Kind: InputScroll, Offset: offset, Extent: extent, At: time.Now()}
}

// AssetLoadedInput builds an asset report stamped now.
func AssetLoadedInput(id string) Input {
	return Input{Kind: InputAssetLoaded, AssetID: id, At: time.Now()}
}
