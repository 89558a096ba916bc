// Package ws carries a session over a WebSocket: client inputs in, collaborator
// commands out, both as JSON text frames.
package ws

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/okian/isles/internal/domain/effects"
	"github.com/okian/isles/internal/domain/model"
)

// Client message types.
const (
	TypeScroll      = "scroll"
	TypeAssetLoaded = "assetLoaded"
	TypeResize      = "resize"
)

// Server operations.
const (
	OpHello           = "hello"
	OpReady           = "ready"
	OpSetCameraPose   = "setCameraPose"
	OpApplyTheme      = "applyTheme"
	OpApplyEnv        = "applyEnvironment"
	OpSetActiveMarker = "setActiveMarker"
	OpSetActiveCard   = "setActiveCard"
	OpPlayCue         = "playCue"
	OpReposition      = "repositionAmbient"
)

// ClientMessage is one inbound frame.
type ClientMessage struct {
	Type   string  `json:"type"`
	Offset float64 `json:"offset,omitempty"`
	Extent float64 `json:"extent,omitempty"`
	ID     string  `json:"id,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
}

// ServerMessage is one outbound frame. Fields irrelevant to Op are omitted.
type ServerMessage struct {
	Op       string             `json:"op"`
	Session  string             `json:"session,omitempty"`
	Assets   []string           `json:"assets,omitempty"`
	Index    *int               `json:"index,omitempty"`
	Active   *bool              `json:"active,omitempty"`
	Theme    effects.Theme      `json:"theme,omitempty"`
	Cue      string             `json:"cue,omitempty"`
	Label    string             `json:"label,omitempty"`
	Emphasis []effects.Emphasis `json:"emphasis,omitempty"`
	Pose     *model.CameraPose  `json:"pose,omitempty"`
}

// Decode parses a client frame into a session input.
func Decode(data []byte) (model.Input, error) {
	var m ClientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return model.Input{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	now := time.Now()
	switch m.Type {
	case TypeScroll:
		if math.IsInf(m.Offset, 0) || math.IsInf(m.Extent, 0) {
			return model.Input{}, fmt.Errorf("%w: non-finite scroll", ErrMalformedMessage)
		}
		return model.Input{Kind: model.InputScroll, Offset: m.Offset, Extent: m.Extent, At: now}, nil
	case TypeAssetLoaded:
		if m.ID == "" {
			return model.Input{}, fmt.Errorf("%w: asset id missing", ErrMalformedMessage)
		}
		return model.Input{Kind: model.InputAssetLoaded, AssetID: m.ID, At: now}, nil
	case TypeResize:
		return model.Input{Kind: model.InputResize, Width: m.Width, Height: m.Height, At: now}, nil
	default:
		return model.Input{}, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
}
