// Package effects forwards synchronizer transitions to presentation
// collaborators. It owns no animation timing; every call is fire-and-forget.
package effects

import (
	"context"
	"strings"

	"github.com/okian/isles/internal/domain/model"
)

// Theme is the color scheme applied to an island or the environment.
type Theme string

const (
	// ThemeHappy is applied on reveal.
	ThemeHappy Theme = "happy"
	// ThemeDark is applied on darken.
	ThemeDark Theme = "dark"
)

// ParseTheme accepts "happy" or "dark".
func ParseTheme(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeHappy:
		return ThemeHappy, true
	case ThemeDark:
		return ThemeDark, true
	}
	return "", false
}

// Renderer receives the camera pose once per render tick.
type Renderer interface {
	SetCameraPose(ctx context.Context, pose model.CameraPose)
}

// ThemeApplier recolors the scene elements of one segment.
type ThemeApplier interface {
	ApplyTheme(ctx context.Context, seg model.Segment, theme Theme)
}

// EnvironmentApplier recolors the background environment.
type EnvironmentApplier interface {
	ApplyEnvironment(ctx context.Context, theme Theme)
}

// MarkerSetter highlights the timeline marker of the active segment.
// ok is false when no segment is active; emphasis lists neighbour sizes.
type MarkerSetter interface {
	SetActiveMarker(ctx context.Context, index int, ok bool, emphasis []Emphasis)
}

// CardSetter shows the content card of the active segment.
type CardSetter interface {
	SetActiveCard(ctx context.Context, index int, ok bool)
}

// CuePlayer plays an audio cue.
type CuePlayer interface {
	PlayCue(ctx context.Context, cue string)
}

// AmbientPositioner moves particles and other ambient effects near a segment.
type AmbientPositioner interface {
	RepositionAmbientEffects(ctx context.Context, seg model.Segment)
}

// Collaborators bundles every contract. A remote client typically
// implements all of them at once.
type Collaborators interface {
	Renderer
	ThemeApplier
	EnvironmentApplier
	MarkerSetter
	CardSetter
	CuePlayer
	AmbientPositioner
}

// ReadyNotifier is told once all assets are loaded and sampling begins.
// It is optional; collaborators that do not implement it are skipped.
type ReadyNotifier interface {
	NotifyReady(ctx context.Context)
}
