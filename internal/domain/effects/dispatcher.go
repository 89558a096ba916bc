package effects

import (
	"context"

	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/internal/domain/scene"
	"github.com/okian/isles/pkg/logger"
)

// defaultCue is played on every enter unless a cue function is configured.
const defaultCue = "reveal"

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithRenderer registers the camera collaborator.
func WithRenderer(r Renderer) Option { return func(d *Dispatcher) { d.renderer = r } }

// WithThemeApplier registers the island theme collaborator.
func WithThemeApplier(t ThemeApplier) Option { return func(d *Dispatcher) { d.themes = t } }

// WithEnvironmentApplier registers the background collaborator.
func WithEnvironmentApplier(e EnvironmentApplier) Option {
	return func(d *Dispatcher) { d.environment = e }
}

// WithMarkerSetter registers the timeline collaborator.
func WithMarkerSetter(m MarkerSetter) Option { return func(d *Dispatcher) { d.markers = m } }

// WithCardSetter registers the card stack collaborator.
func WithCardSetter(c CardSetter) Option { return func(d *Dispatcher) { d.cards = c } }

// WithCuePlayer registers the audio collaborator.
func WithCuePlayer(p CuePlayer) Option { return func(d *Dispatcher) { d.audio = p } }

// WithAmbientPositioner registers the particle collaborator.
func WithAmbientPositioner(a AmbientPositioner) Option { return func(d *Dispatcher) { d.ambient = a } }

// WithCollaborators registers one implementation for every contract.
func WithCollaborators(c Collaborators) Option {
	return func(d *Dispatcher) {
		if c == nil {
			return
		}
		d.renderer, d.themes, d.environment = c, c, c
		d.markers, d.cards, d.audio, d.ambient = c, c, c, c
	}
}

// WithCue sets the cue played when a segment is entered. Returning "" plays nothing.
func WithCue(fn func(seg model.Segment) string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.cueFor = fn
		}
	}
}

// WithSegmentCount bounds marker emphasis to the timeline length.
func WithSegmentCount(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.count = n
		}
	}
}

// WithLogger sets a custom logger for the dispatcher.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// Dispatcher fans transitions out to collaborators. Unregistered
// collaborators are skipped. Like the synchronizer it is driven from a
// single goroutine.
type Dispatcher struct {
	renderer    Renderer
	themes      ThemeApplier
	environment EnvironmentApplier
	markers     MarkerSetter
	cards       CardSetter
	audio       CuePlayer
	ambient     AmbientPositioner

	cueFor func(model.Segment) string
	count  int
	logger logger.Logger

	envTheme Theme
}

// NewDispatcher creates a dispatcher with the given collaborators.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cueFor: func(model.Segment) string { return defaultCue },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch forwards one cycle. Cycles without transitions are ignored, so
// each reveal and darken reaches collaborators exactly once.
func (d *Dispatcher) Dispatch(ctx context.Context, c scene.Cycle) {
	if !c.Changed() {
		return
	}
	for _, t := range c.Transitions {
		switch t.Kind {
		case scene.Exit:
			d.OnExit(ctx, t.Segment)
		case scene.Enter:
			d.OnEnter(ctx, t.Segment)
		}
	}

	// Marker, card and environment reflect where the cycle ended so a skip
	// never shows an empty frame in between.
	if c.Current != nil {
		d.setActive(ctx, c.Current.Index, true)
		d.setEnvironment(ctx, ThemeHappy)
	} else {
		d.setActive(ctx, 0, false)
		d.setEnvironment(ctx, ThemeDark)
	}
}

// OnEnter reveals seg.
func (d *Dispatcher) OnEnter(ctx context.Context, seg model.Segment) {
	if d.logger != nil {
		d.logger.Debug(ctx, "reveal", logger.Int("segment", seg.Index), logger.String("label", seg.Payload.Label))
	}
	if d.themes != nil {
		d.themes.ApplyTheme(ctx, seg, ThemeHappy)
	}
	if d.audio != nil {
		if cue := d.cueFor(seg); cue != "" {
			d.audio.PlayCue(ctx, cue)
		}
	}
	if d.ambient != nil {
		d.ambient.RepositionAmbientEffects(ctx, seg)
	}
}

// OnExit darkens seg.
func (d *Dispatcher) OnExit(ctx context.Context, seg model.Segment) {
	if d.logger != nil {
		d.logger.Debug(ctx, "darken", logger.Int("segment", seg.Index), logger.String("label", seg.Payload.Label))
	}
	if d.themes != nil {
		d.themes.ApplyTheme(ctx, seg, ThemeDark)
	}
}

// SetCameraPose forwards a pose to the renderer.
func (d *Dispatcher) SetCameraPose(ctx context.Context, pose model.CameraPose) {
	if d.renderer != nil {
		d.renderer.SetCameraPose(ctx, pose)
	}
}

func (d *Dispatcher) setActive(ctx context.Context, index int, ok bool) {
	if d.markers != nil {
		var emphasis []Emphasis
		if ok {
			emphasis = MarkerEmphasis(index, max(d.count, index+1))
		}
		d.markers.SetActiveMarker(ctx, index, ok, emphasis)
	}
	if d.cards != nil {
		d.cards.SetActiveCard(ctx, index, ok)
	}
}

func (d *Dispatcher) setEnvironment(ctx context.Context, theme Theme) {
	if d.environment == nil || d.envTheme == theme {
		return
	}
	d.envTheme = theme
	d.environment.ApplyEnvironment(ctx, theme)
}

// Begin puts collaborators into the idle presentation before the first sample.
func (d *Dispatcher) Begin(ctx context.Context) {
	d.setActive(ctx, 0, false)
	d.setEnvironment(ctx, ThemeDark)
}
