package simulate

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/isles/internal/domain/effects"
	"github.com/okian/isles/internal/domain/model"
)

// Tally is a collaborator that counts reveals and darkens and checks them
// against each other as they arrive.
type Tally struct {
	mu         sync.Mutex
	active     map[int]bool
	enters     map[int]int
	exits      int
	cues       int
	maxActive  int
	violations []string
	log        func(string)
}

// NewTally creates an empty tally. log, when set, receives every transition.
func NewTally(log func(string)) *Tally {
	return &Tally{active: make(map[int]bool), enters: make(map[int]int), log: log}
}

var _ effects.Collaborators = (*Tally)(nil)

// Reveal records an enter of index.
func (t *Tally) Reveal(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[index] {
		t.violate("segment %d revealed twice without darken", index)
	}
	if len(t.active) > 0 {
		t.violate("segment %d revealed while %v still active", index, keys(t.active))
	}
	t.active[index] = true
	t.enters[index]++
	if len(t.active) > t.maxActive {
		t.maxActive = len(t.active)
	}
	t.trace("reveal %d", index)
}

// Darken records an exit of index.
func (t *Tally) Darken(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active[index] {
		t.violate("segment %d darkened while not active", index)
	}
	delete(t.active, index)
	t.exits++
	t.trace("darken %d", index)
}

// Cue records a cue.
func (t *Tally) Cue() {
	t.mu.Lock()
	t.cues++
	t.mu.Unlock()
}

func (t *Tally) violate(format string, args ...any) {
	t.violations = append(t.violations, fmt.Sprintf(format, args...))
}

func (t *Tally) trace(format string, args ...any) {
	if t.log != nil {
		t.log(fmt.Sprintf(format, args...))
	}
}

// Fill copies the counters into r.
func (t *Tally) Fill(r *Report) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r.EntersBySeg = make(map[int]int, len(t.enters))
	for k, v := range t.enters {
		r.EntersBySeg[k] = v
		r.Enters += v
	}
	r.Exits = t.exits
	r.Cues = t.cues
	r.MaxActive = t.maxActive
	r.Violations = append(r.Violations, t.violations...)
	for k := range t.active {
		idx := k
		r.Final = &idx
	}
}

func keys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// SetCameraPose implements effects.Renderer.
func (t *Tally) SetCameraPose(context.Context, model.CameraPose) {}

// ApplyTheme implements effects.ThemeApplier.
func (t *Tally) ApplyTheme(_ context.Context, seg model.Segment, theme effects.Theme) {
	if theme == effects.ThemeHappy {
		t.Reveal(seg.Index)
		return
	}
	t.Darken(seg.Index)
}

// ApplyEnvironment implements effects.EnvironmentApplier.
func (t *Tally) ApplyEnvironment(context.Context, effects.Theme) {}

// SetActiveMarker implements effects.MarkerSetter.
func (t *Tally) SetActiveMarker(context.Context, int, bool, []effects.Emphasis) {}

// SetActiveCard implements effects.CardSetter.
func (t *Tally) SetActiveCard(context.Context, int, bool) {}

// PlayCue implements effects.CuePlayer.
func (t *Tally) PlayCue(context.Context, string) { t.Cue() }

// RepositionAmbientEffects implements effects.AmbientPositioner.
func (t *Tally) RepositionAmbientEffects(context.Context, model.Segment) {}
