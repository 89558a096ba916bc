package app_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/okian/isles/internal/app"
	"github.com/okian/isles/internal/domain/dataset"
	"github.com/okian/isles/internal/domain/effects"
	"github.com/okian/isles/internal/domain/island"
	"github.com/okian/isles/internal/domain/model"
)

const fourMonths = `
assets:
  - id: grass
    category: vegetation
  - id: tree
    category: tree
    variant: winter
years:
  - year: "2020"
    months:
      - month: 1
        magnitude: 1000
      - month: 2
        magnitude: 2000
      - month: 3
        magnitude: 3000
      - month: 4
        magnitude: 4000
`

func newWorld() *app.World {
	d, err := dataset.Decode(strings.NewReader(fourMonths))
	if err != nil {
		panic(err)
	}
	w, err := app.NewWorld(d, 50, island.NewShaper())
	if err != nil {
		panic(err)
	}
	return w
}

// recorder implements every collaborator contract and keeps a call log.
type recorder struct {
	mu    sync.Mutex
	calls []string
	poses []model.CameraPose
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *recorder) SetCameraPose(_ context.Context, pose model.CameraPose) {
	r.mu.Lock()
	r.poses = append(r.poses, pose)
	r.mu.Unlock()
}

func (r *recorder) ApplyTheme(_ context.Context, seg model.Segment, theme effects.Theme) {
	r.add("theme %d %s", seg.Index, theme)
}

func (r *recorder) ApplyEnvironment(_ context.Context, theme effects.Theme) {
	r.add("env %s", theme)
}

func (r *recorder) SetActiveMarker(_ context.Context, index int, ok bool, _ []effects.Emphasis) {
	if !ok {
		r.add("marker none")
		return
	}
	r.add("marker %d", index)
}

func (r *recorder) SetActiveCard(_ context.Context, index int, ok bool) {
	if !ok {
		r.add("card none")
		return
	}
	r.add("card %d", index)
}

func (r *recorder) PlayCue(_ context.Context, cue string) { r.add("cue %s", cue) }

func (r *recorder) RepositionAmbientEffects(_ context.Context, seg model.Segment) {
	r.add("ambient %d", seg.Index)
}

func (r *recorder) NotifyReady(context.Context) { r.add("ready") }

func (r *recorder) log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.calls = nil
	r.poses = nil
	r.mu.Unlock()
}

func (r *recorder) lastPose() (model.CameraPose, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.poses) == 0 {
		return model.CameraPose{}, 0
	}
	return r.poses[len(r.poses)-1], len(r.poses)
}
