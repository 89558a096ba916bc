package ws

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/isles/internal/domain/effects"
	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/pkg/metrics"
)

const defaultOutboundBuffer = 256

// Remote implements every collaborator contract by queueing commands for
// the connection writer. Sends never block; when the client falls behind
// commands are dropped and counted.
type Remote struct {
	out     chan ServerMessage
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// NewRemote creates a remote collaborator with an outbound buffer of size n.
func NewRemote(n int) *Remote {
	if n <= 0 {
		n = defaultOutboundBuffer
	}
	return &Remote{
		out:  make(chan ServerMessage, n),
		done: make(chan struct{}),
	}
}

var _ effects.Collaborators = (*Remote)(nil)
var _ effects.ReadyNotifier = (*Remote)(nil)

// Out is drained by the connection writer.
func (r *Remote) Out() <-chan ServerMessage { return r.out }

// Done is closed by Close.
func (r *Remote) Done() <-chan struct{} { return r.done }

// Close stops accepting commands. Out is left open so late senders never panic.
func (r *Remote) Close() { r.once.Do(func() { close(r.done) }) }

// Dropped is the number of commands discarded because the buffer was full.
func (r *Remote) Dropped() int64 { return r.dropped.Load() }

func (r *Remote) send(m ServerMessage) {
	select {
	case <-r.done:
		return
	default:
	}
	select {
	case r.out <- m:
		metrics.RecordWSMessage("out", m.Op)
	default:
		r.dropped.Add(1)
		metrics.RecordError("ws", "outbound_full")
	}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// SetCameraPose implements effects.Renderer.
func (r *Remote) SetCameraPose(_ context.Context, pose model.CameraPose) {
	r.send(ServerMessage{Op: OpSetCameraPose, Pose: &pose})
}

// ApplyTheme implements effects.ThemeApplier.
func (r *Remote) ApplyTheme(_ context.Context, seg model.Segment, theme effects.Theme) {
	r.send(ServerMessage{Op: OpApplyTheme, Index: intPtr(seg.Index), Theme: theme, Label: seg.Payload.Label})
}

// ApplyEnvironment implements effects.EnvironmentApplier.
func (r *Remote) ApplyEnvironment(_ context.Context, theme effects.Theme) {
	r.send(ServerMessage{Op: OpApplyEnv, Theme: theme})
}

// SetActiveMarker implements effects.MarkerSetter.
func (r *Remote) SetActiveMarker(_ context.Context, index int, ok bool, emphasis []effects.Emphasis) {
	m := ServerMessage{Op: OpSetActiveMarker, Active: boolPtr(ok), Emphasis: emphasis}
	if ok {
		m.Index = intPtr(index)
	}
	r.send(m)
}

// SetActiveCard implements effects.CardSetter.
func (r *Remote) SetActiveCard(_ context.Context, index int, ok bool) {
	m := ServerMessage{Op: OpSetActiveCard, Active: boolPtr(ok)}
	if ok {
		m.Index = intPtr(index)
	}
	r.send(m)
}

// PlayCue implements effects.CuePlayer.
func (r *Remote) PlayCue(_ context.Context, cue string) {
	r.send(ServerMessage{Op: OpPlayCue, Cue: cue})
}

// RepositionAmbientEffects implements effects.AmbientPositioner.
func (r *Remote) RepositionAmbientEffects(_ context.Context, seg model.Segment) {
	r.send(ServerMessage{Op: OpReposition, Index: intPtr(seg.Index)})
}

// NotifyReady implements effects.ReadyNotifier.
func (r *Remote) NotifyReady(context.Context) {
	r.send(ServerMessage{Op: OpReady})
}
