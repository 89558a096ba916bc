package app

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/google/uuid"

	"github.com/okian/isles/internal/domain/assets"
	"github.com/okian/isles/internal/domain/effects"
	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/internal/domain/scene"
	"github.com/okian/isles/internal/domain/scroll"
	"github.com/okian/isles/internal/domain/segment"
	"github.com/okian/isles/pkg/logger"
	"github.com/okian/isles/pkg/metrics"
)

const (
	defaultSpringFPS       = 60
	defaultSpringFrequency = 6.0
	defaultSpringDamping   = 1.0
	springSettle           = 1e-4
)

// ExperienceOption applies a configuration option to an Experience.
type ExperienceOption func(*experienceConfig)

type experienceConfig struct {
	id          uuid.UUID
	window      float64
	lookAhead   int
	policy      scene.SkipPolicy
	cue         string
	offset      model.Vector3
	springFPS   int
	springFreq  float64
	springDamp  float64
	logger      logger.Logger
	cycleIDs    func() uuid.UUID
	skipBarrier bool
}

// WithID sets the experience id; a random one is used otherwise.
func WithID(id uuid.UUID) ExperienceOption {
	return func(c *experienceConfig) { c.id = id }
}

// WithActiveWindow sets the centered active fraction of each segment.
func WithActiveWindow(fraction float64) ExperienceOption {
	return func(c *experienceConfig) { c.window = fraction }
}

// WithBackwardLookAhead shifts resolution while scrolling backward.
func WithBackwardLookAhead(n int) ExperienceOption {
	return func(c *experienceConfig) { c.lookAhead = n }
}

// WithSkipPolicy selects how skipped segments are reported.
func WithSkipPolicy(p scene.SkipPolicy) ExperienceOption {
	return func(c *experienceConfig) { c.policy = p }
}

// WithCue sets the cue played on every enter. Empty plays nothing.
func WithCue(cue string) ExperienceOption {
	return func(c *experienceConfig) { c.cue = cue }
}

// WithCameraOffset places the camera relative to the path point.
func WithCameraOffset(v model.Vector3) ExperienceOption {
	return func(c *experienceConfig) { c.offset = v }
}

// WithSpring tunes camera progress smoothing. A frequency of zero makes the
// camera follow progress exactly.
func WithSpring(fps int, frequency, damping float64) ExperienceOption {
	return func(c *experienceConfig) {
		if fps > 0 {
			c.springFPS = fps
		}
		c.springFreq = frequency
		c.springDamp = damping
	}
}

// WithExperienceLogger sets the logger.
func WithExperienceLogger(l logger.Logger) ExperienceOption {
	return func(c *experienceConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCycleIDs overrides cycle id generation.
func WithCycleIDs(gen func() uuid.UUID) ExperienceOption {
	return func(c *experienceConfig) { c.cycleIDs = gen }
}

// WithoutAssetBarrier starts sampling immediately instead of waiting for
// every manifest asset to report loaded.
func WithoutAssetBarrier() ExperienceOption {
	return func(c *experienceConfig) { c.skipBarrier = true }
}

// Snapshot is a point-in-time view of an experience, safe to read from any goroutine.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	Ready     bool      `json:"ready"`
	Loaded    int       `json:"assetsLoaded"`
	Total     int       `json:"assetsTotal"`
	State     string    `json:"state"`
	Active    *int      `json:"active,omitempty"`
	Progress  float64   `json:"progress"`
	Camera    float64   `json:"cameraProgress"`
	Direction string    `json:"direction"`
	Samples   int64     `json:"samples"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Experience is one user's synchronized scene. Every method except
// Snapshot must be called from a single goroutine, normally its session loop.
type Experience struct {
	id     uuid.UUID
	world  *World
	logger logger.Logger

	sampler    *scroll.Sampler
	sync       *scene.Synchronizer
	dispatcher *effects.Dispatcher
	barrier    *assets.Barrier
	manifest   []string
	notify     effects.ReadyNotifier

	spring    harmonica.Spring
	smoothing bool
	offset    model.Vector3
	camera    float64
	velocity  float64
	target    float64
	started   bool
	hooked    bool
	samples   int64

	mu   sync.RWMutex
	snap Snapshot
}

// NewExperience wires the synchronization core for one client. Outbound
// effects go to collab; a nil collab drops them.
func NewExperience(world *World, collab effects.Collaborators, opts ...ExperienceOption) *Experience {
	cfg := experienceConfig{
		id:         uuid.New(),
		window:     1,
		policy:     scene.SkipPair,
		cue:        "reveal",
		offset:     model.Vec3(10, float32(-world.Step/2), 12),
		springFPS:  defaultSpringFPS,
		springFreq: defaultSpringFrequency,
		springDamp: defaultSpringDamping,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.logger.With(logger.String("session", cfg.id.String()))
	resolver := segment.NewResolver(world.Timeline,
		segment.WithActiveWindow(cfg.window),
		segment.WithBackwardLookAhead(cfg.lookAhead),
	)
	syncOpts := []scene.Option{scene.WithSkipPolicy(cfg.policy)}
	if cfg.cycleIDs != nil {
		syncOpts = append(syncOpts, scene.WithIDGenerator(cfg.cycleIDs))
	}
	cue := cfg.cue
	dispatcher := effects.NewDispatcher(
		effects.WithCollaborators(collab),
		effects.WithSegmentCount(world.Timeline.Len()),
		effects.WithCue(func(model.Segment) string { return cue }),
		effects.WithLogger(log),
	)

	var ids []string
	if !cfg.skipBarrier && world.Registry != nil {
		ids = world.Registry.IDs()
	}

	e := &Experience{
		id:         cfg.id,
		world:      world,
		logger:     log,
		sampler:    scroll.NewSampler(),
		sync:       scene.New(resolver, syncOpts...),
		dispatcher: dispatcher,
		barrier:    assets.NewBarrier(ids...),
		manifest:   ids,
		offset:     cfg.offset,
		smoothing:  cfg.springFreq > 0,
	}
	if n, ok := collab.(effects.ReadyNotifier); ok {
		e.notify = n
	}
	if e.smoothing {
		e.spring = harmonica.NewSpring(harmonica.FPS(cfg.springFPS), cfg.springFreq, cfg.springDamp)
	}
	e.publish()
	return e
}

// ID returns the experience id.
func (e *Experience) ID() uuid.UUID { return e.id }

// Manifest lists the asset ids the client must report before sampling
// starts. It is fixed at construction and safe to call from any goroutine.
func (e *Experience) Manifest() []string {
	return append([]string(nil), e.manifest...)
}

// Start hooks sampling onto the asset barrier and releases it when nothing
// is outstanding. The barrier's ready callback puts collaborators into the
// idle presentation. Calling Start again is a no-op once hooked.
func (e *Experience) Start(ctx context.Context) {
	if !e.hooked {
		e.hooked = true
		e.barrier.OnReady(func() {
			metrics.RecordAssetsReady()
			e.begin(ctx)
		})
	}
	e.barrier.Release()
}

// AssetLoaded records one asset report. The last outstanding report fires
// the barrier, which starts sampling once Start has hooked it.
func (e *Experience) AssetLoaded(ctx context.Context, id string) error {
	if _, err := e.barrier.Done(id); err != nil {
		e.logger.Warn(ctx, "asset report rejected", logger.String("asset", id), logger.Error(err))
		metrics.RecordError("assets", "unknown_asset")
		return err
	}
	metrics.RecordAssetLoaded()
	e.publish()
	return nil
}

func (e *Experience) begin(ctx context.Context) {
	if e.started {
		return
	}
	e.started = true
	loaded, total := e.barrier.Progress()
	e.logger.Info(ctx, "assets ready, sampling started", logger.Int("loaded", loaded), logger.Int("total", total))
	e.dispatcher.Begin(ctx)
	if e.notify != nil {
		e.notify.NotifyReady(ctx)
	}
	e.publish()
}

// Ready reports whether sampling has started.
func (e *Experience) Ready() bool { return e.started }

// ApplySample runs one scroll sample through the core and dispatches the
// resulting transitions. Samples before readiness are dropped and reported
// as not applied.
func (e *Experience) ApplySample(ctx context.Context, rawOffset, extent float64) (scene.Cycle, bool) {
	if !e.started {
		e.logger.Debug(ctx, "sample dropped before ready", logger.Float64("offset", rawOffset))
		return scene.Cycle{}, false
	}

	start := time.Now()
	st := e.sampler.Sample(rawOffset, extent)
	cycle := e.sync.Step(st)
	e.dispatcher.Dispatch(ctx, cycle)
	e.target = st.Progress
	e.samples++

	metrics.RecordSample(st.Progress)
	if cycle.Changed() {
		for _, t := range cycle.Transitions {
			metrics.RecordTransition(t.Kind.String())
		}
		metrics.RecordSkipped(cycle.Skipped)
		cur, ok := e.sync.Current()
		metrics.UpdateActiveSegment(cur.Index, ok)
		metrics.RecordDispatchLatency(float64(time.Since(start).Microseconds()) / 1000)
		e.logger.Debug(ctx, "cycle",
			logger.String("cycle", cycle.ID.String()),
			logger.Int("transitions", len(cycle.Transitions)),
			logger.Int("skipped", cycle.Skipped),
			logger.String("direction", st.Direction.String()),
		)
	}
	e.publish()
	return cycle, true
}

// Tick advances the camera toward the latest progress and forwards the pose.
func (e *Experience) Tick(ctx context.Context, _ time.Duration) {
	if !e.started {
		return
	}
	if e.smoothing {
		e.camera, e.velocity = e.spring.Update(e.camera, e.velocity, e.target)
		if d := e.camera - e.target; d < springSettle && d > -springSettle && e.velocity < springSettle && e.velocity > -springSettle {
			e.camera, e.velocity = e.target, 0
		}
	} else {
		e.camera = e.target
	}
	e.dispatcher.SetCameraPose(ctx, e.Pose())
	metrics.RecordTick()
	e.publish()
}

// Pose is the camera pose for the current smoothed progress.
func (e *Experience) Pose() model.CameraPose {
	return e.world.Curve.PoseAt(scroll.Clamp(e.camera, 0, 1), e.offset)
}

// HandleInput routes one client input.
func (e *Experience) HandleInput(ctx context.Context, in model.Input) {
	switch in.Kind {
	case model.InputScroll:
		e.ApplySample(ctx, in.Offset, in.Extent)
	case model.InputAssetLoaded:
		_ = e.AssetLoaded(ctx, in.AssetID)
	case model.InputResize:
		e.logger.Debug(ctx, "viewport resized", logger.Int("width", in.Width), logger.Int("height", in.Height))
	default:
		e.logger.Warn(ctx, "unknown input", logger.String("kind", in.Kind.String()))
	}
}

// Reset returns the synchronizer to idle, darkening the active segment.
func (e *Experience) Reset(ctx context.Context) scene.Cycle {
	cycle := e.sync.Reset()
	e.dispatcher.Dispatch(ctx, cycle)
	e.sampler.Reset()
	if cycle.Changed() {
		metrics.UpdateActiveSegment(0, false)
	}
	e.publish()
	return cycle
}

// Current returns the active segment, if any.
func (e *Experience) Current() (model.Segment, bool) { return e.sync.Current() }

// Snapshot returns the latest published state.
func (e *Experience) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

func (e *Experience) publish() {
	loaded, total := e.barrier.Progress()
	s := Snapshot{
		ID:        e.id,
		Ready:     e.started,
		Loaded:    loaded,
		Total:     total,
		State:     e.sync.State().String(),
		Progress:  e.target,
		Camera:    e.camera,
		Direction: e.sampler.Direction().String(),
		Samples:   e.samples,
		UpdatedAt: time.Now(),
	}
	if cur, ok := e.sync.Current(); ok {
		idx := cur.Index
		s.Active = &idx
	}
	e.mu.Lock()
	e.snap = s
	e.mu.Unlock()
}
