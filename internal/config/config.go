// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and ISLES_* env vars.
// - Validate reports problems wrapped in ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/internal/domain/scene"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatasetPath points at the YAML timeline dataset. Empty uses the built-in sample.
	DatasetPath string `koanf:"dataset_path"`

	// QueueSize bounds the per-session scroll sample queue.
	QueueSize int `koanf:"queue_size"`

	// TickRateHz is the camera update rate of each session loop.
	TickRateHz int `koanf:"tick_rate_hz"`

	// ActiveWindow is the centered fraction of each segment that counts as active.
	ActiveWindow float64 `koanf:"active_window"`

	// BackwardLookAhead shifts resolution by this many segments while scrolling backward.
	BackwardLookAhead int `koanf:"backward_look_ahead"`

	// SkipPolicy is "pair" or "traverse".
	SkipPolicy string `koanf:"skip_policy"`

	// CameraSpringFrequency and CameraSpringDamping tune progress smoothing.
	// A frequency of zero disables smoothing.
	CameraSpringFrequency float64 `koanf:"camera_spring_frequency"`
	CameraSpringDamping   float64 `koanf:"camera_spring_damping"`

	// CameraOffset* place the camera relative to the path point. A zero
	// CameraOffsetY sits half a segment below it; see CameraOffset.
	CameraOffsetX float64 `koanf:"camera_offset_x"`
	CameraOffsetY float64 `koanf:"camera_offset_y"`
	CameraOffsetZ float64 `koanf:"camera_offset_z"`

	// SegmentStep is the vertical distance between consecutive islands.
	SegmentStep float64 `koanf:"segment_step"`

	// CueOnEnter is the audio cue played when a segment becomes active.
	CueOnEnter string `koanf:"cue_on_enter"`

	// WSReadLimit caps the size of an inbound WebSocket message in bytes.
	WSReadLimit int64 `koanf:"ws_read_limit"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		QueueSize:             1024,
		TickRateHz:            60,
		ActiveWindow:          1.0,
		BackwardLookAhead:     0,
		SkipPolicy:            "pair",
		CameraSpringFrequency: 6.0,
		CameraSpringDamping:   1.0,
		CameraOffsetX:         10,
		CameraOffsetZ:         12,
		SegmentStep:           50,
		CueOnEnter:            "reveal",
		WSReadLimit:           4096,
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.TickRateHz <= 0:
		return fmt.Errorf("%w: tick_rate_hz must be positive", ErrInvalidConfig)
	case !(c.ActiveWindow > 0 && c.ActiveWindow <= 1):
		return fmt.Errorf("%w: active_window must be in (0, 1]", ErrInvalidConfig)
	case c.BackwardLookAhead < 0:
		return fmt.Errorf("%w: backward_look_ahead must not be negative", ErrInvalidConfig)
	case c.CameraSpringFrequency < 0 || c.CameraSpringDamping < 0:
		return fmt.Errorf("%w: camera spring must not be negative", ErrInvalidConfig)
	case c.SegmentStep <= 0:
		return fmt.Errorf("%w: segment_step must be positive", ErrInvalidConfig)
	case c.WSReadLimit <= 0:
		return fmt.Errorf("%w: ws_read_limit must be positive", ErrInvalidConfig)
	}
	if _, err := scene.ParseSkipPolicy(c.SkipPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Policy returns the parsed skip policy; call after Validate.
func (c *Config) Policy() scene.SkipPolicy {
	p, _ := scene.ParseSkipPolicy(c.SkipPolicy)
	return p
}

// CameraOffset returns the configured camera offset, deriving an unset
// vertical component from SegmentStep.
func (c *Config) CameraOffset() model.Vector3 {
	y := c.CameraOffsetY
	if y == 0 {
		y = -c.SegmentStep / 2
	}
	return model.Vector3{X: float32(c.CameraOffsetX), Y: float32(y), Z: float32(c.CameraOffsetZ)}
}

// TickInterval is the period between camera ticks.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRateHz)
}
