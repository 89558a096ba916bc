// Package island derives the deterministic shape of a month's island from its magnitude.
package island

import (
	"math"
	"math/rand"

	"github.com/okian/isles/internal/domain/model"
)

// Default shaping constants.
const (
	defaultSeed       = 42
	defaultLayerUnit  = 1000
	defaultMagnitude  = 20000
	defaultShapeCount = 6
	defaultThickness  = 0.025
	scatterScale      = 6
	minModels         = 2
	maxModels         = 6
	animalsPerIsland  = 1
	populateSalt      = 7919
)

// Asset categories an island is populated from.
const (
	CategoryTree       = "tree"
	CategoryVegetation = "vegetation"
	CategoryAnimal     = "birds"
)

// Picker returns the candidate asset ids for a category, or none.
type Picker func(category string) []string

// Option applies a configuration option to the Shaper.
type Option func(*Shaper)

// WithSeed sets the base seed; each island mixes in its index.
func WithSeed(seed int64) Option {
	return func(s *Shaper) { s.seed = seed }
}

// WithMaxMagnitude sets the magnitude mapped to the largest island.
func WithMaxMagnitude(m float64) Option {
	return func(s *Shaper) {
		if m > 0 {
			s.maxMagnitude = m
		}
	}
}

// WithLayerUnit sets how much magnitude one stacked layer represents.
func WithLayerUnit(u float64) Option {
	return func(s *Shaper) {
		if u > 0 {
			s.layerUnit = u
		}
	}
}

// WithShapeCount sets the number of outline shapes available to the renderer.
func WithShapeCount(n int) Option {
	return func(s *Shaper) {
		if n > 0 {
			s.shapeCount = n
		}
	}
}

// Shaper computes island shapes.
type Shaper struct {
	seed         int64
	maxMagnitude float64
	layerUnit    float64
	shapeCount   int
}

// NewShaper creates a Shaper with configuration options.
func NewShaper(opts ...Option) *Shaper {
	s := &Shaper{
		seed:         defaultSeed,
		maxMagnitude: defaultMagnitude,
		layerUnit:    defaultLayerUnit,
		shapeCount:   defaultShapeCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Shape returns the island for the month at index. The same index and
// magnitude always produce the same shape.
func (s *Shaper) Shape(index int, magnitude float64) model.IslandShape {
	if math.IsNaN(magnitude) || magnitude < 0 {
		magnitude = 0
	}
	bounded := math.Min(magnitude, s.maxMagnitude)
	rng := rand.New(rand.NewSource(s.seed + int64(index))) //nolint:gosec // deterministic layout, not security

	return model.IslandShape{
		Layers:        int(math.Ceil(magnitude / s.layerUnit)),
		Size:          math.Floor(MapValueBetween(bounded, 0, s.maxMagnitude, 6, 10)) * 0.01,
		Thickness:     defaultThickness,
		ScatterRadius: MapValueBetween(bounded, 0, s.maxMagnitude, 1, 0.5) * scatterScale,
		ShapeIndex:    rng.Intn(s.shapeCount),
		Trees:         minModels + rng.Intn(maxModels-minModels+1),
		Vegetation:    minModels + rng.Intn(maxModels-minModels+1),
		Animals:       animalsPerIsland,
	}
}

// Populate picks concrete assets for shape: Trees from CategoryTree,
// Vegetation from CategoryVegetation and Animals from CategoryAnimal, each
// drawn from pick with a seeded rng. Categories without candidates are skipped.
func (s *Shaper) Populate(index int, shape model.IslandShape, pick Picker) []model.IslandModel {
	if pick == nil {
		return nil
	}
	rng := rand.New(rand.NewSource(s.seed + int64(index) + populateSalt)) //nolint:gosec // deterministic layout, not security
	var out []model.IslandModel
	for _, want := range []struct {
		category string
		count    int
	}{
		{CategoryTree, shape.Trees},
		{CategoryVegetation, shape.Vegetation},
		{CategoryAnimal, shape.Animals},
	} {
		ids := pick(want.category)
		if len(ids) == 0 {
			continue
		}
		for i := 0; i < want.count; i++ {
			out = append(out, model.IslandModel{Category: want.category, AssetID: ids[rng.Intn(len(ids))]})
		}
	}
	return out
}

// MapValueBetween maps value linearly from [inMin, inMax] to [outMin, outMax]
// without clamping. A degenerate input range maps everything to outMin.
func MapValueBetween(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	return (value-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}
