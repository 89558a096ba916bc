// Package model contains domain models passed between layers.
package model

// Direction is the scroll travel direction.
type Direction int

const (
	// Forward means the offset grew since the previous sample.
	Forward Direction = iota
	// Backward means the offset shrank since the previous sample.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ScrollState is one normalized scroll sample.
type ScrollState struct {
	RawOffset         float64   // pixels
	PreviousRawOffset float64   // offset of the prior sample
	Extent            float64   // total scrollable extent in pixels
	Progress          float64   // clamped to [0,1]
	Direction         Direction // holds its last value on zero delta
}

// Card is the content card shown next to an island.
type Card struct {
	Title       string `json:"title" yaml:"title"`
	Image       string `json:"image" yaml:"image"`
	Description string `json:"description" yaml:"description"`
}

// IslandShape is the geometry recipe collaborators use to build an island.
type IslandShape struct {
	Layers        int     `json:"layers"`
	Size          float64 `json:"size"`
	Thickness     float64 `json:"thickness"`
	ScatterRadius float64 `json:"scatter_radius"`
	ShapeIndex    int     `json:"shape_index"`
	Trees         int     `json:"trees"`
	Vegetation    int     `json:"vegetation"`
	Animals       int     `json:"animals"`
	// Models lists the concrete assets scattered on the island.
	Models []IslandModel `json:"models,omitempty"`
}

// IslandModel is one asset instance placed on an island.
type IslandModel struct {
	Category string `json:"category"`
	AssetID  string `json:"asset_id"`
}

// Payload carries presentation data. The synchronizer never reads it.
type Payload struct {
	Label       string      `json:"label"`
	Year        string      `json:"year"`
	Month       int         `json:"month"` // 1..12
	Season      string      `json:"season"`
	Magnitude   float64     `json:"magnitude"`
	Description string      `json:"description,omitempty"`
	Card        *Card       `json:"card,omitempty"`
	Island      IslandShape `json:"island"`
}

// Segment is one month of the timeline.
//
// Start and End are positions on the normalized progress axis; segments are
// contiguous and immutable once a timeline is built.
type Segment struct {
	Index    int     `json:"index"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Waypoint Vector3 `json:"waypoint"`
	Payload  Payload `json:"payload"`
}

// Contains reports whether p lies in the half-open range [Start, End).
func (s Segment) Contains(p float64) bool { return p >= s.Start && p < s.End }

// CameraPose is the camera placement for one render tick.
type CameraPose struct {
	Position Vector3 `json:"position"`
	Target   Vector3 `json:"target"`
	Forward  Vector3 `json:"forward"`
}
