// Package simulate drives the synchronization core with synthetic scroll
// traces, either in-process or against a running server over WebSocket,
// and checks the transition stream it produces.
package simulate

import "time"

// defaultTimeout applies when Config.Timeout is unset.
const defaultTimeout = 10 * time.Second

// Modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Config holds configuration for a simulation run.
type Config struct {
	Mode         string        // local or remote
	URL          string        // WebSocket URL for remote mode
	DatasetPath  string        // local mode dataset; empty uses the embedded sample
	Step         float64       // vertical distance between islands
	Pattern      string        // sweep, pingpong, jitter or jump
	Samples      int           // samples per trace
	Extent       float64       // scrollable extent in pixels
	Seed         int64         // seed for random patterns
	ActiveWindow float64       // centered active fraction per segment
	LookAhead    int           // backward look-ahead in segments
	SkipPolicy   string        // pair or traverse
	Timeout      time.Duration // remote read timeout
	OutputFile   string        // optional JSON report path
	Verbose      bool          // log every transition
}

// Report summarizes a run.
type Report struct {
	Mode        string         `json:"mode"`
	Pattern     string         `json:"pattern"`
	Segments    int            `json:"segments"`
	Samples     int            `json:"samples"`
	Enters      int            `json:"enters"`
	Exits       int            `json:"exits"`
	Cues        int            `json:"cues"`
	MaxActive   int            `json:"maxActive"`
	Violations  []string       `json:"violations,omitempty"`
	EntersBySeg map[int]int    `json:"entersBySegment"`
	Final       *int           `json:"final,omitempty"`
	Duration    time.Duration  `json:"duration"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// OK reports whether the run found no violations.
func (r *Report) OK() bool { return len(r.Violations) == 0 }
