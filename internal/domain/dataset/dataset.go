// Package dataset decodes the timeline dataset: years of monthly magnitudes,
// optional cards and the model manifest.
package dataset

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/isles/internal/domain/assets"
	"github.com/okian/isles/internal/domain/island"
	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/internal/domain/segment"
)

//go:embed default.yaml
var defaultYAML []byte

// Card is the optional detail card shown while a month is active.
type Card struct {
	Title       string `yaml:"title"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
}

// Month is one entry of a year.
type Month struct {
	Month       int     `yaml:"month"`
	Label       string  `yaml:"label"`
	Magnitude   float64 `yaml:"magnitude"`
	Description string  `yaml:"description"`
	Card        *Card   `yaml:"card"`
}

// Year groups consecutive months.
type Year struct {
	Year   string  `yaml:"year"`
	Months []Month `yaml:"months"`
}

// Dataset is the decoded file.
type Dataset struct {
	Assets []assets.Asset `yaml:"assets"`
	Years  []Year         `yaml:"years"`
}

// Default returns the embedded sample dataset.
func Default() (*Dataset, error) {
	return Decode(bytes.NewReader(defaultYAML))
}

// Load reads and validates the dataset at path. An empty path loads Default.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode parses YAML from r and validates it.
func Decode(r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d Dataset
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDataset)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks that the dataset describes at least one month and that
// months and magnitudes are in range.
func (d *Dataset) Validate() error {
	if d.Len() == 0 {
		return fmt.Errorf("%w: no months", ErrInvalidDataset)
	}
	for _, y := range d.Years {
		if y.Year == "" {
			return fmt.Errorf("%w: year without label", ErrInvalidDataset)
		}
		for _, m := range y.Months {
			if m.Month < 1 || m.Month > 12 {
				return fmt.Errorf("%w: %s month %d out of range", ErrInvalidDataset, y.Year, m.Month)
			}
			if m.Magnitude < 0 {
				return fmt.Errorf("%w: %s-%02d negative magnitude", ErrInvalidDataset, y.Year, m.Month)
			}
		}
	}
	return nil
}

// Len is the total number of months.
func (d *Dataset) Len() int {
	n := 0
	for _, y := range d.Years {
		n += len(y.Months)
	}
	return n
}

// Payloads flattens every month, in order, into segment payloads. With a
// shaper each month gets an island; with a registry too, the island is
// populated with assets for the month's season, falling back to the
// category's "all" variant.
func (d *Dataset) Payloads(shaper *island.Shaper, reg *assets.Registry) []model.Payload {
	out := make([]model.Payload, 0, d.Len())
	for _, y := range d.Years {
		for _, m := range y.Months {
			label := m.Label
			if label == "" {
				label = time.Month(m.Month).String()
			}
			p := model.Payload{
				Label:       label,
				Year:        y.Year,
				Month:       m.Month,
				Season:      assets.SeasonOf(m.Month),
				Magnitude:   m.Magnitude,
				Description: m.Description,
			}
			if m.Card != nil {
				p.Card = &model.Card{Title: m.Card.Title, Image: m.Card.Image, Description: m.Card.Description}
			}
			if shaper != nil {
				p.Island = shaper.Shape(len(out), m.Magnitude)
				if reg != nil {
					p.Island.Models = shaper.Populate(len(out), p.Island, seasonPicker(reg, p.Season))
				}
			}
			out = append(out, p)
		}
	}
	return out
}

func seasonPicker(reg *assets.Registry, season string) island.Picker {
	return func(category string) []string {
		list, err := reg.Lookup(category, season)
		if err != nil {
			return nil
		}
		ids := make([]string, len(list))
		for i, a := range list {
			ids[i] = a.ID
		}
		return ids
	}
}

// Registry builds the asset registry from the manifest.
func (d *Dataset) Registry() (*assets.Registry, error) {
	reg, err := assets.NewRegistry(d.Assets...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	return reg, nil
}

// Waypoints places month i at (0, i*step, 0) and closes the path with one
// terminal point a step beyond the last month.
func Waypoints(n int, step float64) []model.Vector3 {
	out := make([]model.Vector3, n+1)
	for i := range out {
		out[i] = model.Vec3(0, float32(float64(i)*step), 0)
	}
	return out
}

// Build lays the months out as an even timeline and returns it with the
// camera path waypoints.
func (d *Dataset) Build(step float64, shaper *island.Shaper) (*segment.Timeline, []model.Vector3, error) {
	if step <= 0 {
		return nil, nil, fmt.Errorf("%w: step must be positive", ErrInvalidDataset)
	}
	reg, err := d.Registry()
	if err != nil {
		return nil, nil, err
	}
	payloads := d.Payloads(shaper, reg)
	waypoints := Waypoints(len(payloads), step)
	t, err := segment.Even(len(payloads), payloads, waypoints)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	return t, waypoints, nil
}
