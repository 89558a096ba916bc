// Package assets holds the typed model registry and the load readiness barrier.
package assets

import (
	"fmt"
	"sort"
)

// VariantAll matches every variant of a category.
const VariantAll = "all"

// Asset describes one loadable model.
type Asset struct {
	ID       string `json:"id" yaml:"id"`
	Category string `json:"category" yaml:"category"`
	Variant  string `json:"variant" yaml:"variant"`
	Path     string `json:"path" yaml:"path"`
}

type key struct {
	category string
	variant  string
}

// Registry indexes assets by category and variant.
type Registry struct {
	byKey map[key][]Asset
	byID  map[string]Asset
}

// NewRegistry builds a registry; an empty variant is stored as VariantAll.
func NewRegistry(list ...Asset) (*Registry, error) {
	r := &Registry{
		byKey: make(map[key][]Asset),
		byID:  make(map[string]Asset),
	}
	for _, a := range list {
		if err := r.Add(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers an asset.
func (r *Registry) Add(a Asset) error {
	if a.ID == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownAsset)
	}
	if _, ok := r.byID[a.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAsset, a.ID)
	}
	if a.Variant == "" {
		a.Variant = VariantAll
	}
	r.byID[a.ID] = a
	k := key{a.Category, a.Variant}
	r.byKey[k] = append(r.byKey[k], a)
	return nil
}

// Lookup returns the assets for category and variant, falling back to the
// category's VariantAll entries when no exact match exists.
func (r *Registry) Lookup(category, variant string) ([]Asset, error) {
	if list, ok := r.byKey[key{category, variant}]; ok {
		return append([]Asset(nil), list...), nil
	}
	if list, ok := r.byKey[key{category, VariantAll}]; ok {
		return append([]Asset(nil), list...), nil
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrUnknownAsset, category, variant)
}

// Get returns the asset with id.
func (r *Registry) Get(id string) (Asset, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// IDs returns every registered id, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of registered assets.
func (r *Registry) Len() int { return len(r.byID) }

// SeasonOf maps a month (1..12) to its season name. Out-of-range months map to VariantAll.
func SeasonOf(month int) string {
	switch month {
	case 12, 1, 2:
		return "winter"
	case 3, 4, 5:
		return "spring"
	case 6, 7, 8:
		return "summer"
	case 9, 10, 11:
		return "autumn"
	default:
		return VariantAll
	}
}
