package planet

import (
	"fmt"
	"maps"
	"slices"
)

// Attributes is the immutable record of correspondences for one planet.
type Attributes struct {
	Key           Key      `json:"key"`
	Label         string   `json:"label"`
	Angel         string   `json:"angel"`
	Emoji         string   `json:"emoji"`
	Sigil         string   `json:"sigil"`
	Intelligence  string   `json:"intelligence"`
	Spirit        string   `json:"spirit"`
	Color         string   `json:"color"`
	Metal         string   `json:"metal"`
	Stone         string   `json:"stone"`
	Incense       string   `json:"incense"`
	Keywords      []string `json:"keywords"`
	SeasonalFocus string   `json:"seasonalFocus"`
	DayOfWeek     string   `json:"dayOfWeek"`
}

// Table is the read-only planet attribute lookup, holding exactly the seven
// known planets.
type Table struct {
	entries map[Key]Attributes
}

// NewTable validates entries against the Chaldean key set. Every known key
// must be present and no other key is accepted.
func NewTable(entries map[Key]Attributes) (*Table, error) {
	for key := range entries {
		if !key.Valid() {
			return nil, fmt.Errorf("planet table entry %q: %w", key, ErrUnknownPlanet)
		}
	}
	for _, key := range ChaldeanOrder {
		if _, ok := entries[key]; !ok {
			return nil, fmt.Errorf("planet table is missing %q", key)
		}
	}

	owned := make(map[Key]Attributes, len(entries))
	for key, attrs := range entries {
		attrs.Key = key
		attrs.Keywords = slices.Clone(attrs.Keywords)
		owned[key] = attrs
	}
	return &Table{entries: owned}, nil
}

// Lookup returns the attributes for key.
func (t *Table) Lookup(key Key) (Attributes, bool) {
	attrs, ok := t.entries[key]
	return attrs, ok
}

// Label returns the display label for key, falling back to the key itself.
func (t *Table) Label(key Key) string {
	if attrs, ok := t.entries[key]; ok && attrs.Label != "" {
		return attrs.Label
	}
	return string(key)
}

// Keys returns the table keys in Chaldean order.
func (t *Table) Keys() []Key {
	keys := slices.Collect(maps.Keys(t.entries))
	slices.SortFunc(keys, func(a, b Key) int {
		return slices.Index(ChaldeanOrder[:], a) - slices.Index(ChaldeanOrder[:], b)
	})
	return keys
}
