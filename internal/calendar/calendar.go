// Package calendar maps weekdays to their Solomonic day profile.
package calendar

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/vk/prayerclock/internal/citation"
	"github.com/vk/prayerclock/internal/planet"
)

// ErrNoDayProfile is returned when no profile exists for a weekday.
var ErrNoDayProfile = errors.New("no day profile for weekday")

// DayProfile is the immutable record of one weekday.
type DayProfile struct {
	Weekday     string            `json:"weekday"`
	PlanetKey   planet.Key        `json:"planetKey"`
	PlanetLabel string            `json:"planetLabel"`
	Angel       string            `json:"angel"`
	DivineName  string            `json:"divineName"`
	Color       string            `json:"color"`
	Incense     string            `json:"incense"`
	Keywords    []string          `json:"keywords"`
	Psalms      []citation.Source `json:"psalms"`
	Proverb     *citation.Source  `json:"proverb,omitempty"`
	DayVerse    *citation.Source  `json:"dayVerse,omitempty"`
	FocusAreas  []string          `json:"focusAreas"`
	Sigil       string            `json:"sigil"`
}

// Calendar is the read-only weekday lookup.
type Calendar struct {
	days map[string]DayProfile
}

// New builds a calendar keyed by lowercase English weekday name. Every
// profile must name a planet known to table; its PlanetLabel is filled from
// the table.
func New(profiles map[string]DayProfile, table *planet.Table) (*Calendar, error) {
	days := make(map[string]DayProfile, len(profiles))
	for name, profile := range profiles {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := weekdayByName[key]; !ok {
			return nil, fmt.Errorf("day profile %q is not an English weekday name", name)
		}
		if !profile.PlanetKey.Valid() {
			return nil, fmt.Errorf("day profile %q: %w %q", name, planet.ErrUnknownPlanet, profile.PlanetKey)
		}
		profile.Weekday = key
		if profile.PlanetLabel == "" {
			profile.PlanetLabel = table.Label(profile.PlanetKey)
		}
		days[key] = profile
	}
	return &Calendar{days: days}, nil
}

var weekdayByName = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		m[strings.ToLower(d.String())] = d
	}
	return m
}()

// WeekdayKey returns the stable, non-localized key for t's weekday in t's
// own location.
func WeekdayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// For returns the profile of t's weekday.
func (c *Calendar) For(t time.Time) (DayProfile, error) {
	key := WeekdayKey(t)
	profile, ok := c.days[key]
	if !ok {
		return DayProfile{}, fmt.Errorf("%w %q", ErrNoDayProfile, key)
	}
	return profile, nil
}

// Manifest returns a copy of every profile keyed by weekday.
func (c *Calendar) Manifest() map[string]DayProfile {
	return maps.Clone(c.days)
}

// Weekdays lists the configured weekdays, Sunday first.
func (c *Calendar) Weekdays() []string {
	names := slices.Collect(maps.Keys(c.days))
	slices.SortFunc(names, func(a, b string) int {
		return int(weekdayByName[a]) - int(weekdayByName[b])
	})
	return names
}
