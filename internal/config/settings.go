package config

import (
	"math"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/prayerclock/internal/citation"
	"github.com/vk/prayerclock/internal/focus"
)

const (
	// DefaultInterval is the refresh period when none is configured.
	DefaultInterval = 60 * time.Second
	// MinInterval is the floor applied to any configured refresh period.
	MinInterval = 30 * time.Second
	// DefaultVerseServiceURL is the verse lookup endpoint when none is configured.
	DefaultVerseServiceURL = "http://localhost:8001/get-verse"
)

// DefaultFocusAreas is the focus-area rotation used when none is configured.
var DefaultFocusAreas = []string{"wisdom", "wealth", "health", "influence"}

// Settings is the inbound engine configuration. The JSON names match the
// display link payload; the HCL names match the settings file.
type Settings struct {
	Latitude         *float64 `hcl:"latitude,optional" json:"latitude"`
	Longitude        *float64 `hcl:"longitude,optional" json:"longitude"`
	FocusAreas       []string `hcl:"focus_areas,optional" json:"focusAreas"`
	UpdateInterval   float64  `hcl:"update_interval,optional" json:"updateInterval"` // milliseconds
	PsalmDisplayMode string   `hcl:"psalm_display_mode,optional" json:"psalmDisplayMode"`
	VerseServiceURL  string   `hcl:"verse_service_url,optional" json:"verseServiceUrl"`
	VerseTranslation string   `hcl:"verse_translation,optional" json:"verseTranslation"`
	Translation      string   `hcl:"translation,optional" json:"translation"` // legacy alias of VerseTranslation
	Timezone         string   `hcl:"timezone,optional" json:"timezone"`

	Remain hcl.Body `hcl:",remain" json:"-"`
}

// Resolved is the validated configuration the engine runs with.
type Resolved struct {
	Latitude        float64
	Longitude       float64
	FocusAreas      []string
	Interval        time.Duration
	Policy          focus.Policy
	VerseServiceURL string
	Translation     string
	Location        *time.Location
}

// Resolve applies defaults and validates s.
func (s *Settings) Resolve() (*Resolved, error) {
	if s == nil {
		return nil, invalid("settings", "are missing")
	}

	lat, err := coordinate("latitude", s.Latitude, 90)
	if err != nil {
		return nil, err
	}
	lon, err := coordinate("longitude", s.Longitude, 180)
	if err != nil {
		return nil, err
	}

	policy, err := focus.ParsePolicy(strings.ToLower(strings.TrimSpace(s.PsalmDisplayMode)))
	if err != nil {
		return nil, invalid("psalmDisplayMode", "must be %q or %q, got %q", focus.PolicyCycle, focus.PolicyRandom, s.PsalmDisplayMode)
	}

	endpoint := strings.TrimSpace(s.VerseServiceURL)
	if endpoint == "" {
		endpoint = DefaultVerseServiceURL
	}
	if u, err := url.Parse(endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalid("verseServiceUrl", "must be an absolute http(s) URL, got %q", s.VerseServiceURL)
	}

	loc := time.Local
	if tz := strings.TrimSpace(s.Timezone); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return nil, invalid("timezone", "is not a known IANA zone: %q", tz)
		}
	}

	return &Resolved{
		Latitude:        lat,
		Longitude:       lon,
		FocusAreas:      focusAreas(s.FocusAreas),
		Interval:        Interval(s.UpdateInterval),
		Policy:          policy,
		VerseServiceURL: endpoint,
		Translation:     translation(s.VerseTranslation, s.Translation),
		Location:        loc,
	}, nil
}

// Interval converts a millisecond period to a duration. Non-positive values
// yield DefaultInterval and anything shorter than MinInterval is raised to it.
func Interval(ms float64) time.Duration {
	if ms <= 0 || math.IsNaN(ms) {
		return DefaultInterval
	}
	// Clamp before converting; the float to int64 conversion is undefined
	// past the Duration range.
	if ms >= float64(math.MaxInt64)/float64(time.Millisecond) {
		return math.MaxInt64
	}
	d := time.Duration(ms * float64(time.Millisecond))
	return max(d, MinInterval)
}

func coordinate(field string, v *float64, limit float64) (float64, error) {
	if v == nil {
		return 0, invalid(field, "is required")
	}
	if math.IsNaN(*v) || math.Abs(*v) > limit {
		return 0, invalid(field, "must be within [-%g, %g], got %g", limit, limit, *v)
	}
	return *v, nil
}

func focusAreas(areas []string) []string {
	out := make([]string, 0, len(areas))
	for _, a := range areas {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return slices.Clone(DefaultFocusAreas)
	}
	return out
}

func translation(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return citation.DefaultTranslation
}
