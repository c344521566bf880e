// Package catalog loads the static reference data of the clock: planet
// attributes, weekday profiles, focus-area content packs and the sigil
// manifest. Data files are HCL (.hcl) or HCL's JSON syntax (.json) and are
// read once at startup.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/prayerclock/internal/calendar"
	"github.com/vk/prayerclock/internal/ctxlog"
	"github.com/vk/prayerclock/internal/focus"
	"github.com/vk/prayerclock/internal/fsutil"
	"github.com/vk/prayerclock/internal/planet"
	"github.com/vk/prayerclock/internal/sigil"
)

// ErrNoData is returned when the data paths hold no data files.
var ErrNoData = errors.New("no data files found")

// Catalog is the immutable reference data the engine works from.
type Catalog struct {
	Planets  *planet.Table
	Calendar *calendar.Calendar
	Packs    map[string]focus.Pack
	Sigils   *sigil.Manifest
}

// raw accumulates decoded blocks across files before validation.
type raw struct {
	planets  map[planet.Key]planet.Attributes
	weekdays map[string]calendar.DayProfile
	packs    map[string]focus.Pack
	sigils   map[string]sigil.Entry
}

// Load reads every .hcl and .json file under paths and validates the result.
// Later files override earlier blocks of the same kind and name.
func Load(ctx context.Context, paths ...string) (*Catalog, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Catalog loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, ".hcl", ".json")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoData, strings.Join(paths, ", "))
	}
	logger.Debug("Discovered data files.", "count", len(files))

	acc := &raw{
		planets:  make(map[planet.Key]planet.Attributes),
		weekdays: make(map[string]calendar.DayProfile),
		packs:    make(map[string]focus.Pack),
		sigils:   make(map[string]sigil.Entry),
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		if err := acc.loadFile(ctx, parser, file); err != nil {
			return nil, err
		}
	}

	cat, err := acc.build()
	if err != nil {
		return nil, err
	}
	logger.Debug("Catalog loading complete.", "planets", len(acc.planets), "weekdays", len(acc.weekdays), "focus_packs", len(acc.packs), "sigils", len(acc.sigils))
	return cat, nil
}

func parseFile(parser *hclparse.Parser, file string) (*hcl.File, hcl.Diagnostics) {
	if strings.EqualFold(filepath.Ext(file), ".json") {
		return parser.ParseJSONFile(file)
	}
	return parser.ParseHCLFile(file)
}

func (acc *raw) loadFile(ctx context.Context, parser *hclparse.Parser, file string) error {
	logger := ctxlog.FromContext(ctx)

	hclFile, diags := parseFile(parser, file)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse data file %s: %w", file, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode data file %s: %w", file, diags)
	}

	for _, b := range root.Planets {
		key := planet.Key(strings.ToLower(b.Key))
		if _, dup := acc.planets[key]; dup {
			logger.Warn("Duplicate planet block, overwriting.", "planet", key, "path", file)
		}
		acc.planets[key] = planet.Attributes{
			Label:         b.Label,
			Angel:         b.Angel,
			Emoji:         b.Emoji,
			Sigil:         b.Sigil,
			Intelligence:  b.Intelligence,
			Spirit:        b.Spirit,
			Color:         b.Color,
			Metal:         b.Metal,
			Stone:         b.Stone,
			Incense:       b.Incense,
			Keywords:      b.Keywords,
			SeasonalFocus: b.SeasonalFocus,
			DayOfWeek:     b.DayOfWeek,
		}
	}

	for _, b := range root.Weekdays {
		profile, err := weekdayProfile(b)
		if err != nil {
			return fmt.Errorf("%s: weekday %q: %w", file, b.Name, err)
		}
		name := strings.ToLower(b.Name)
		if _, dup := acc.weekdays[name]; dup {
			logger.Warn("Duplicate weekday block, overwriting.", "weekday", name, "path", file)
		}
		acc.weekdays[name] = profile
	}

	for _, b := range root.Focus {
		verses, err := sourcesFromValue(b.Verses)
		if err != nil {
			return fmt.Errorf("%s: focus %q verses: %w", file, b.Name, err)
		}
		proverbs, err := sourcesFromValue(b.Proverbs)
		if err != nil {
			return fmt.Errorf("%s: focus %q proverbs: %w", file, b.Name, err)
		}
		if _, dup := acc.packs[b.Name]; dup {
			logger.Warn("Duplicate focus block, overwriting.", "focus", b.Name, "path", file)
		}
		acc.packs[b.Name] = focus.Pack{Verses: verses, Proverbs: proverbs, Declarations: b.Declarations}
	}

	for _, b := range root.Sigils {
		acc.sigils[b.Name] = sigil.Entry{File: b.File, Angel: b.Angel, Alt: b.Alt, Notes: b.Notes, Source: b.Source}
	}

	logger.Debug("Data file decoded.", "path", file)
	return nil
}

func weekdayProfile(b *weekdayBlock) (calendar.DayProfile, error) {
	psalms, err := sourcesFromValue(b.Psalms)
	if err != nil {
		return calendar.DayProfile{}, fmt.Errorf("psalms: %w", err)
	}
	proverb, err := optionalSource(b.Proverb)
	if err != nil {
		return calendar.DayProfile{}, fmt.Errorf("proverb: %w", err)
	}
	dayVerse, err := optionalSource(b.DayVerse)
	if err != nil {
		return calendar.DayProfile{}, fmt.Errorf("day_verse: %w", err)
	}
	return calendar.DayProfile{
		PlanetKey:  planet.Key(strings.ToLower(b.Planet)),
		Angel:      b.Angel,
		DivineName: b.DivineName,
		Color:      b.Color,
		Incense:    b.Incense,
		Keywords:   b.Keywords,
		Psalms:     psalms,
		Proverb:    proverb,
		DayVerse:   dayVerse,
		FocusAreas: b.FocusAreas,
		Sigil:      b.Sigil,
	}, nil
}

func (acc *raw) build() (*Catalog, error) {
	table, err := planet.NewTable(acc.planets)
	if err != nil {
		return nil, fmt.Errorf("invalid planet data: %w", err)
	}
	cal, err := calendar.New(acc.weekdays, table)
	if err != nil {
		return nil, fmt.Errorf("invalid weekday data: %w", err)
	}
	return &Catalog{
		Planets:  table,
		Calendar: cal,
		Packs:    acc.packs,
		Sigils:   sigil.NewManifest(acc.sigils),
	}, nil
}
