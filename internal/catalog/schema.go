package catalog

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot decodes every top-level block a data file may carry. Any file
// may hold any mix of blocks.
type fileRoot struct {
	Planets  []*planetBlock  `hcl:"planet,block"`
	Weekdays []*weekdayBlock `hcl:"weekday,block"`
	Focus    []*focusBlock   `hcl:"focus,block"`
	Sigils   []*sigilBlock   `hcl:"sigil,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

type planetBlock struct {
	Key           string   `hcl:"key,label"`
	Label         string   `hcl:"label"`
	Angel         string   `hcl:"angel"`
	Emoji         string   `hcl:"emoji,optional"`
	Sigil         string   `hcl:"sigil,optional"`
	Intelligence  string   `hcl:"intelligence,optional"`
	Spirit        string   `hcl:"spirit,optional"`
	Color         string   `hcl:"color,optional"`
	Metal         string   `hcl:"metal,optional"`
	Stone         string   `hcl:"stone,optional"`
	Incense       string   `hcl:"incense,optional"`
	Keywords      []string `hcl:"keywords,optional"`
	SeasonalFocus string   `hcl:"seasonal_focus,optional"`
	DayOfWeek     string   `hcl:"day_of_week,optional"`
}

// Citation-valued attributes stay cty.Value: an entry may be a string, a
// {reference, text} object or a {book, chapter, verse} lookup, and lists
// may mix the three.
type weekdayBlock struct {
	Name       string    `hcl:"name,label"`
	Planet     string    `hcl:"planet"`
	Angel      string    `hcl:"angel,optional"`
	DivineName string    `hcl:"divine_name,optional"`
	Color      string    `hcl:"color,optional"`
	Incense    string    `hcl:"incense,optional"`
	Keywords   []string  `hcl:"keywords,optional"`
	Psalms     cty.Value `hcl:"psalms,optional"`
	Proverb    cty.Value `hcl:"proverb,optional"`
	DayVerse   cty.Value `hcl:"day_verse,optional"`
	FocusAreas []string  `hcl:"focus_areas,optional"`
	Sigil      string    `hcl:"sigil,optional"`
}

type focusBlock struct {
	Name         string    `hcl:"name,label"`
	Verses       cty.Value `hcl:"verses,optional"`
	Proverbs     cty.Value `hcl:"proverbs,optional"`
	Declarations []string  `hcl:"declarations,optional"`
}

type sigilBlock struct {
	Name   string `hcl:"name,label"`
	File   string `hcl:"file"`
	Angel  string `hcl:"angel,optional"`
	Alt    string `hcl:"alt,optional"`
	Notes  string `hcl:"notes,optional"`
	Source string `hcl:"source,optional"`
}
