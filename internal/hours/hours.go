// Package hours assembles planetary hours: it joins the astronomical windows
// of a day with the Chaldean rulership sequence and locates the active hour.
package hours

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vk/prayerclock/internal/astro"
	"github.com/vk/prayerclock/internal/planet"
)

// PlanetaryHour is one of the 24 ruled windows of a day.
type PlanetaryHour struct {
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Index       int        `json:"index"`
	IndexLabel  string     `json:"indexLabel"`
	PlanetKey   planet.Key `json:"planetKey"`
	PlanetLabel string     `json:"planetLabel"`
	Angel       string     `json:"angel"`
	Emoji       string     `json:"emoji"`
	Sigil       string     `json:"sigil"`
}

// Day is the full planetary-hour cycle for one reference instant.
type Day struct {
	Hours []PlanetaryHour
	Solar bool
}

// Build rules each window with the planet sequence starting at ruler.
func Build(windows []astro.Window, ruler planet.Key, table *planet.Table) ([]PlanetaryHour, error) {
	seq, err := planet.Sequence(ruler, len(windows))
	if err != nil {
		return nil, err
	}

	out := make([]PlanetaryHour, len(windows))
	for i, w := range windows {
		attrs, _ := table.Lookup(seq[i])
		out[i] = PlanetaryHour{
			Start:       w.Start,
			End:         w.End,
			Index:       i + 1,
			IndexLabel:  Label(i + 1),
			PlanetKey:   seq[i],
			PlanetLabel: table.Label(seq[i]),
			Angel:       attrs.Angel,
			Emoji:       attrs.Emoji,
			Sigil:       attrs.Sigil,
		}
	}
	return out, nil
}

// Compute divides the day of ref and rules it from ruler.
func Compute(d *astro.Divider, ref time.Time, latitude, longitude float64, ruler planet.Key, table *planet.Table) (Day, error) {
	p, err := d.Divide(ref, latitude, longitude)
	if err != nil {
		return Day{}, err
	}
	hs, err := Build(p.Windows, ruler, table)
	if err != nil {
		return Day{}, fmt.Errorf("failed to rule planetary hours: %w", err)
	}
	return Day{Hours: hs, Solar: p.Solar}, nil
}

// Locate returns the position of the hour containing now. When no hour
// contains now (before sunrise, clock skew) it returns 0 and false.
func Locate(hs []PlanetaryHour, now time.Time) (int, bool) {
	for i, h := range hs {
		if !now.Before(h.Start) && now.Before(h.End) {
			return i, true
		}
	}
	return 0, false
}

// Next returns the position after i, wrapping.
func Next(hs []PlanetaryHour, i int) int {
	return (i + 1) % len(hs)
}

// Ordinal renders n with its English suffix: 1st, 2nd, 3rd, 4th, 11th, 21st.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// Label is the display label of the hour at 1-based index n.
func Label(n int) string {
	return Ordinal(n) + " Hour"
}
