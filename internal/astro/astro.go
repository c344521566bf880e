// Package astro partitions a solar day into the 24 unequal windows of the
// planetary hours: twelve between sunrise and sunset, twelve between sunset
// and the next sunrise.
package astro

import (
	"errors"
	"fmt"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// HoursPerCycle is the number of windows in one sunrise-to-sunrise cycle.
const HoursPerCycle = 24

// ErrNoPartition is returned when neither the solar nor the midnight
// partition yields 24 valid windows.
var ErrNoPartition = errors.New("unable to partition day into planetary hours")

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// SunFunc returns sunrise and sunset for a calendar date at a location. A
// zero time signals that the event does not happen on that date.
type SunFunc func(latitude, longitude float64, year int, month time.Month, day int) (rise, set time.Time)

// Partition is the result of dividing one day.
type Partition struct {
	Windows []Window
	// Solar is false when the midnight-aligned fallback was used.
	Solar bool
}

// Sunrise returns the start of the first window.
func (p Partition) Sunrise() time.Time { return p.Windows[0].Start }

// Sunset returns the start of the first night window.
func (p Partition) Sunset() time.Time { return p.Windows[HoursPerCycle/2].Start }

// Divider computes planetary-hour windows.
type Divider struct {
	sun SunFunc
}

// NewDivider returns a divider backed by sun, or by the go-sunrise solar
// algorithm when sun is nil.
func NewDivider(sun SunFunc) *Divider {
	if sun == nil {
		sun = sunrise.SunriseSunset
	}
	return &Divider{sun: sun}
}

// Divide partitions the day containing ref (in ref's location). When the sun
// events are usable the day and night are each split into 12 equal windows;
// otherwise 24 one-hour windows from local midnight are returned.
func (d *Divider) Divide(ref time.Time, latitude, longitude float64) (Partition, error) {
	loc := ref.Location()
	y, m, day := ref.Date()
	rise, set := d.eventsOn(latitude, longitude, y, m, day, loc)
	nextRise, _ := d.eventsOn(latitude, longitude, y, m, day+1, loc)

	if usable(rise, set, nextRise) {
		windows := append(split(rise.In(loc), set.In(loc), HoursPerCycle/2), split(set.In(loc), nextRise.In(loc), HoursPerCycle/2)...)
		if err := validate(windows); err == nil {
			return Partition{Windows: windows, Solar: true}, nil
		}
	}

	windows := midnightHours(ref)
	if err := validate(windows); err != nil {
		return Partition{}, fmt.Errorf("%w: %v", ErrNoPartition, err)
	}
	return Partition{Windows: windows}, nil
}

// eventsOn returns the sun events of the solar day whose sunrise falls on the
// local date y-m-d in loc. The sun function works on UTC dates, which run up
// to a day ahead of or behind the local calendar far from Greenwich, so the
// neighbouring dates are tried too. Without a match the events of the same
// numbered date are returned.
func (d *Divider) eventsOn(latitude, longitude float64, y int, m time.Month, day int, loc *time.Location) (rise, set time.Time) {
	local := time.Date(y, m, day, 12, 0, 0, 0, time.UTC)
	wy, wm, wd := local.Date()

	var firstRise, firstSet time.Time
	for i, offset := range []int{0, -1, 1} {
		cy, cm, cd := local.AddDate(0, 0, offset).Date()
		r, s := d.sun(latitude, longitude, cy, cm, cd)
		if i == 0 {
			firstRise, firstSet = r, s
		}
		if r.IsZero() {
			continue
		}
		if ry, rm, rd := r.In(loc).Date(); ry == wy && rm == wm && rd == wd {
			return r, s
		}
	}
	return firstRise, firstSet
}

func usable(rise, set, nextRise time.Time) bool {
	if rise.IsZero() || set.IsZero() || nextRise.IsZero() {
		return false
	}
	return rise.Before(set) && set.Before(nextRise)
}

// split divides [start, end) into n windows sharing exact boundaries.
func split(start, end time.Time, n int) []Window {
	span := end.Sub(start)
	boundary := func(i int) time.Time {
		if i == n {
			return end
		}
		return start.Add(time.Duration(int64(span) * int64(i) / int64(n)))
	}

	windows := make([]Window, n)
	for i := range windows {
		windows[i] = Window{Start: boundary(i), End: boundary(i + 1)}
	}
	return windows
}

func midnightHours(ref time.Time) []Window {
	y, m, d := ref.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, ref.Location())

	windows := make([]Window, HoursPerCycle)
	for i := range windows {
		start := midnight.Add(time.Duration(i) * time.Hour)
		windows[i] = Window{Start: start, End: start.Add(time.Hour)}
	}
	return windows
}

func validate(windows []Window) error {
	if len(windows) != HoursPerCycle {
		return fmt.Errorf("got %d windows", len(windows))
	}
	for i, w := range windows {
		if !w.Start.Before(w.End) {
			return fmt.Errorf("window %d is empty", i+1)
		}
		if i > 0 && !windows[i-1].End.Equal(w.Start) {
			return fmt.Errorf("window %d does not follow window %d", i+1, i)
		}
	}
	return nil
}
