// Package focus rotates devotional content through the focus areas that the
// planetary hours cycle through.
package focus

import (
	"fmt"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vk/prayerclock/internal/citation"
)

// Policy selects how content is picked from a pool.
type Policy string

const (
	// PolicyCycle walks each pool with a cursor that advances once per hour.
	PolicyCycle Policy = "cycle"
	// PolicyRandom picks a uniform random entry on every broadcast.
	PolicyRandom Policy = "random"
)

// DefaultArea is used when no focus areas are configured.
const DefaultArea = "wisdom"

// ParsePolicy validates a policy name. The empty string yields PolicyCycle.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyCycle:
		return PolicyCycle, nil
	case PolicyRandom:
		return PolicyRandom, nil
	}
	return "", fmt.Errorf("unknown content selection policy %q", s)
}

// Pack is the content of one focus area.
type Pack struct {
	Verses       []citation.Source `json:"verses"`
	Proverbs     []citation.Source `json:"proverbs"`
	Declarations []string          `json:"declarations"`
}

// Collection is the browsable part of a pack published with each snapshot.
type Collection struct {
	Proverbs     []citation.Source `json:"proverbs"`
	Declarations []string          `json:"declarations"`
}

// Rand is the random source used by PolicyRandom. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Selection is the content chosen for one hour.
type Selection struct {
	Area        string
	Label       string
	Cursor      int
	Verse       *citation.Source
	Proverb     *citation.Source
	Declaration *string
}

// Rotation holds the per-area cursors. It is not safe for concurrent use;
// the engine serializes access.
type Rotation struct {
	areas   []string
	packs   map[string]Pack
	policy  Policy
	rng     Rand
	cursors map[string]int
	title   cases.Caser
}

// NewRotation starts every area's cursor at 0.
func NewRotation(areas []string, packs map[string]Pack, policy Policy, rng Rand) *Rotation {
	if len(areas) == 0 {
		areas = []string{DefaultArea}
	}
	cursors := make(map[string]int, len(packs))
	for name := range packs {
		cursors[name] = 0
	}
	return &Rotation{
		areas:   slices.Clone(areas),
		packs:   packs,
		policy:  policy,
		rng:     rng,
		cursors: cursors,
		title:   cases.Title(language.English),
	}
}

// Policy returns the selection policy.
func (r *Rotation) Policy() Policy { return r.policy }

// AreaFor maps a 1-based hour index to its focus area.
func (r *Rotation) AreaFor(index int) string {
	i := (index - 1) % len(r.areas)
	if i < 0 {
		i += len(r.areas)
	}
	return r.areas[i]
}

// Label renders an area name for display.
func (r *Rotation) Label(area string) string {
	return r.title.String(area)
}

// Cursor returns the current cursor of area.
func (r *Rotation) Cursor(area string) int {
	return r.cursors[area]
}

// Select picks the content for the hour at index. It never mutates cursors.
func (r *Rotation) Select(index int) Selection {
	area := r.AreaFor(index)
	pack := r.packs[area]
	cursor := r.cursors[area]

	sel := Selection{Area: area, Label: r.Label(area), Cursor: cursor}
	if i, ok := r.pick(len(pack.Verses), cursor); ok {
		sel.Verse = &pack.Verses[i]
	}
	if i, ok := r.pick(len(pack.Proverbs), cursor); ok {
		sel.Proverb = &pack.Proverbs[i]
	}
	if i, ok := r.pick(len(pack.Declarations), cursor); ok {
		sel.Declaration = &pack.Declarations[i]
	}
	return sel
}

func (r *Rotation) pick(n, cursor int) (int, bool) {
	if n == 0 {
		return 0, false
	}
	if r.policy == PolicyRandom {
		return r.rng.IntN(n), true
	}
	return cursor % n, true
}

// Advance moves area's cursor one step under PolicyCycle, modulo the length
// of its verse pool. It is a no-op under PolicyRandom.
func (r *Rotation) Advance(area string) {
	if r.policy != PolicyCycle {
		return
	}
	n := len(r.packs[area].Verses)
	if n == 0 {
		n = 1
	}
	r.cursors[area] = (r.cursors[area] + 1) % n
}

// Collections returns the browsable content of every pack.
func Collections(packs map[string]Pack) map[string]Collection {
	out := make(map[string]Collection, len(packs))
	for name, p := range packs {
		out[name] = Collection{Proverbs: p.Proverbs, Declarations: p.Declarations}
	}
	return out
}
