// Package planet defines the seven classical planets, their attribute table
// and the Chaldean sequence used to assign rulership to planetary hours.
package planet

import (
	"errors"
	"fmt"
	"slices"
)

// Key identifies one of the seven classical planets.
type Key string

const (
	Saturn  Key = "saturn"
	Jupiter Key = "jupiter"
	Mars    Key = "mars"
	Sun     Key = "sun"
	Venus   Key = "venus"
	Mercury Key = "mercury"
	Moon    Key = "moon"
)

// ChaldeanOrder is the fixed cyclic order of the planets, slowest first.
var ChaldeanOrder = [7]Key{Saturn, Jupiter, Mars, Sun, Venus, Mercury, Moon}

// ErrUnknownPlanet is returned for a key outside ChaldeanOrder.
var ErrUnknownPlanet = errors.New("unknown planet")

// Valid reports whether k is one of the seven known keys.
func (k Key) Valid() bool {
	return slices.Contains(ChaldeanOrder[:], k)
}

// Sequence returns n planet keys walking the Chaldean order from start.
// Entry 0 is always start; entry k is ChaldeanOrder[(index(start)+k) mod 7].
func Sequence(start Key, n int) ([]Key, error) {
	startIndex := slices.Index(ChaldeanOrder[:], start)
	if startIndex < 0 {
		return nil, fmt.Errorf("sequence start %q: %w", start, ErrUnknownPlanet)
	}
	if n < 0 {
		n = 0
	}

	seq := make([]Key, n)
	for i := range seq {
		seq[i] = ChaldeanOrder[(startIndex+i)%len(ChaldeanOrder)]
	}
	return seq, nil
}
