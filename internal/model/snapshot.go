// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the snapshot published on every engine tick.
package model

import (
	"time"

	"github.com/vk/prayerclock/internal/calendar"
	"github.com/vk/prayerclock/internal/citation"
	"github.com/vk/prayerclock/internal/focus"
	"github.com/vk/prayerclock/internal/hours"
	"github.com/vk/prayerclock/internal/planet"
	"github.com/vk/prayerclock/internal/sigil"
)

// Snapshot is one published refresh.
type Snapshot struct {
	ID          string        `json:"id"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Sunrise     time.Time     `json:"sunrise"`
	Sunset      time.Time     `json:"sunset"`
	DayInfo     DayInfo       `json:"dayInfo"`
	CurrentHour DecoratedHour `json:"currentHour"`
	NextHour    DecoratedHour `json:"nextHour"`
	Resources   Resources     `json:"resources"`
}

// DayInfo is the weekday profile with its citations resolved. Fields below
// shadow the profile fields of the same JSON name.
type DayInfo struct {
	calendar.DayProfile

	PlanetDetails planet.Attributes  `json:"planetDetails"`
	Sigil         *sigil.Sigil       `json:"sigil"`
	DayVerse      *citation.Citation `json:"dayVerse"`
	Proverb       *citation.Citation `json:"proverb,omitempty"`
}

// DecoratedHour is a planetary hour with the content of its focus area.
type DecoratedHour struct {
	hours.PlanetaryHour

	FocusArea      string             `json:"focusArea"`
	FocusAreaLabel string             `json:"focusAreaLabel"`
	Verse          *citation.Citation `json:"verse"`
	PlanetDetails  planet.Attributes  `json:"planetDetails"`
	Sigil          *sigil.Sigil       `json:"sigil"`
	Proverb        *citation.Citation `json:"proverb"`
	Declaration    *string            `json:"declaration"`
}

// Resources carries the raw content tables for the display to browse.
type Resources struct {
	FocusCollections map[string]focus.Collection    `json:"focusCollections"`
	WeekdayManifest  map[string]calendar.DayProfile `json:"weekdayManifest"`
}
