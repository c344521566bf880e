package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vk/prayerclock/internal/citation"
	"github.com/vk/prayerclock/internal/ctxlog"
	"github.com/vk/prayerclock/internal/focus"
	"github.com/vk/prayerclock/internal/hours"
	"github.com/vk/prayerclock/internal/model"
)

// Tick computes and publishes one snapshot. A failure is published as an
// error notice and returned as a *ComputationError; engine state is left as
// it was before the tick.
func (e *Engine) Tick(ctx context.Context) error {
	if e.State() != StateRunning {
		return ErrNotConfigured
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock().In(e.cfg.Location)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Tick started.", "now", now)

	snap, commit, err := e.assemble(ctx, now)
	if err != nil {
		cerr := &ComputationError{Err: err}
		logger.Error("Tick failed.", "error", err)
		e.publishError(ctx, cerr)
		return cerr
	}

	commit()
	e.last.Store(snap)
	e.publishSnapshot(ctx, snap)
	logger.Debug("Snapshot published.",
		"id", snap.ID,
		"policy", e.rotation.Policy(),
		"hour", snap.CurrentHour.Index,
		"planet", snap.CurrentHour.PlanetKey,
		"focus_area", snap.CurrentHour.FocusArea,
	)
	return nil
}

// assemble builds the snapshot for now. The returned commit applies the
// cursor advance and records the broadcast hour; it must only run once the
// snapshot is known to be good.
func (e *Engine) assemble(ctx context.Context, now time.Time) (*model.Snapshot, func(), error) {
	day, err := e.cat.Calendar.For(now)
	if err != nil {
		return nil, nil, err
	}

	d, err := hours.Compute(e.divider, now, e.cfg.Latitude, e.cfg.Longitude, day.PlanetKey, e.cat.Planets)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute planetary hours for %s: %w", day.Weekday, err)
	}
	if !d.Solar {
		ctxlog.FromContext(ctx).Debug("No usable sunrise/sunset, using midnight-aligned hours.")
	}

	active, ok := hours.Locate(d.Hours, now)
	if !ok {
		ctxlog.FromContext(ctx).Debug("No hour contains now, falling back to the first hour.")
	}
	current := d.Hours[active]
	next := d.Hours[hours.Next(d.Hours, active)]
	transition := current.Index != e.lastIndex

	// Both selections read the cursors before any advance.
	currentSel := e.rotation.Select(current.Index)
	nextSel := e.rotation.Select(next.Index)

	snap := &model.Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Sunrise:     d.Hours[0].Start,
		Sunset:      d.Hours[len(d.Hours)/2].Start,
		CurrentHour: e.decorate(current, currentSel),
		NextHour:    e.decorate(next, nextSel),
		Resources: model.Resources{
			FocusCollections: e.collections,
			WeekdayManifest:  e.manifest,
		},
	}
	snap.DayInfo.DayProfile = day
	snap.DayInfo.PlanetDetails, _ = e.cat.Planets.Lookup(day.PlanetKey)
	snap.DayInfo.Sigil = e.sigils.Resolve(day.Sigil, day.Angel)

	// Lookups outlive a superseded tick so their results still reach the
	// cache; the HTTP client timeout bounds them.
	rctx := context.WithoutCancel(ctx)
	var g errgroup.Group
	resolve := func(dst **citation.Citation, src *citation.Source, fallback string) {
		if src == nil {
			return
		}
		g.Go(func() error {
			c := e.resolver.Resolve(rctx, *src, fallback)
			*dst = &c
			return nil
		})
	}
	resolve(&snap.CurrentHour.Verse, currentSel.Verse, currentSel.Label+" Verse")
	resolve(&snap.CurrentHour.Proverb, currentSel.Proverb, "Proverb")
	resolve(&snap.NextHour.Verse, nextSel.Verse, nextSel.Label+" Verse")
	resolve(&snap.NextHour.Proverb, nextSel.Proverb, "Proverb")
	resolve(&snap.DayInfo.DayVerse, day.DayVerse, "Day Verse")
	resolve(&snap.DayInfo.Proverb, day.Proverb, "Proverb")
	_ = g.Wait()

	commit := func() {
		if !transition {
			return
		}
		e.rotation.Advance(currentSel.Area)
		e.lastIndex = current.Index
	}
	return snap, commit, nil
}

func (e *Engine) decorate(h hours.PlanetaryHour, sel focus.Selection) model.DecoratedHour {
	details, _ := e.cat.Planets.Lookup(h.PlanetKey)
	file := h.Sigil
	if file == "" {
		file = details.Sigil
	}

	out := model.DecoratedHour{
		PlanetaryHour:  h,
		FocusArea:      sel.Area,
		FocusAreaLabel: sel.Label,
		PlanetDetails:  details,
		Sigil:          e.sigils.Resolve(file, h.Angel),
	}
	if sel.Declaration != nil {
		decl := *sel.Declaration
		out.Declaration = &decl
	}
	return out
}
