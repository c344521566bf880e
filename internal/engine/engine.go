package engine

import (
	"context"
	"errors"
	"io/fs"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/prayerclock/internal/astro"
	"github.com/vk/prayerclock/internal/calendar"
	"github.com/vk/prayerclock/internal/catalog"
	"github.com/vk/prayerclock/internal/citation"
	"github.com/vk/prayerclock/internal/config"
	"github.com/vk/prayerclock/internal/ctxlog"
	"github.com/vk/prayerclock/internal/focus"
	"github.com/vk/prayerclock/internal/model"
	"github.com/vk/prayerclock/internal/sigil"
)

// State is the lifecycle state of an Engine.
type State int32

const (
	StateUninitialized State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "uninitialized"
}

// Options wires an Engine. Only Catalog is required.
type Options struct {
	Catalog    *catalog.Catalog
	Assets     fs.FS            // sigil images, rooted above assets/sigils
	Client     citation.Doer    // verse service transport
	Clock      func() time.Time // defaults to time.Now
	Rand       focus.Rand       // random policy source
	Divider    *astro.Divider
	Publishers []Publisher
}

// Engine is the refresh scheduler.
type Engine struct {
	cat        *catalog.Catalog
	sigils     *sigil.Resolver
	client     citation.Doer
	clock      func() time.Time
	rng        focus.Rand
	divider    *astro.Divider
	publishers []Publisher

	collections map[string]focus.Collection
	manifest    map[string]calendar.DayProfile

	// lifecycle serializes Configure and Stop.
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// mu guards everything below and serializes ticks.
	mu        sync.Mutex
	cfg       *config.Resolved
	rotation  *focus.Rotation
	resolver  *citation.Resolver
	lastIndex int // 0 until the first snapshot

	state atomic.Int32
	last  atomic.Pointer[model.Snapshot]
}

// New builds an Engine in the Uninitialized state.
func New(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, errors.New("engine requires a catalog")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	if opts.Divider == nil {
		opts.Divider = astro.NewDivider(nil)
	}

	return &Engine{
		cat:         opts.Catalog,
		sigils:      sigil.NewResolver(opts.Catalog.Sigils, opts.Assets),
		client:      opts.Client,
		clock:       opts.Clock,
		rng:         opts.Rand,
		divider:     opts.Divider,
		publishers:  opts.Publishers,
		collections: focus.Collections(opts.Catalog.Packs),
		manifest:    opts.Catalog.Calendar.Manifest(),
	}, nil
}

// State reports the lifecycle state.
func (e *Engine) State() State { return State(e.state.Load()) }

// Last returns the most recent snapshot, or nil before the first one.
func (e *Engine) Last() *model.Snapshot { return e.last.Load() }

// Settings returns the active configuration, or nil when Uninitialized.
func (e *Engine) Settings() *config.Resolved {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Configure validates s and, when valid, resets the focus cursors, publishes
// an initial snapshot and (re)starts the ticker. An invalid s is published
// as an error notice and leaves a running engine on its previous settings.
// The ticker outlives ctx; use Stop to end it. Configure returns once the
// initial snapshot is done; the lifecycle lock is not held meanwhile, so a
// concurrent Stop or Configure can supersede it.
func (e *Engine) Configure(ctx context.Context, s *config.Settings) error {
	logger := ctxlog.FromContext(ctx)

	cfg, err := e.validate(ctx, s)
	if err != nil {
		logger.Error("Rejected configuration.", "error", err)
		e.publishError(ctx, err)
		return err
	}

	e.lifecycle.Lock()
	e.stopTicker()

	e.mu.Lock()
	if e.resolver == nil || e.resolver.Endpoint() != cfg.VerseServiceURL || e.resolver.Translation() != cfg.Translation {
		e.resolver = citation.NewResolver(e.client, cfg.VerseServiceURL, cfg.Translation)
	}
	e.cfg = cfg
	e.rotation = focus.NewRotation(cfg.FocusAreas, e.cat.Packs, cfg.Policy, e.rng)
	e.lastIndex = 0
	e.state.Store(int32(StateRunning))
	e.mu.Unlock()

	logger.Info("Engine configured.",
		"latitude", cfg.Latitude,
		"longitude", cfg.Longitude,
		"interval", cfg.Interval,
		"policy", cfg.Policy,
		"focus_areas", cfg.FocusAreas,
		"timezone", cfg.Location.String(),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	first := make(chan struct{})
	e.cancel = cancel
	e.wg.Add(1)
	go e.run(runCtx, cfg.Interval, first)
	e.lifecycle.Unlock()

	<-first
	return nil
}

func (e *Engine) validate(ctx context.Context, s *config.Settings) (*config.Resolved, error) {
	cfg, err := s.Resolve()
	if err != nil {
		return nil, err
	}
	if len(e.cat.Packs) == 0 {
		return nil, &config.ConfigurationError{Field: "focusAreas", Reason: "have no content packs to draw from"}
	}
	for _, area := range cfg.FocusAreas {
		if _, ok := e.cat.Packs[area]; !ok {
			ctxlog.FromContext(ctx).Warn("Focus area has no content pack; its content will be empty.", "focus_area", area)
		}
	}
	return cfg, nil
}

// Reject publishes err as an error notice without touching engine state.
// It is used for settings that could not even be decoded.
func (e *Engine) Reject(ctx context.Context, err error) {
	ctxlog.FromContext(ctx).Error("Rejected configuration.", "error", err)
	e.publishError(ctx, err)
}

// Stop ends the ticker. An in-flight tick, including the initial one of a
// concurrent Configure, is not interrupted: Stop waits for it, and its
// lookups are bounded by the verse client timeout.
func (e *Engine) Stop() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	e.stopTicker()
}

// stopTicker must be called with lifecycle held.
func (e *Engine) stopTicker() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	e.wg.Wait()
	e.cancel = nil
}

// run publishes the initial snapshot, closes first and then ticks until ctx
// is cancelled. The initial snapshot's failure is published like any tick
// failure.
func (e *Engine) run(ctx context.Context, interval time.Duration, first chan<- struct{}) {
	defer e.wg.Done()
	_ = e.Tick(ctx)
	close(first)
	if ctx.Err() != nil {
		return
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Ticker started.", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Ticker stopped.")
			return
		case <-ticker.C:
			_ = e.Tick(ctx)
		}
	}
}
