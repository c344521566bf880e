package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/prayerclock/internal/astro"
	"github.com/vk/prayerclock/internal/calendar"
	"github.com/vk/prayerclock/internal/catalog"
	"github.com/vk/prayerclock/internal/citation"
	"github.com/vk/prayerclock/internal/config"
	"github.com/vk/prayerclock/internal/focus"
	"github.com/vk/prayerclock/internal/model"
	"github.com/vk/prayerclock/internal/planet"
	"github.com/vk/prayerclock/internal/sigil"
)

// at returns a UTC instant in June 2024; the 2nd is a Sunday.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

// sixToSix makes every planetary hour exactly one clock hour long,
// hour 1 starting at 06:00 UTC.
func sixToSix(_, _ float64, y int, m time.Month, d int) (time.Time, time.Time) {
	return time.Date(y, m, d, 6, 0, 0, 0, time.UTC), time.Date(y, m, d, 18, 0, 0, 0, time.UTC)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recorder struct {
	mu     sync.Mutex
	snaps  []*model.Snapshot
	errors []model.ErrorNotice
}

func (r *recorder) PublishSnapshot(_ context.Context, s *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
	return nil
}

func (r *recorder) PublishError(_ context.Context, n model.ErrorNotice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, n)
	return nil
}

func (r *recorder) snapshots() []*model.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.Snapshot(nil), r.snaps...)
}

func (r *recorder) notices() []model.ErrorNotice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ErrorNotice(nil), r.errors...)
}

func (r *recorder) latest(t *testing.T) *model.Snapshot {
	t.Helper()
	snaps := r.snapshots()
	require.NotEmpty(t, snaps)
	return snaps[len(snaps)-1]
}

var angels = map[planet.Key]string{
	planet.Saturn: "Cassiel", planet.Jupiter: "Sachiel", planet.Mars: "Samael", planet.Sun: "Michael",
	planet.Venus: "Anael", planet.Mercury: "Raphael", planet.Moon: "Gabriel",
}

func testCatalog(t *testing.T, days map[string]calendar.DayProfile, packs map[string]focus.Pack) *catalog.Catalog {
	t.Helper()
	entries := make(map[planet.Key]planet.Attributes)
	for key, angel := range angels {
		entries[key] = planet.Attributes{Label: string(key), Angel: angel}
	}
	entries[planet.Sun] = planet.Attributes{Label: "Sun", Angel: "Michael", Emoji: "☉", Sigil: "michael.png"}
	table, err := planet.NewTable(entries)
	require.NoError(t, err)

	if days == nil {
		days = map[string]calendar.DayProfile{
			"sunday": {PlanetKey: planet.Sun, Angel: "Michael", Sigil: "michael.png"},
			"monday": {PlanetKey: planet.Moon, Angel: "Gabriel"},
		}
	}
	cal, err := calendar.New(days, table)
	require.NoError(t, err)

	return &catalog.Catalog{
		Planets:  table,
		Calendar: cal,
		Packs:    packs,
		Sigils: sigil.NewManifest(map[string]sigil.Entry{
			"michael": {File: "michael.png", Alt: "Seal of Michael"},
		}),
	}
}

func literals(texts ...string) []citation.Source {
	out := make([]citation.Source, len(texts))
	for i, text := range texts {
		out[i] = citation.Literal("", text)
	}
	return out
}

type harness struct {
	engine *Engine
	clock  *fakeClock
	rec    *recorder
}

func newHarness(t *testing.T, cat *catalog.Catalog, opts Options) *harness {
	t.Helper()
	h := &harness{clock: &fakeClock{now: at(2, 6, 10)}, rec: &recorder{}}
	opts.Catalog = cat
	opts.Clock = h.clock.Now
	opts.Divider = astro.NewDivider(sixToSix)
	opts.Publishers = append(opts.Publishers, h.rec)
	if opts.Assets == nil {
		opts.Assets = fstest.MapFS{"assets/sigils/michael.png": {Data: []byte("png")}}
	}

	e, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(e.Stop)
	h.engine = e
	return h
}

func settings(areas ...string) *config.Settings {
	lat, lon := 29.7604, -95.3698
	return &config.Settings{
		Latitude:       &lat,
		Longitude:      &lon,
		FocusAreas:     areas,
		UpdateInterval: float64(time.Hour / time.Millisecond),
		Timezone:       "UTC",
	}
}

func wisdomPacks() map[string]focus.Pack {
	return map[string]focus.Pack{
		"wisdom": {
			Verses:       literals("w1", "w2", "w3"),
			Proverbs:     literals("p1", "p2"),
			Declarations: []string{"d1", "d2", "d3", "d4"},
		},
	}
}

func TestConfigure_SundayScenario(t *testing.T) {
	h := newHarness(t, testCatalog(t, nil, wisdomPacks()), Options{})
	require.Equal(t, StateUninitialized, h.engine.State())

	require.NoError(t, h.engine.Configure(context.Background(), settings("wisdom")))
	require.Equal(t, StateRunning, h.engine.State())

	snap := h.rec.latest(t)
	assert.True(t, at(2, 6, 0).Equal(snap.Sunrise), "sunrise %s", snap.Sunrise)
	assert.True(t, at(2, 18, 0).Equal(snap.Sunset), "sunset %s", snap.Sunset)
	assert.Equal(t, 1, snap.CurrentHour.Index)
	assert.Equal(t, "1st Hour", snap.CurrentHour.IndexLabel)
	assert.Equal(t, planet.Sun, snap.CurrentHour.PlanetKey)
	assert.Equal(t, 2, snap.NextHour.Index)
	assert.Equal(t, planet.Venus, snap.NextHour.PlanetKey)
	assert.Equal(t, "sunday", snap.DayInfo.Weekday)
	assert.Equal(t, "Sun", snap.DayInfo.PlanetDetails.Label)
	assert.NotEmpty(t, snap.ID)
	assert.Same(t, snap, h.engine.Last())

	require.NotNil(t, snap.CurrentHour.Sigil)
	assert.Equal(t, "assets/sigils/michael.png", snap.CurrentHour.Sigil.Path)
	assert.Equal(t, "Seal of Michael", snap.CurrentHour.Sigil.Alt)
	assert.Nil(t, snap.NextHour.Sigil, "no asset exists for anael.png")

	// The eighth hour repeats the day ruler.
	seq, err := planet.Sequence(planet.Sun, 24)
	require.NoError(t, err)
	h.clock.Set(at(2, 13, 30))
	require.NoError(t, h.engine.Tick(context.Background()))
	snap = h.rec.latest(t)
	assert.Equal(t, 8, snap.CurrentHour.Index)
	assert.Equal(t, seq[7], snap.CurrentHour.PlanetKey)
	assert.Equal(t, planet.Sun, snap.CurrentHour.PlanetKey)

	assert.Empty(t, h.rec.notices())
}

func TestTick_CursorAdvancesOncePerDistinctHour(t *testing.T) {
	h := newHarness(t, testCatalog(t, nil, wisdomPacks()), Options{})
	ctx := context.Background()

	verse := func() string {
		snap := h.rec.latest(t)
		require.NotNil(t, snap.CurrentHour.Verse)
		return snap.CurrentHour.Verse.Text
	}

	// --- Arrange / Act: initial snapshot counts as a transition ---
	require.NoError(t, h.engine.Configure(ctx, settings("wisdom")))
	assert.Equal(t, "w1", verse())
	assert.Equal(t, "Wisdom Verse", h.rec.latest(t).CurrentHour.Verse.Reference)
	assert.Equal(t, 1, h.engine.rotation.Cursor("wisdom"))

	// --- Same hour: no advance ---
	for _, minute := range []int{20, 40, 59} {
		h.clock.Set(at(2, 6, minute))
		require.NoError(t, h.engine.Tick(ctx))
		assert.Equal(t, 1, h.engine.rotation.Cursor("wisdom"))
	}
	assert.Equal(t, "w2", verse())

	// --- Next hour: one advance ---
	h.clock.Set(at(2, 7, 5))
	require.NoError(t, h.engine.Tick(ctx))
	assert.Equal(t, 2, h.engine.rotation.Cursor("wisdom"))
	assert.Equal(t, "w2", verse())

	h.clock.Set(at(2, 8, 5))
	require.NoError(t, h.engine.Tick(ctx))
	assert.Equal(t, 0, h.engine.rotation.Cursor("wisdom"), "cursor wraps at the verse pool length")
	snap := h.rec.latest(t)
	assert.Equal(t, "w3", snap.CurrentHour.Verse.Text)
	require.NotNil(t, snap.CurrentHour.Proverb)
	assert.Equal(t, "p1", snap.CurrentHour.Proverb.Text, "proverb follows the same cursor")
	require.NotNil(t, snap.CurrentHour.Declaration)
	assert.Equal(t, "d3", *snap.CurrentHour.Declaration)

	// The preview reads the cursor before this tick's advance.
	require.NotNil(t, snap.NextHour.Verse)
	assert.Equal(t, "w3", snap.NextHour.Verse.Text)
}

func TestConfigure_ResetsCursors(t *testing.T) {
	h := newHarness(t, testCatalog(t, nil, wisdomPacks()), Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Configure(ctx, settings("wisdom")))
	h.clock.Set(at(2, 7, 5))
	require.NoError(t, h.engine.Tick(ctx))
	require.Equal(t, 2, h.engine.rotation.Cursor("wisdom"))

	require.NoError(t, h.engine.Configure(ctx, settings("wisdom")))
	assert.Equal(t, 1, h.engine.rotation.Cursor("wisdom"))
	assert.Equal(t, "w1", h.rec.latest(t).CurrentHour.Verse.Text)
}

func TestConfigure_IntervalFloor(t *testing.T) {
	h := newHarness(t, testCatalog(t, nil, wisdomPacks()), Options{})
	s := settings()
	s.UpdateInterval = 5000

	require.NoError(t, h.engine.Configure(context.Background(), s))
	cfg := h.engine.Settings()
	require.NotNil(t, cfg)
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, config.DefaultFocusAreas, cfg.FocusAreas)
	assert.Equal(t, focus.PolicyCycle, cfg.Policy)
}

func TestTick_EmptyVersePoolYieldsNilVerse(t *testing.T) {
	packs := map[string]focus.Pack{
		"health": {Declarations: []string{"strong"}},
	}
	h := newHarness(t, testCatalog(t, nil, packs), Options{})

	require.NoError(t, h.engine.Configure(context.Background(), settings("health", "unknown")))
	snap := h.rec.latest(t)
	assert.Equal(t, "health", snap.CurrentHour.FocusArea)
	assert.Equal(t, "Health", snap.CurrentHour.FocusAreaLabel)
	assert.Nil(t, snap.CurrentHour.Verse)
	assert.Nil(t, snap.CurrentHour.Proverb)
	require.NotNil(t, snap.CurrentHour.Declaration)
	assert.Equal(t, "strong", *snap.CurrentHour.Declaration)

	assert.Equal(t, "unknown", snap.NextHour.FocusArea)
	assert.Nil(t, snap.NextHour.Verse)
	assert.Nil(t, snap.NextHour.Declaration)
	assert.Empty(t, h.rec.notices())
}

func TestTick_FailureKeepsState(t *testing.T) {
	days := map[string]calendar.DayProfile{"sunday": {PlanetKey: planet.Sun}}
	h := newHarness(t, testCatalog(t, days, wisdomPacks()), Options{})
	ctx := context.Background()

	require.NoError(t, h.engine.Configure(ctx, settings("wisdom")))
	good := h.engine.Last()
	require.NotNil(t, good)

	h.clock.Set(at(3, 9, 0))
	err := h.engine.Tick(ctx)

	var cerr *ComputationError
	require.ErrorAs(t, err, &cerr)
	require.ErrorIs(t, err, calendar.ErrNoDayProfile)
	notices := h.rec.notices()
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0].Message, "no day profile")

	assert.Equal(t, 1, h.engine.rotation.Cursor("wisdom"))
	assert.Equal(t, 1, h.engine.lastIndex)
	assert.Same(t, good, h.engine.Last())
	assert.Equal(t, StateRunning, h.engine.State())
}

func TestConfigure_InvalidSettings(t *testing.T) {
	h := newHarness(t, testCatalog(t, nil, wisdomPacks()), Options{})
	ctx := context.Background()

	bad := settings()
	bad.Latitude = nil
	err := h.engine.Configure(ctx, bad)
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "latitude", cfgErr.Field)
	assert.Equal(t, StateUninitialized, h.engine.State())
	require.ErrorIs(t, h.engine.Tick(ctx), ErrNotConfigured)
	require.Len(t, h.rec.notices(), 1)

	require.NoError(t, h.engine.Configure(ctx, settings("wisdom")))
	before := h.engine.Settings()

	err = h.engine.Configure(ctx, bad)
	require.ErrorAs(t, err, &cfgErr)
	assert.Same(t, before, h.engine.Settings(), "a rejected configuration keeps the previous one")
	assert.Equal(t, StateRunning, h.engine.State())
}

func TestReject_PublishesNotice(t *testing.T) {
	h := newHarness(t, testCatalog(t, nil, wisdomPacks()), Options{})

	h.engine.Reject(context.Background(), errors.New("settings payload unreadable"))

	notices := h.rec.notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "settings payload unreadable", notices[0].Message)
	assert.Equal(t, StateUninitialized, h.engine.State())
}

func TestConfigure_NoContentPacks(t *testing.T) {
	h := newHarness(t, testCatalog(t, nil, nil), Options{})

	err := h.engine.Configure(context.Background(), settings())
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, StateUninitialized, h.engine.State())
}

type fixedRand int

func (r fixedRand) IntN(n int) int { return int(r) % n }

func TestTick_RandomPolicyLeavesCursors(t *testing.T) {
	h := newHarness(t, testCatalog(t, nil, wisdomPacks()), Options{Rand: fixedRand(2)})
	s := settings("wisdom")
	s.PsalmDisplayMode = "random"

	require.NoError(t, h.engine.Configure(context.Background(), s))
	snap := h.rec.latest(t)
	assert.Equal(t, "w3", snap.CurrentHour.Verse.Text)
	assert.Equal(t, "p1", snap.CurrentHour.Proverb.Text)
	assert.Equal(t, "d3", *snap.CurrentHour.Declaration)
	assert.Equal(t, 0, h.engine.rotation.Cursor("wisdom"))
	assert.Equal(t, 1, h.engine.lastIndex)
}

func TestTick_ResolvesAndCachesLookups(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		var req citation.Request
		if err := json.Unmarshal(body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": req.Book + " says hi"})
	}))
	defer server.Close()

	lookup := citation.Lookup("", citation.Request{Book: "James", Chapter: "1", Verse: "5"})
	packs := map[string]focus.Pack{"wisdom": {Verses: []citation.Source{lookup}}}
	dayVerse := citation.Lookup("Mal 4:2", citation.Request{Book: "Malachi", Chapter: "4", Verse: "2"})
	days := map[string]calendar.DayProfile{"sunday": {PlanetKey: planet.Sun, DayVerse: &dayVerse}}

	h := newHarness(t, testCatalog(t, days, packs), Options{Client: server.Client()})
	s := settings("wisdom")
	s.VerseServiceURL = server.URL

	require.NoError(t, h.engine.Configure(context.Background(), s))
	snap := h.rec.latest(t)
	require.NotNil(t, snap.CurrentHour.Verse)
	assert.Equal(t, "James says hi", snap.CurrentHour.Verse.Text)
	assert.Equal(t, "Wisdom Verse", snap.CurrentHour.Verse.Reference)
	require.NotNil(t, snap.DayInfo.DayVerse)
	assert.Equal(t, citation.Citation{Reference: "Mal 4:2", Text: "Malachi says hi"}, *snap.DayInfo.DayVerse)
	assert.Nil(t, snap.DayInfo.Proverb)
	firstHits := hits.Load()
	assert.LessOrEqual(t, firstHits, int32(3), "current and next verse may race on the same key")
	assert.GreaterOrEqual(t, firstHits, int32(2))

	require.NoError(t, h.engine.Tick(context.Background()))
	assert.Equal(t, firstHits, hits.Load(), "cached lookups are not fetched again")
}

// gatedVerseService answers every lookup at once, except Malachi, which
// waits until release is closed.
func gatedVerseService(t *testing.T) (srv *httptest.Server, entered <-chan struct{}, release chan struct{}, malachiHits *atomic.Int32) {
	t.Helper()
	enteredCh := make(chan struct{})
	release = make(chan struct{})
	var once sync.Once
	malachiHits = &atomic.Int32{}

	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req citation.Request
		if err := json.Unmarshal(body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Book == "Malachi" {
			malachiHits.Add(1)
			once.Do(func() { close(enteredCh) })
			<-release
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": req.Book + " says hi"})
	}))
	return srv, enteredCh, release, malachiHits
}

func gatedCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dayVerse := citation.Lookup("Mal 4:2", citation.Request{Book: "Malachi", Chapter: "4", Verse: "2"})
	days := map[string]calendar.DayProfile{"sunday": {PlanetKey: planet.Sun, DayVerse: &dayVerse}}
	return testCatalog(t, days, wisdomPacks())
}

func TestConfigure_SupersededLookupCompletesIntoCache(t *testing.T) {
	// --- Arrange ---
	server, entered, release, malachiHits := gatedVerseService(t)
	defer server.Close()

	h := newHarness(t, gatedCatalog(t), Options{Client: server.Client()})
	s := settings("wisdom")
	s.VerseServiceURL = server.URL
	ctx := context.Background()

	// --- Act ---
	firstDone := make(chan error, 1)
	go func() { firstDone <- h.engine.Configure(ctx, s) }()
	<-entered

	secondDone := make(chan error, 1)
	go func() { secondDone <- h.engine.Configure(ctx, s) }()
	time.Sleep(20 * time.Millisecond)
	close(release)

	// --- Assert ---
	require.NoError(t, <-firstDone)
	require.NoError(t, <-secondDone)
	assert.Empty(t, h.rec.notices(), "a superseded tick is not reported as a failure")

	snaps := h.rec.snapshots()
	require.Len(t, snaps, 2)
	for _, snap := range snaps {
		require.NotNil(t, snap.DayInfo.DayVerse)
		assert.Equal(t, "Malachi says hi", snap.DayInfo.DayVerse.Text)
	}
	assert.Equal(t, int32(1), malachiHits.Load(), "the second tick is served from the cache")
}

func TestStop_WaitsForInitialTick(t *testing.T) {
	// --- Arrange ---
	server, entered, release, _ := gatedVerseService(t)
	defer server.Close()

	h := newHarness(t, gatedCatalog(t), Options{Client: server.Client()})
	s := settings("wisdom")
	s.VerseServiceURL = server.URL

	configured := make(chan error, 1)
	go func() { configured <- h.engine.Configure(context.Background(), s) }()
	<-entered

	// --- Act ---
	stopped := make(chan struct{})
	go func() {
		h.engine.Stop()
		close(stopped)
	}()

	// --- Assert ---
	select {
	case <-stopped:
		t.Fatal("Stop returned while the initial tick was still running")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the tick finished")
	}
	require.NoError(t, <-configured)
	assert.Empty(t, h.rec.notices())
	require.Len(t, h.rec.snapshots(), 1)

	h.engine.lifecycle.Lock()
	defer h.engine.lifecycle.Unlock()
	assert.Nil(t, h.engine.cancel, "no ticker is left running")
}

func TestTick_VerseServiceDownDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	lookup := citation.Lookup("", citation.Request{Book: "James", Chapter: "1", Verse: "5"})
	h := newHarness(t, testCatalog(t, nil, map[string]focus.Pack{"wisdom": {Verses: []citation.Source{lookup}}}), Options{Client: server.Client()})
	s := settings("wisdom")
	s.VerseServiceURL = server.URL

	require.NoError(t, h.engine.Configure(context.Background(), s))
	snap := h.rec.latest(t)
	require.NotNil(t, snap.CurrentHour.Verse)
	assert.Equal(t, citation.Unavailable, snap.CurrentHour.Verse.Text)
	assert.Equal(t, "Wisdom Verse", snap.CurrentHour.Verse.Reference)
	assert.Empty(t, h.rec.notices())
}

func TestSnapshotJSONShape(t *testing.T) {
	h := newHarness(t, testCatalog(t, nil, wisdomPacks()), Options{})
	require.NoError(t, h.engine.Configure(context.Background(), settings("wisdom")))

	raw, err := json.Marshal(h.rec.latest(t))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"id", "generatedAt", "sunrise", "sunset", "dayInfo", "currentHour", "nextHour", "resources"} {
		assert.Contains(t, doc, key)
	}

	current := doc["currentHour"].(map[string]any)
	assert.Equal(t, "1st Hour", current["indexLabel"])
	assert.Equal(t, "sun", current["planetKey"])
	assert.Equal(t, "assets/sigils/michael.png", current["sigil"].(map[string]any)["path"])
	assert.Equal(t, "w1", current["verse"].(map[string]any)["text"])

	dayInfo := doc["dayInfo"].(map[string]any)
	assert.Equal(t, "Sun", dayInfo["planetLabel"])
	assert.Contains(t, dayInfo, "planetDetails")
	assert.Nil(t, dayInfo["dayVerse"])
	assert.NotContains(t, dayInfo, "proverb")

	resources := doc["resources"].(map[string]any)
	assert.Contains(t, resources["focusCollections"], "wisdom")
	assert.Contains(t, resources["weekdayManifest"], "sunday")
}

func TestRun_TicksUntilStopped(t *testing.T) {
	h := newHarness(t, testCatalog(t, nil, wisdomPacks()), Options{})
	require.NoError(t, h.engine.Configure(context.Background(), settings("wisdom")))
	h.engine.Stop()
	before := len(h.rec.snapshots())

	ctx, cancel := context.WithCancel(context.Background())
	h.engine.wg.Add(1)
	go h.engine.run(ctx, 5*time.Millisecond, make(chan struct{}))

	require.Eventually(t, func() bool {
		return len(h.rec.snapshots()) >= before+3
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	h.engine.wg.Wait()
	settled := len(h.rec.snapshots())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, len(h.rec.snapshots()))
}

func TestNew_RequiresCatalog(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotConfigured))
}
