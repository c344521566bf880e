package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

const bundledCatalog = "../../data/catalog"

// downVerseService answers every lookup with 503 so ticks fall back to
// reference-only citations without touching the network.
func downVerseService(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func writeSettings(t *testing.T, path, verseURL string, areas string) {
	t.Helper()
	body := "latitude = 29.7604\nlongitude = -95.3698\ntimezone = \"UTC\"\n" +
		"focus_areas = " + areas + "\n" +
		"verse_service_url = \"" + verseURL + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

// setupAppTest creates an app reading the bundled catalog and a settings
// file in a temp dir.
func setupAppTest(t *testing.T, mutate func(*Config)) (*App, *Config, *SafeBuffer) {
	t.Helper()
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "prayerclock.hcl")
	writeSettings(t, settingsPath, downVerseService(t), `["wisdom", "health"]`)

	cfg, err := NewConfig(Config{
		CatalogPath:  bundledCatalog,
		AssetsRoot:   "../../data",
		SettingsPath: settingsPath,
		SnapshotPath: filepath.Join(dir, "out", "snapshot.json"),
		Print:        true,
		LogLevel:     "debug",
		LogFormat:    "text",
	})
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}

	logBuffer := &SafeBuffer{}
	a, err := NewApp(logBuffer, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("PRAYERCLOCK_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return a, cfg, logBuffer
}
