package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/vk/prayerclock/internal/catalog"
	"github.com/vk/prayerclock/internal/ctxlog"
	"github.com/vk/prayerclock/internal/engine"
	"github.com/vk/prayerclock/modules/http_client"
	prnt "github.com/vk/prayerclock/modules/print"
	"github.com/vk/prayerclock/modules/s3"
	"github.com/vk/prayerclock/modules/snapshotfile"
	"github.com/vk/prayerclock/modules/socketio"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	catalog    *catalog.Catalog
	client     *http.Client
	publishers []engine.Publisher
	engine     atomic.Pointer[engine.Engine]
	display    atomic.Pointer[socketio.Link]

	// configs carries settings payloads received from the display.
	configs    chan []byte
	httpServer *http.Server
}

// NewApp loads the catalog and prepares the static publishers. The display
// link, when configured, is dialed in Run.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cat, err := catalog.Load(ctx, cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("Catalog loaded.",
		"path", cfg.CatalogPath,
		"weekdays", len(cat.Calendar.Manifest()),
		"focus_packs", len(cat.Packs),
		"sigils", cat.Sigils.Len(),
	)

	client, err := http_client.CreateHttpClient(ctx, &http_client.Input{
		Timeout:   cfg.VerseTimeout,
		UserAgent: "prayerclock",
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		catalog: cat,
		client:  client,
		configs: make(chan []byte, 1),
	}

	if cfg.SnapshotPath != "" {
		w, err := snapshotfile.New(cfg.SnapshotPath)
		if err != nil {
			return nil, err
		}
		a.publishers = append(a.publishers, w)
	}
	if cfg.UploadURL != "" {
		u, err := s3.New(cfg.UploadURL, client)
		if err != nil {
			return nil, err
		}
		a.publishers = append(a.publishers, u)
	}
	if cfg.Print {
		a.publishers = append(a.publishers, prnt.New(outW))
	}
	logger.Debug("Static publishers prepared.", "count", len(a.publishers))
	return a, nil
}

// Engine returns the running engine, or nil before Run. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine.Load()
}

func (a *App) newEngine(publishers []engine.Publisher) (*engine.Engine, error) {
	var assets = os.DirFS(".")
	if a.config.AssetsRoot != "" {
		assets = os.DirFS(a.config.AssetsRoot)
	}
	return engine.New(engine.Options{
		Catalog:    a.catalog,
		Assets:     assets,
		Client:     a.client,
		Publishers: publishers,
	})
}
