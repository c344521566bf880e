package app

import (
	"context"
	"fmt"

	"github.com/vk/prayerclock/internal/config"
	"github.com/vk/prayerclock/internal/ctxlog"
	"github.com/vk/prayerclock/internal/engine"
	"github.com/vk/prayerclock/modules/http_client"
	"github.com/vk/prayerclock/modules/socketio"
)

// Run starts the engine and keeps feeding it settings until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer http_client.DestroyHttpClient(a.client)

	publishers := append([]engine.Publisher(nil), a.publishers...)
	if a.config.DisplayURL != "" {
		link, err := socketio.Dial(ctx, socketio.Options{
			URL:                a.config.DisplayURL,
			Namespace:          a.config.DisplayNamespace,
			InsecureSkipVerify: a.config.InsecureSkipVerify,
		}, a.receiveConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to display: %w", err)
		}
		defer link.Close()
		a.display.Store(link)
		publishers = append(publishers, link)
	}

	eng, err := a.newEngine(publishers)
	if err != nil {
		return err
	}
	a.engine.Store(eng)
	defer eng.Stop()

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
		defer a.closeHealthcheckServer()
	}

	var updates <-chan *config.Settings
	if a.config.SettingsPath != "" {
		s, err := config.Load(ctx, a.config.SettingsPath)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		if err := eng.Configure(ctx, s); err != nil {
			return fmt.Errorf("invalid settings in %s: %w", a.config.SettingsPath, err)
		}

		if a.config.Watch {
			w, err := config.NewWatcher(a.config.SettingsPath)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("failed to watch settings: %w", err)
			}
			defer w.Stop()
			updates = w.Updates
		}
	}

	a.logger.Info("🚀 Prayer clock running.", "publishers", len(publishers))
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("🏁 Prayer clock stopping.")
			return nil
		case s, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			// Rejected settings are published; the engine keeps its previous ones.
			_ = eng.Configure(ctx, s)
		case payload := <-a.configs:
			s, err := config.FromJSON(payload)
			if err != nil {
				eng.Reject(ctx, err)
				continue
			}
			_ = eng.Configure(ctx, s)
		}
	}
}

// receiveConfig hands a display settings payload to the Run loop.
func (a *App) receiveConfig(ctx context.Context, payload []byte) {
	select {
	case a.configs <- payload:
	case <-ctx.Done():
	}
}
