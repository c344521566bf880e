// Package socketio links the engine to the display over socket.io. The
// display sends its settings as SPC_CONFIG; every snapshot goes back as
// SPC_DATA and every error notice as SPC_ERROR.
package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/prayerclock/internal/ctxlog"
	"github.com/vk/prayerclock/internal/model"
)

// Event names shared with the display.
const (
	EventConfig = "SPC_CONFIG"
	EventData   = "SPC_DATA"
	EventError  = "SPC_ERROR"
)

// ErrNotConnected is returned when publishing while the link is down.
var ErrNotConnected = errors.New("socket.io link is not connected")

// Options configures the link.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// ConfigHandler receives the raw JSON of every SPC_CONFIG payload.
type ConfigHandler func(ctx context.Context, payload []byte)

// Link is a connected socket.io client that also acts as an engine publisher.
type Link struct {
	io        *socket.Socket
	connected atomic.Bool
}

// Dial connects to the display and blocks until the first connection
// succeeds, fails, or times out. The client reconnects on its own afterwards.
func Dial(ctx context.Context, opts Options, onConfig ConfigHandler) (*Link, error) {
	ctx = ctxlog.With(ctx, "transport", "socketio", "url", opts.URL)
	logger := ctxlog.FromContext(ctx)
	logger.Info("Connecting to display...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("socket.io URL must be absolute, got %q", opts.URL)
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	sopts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		sopts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(opts.Namespace, sopts)
	l := &Link{io: io}

	io.On(types.EventName("connect"), func(...any) {
		l.connected.Store(true)
		logger.Info("Connected to display.", "namespace", opts.Namespace, "sid", io.Id())
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		l.connected.Store(false)
		logger.Warn("Disconnected from display.", "reason", reason)
	})
	io.On(types.EventName(EventConfig), func(data ...any) {
		payload, err := configPayload(data)
		if err != nil {
			logger.Warn("Ignoring malformed settings event.", "error", err)
			return
		}
		logger.Debug("Settings event received.", "bytes", len(payload))
		onConfig(ctx, payload)
	})

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return l, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Name identifies the link in publisher logs.
func (l *Link) Name() string { return "socketio" }

// Connected reports whether the link is currently up.
func (l *Link) Connected() bool { return l.connected.Load() }

// PublishSnapshot emits snap as SPC_DATA.
func (l *Link) PublishSnapshot(_ context.Context, snap *model.Snapshot) error {
	return l.emit(EventData, snap)
}

// PublishError emits notice as SPC_ERROR.
func (l *Link) PublishError(_ context.Context, notice model.ErrorNotice) error {
	return l.emit(EventError, notice)
}

// Close disconnects from the display.
func (l *Link) Close() {
	l.connected.Store(false)
	l.io.Disconnect()
}

func (l *Link) emit(event string, v any) error {
	if !l.connected.Load() {
		return ErrNotConnected
	}
	payload, err := toWire(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	l.io.Emit(event, payload)
	return nil
}

// toWire converts v to the generic JSON shape the socket.io parser sends.
func toWire(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// configPayload re-encodes the first event argument as JSON. Displays send
// either an object or a JSON string.
func configPayload(data []any) ([]byte, error) {
	if len(data) == 0 || data[0] == nil {
		return nil, errors.New("settings event carried no payload")
	}
	switch v := data[0].(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}
