// Package snapshotfile publishes snapshots to a JSON file so that displays
// without a socket.io link can poll it. Writes are guarded by a lock file
// and replace the target atomically.
package snapshotfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/vk/prayerclock/internal/ctxlog"
	"github.com/vk/prayerclock/internal/model"
)

const lockTimeout = 5 * time.Second

// Writer writes the latest snapshot to Path and the latest error notice to
// ErrorPath.
type Writer struct {
	Path      string
	ErrorPath string

	lock *flock.Flock
}

// New returns a writer for path. Error notices go to "<name>.error.json"
// next to it.
func New(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return &Writer{
		Path:      path,
		ErrorPath: base + ".error.json",
		lock:      flock.New(path + ".lock"),
	}, nil
}

// Name identifies the writer in publisher logs.
func (w *Writer) Name() string { return "snapshotfile" }

// PublishSnapshot replaces the snapshot file and clears a stale error file.
func (w *Writer) PublishSnapshot(ctx context.Context, snap *model.Snapshot) error {
	if err := w.write(ctx, w.Path, snap); err != nil {
		return err
	}
	if err := os.Remove(w.ErrorPath); err != nil && !os.IsNotExist(err) {
		ctxlog.FromContext(ctx).Warn("Failed to clear stale error file.", "path", w.ErrorPath, "error", err)
	}
	return nil
}

// PublishError writes notice to the error file. The last good snapshot is
// left in place.
func (w *Writer) PublishError(ctx context.Context, notice model.ErrorNotice) error {
	return w.write(ctx, w.ErrorPath, notice)
}

func (w *Writer) write(ctx context.Context, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := w.lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock acquisition failed: %w", err)
	}
	if !locked {
		return fmt.Errorf("snapshot file is locked by another writer: %s", w.lock.Path())
	}
	defer func() { _ = w.lock.Unlock() }()

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	ctxlog.FromContext(ctx).Debug("Wrote file.", "path", path, "bytes", len(data)+1)
	return nil
}

// Read loads the snapshot last written to path.
func Read(path string) (*model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &snap, nil
}
