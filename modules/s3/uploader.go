// Package s3 uploads every snapshot to a pre-signed object URL, so a static
// display can poll the object instead of holding a socket open.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vk/prayerclock/internal/ctxlog"
	"github.com/vk/prayerclock/internal/model"
)

// Uploader is an engine publisher PUTting snapshots to a pre-signed URL.
type Uploader struct {
	url    string
	client *http.Client
}

// New returns an uploader for uploadURL. A nil client uses http.DefaultClient.
func New(uploadURL string, client *http.Client) (*Uploader, error) {
	u, err := url.Parse(uploadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse upload URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upload URL must be http(s), got %q", uploadURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Uploader{url: uploadURL, client: client}, nil
}

// Name identifies the uploader in publisher logs.
func (u *Uploader) Name() string { return "s3" }

// PublishSnapshot uploads snap as the object body.
func (u *Uploader) PublishSnapshot(ctx context.Context, snap *model.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create S3 upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(len(body))

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute S3 upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("S3 upload failed with status: %s", resp.Status)
	}
	ctxlog.FromContext(ctx).Debug("Snapshot uploaded.", "id", snap.ID, "size", len(body), "status", resp.Status)
	return nil
}

// PublishError is a no-op; the object keeps the last good snapshot.
func (u *Uploader) PublishError(context.Context, model.ErrorNotice) error {
	return nil
}
