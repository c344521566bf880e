package citation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/vk/prayerclock/internal/ctxlog"
)

const (
	// DefaultTranslation is used when neither the request nor the resolver names one.
	DefaultTranslation = "KJV"

	// Unavailable is the placeholder text of a citation whose lookup failed.
	Unavailable = "[Verse unavailable]"

	maxResponseBytes = 1 << 20
)

// Doer is the HTTP capability the resolver needs. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Resolver resolves citation sources, caching verse-service answers for the
// lifetime of the process. Concurrent misses for the same request are not
// collapsed: each fetches and the cache keeps the last write.
type Resolver struct {
	client      Doer
	endpoint    string
	translation string

	mu    sync.Mutex
	cache map[string]Citation
}

// NewResolver returns a resolver posting lookups to endpoint.
func NewResolver(client Doer, endpoint, translation string) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{
		client:      client,
		endpoint:    strings.TrimSpace(endpoint),
		translation: strings.TrimSpace(translation),
		cache:       make(map[string]Citation),
	}
}

// Endpoint returns the verse service URL.
func (r *Resolver) Endpoint() string { return r.endpoint }

// Translation returns the default translation applied to lookups.
func (r *Resolver) Translation() string { return r.translation }

// CacheLen reports how many lookups are cached.
func (r *Resolver) CacheLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// Resolve returns the displayable citation for src. It never fails: a lookup
// that cannot be answered yields a placeholder citation and a warning log.
func (r *Resolver) Resolve(ctx context.Context, src Source, fallbackReference string) Citation {
	if src.Kind == KindLiteral {
		return Citation{
			Reference: firstNonEmpty(src.Reference, fallbackReference),
			Text:      Sanitize(src.Text),
		}
	}

	req := r.normalize(src.Request)
	logger := ctxlog.FromContext(ctx).With("reference", req.Label(), "translation", req.Translation)

	if !req.complete() {
		logger.Warn("Verse lookup skipped: request needs book, chapter and verse.")
		return r.fallback(src, req, fallbackReference)
	}

	key := cacheKey(req)
	r.mu.Lock()
	cached, hit := r.cache[key]
	r.mu.Unlock()
	if hit {
		return Citation{
			Reference: firstNonEmpty(src.Reference, cached.Reference, fallbackReference),
			Text:      cached.Text,
		}
	}

	payload, err := r.fetch(ctx, req)
	if err != nil {
		logger.Warn("Verse fetch failed.", "endpoint", r.endpoint, "error", err)
		return r.fallback(src, req, fallbackReference)
	}

	result := Citation{
		Reference: firstNonEmpty(src.Reference, payload.Reference, fallbackReference, req.Label()),
		Text:      payload.Text,
	}

	r.mu.Lock()
	r.cache[key] = result
	r.mu.Unlock()

	logger.Debug("Verse fetched and cached.")
	return result
}

func (r *Resolver) normalize(req Request) Request {
	return Request{
		Book:        strings.TrimSpace(req.Book),
		Chapter:     strings.TrimSpace(req.Chapter),
		Verse:       strings.TrimSpace(req.Verse),
		Translation: firstNonEmpty(strings.TrimSpace(req.Translation), r.translation, DefaultTranslation),
	}
}

func (r *Resolver) fallback(src Source, req Request, fallbackReference string) Citation {
	return Citation{
		Reference: firstNonEmpty(src.Reference, fallbackReference, req.Label()),
		Text:      Unavailable,
	}
}

func cacheKey(req Request) string {
	b, _ := json.Marshal(req)
	return string(b)
}

// fetch posts req to the verse service and extracts the sanitized text.
func (r *Resolver) fetch(ctx context.Context, req Request) (Citation, error) {
	if r.endpoint == "" {
		return Citation{}, errors.New("no verse service endpoint configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Citation{}, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return Citation{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return Citation{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Citation{}, fmt.Errorf("verse service returned HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Citation{}, fmt.Errorf("failed to read response body: %w", err)
	}

	return ParseResponse(raw)
}

type versePayload struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
	Verses    []struct {
		Text string `json:"text"`
	} `json:"verses"`
}

// ParseResponse extracts a citation from a verse-service body. The body may
// carry a text field or a verses array, and may itself be a JSON string
// wrapping the object.
func ParseResponse(raw []byte) (Citation, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return Citation{}, fmt.Errorf("unable to parse verse response: %w", err)
		}
		raw = []byte(inner)
	}

	var payload versePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Citation{}, fmt.Errorf("unable to parse verse response: %w", err)
	}

	text := payload.Text
	if text == "" && len(payload.Verses) > 0 {
		fragments := make([]string, 0, len(payload.Verses))
		for _, v := range payload.Verses {
			fragments = append(fragments, v.Text)
		}
		text = strings.Join(fragments, " ")
	}

	text = Sanitize(text)
	if text == "" {
		return Citation{}, errors.New("verse response carried no text")
	}
	return Citation{Reference: strings.TrimSpace(payload.Reference), Text: text}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
