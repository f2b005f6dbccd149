package probe

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/feedhook/internal/cache"
)

// Validator checks that a URL points at an image before it is embedded.
type Validator struct {
	client    *http.Client
	userAgent string
	accepted  *cache.Cache[bool]
}

// New returns a Validator using client for probes. Accepted URLs are
// remembered for ttl; a zero ttl disables the cache.
func New(client *http.Client, userAgent string, ttl time.Duration) *Validator {
	if client == nil {
		client = &http.Client{Timeout: 6 * time.Second}
	}
	v := &Validator{client: client, userAgent: userAgent}
	if ttl > 0 {
		v.accepted = cache.New[bool](ttl, ttl)
	}
	return v
}

// Close releases the accepted-URL cache.
func (v *Validator) Close() {
	if v.accepted != nil {
		v.accepted.Close()
	}
}

// Validate returns url when it answers below 400 with an image content type,
// and "" otherwise. A HEAD probe is tried first; when it errors, answers 400
// or above, or omits the content type, a streamed GET is made instead.
func (v *Validator) Validate(ctx context.Context, url string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return ""
	}
	if v.accepted != nil {
		if _, ok := v.accepted.Get(url); ok {
			return url
		}
	}

	status, ct, err := v.probe(ctx, http.MethodHead, url)
	if err != nil || status >= 400 || ct == "" {
		if err != nil {
			slog.Debug("HEAD probe failed, trying GET", "url", url, "error", err)
		}
		status, ct, err = v.probe(ctx, http.MethodGet, url)
		if err != nil {
			slog.Debug("Image probe failed", "url", url, "error", err)
			return ""
		}
	}

	if status < 400 && strings.HasPrefix(strings.ToLower(ct), "image") {
		if v.accepted != nil {
			v.accepted.Set(url, true)
		}
		return url
	}

	slog.Debug("Image rejected by validation", "url", url, "status", status, "content_type", ct)
	return ""
}

// probe returns status and content type without reading the body.
func (v *Validator) probe(ctx context.Context, method, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, "", err
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	resp.Body.Close()

	return resp.StatusCode, resp.Header.Get("Content-Type"), nil
}
