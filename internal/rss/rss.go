package rss

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"github.com/deusflow/feedhook/internal/retry"
)

// maxFeedBytes caps how much of a feed response is read.
const maxFeedBytes = 10 << 20

var xmlDeclEncoding = regexp.MustCompile(`(<\?xml[^>]*encoding=["'])[^"']*(["'])`)

// Fetcher downloads and parses feeds.
type Fetcher struct {
	client    *http.Client
	userAgent string
	policy    retry.Policy
}

func NewFetcher(client *http.Client, userAgent string, attempts int) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
		policy: retry.Policy{
			MaxAttempts: attempts,
			Delay:       2 * time.Second,
			Backoff:     true,
			Retryable:   retryable,
		},
	}
}

// Fetch returns the entries of the feed at url in document order. A non-200
// status is logged and the body is parsed anyway. When the first parse fails
// the body is re-decoded using its detected charset and parsed once more.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]*Entry, error) {
	var (
		body        []byte
		contentType string
	)
	err := retry.Do(ctx, f.policy, "fetch "+url, func(ctx context.Context) error {
		var err error
		body, contentType, err = f.download(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	parser := gofeed.NewParser()
	parser.AtomTranslator = &atomTranslator{}
	feed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		decoded, name, derr := recoverEncoding(body, contentType)
		if derr != nil {
			return nil, fmt.Errorf("parse feed %s: %w", url, err)
		}
		slog.Debug("Retrying feed parse with detected charset", "url", url, "charset", name, "error", err)
		feed, err = parser.Parse(bytes.NewReader(decoded))
		if err != nil {
			return nil, fmt.Errorf("parse feed %s: %w", url, err)
		}
	}

	entries := make([]*Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, FromItem(item))
	}
	return entries, nil
}

// retryable reports whether a failed download is worth another attempt. A
// cancelled or expired request context will fail the same way again.
func retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Feed returned non-200 status", "url", url, "status", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read feed body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// recoverEncoding converts body to UTF-8 using the charset named by the
// content type or sniffed from the bytes. The XML declaration is rewritten so
// the parser does not decode the text a second time.
func recoverEncoding(body []byte, contentType string) ([]byte, string, error) {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return nil, name, err
	}
	decoded = xmlDeclEncoding.ReplaceAll(decoded, []byte("${1}UTF-8${2}"))
	return decoded, name, nil
}
