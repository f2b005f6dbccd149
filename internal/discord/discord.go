package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/feedhook/internal/ratelimit"
)

// Discord limits, applied conservatively.
const (
	maxTitleRunes       = 256
	maxDescriptionRunes = 4000
	maxFallbackRunes    = 1900
)

// Message is one entry to announce.
type Message struct {
	Title    string
	Link     string
	Summary  string
	ImageURL string
}

type embedImage struct {
	URL string `json:"url"`
}

type embed struct {
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	Description string      `json:"description"`
	Image       *embedImage `json:"image,omitempty"`
}

type embedPayload struct {
	Embeds []embed `json:"embeds"`
}

type textPayload struct {
	Content string `json:"content"`
}

// Client posts messages to Discord webhooks.
type Client struct {
	http  *http.Client
	pacer *ratelimit.Pacer
}

// NewClient returns a Client. pacer may be nil.
func NewClient(client *http.Client, pacer *ratelimit.Pacer) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{http: client, pacer: pacer}
}

// Notify posts msg as an embed. When Discord rejects the embed with 400, a
// plain text message is sent once instead. It reports whether either post
// was accepted with 200 or 204.
func (c *Client) Notify(ctx context.Context, webhook string, msg Message) bool {
	title := truncate(strings.TrimSpace(msg.Title), maxTitleRunes)
	description := truncate(strings.TrimSpace(msg.Summary), maxDescriptionRunes)

	e := embed{Title: title, URL: msg.Link, Description: description}
	if msg.ImageURL != "" {
		e.Image = &embedImage{URL: msg.ImageURL}
	}

	status, err := c.post(ctx, webhook, embedPayload{Embeds: []embed{e}})
	if err != nil {
		slog.Warn("Failed to send webhook", "title", title, "error", err)
		return false
	}
	if sent(status) {
		slog.Info("Sent to Discord", "title", title)
		return true
	}
	if status != http.StatusBadRequest {
		return false
	}

	content := fmt.Sprintf("%s\n%s\n\n%s", title, msg.Link, truncate(description, maxFallbackRunes))
	status, err = c.post(ctx, webhook, textPayload{Content: content})
	if err != nil {
		slog.Warn("Fallback send failed", "title", title, "error", err)
		return false
	}
	if sent(status) {
		slog.Info("Fallback text message sent", "title", title)
		return true
	}
	return false
}

func (c *Client) post(ctx context.Context, webhook string, payload any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}

	if err := c.pacer.Wait(ctx, webhook); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if !sent(resp.StatusCode) {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		slog.Warn("Discord webhook returned error", "status", resp.StatusCode, "body", string(text))
	}
	return resp.StatusCode, nil
}

func sent(status int) bool {
	return status == http.StatusOK || status == http.StatusNoContent
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
