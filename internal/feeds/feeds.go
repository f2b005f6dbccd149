// Package feeds describes which feeds are polled and where their entries go.
package feeds

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// VideoPrefix marks feeds generated from a video channel list.
const VideoPrefix = "youtube:"

// Config is a single polled feed. It is built once at startup and never
// mutated afterwards.
type Config struct {
	Name               string `yaml:"name"`
	URL                string `yaml:"url"`
	WebhookEnv         string `yaml:"webhook_env"`
	DefaultWebhook     string `yaml:"default_webhook"`
	CleanHTML          bool   `yaml:"clean_html"`
	SuppressSummary    bool   `yaml:"suppress_summary"`
	PreferredImageHost string `yaml:"preferred_image_host"`
	Video              bool   `yaml:"-"`
}

// ChannelGroup generates one video feed per channel id, all posting to the
// same webhook.
type ChannelGroup struct {
	WebhookEnv     string   `yaml:"webhook_env"`
	DefaultWebhook string   `yaml:"default_webhook"`
	ChannelIDs     []string `yaml:"channel_ids"`
}

// File is the YAML layout accepted by Load:
//
//	feeds:
//	  - name: xkcd
//	    url: https://xkcd.com/rss.xml
//	    webhook_env: XKCD_DISCORD_WEBHOOK
//	video_channels:
//	  webhook_env: YOUTUBE_DISCORD_WEBHOOK
//	  channel_ids: [UC...]
type File struct {
	Feeds         []Config     `yaml:"feeds"`
	VideoChannels ChannelGroup `yaml:"video_channels"`
}

// Webhook resolves the target webhook: the environment override named by
// WebhookEnv wins, otherwise the configured default. Empty means "skip".
func (c Config) Webhook(lookup func(string) string) string {
	if c.WebhookEnv != "" && lookup != nil {
		if v := strings.TrimSpace(lookup(c.WebhookEnv)); v != "" {
			return v
		}
	}
	return c.DefaultWebhook
}

// Load reads a feed list from a YAML file and expands it with Build.
func Load(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}

	return Build(f.Feeds, f.VideoChannels)
}

// Build returns the base feeds followed by one generated feed per video
// channel. Names must be unique since they key the dedup state.
func Build(base []Config, group ChannelGroup) ([]Config, error) {
	out := make([]Config, 0, len(base)+len(group.ChannelIDs))
	names := make(map[string]bool)

	add := func(c Config) error {
		if c.Name == "" {
			return fmt.Errorf("feed name is required (url %q)", c.URL)
		}
		if c.URL == "" {
			return fmt.Errorf("feed %q has no url", c.Name)
		}
		if names[c.Name] {
			return fmt.Errorf("duplicate feed name %q", c.Name)
		}
		names[c.Name] = true
		out = append(out, c)
		return nil
	}

	for _, c := range base {
		c.Video = strings.HasPrefix(c.Name, VideoPrefix)
		if err := add(c); err != nil {
			return nil, err
		}
	}

	for _, id := range group.ChannelIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		err := add(Config{
			Name:           VideoPrefix + id,
			URL:            "https://www.youtube.com/feeds/videos.xml?channel_id=" + id,
			WebhookEnv:     group.WebhookEnv,
			DefaultWebhook: group.DefaultWebhook,
			Video:          true,
		})
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}
