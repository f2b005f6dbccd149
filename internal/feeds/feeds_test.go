package feeds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	list := Defaults()

	if len(list) != len(defaultFeeds)+len(defaultChannels.ChannelIDs) {
		t.Fatalf("unexpected feed count %d", len(list))
	}
	if list[0].Name != "xkcd" || !list[0].SuppressSummary {
		t.Errorf("expected xkcd first with summary suppressed, got %+v", list[0])
	}
	if !list[1].CleanHTML || list[1].PreferredImageHost == "" {
		t.Errorf("expected spinoff with clean_html and preferred host, got %+v", list[1])
	}

	yt := list[2]
	if !yt.Video || !strings.HasPrefix(yt.Name, VideoPrefix) {
		t.Errorf("expected generated video feed, got %+v", yt)
	}
	if !strings.HasSuffix(yt.URL, "channel_id="+strings.TrimPrefix(yt.Name, VideoPrefix)) {
		t.Errorf("video feed url does not match channel: %s", yt.URL)
	}
	if yt.CleanHTML {
		t.Error("video feeds must not clean html")
	}
}

func TestWebhookResolution(t *testing.T) {
	c := Config{Name: "x", WebhookEnv: "X_HOOK", DefaultWebhook: "https://default"}

	env := map[string]string{}
	lookup := func(k string) string { return env[k] }

	if got := c.Webhook(lookup); got != "https://default" {
		t.Errorf("expected default webhook, got %q", got)
	}

	env["X_HOOK"] = "https://override"
	if got := c.Webhook(lookup); got != "https://override" {
		t.Errorf("expected override, got %q", got)
	}

	none := Config{Name: "y", WebhookEnv: "Y_HOOK"}
	if got := none.Webhook(lookup); got != "" {
		t.Errorf("expected no webhook, got %q", got)
	}
}

func TestBuildRejectsDuplicates(t *testing.T) {
	base := []Config{
		{Name: "a", URL: "https://a"},
		{Name: "a", URL: "https://b"},
	}
	if _, err := Build(base, ChannelGroup{}); err == nil {
		t.Error("expected duplicate name error")
	}

	if _, err := Build([]Config{{Name: "a"}}, ChannelGroup{}); err == nil {
		t.Error("expected missing url error")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	content := `
feeds:
  - name: comics
    url: https://example.com/rss.xml
    webhook_env: COMICS_HOOK
    suppress_summary: true
  - name: news
    url: https://example.com/news
    clean_html: true
    preferred_image_host: https://img.example.com
video_channels:
  webhook_env: VIDEO_HOOK
  channel_ids:
    - UC123
    - "  "
    - UC456
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 feeds, got %d", len(list))
	}
	if list[0].Name != "comics" || !list[0].SuppressSummary || list[0].WebhookEnv != "COMICS_HOOK" {
		t.Errorf("unexpected first feed %+v", list[0])
	}
	if !list[1].CleanHTML || list[1].PreferredImageHost != "https://img.example.com" {
		t.Errorf("unexpected second feed %+v", list[1])
	}
	if list[3].Name != "youtube:UC456" || list[3].WebhookEnv != "VIDEO_HOOK" || !list[3].Video {
		t.Errorf("unexpected generated feed %+v", list[3])
	}
}
