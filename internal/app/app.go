package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deusflow/feedhook/internal/discord"
	"github.com/deusflow/feedhook/internal/extract"
	"github.com/deusflow/feedhook/internal/feeds"
	"github.com/deusflow/feedhook/internal/metrics"
	"github.com/deusflow/feedhook/internal/rss"
	"github.com/deusflow/feedhook/internal/storage"
)

const (
	shortsMarker   = "/shorts/"
	videoThumbnail = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
)

var videoIDPattern = regexp.MustCompile(`(?:v=|/videos/|/embed/|/shorts/)([A-Za-z0-9_-]{6,})`)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]*rss.Entry, error)
}

type ImageValidator interface {
	Validate(ctx context.Context, url string) string
}

type Notifier interface {
	Notify(ctx context.Context, webhook string, msg discord.Message) bool
}

type StateStore interface {
	Load(ctx context.Context) *storage.State
	Save(ctx context.Context, st *storage.State) bool
}

type Options struct {
	Feeds     []feeds.Config
	Fetcher   Fetcher
	Validator ImageValidator
	Notifier  Notifier
	Store     StateStore
	Metrics   *metrics.Metrics
	Interval  time.Duration

	// LookupEnv resolves webhook overrides. Defaults to os.Getenv.
	LookupEnv func(string) string
}

// Poller forwards new feed entries to their webhooks. It is single-threaded:
// one feed at a time, one entry at a time.
type Poller struct {
	feeds     []feeds.Config
	fetcher   Fetcher
	validator ImageValidator
	notifier  Notifier
	store     StateStore
	metrics   *metrics.Metrics
	interval  time.Duration
	lookupEnv func(string) string

	state *storage.State
}

func New(opts Options) *Poller {
	p := &Poller{
		feeds:     opts.Feeds,
		fetcher:   opts.Fetcher,
		validator: opts.Validator,
		notifier:  opts.Notifier,
		store:     opts.Store,
		metrics:   opts.Metrics,
		interval:  opts.Interval,
		lookupEnv: opts.LookupEnv,
	}
	if p.metrics == nil {
		p.metrics = metrics.New()
	}
	if p.lookupEnv == nil {
		p.lookupEnv = os.Getenv
	}
	if p.interval <= 0 {
		p.interval = time.Hour
	}
	return p
}

// Run loads the dedup state once and polls every interval until ctx is
// cancelled. Cancellation is observed between cycles and between entries.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("Starting feed forwarder", "feeds", len(p.feeds), "interval", p.interval)
	p.state = p.store.Load(ctx)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Interrupted, exiting")
			return nil
		case <-timer.C:
		}

		p.PollOnce(ctx)
		timer.Reset(p.interval)
	}
}

// PollOnce runs one cycle over every feed. Failures are logged and recorded
// in metrics; nothing is returned to the caller.
func (p *Poller) PollOnce(ctx context.Context) {
	if p.state == nil {
		p.state = p.store.Load(ctx)
	}

	start := time.Now()
	log := slog.With("cycle", uuid.NewString())
	healthy := true

	for _, fc := range p.feeds {
		if ctx.Err() != nil {
			break
		}
		if err := p.safePollFeed(ctx, log, fc); err != nil {
			healthy = false
			log.Error("Feed poll failed", "feed", fc.Name, "error", err)
			p.metrics.RecordFeedError(err.Error())
		}
	}

	duration := time.Since(start)
	p.metrics.RecordCycle(duration, healthy)
	log.Info("Poll cycle finished", "duration", duration.Round(time.Millisecond), "healthy", healthy)
}

// safePollFeed turns a panic in one feed into an error so the rest of the
// cycle still runs.
func (p *Poller) safePollFeed(ctx context.Context, log *slog.Logger, fc feeds.Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.pollFeed(ctx, log, fc)
}

func (p *Poller) pollFeed(ctx context.Context, log *slog.Logger, fc feeds.Config) error {
	log = log.With("feed", fc.Name)

	webhook := fc.Webhook(p.lookupEnv)
	if webhook == "" {
		log.Info("No webhook configured for feed; skipping", "env", fc.WebhookEnv)
		return nil
	}

	log.Info("Checking feed", "url", fc.URL)
	entries, err := p.fetcher.Fetch(ctx, fc.URL)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	video := isVideoFeed(fc)

	// Feeds list newest first; deliver oldest first.
	for i := len(entries) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return nil
		}

		e := entries[i]
		if e == nil || e.Link == "" {
			continue
		}
		if p.state.Seen(fc.Name, e.Link) {
			continue
		}

		if video && strings.Contains(e.Link, shortsMarker) {
			log.Info("Skipping short video", "link", e.Link)
			p.state.Mark(fc.Name, e.Link)
			p.store.Save(ctx, p.state)
			p.metrics.IncrementSkipped()
			continue
		}

		msg := p.enrich(ctx, log, fc, e, video)
		if !p.notifier.Notify(ctx, webhook, msg) {
			log.Warn("Will retry this entry later", "link", e.Link)
			p.metrics.IncrementDeliveryFailures()
			continue
		}

		p.state.Mark(fc.Name, e.Link)
		p.store.Save(ctx, p.state)
		p.metrics.IncrementDelivered()
		log.Info("Delivered entry", "link", e.Link, "published", published(e))
	}
	return nil
}

// enrich builds the message for e: title, summary text and a validated image.
func (p *Poller) enrich(ctx context.Context, log *slog.Logger, fc feeds.Config, e *rss.Entry, video bool) discord.Message {
	msg := discord.Message{Title: strings.TrimSpace(e.Title), Link: e.Link}
	if msg.Title == "" {
		msg.Title = fc.Name
	}

	var image string
	if video {
		image = firstThumbnail(e)
		if image == "" {
			image = bestImage(e, fc.PreferredImageHost)
		}
		if image == "" {
			if id := videoID(e); id != "" {
				image = fmt.Sprintf(videoThumbnail, id)
			}
		}
	} else {
		image = bestImage(e, fc.PreferredImageHost)
		if fc.CleanHTML {
			text, cleaned := extract.Clean(e)
			msg.Summary = text
			if image == "" {
				image = cleaned
			}
		} else {
			msg.Summary = e.Summary
		}
	}
	if fc.SuppressSummary {
		msg.Summary = ""
	}

	image = resolveImage(log, fc.URL, image)
	if image != "" {
		if valid := p.validator.Validate(ctx, image); valid == "" {
			log.Info("Dropping image because validation failed", "image", image)
			p.metrics.IncrementImagesDropped()
		} else {
			msg.ImageURL = valid
		}
	}
	return msg
}

// published formats the entry date for logs; empty when the feed has none.
func published(e *rss.Entry) string {
	if e.Published == nil {
		return ""
	}
	return e.Published.Format(time.RFC3339)
}

func isVideoFeed(fc feeds.Config) bool {
	return fc.Video || strings.HasPrefix(fc.Name, feeds.VideoPrefix)
}

func firstThumbnail(e *rss.Entry) string {
	for _, t := range e.Thumbnails {
		if u := strings.TrimSpace(t.URL); u != "" {
			return u
		}
	}
	return ""
}

func bestImage(e *rss.Entry, preferredHost string) string {
	imgs := extract.PreferHost(extract.Images(e), preferredHost)
	if len(imgs) == 0 {
		return ""
	}
	return imgs[0]
}

// videoID returns the explicit video id, or one parsed out of the link.
func videoID(e *rss.Entry) string {
	if e.VideoID != "" {
		return e.VideoID
	}
	if m := videoIDPattern.FindStringSubmatch(e.Link); m != nil {
		return m[1]
	}
	return ""
}

// resolveImage makes a relative image URL absolute against the feed URL.
func resolveImage(log *slog.Logger, base, image string) string {
	if image == "" || strings.HasPrefix(image, "http") {
		return image
	}
	b, err := url.Parse(base)
	if err != nil {
		log.Debug("Failed to parse feed URL", "url", base, "error", err)
		return image
	}
	ref, err := url.Parse(image)
	if err != nil {
		log.Debug("Failed to resolve image URL", "image", image, "error", err)
		return image
	}
	return b.ResolveReference(ref).String()
}
