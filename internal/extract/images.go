package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/feedhook/internal/rss"
)

var imgSrc = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

type source struct {
	name string
	fn   func(*rss.Entry) ([]string, error)
}

// Sources are consulted in this order; earlier sources win after dedup.
var sources = []source{
	{"thumbnails", fromThumbnails},
	{"media_content", fromMediaContent},
	{"content_blocks", fromContentBlocks},
	{"enclosures", fromEnclosures},
	{"html_body", fromHTMLBody},
	{"noscript", fromNoscript},
}

// Images returns every candidate image URL found in the entry, trimmed,
// deduplicated and in source order. It never fails; a source that errors
// contributes nothing.
func Images(e *rss.Entry) []string {
	if e == nil {
		return nil
	}

	var candidates []string
	for _, s := range sources {
		urls, err := run(s, e)
		if err != nil {
			slog.Debug("Image source failed", "source", s.name, "link", e.Link, "error", err)
			continue
		}
		candidates = append(candidates, urls...)
	}
	return dedup(candidates)
}

func run(s source, e *rss.Entry) (urls []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			urls, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return s.fn(e)
}

// PreferHost moves the first URL starting with prefix to the front.
func PreferHost(urls []string, prefix string) []string {
	if prefix == "" {
		return urls
	}
	for i, u := range urls {
		if !strings.HasPrefix(u, prefix) {
			continue
		}
		if i == 0 {
			return urls
		}
		out := make([]string, 0, len(urls))
		out = append(out, u)
		out = append(out, urls[:i]...)
		return append(out, urls[i+1:]...)
	}
	return urls
}

func dedup(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	var out []string
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func mediaURLs(items []rss.Media) []string {
	var out []string
	for _, m := range items {
		out = append(out, m.URL)
	}
	return out
}

func fromThumbnails(e *rss.Entry) ([]string, error) {
	return mediaURLs(e.Thumbnails), nil
}

func fromMediaContent(e *rss.Entry) ([]string, error) {
	return mediaURLs(e.MediaContent), nil
}

func fromContentBlocks(e *rss.Entry) ([]string, error) {
	var out []string
	for _, c := range e.Content {
		if c.Type != "" && !strings.Contains(c.Type, "html") {
			continue
		}
		out = append(out, scanImgTags(c.Value)...)
	}
	return out, nil
}

func fromEnclosures(e *rss.Entry) ([]string, error) {
	var out []string
	for _, enc := range e.Enclosures {
		if strings.HasPrefix(enc.Type, "image") || hasImageExtension(enc.URL) {
			out = append(out, enc.URL)
		}
	}
	return out, nil
}

func fromHTMLBody(e *rss.Entry) ([]string, error) {
	return scanImgTags(e.HTMLBody()), nil
}

// fromNoscript reads images hidden in the first <noscript> block, where
// lazy-loading pages keep the real src.
func fromNoscript(e *rss.Entry) ([]string, error) {
	body := e.HTMLBody()
	if !strings.Contains(strings.ToLower(body), "<noscript") {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	nos := doc.Find("noscript").First()
	if nos.Length() == 0 {
		return nil, nil
	}

	imgs, err := noscriptImages(nos)
	if err != nil {
		return nil, err
	}
	var out []string
	imgs.Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			out = append(out, src)
		}
	})
	return out, nil
}

// noscriptImages returns the <img> elements inside a noscript block. The
// html parser keeps noscript content as raw text, so it is parsed again
// when no element children are present.
func noscriptImages(nos *goquery.Selection) (*goquery.Selection, error) {
	if imgs := nos.Find("img"); imgs.Length() > 0 {
		return imgs, nil
	}
	inner, err := goquery.NewDocumentFromReader(strings.NewReader(nos.Text()))
	if err != nil {
		return nil, err
	}
	return inner.Find("img"), nil
}

func scanImgTags(html string) []string {
	if html == "" {
		return nil
	}
	var out []string
	for _, m := range imgSrc.FindAllStringSubmatch(html, -1) {
		out = append(out, m[1])
	}
	return out
}

func hasImageExtension(u string) bool {
	lower := strings.ToLower(u)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
