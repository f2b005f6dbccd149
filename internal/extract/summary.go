package extract

import (
	"html"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/feedhook/internal/rss"
)

const (
	maxBlocks       = 6
	maxSummaryRunes = 4000
)

// Clean turns the entry's HTML body into a short plain-text excerpt and picks
// the first usable image. Ads, scripts, styles and iframes are dropped first.
func Clean(e *rss.Entry) (text string, image string) {
	if e == nil {
		return "", ""
	}
	body := e.HTMLBody()
	if strings.TrimSpace(body) == "" {
		return "", ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		slog.Debug("Failed to parse entry HTML", "link", e.Link, "error", err)
		return "", ""
	}

	doc.Find(".ad, .advert, script, style, iframe").Remove()

	image = firstImage(doc)

	var parts []string
	doc.Find("h1, h2, h3, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if t != "" {
			parts = append(parts, html.UnescapeString(t))
		}
		return len(parts) < maxBlocks
	})

	return truncate(strings.Join(parts, "\n\n"), maxSummaryRunes), image
}

// firstImage returns the first <img> src, looking inside <noscript> when there
// is no image outside it or the src is blank or a data URI. The parser keeps
// noscript content as raw text, so those images never match doc.Find("img").
func firstImage(doc *goquery.Document) string {
	src := strings.TrimSpace(doc.Find("img").First().AttrOr("src", ""))
	if src != "" && !strings.HasPrefix(src, "data:") {
		return src
	}

	nos := doc.Find("noscript").First()
	if nos.Length() == 0 {
		return ""
	}
	imgs, err := noscriptImages(nos)
	if err != nil {
		slog.Debug("Failed to parse noscript block", "error", err)
		return ""
	}
	return strings.TrimSpace(imgs.First().AttrOr("src", ""))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
