package rss

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// Media is one media:thumbnail or media:content element.
type Media struct {
	URL  string
	Type string
}

// Content is an inline content block of an entry.
type Content struct {
	Type  string
	Value string
}

type Enclosure struct {
	URL  string
	Type string
}

// Entry is a single feed item with its loosely structured fields grouped by
// family. Any family may be empty.
type Entry struct {
	Link        string
	Title       string
	Summary     string
	Description string
	VideoID     string
	Published   *time.Time

	Thumbnails   []Media
	MediaContent []Media
	Content      []Content
	Enclosures   []Enclosure
}

// HTMLBody returns the richest HTML available: the first non-empty content
// block, then the summary, then the description.
func (e *Entry) HTMLBody() string {
	for _, c := range e.Content {
		if strings.TrimSpace(c.Value) != "" {
			return c.Value
		}
	}
	if e.Summary != "" {
		return e.Summary
	}
	return e.Description
}

// FromItem maps a parsed gofeed item onto an Entry.
func FromItem(item *gofeed.Item) *Entry {
	e := &Entry{
		Link:    strings.TrimSpace(item.Link),
		Title:   item.Title,
		Summary: item.Description,
	}

	if item.PublishedParsed != nil {
		e.Published = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		e.Published = item.UpdatedParsed
	}

	if item.Content != "" {
		e.Content = append(e.Content, Content{Type: "text/html", Value: item.Content})
	}

	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		e.Enclosures = append(e.Enclosures, Enclosure{URL: enc.URL, Type: enc.Type})
	}
	e.Enclosures = append(e.Enclosures, atomLinks(item.Extensions)...)

	e.Thumbnails = mediaField(item.Extensions, "thumbnail")
	if item.Image != nil && item.Image.URL != "" {
		e.Thumbnails = append(e.Thumbnails, Media{URL: item.Image.URL})
	}
	if item.ITunesExt != nil && item.ITunesExt.Image != "" {
		e.Thumbnails = append(e.Thumbnails, Media{URL: item.ITunesExt.Image})
	}
	e.MediaContent = mediaField(item.Extensions, "content")

	e.Description = extensionText(item.Extensions, "media", "description")
	e.VideoID = extensionText(item.Extensions, "yt", "videoId")

	return e
}

// mediaField collects a media RSS element whether it sits directly on the
// item or inside a media:group, reading either the url or href attribute.
func mediaField(exts ext.Extensions, name string) []Media {
	media, ok := exts["media"]
	if !ok {
		return nil
	}

	out := mediaFromExtensions(media[name])
	for _, group := range media["group"] {
		out = append(out, mediaFromExtensions(group.Children[name])...)
	}
	return out
}

func mediaFromExtensions(list []ext.Extension) []Media {
	var out []Media
	for _, el := range list {
		url := el.Attrs["url"]
		if url == "" {
			url = el.Attrs["href"]
		}
		if url == "" {
			continue
		}
		out = append(out, Media{URL: url, Type: el.Attrs["type"]})
	}
	return out
}

// extensionText returns the first value of prefix:name, looking inside a
// media:group as well.
func extensionText(exts ext.Extensions, prefix, name string) string {
	ns, ok := exts[prefix]
	if !ok {
		return ""
	}
	for _, el := range ns[name] {
		if v := strings.TrimSpace(el.Value); v != "" {
			return v
		}
	}
	for _, group := range ns["group"] {
		for _, el := range group.Children[name] {
			if v := strings.TrimSpace(el.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

// atomLinks returns atom:link elements of an RSS item with rel enclosure or
// related. Atom feeds get these through atomTranslator instead.
func atomLinks(exts ext.Extensions) []Enclosure {
	var out []Enclosure
	for _, el := range exts["atom"]["link"] {
		rel := el.Attrs["rel"]
		if rel != "enclosure" && rel != "related" {
			continue
		}
		if href := strings.TrimSpace(el.Attrs["href"]); href != "" {
			out = append(out, Enclosure{URL: href, Type: el.Attrs["type"]})
		}
	}
	return out
}
