package extract

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/deusflow/feedhook/internal/rss"
)

func TestImagesDedupKeepsEarliestSource(t *testing.T) {
	shared := "https://img.example.com/shared.jpg"
	e := &rss.Entry{
		Thumbnails:   []rss.Media{{URL: " " + shared + " "}},
		MediaContent: []rss.Media{{URL: "https://img.example.com/other.png"}},
		Content:      []rss.Content{{Type: "text/html", Value: `<p><img src="` + shared + `"></p>`}},
		Enclosures:   []rss.Enclosure{{URL: shared, Type: "image/jpeg"}},
	}

	got := Images(e)
	want := []string{shared, "https://img.example.com/other.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Images() = %v, want %v", got, want)
	}
}

func TestImagesSourceOrder(t *testing.T) {
	e := &rss.Entry{
		Content: []rss.Content{
			{Type: "text/plain", Value: `<img src="https://x/plain.jpg">`},
			{Type: "text/html", Value: `<IMG alt="a" SRC='https://x/block.jpg'>`},
		},
		Enclosures: []rss.Enclosure{
			{URL: "https://x/audio.mp3", Type: "audio/mpeg"},
			{URL: "https://x/photo.WEBP"},
		},
		Summary: `<p><img src="https://x/summary.gif"></p><noscript><img src="https://x/lazy.jpg"></noscript>`,
	}

	got := Images(e)
	want := []string{
		"https://x/block.jpg",
		"https://x/photo.WEBP",
		"https://x/plain.jpg",
	}
	// The first content block is the HTML body even when it is not typed as
	// html, so the summary is never scanned.
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Images() = %v, want %v", got, want)
	}
}

func TestImagesNoscriptFromSummary(t *testing.T) {
	e := &rss.Entry{
		Summary: `<img src="data:image/gif;base64,R0lG"><noscript><img src="https://x/real.jpg"></noscript>`,
	}
	got := Images(e)
	want := []string{"data:image/gif;base64,R0lG", "https://x/real.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Images() = %v, want %v", got, want)
	}

	nos, err := fromNoscript(e)
	if err != nil {
		t.Fatalf("fromNoscript failed: %v", err)
	}
	if !reflect.DeepEqual(nos, []string{"https://x/real.jpg"}) {
		t.Errorf("fromNoscript() = %v", nos)
	}
}

func TestImagesEmptyEntry(t *testing.T) {
	if got := Images(&rss.Entry{}); len(got) != 0 {
		t.Errorf("expected no images, got %v", got)
	}
	if got := Images(nil); got != nil {
		t.Errorf("expected nil for nil entry, got %v", got)
	}
}

func TestPreferHost(t *testing.T) {
	urls := []string{"https://a/1.jpg", "https://b/2.jpg", "https://b/3.jpg"}

	got := PreferHost(urls, "https://b")
	want := []string{"https://b/2.jpg", "https://a/1.jpg", "https://b/3.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PreferHost() = %v, want %v", got, want)
	}

	if got := PreferHost(urls, "https://c"); !reflect.DeepEqual(got, urls) {
		t.Errorf("expected unchanged order, got %v", got)
	}
	if got := PreferHost(urls, ""); !reflect.DeepEqual(got, urls) {
		t.Errorf("expected unchanged order for empty prefix, got %v", got)
	}
}

func TestCleanKeepsFirstSixBlocks(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "<p>Para %d &amp; more</p>", i)
	}
	e := &rss.Entry{Content: []rss.Content{{Type: "text/html", Value: b.String()}}}

	text, image := Clean(e)
	if image != "" {
		t.Errorf("expected no image, got %q", image)
	}

	parts := strings.Split(text, "\n\n")
	if len(parts) != 6 {
		t.Fatalf("expected 6 blocks, got %d: %q", len(parts), text)
	}
	if parts[0] != "Para 1 & more" || parts[5] != "Para 6 & more" {
		t.Errorf("unexpected blocks %q", parts)
	}
	if strings.Contains(text, "Para 7") {
		t.Error("text contains paragraphs past the sixth")
	}
}

func TestCleanStripsNoise(t *testing.T) {
	e := &rss.Entry{Summary: `
		<h2>Headline</h2>
		<div class="ad"><p>Buy now</p></div>
		<script>var x = 1;</script>
		<p class="advert">Sponsored</p>
		<p>  Body text  </p>
		<p>   </p>
		<img src="https://x/a.jpg">`}

	text, image := Clean(e)
	if text != "Headline\n\nBody text" {
		t.Errorf("unexpected text %q", text)
	}
	if image != "https://x/a.jpg" {
		t.Errorf("unexpected image %q", image)
	}
}

func TestCleanNoscriptImage(t *testing.T) {
	e := &rss.Entry{Summary: `<p>Text</p><img src="data:image/png;base64,AAA"><noscript><img src="https://x/real.jpg"></noscript>`}

	_, image := Clean(e)
	if image != "https://x/real.jpg" {
		t.Errorf("expected noscript image, got %q", image)
	}
}

func TestCleanNoscriptOnlyImage(t *testing.T) {
	e := &rss.Entry{Summary: `<p>Text</p><noscript><img src="https://x/real.jpg"></noscript>`}

	text, image := Clean(e)
	if text != "Text" {
		t.Errorf("unexpected text %q", text)
	}
	if image != "https://x/real.jpg" {
		t.Errorf("expected noscript image when no other image exists, got %q", image)
	}
}

func TestCleanTruncates(t *testing.T) {
	long := strings.Repeat("é", 5000)
	e := &rss.Entry{Description: "<p>" + long + "</p>"}

	text, _ := Clean(e)
	if n := utf8.RuneCountInString(text); n != 4000 {
		t.Errorf("expected 4000 characters, got %d", n)
	}
}

func TestCleanEmpty(t *testing.T) {
	text, image := Clean(&rss.Entry{})
	if text != "" || image != "" {
		t.Errorf("expected empty result, got %q %q", text, image)
	}
}
