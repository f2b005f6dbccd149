package rss

import (
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
)

// atomTranslator is gofeed's Atom translator plus rel="related" links, which
// the default only keeps for rel="enclosure". They are appended to the item's
// enclosures so image links of either kind reach the extractor.
type atomTranslator struct {
	gofeed.DefaultAtomTranslator
}

func (t *atomTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	result, err := t.DefaultAtomTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}

	af, ok := feed.(*atom.Feed)
	if !ok || len(af.Entries) != len(result.Items) {
		return result, nil
	}

	for i, entry := range af.Entries {
		for _, l := range entry.Links {
			if l == nil || l.Rel != "related" || l.Href == "" {
				continue
			}
			result.Items[i].Enclosures = append(result.Items[i].Enclosures, &gofeed.Enclosure{
				URL:    l.Href,
				Type:   l.Type,
				Length: l.Length,
			})
		}
	}
	return result, nil
}
