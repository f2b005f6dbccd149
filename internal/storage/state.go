package storage

// State maps a feed name to the links already delivered for it, in the order
// they were recorded. It is the JSON document {"feeds": {...}}.
type State struct {
	Feeds map[string][]string `json:"feeds"`

	index map[string]map[string]struct{}
}

func NewState() *State {
	return &State{Feeds: make(map[string][]string)}
}

// Seen reports whether link was recorded for feed.
func (s *State) Seen(feed, link string) bool {
	_, ok := s.feedIndex(feed)[link]
	return ok
}

// Mark records link for feed. It returns false when the link was already
// recorded.
func (s *State) Mark(feed, link string) bool {
	idx := s.feedIndex(feed)
	if _, ok := idx[link]; ok {
		return false
	}
	idx[link] = struct{}{}
	if s.Feeds == nil {
		s.Feeds = make(map[string][]string)
	}
	s.Feeds[feed] = append(s.Feeds[feed], link)
	return true
}

// Counts returns the number of recorded links per feed.
func (s *State) Counts() map[string]int {
	out := make(map[string]int, len(s.Feeds))
	for feed, links := range s.Feeds {
		out[feed] = len(links)
	}
	return out
}

func (s *State) feedIndex(feed string) map[string]struct{} {
	if s.index == nil {
		s.index = make(map[string]map[string]struct{})
	}
	idx, ok := s.index[feed]
	if !ok {
		links := s.Feeds[feed]
		idx = make(map[string]struct{}, len(links))
		for _, l := range links {
			idx[l] = struct{}{}
		}
		s.index[feed] = idx
	}
	return idx
}

// normalize drops empty and repeated links that a hand-edited document may
// carry.
func (s *State) normalize() {
	if s.Feeds == nil {
		s.Feeds = make(map[string][]string)
		return
	}
	for feed, links := range s.Feeds {
		seen := make(map[string]struct{}, len(links))
		kept := links[:0]
		for _, l := range links {
			if l == "" {
				continue
			}
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			kept = append(kept, l)
		}
		s.Feeds[feed] = kept
	}
	s.index = nil
}
