package feed

import (
	"errors"
	"time"
)

var (
	ErrMissingTitle = errors.New("feed has no channel title")
	ErrFeedGone     = errors.New("feed permanently gone")
)

// Document is a parsed feed. Items keep document order.
type Document struct {
	Title string
	Hints ChannelHints
	Items []Item
}

// ChannelHints carries informational channel metadata. Nothing acts on it.
type ChannelHints struct {
	LastBuildDate string
	TTL           string
	SkipDays      []string
	SkipHours     []string
}

func (h ChannelHints) Empty() bool {
	return h.LastBuildDate == "" && h.TTL == "" && len(h.SkipDays) == 0 && len(h.SkipHours) == 0
}

// Item is one entry as read from the document. PublishedAt is nil when the
// date was missing or unparsable.
type Item struct {
	GUID         string
	EnclosureURL string
	Title        string
	PublishedAt  *time.Time
}

// Actionable reports whether the item has everything needed to be handled.
func (i Item) Actionable() bool {
	return i.GUID != "" && i.EnclosureURL != "" && i.Title != ""
}

// Subscription is a feed row as declared in an import file.
type Subscription struct {
	URL   string
	Flags Flags
	Since *time.Time
}
