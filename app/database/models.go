package database

import (
	"time"
)

// Feed is one subscription row. Flags <= 0 means the feed is never synced.
type Feed struct {
	URL           string     `db:"url"`
	LastFetchedAt int64      `db:"last_fetched_at"` // unix milliseconds, 0 = never fetched
	Flags         int        `db:"flags"`
	ETag          *string    `db:"etag"`
	Since         *time.Time `db:"since"`
	Title         *string    `db:"title"`
}

// LastFetched returns the zero time when the feed was never fetched.
func (f Feed) LastFetched() time.Time {
	if f.LastFetchedAt <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(f.LastFetchedAt).UTC()
}

func (f Feed) Enabled() bool {
	return f.Flags > 0
}

// SeenItem records an item whose enclosure was handled. Presence of the GUID
// is the only dedup signal.
type SeenItem struct {
	GUID         string    `db:"guid"`
	EnclosureURL string    `db:"enclosure_url"`
	Title        string    `db:"title"`
	FeedTitle    string    `db:"feed_title"`
	DownloadedAt time.Time `db:"downloaded_at"`
}
