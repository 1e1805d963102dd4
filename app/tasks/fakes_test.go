package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/rss-howler/app/database"
)

type stateUpdate struct {
	URL           string
	LastFetchedAt time.Time
	ETag          string
	Title         string
}

type fakeFeedRepo struct {
	feeds   []database.Feed
	listErr error
	moveErr error
	updates []stateUpdate
	dead    []string
	moves   [][2]string
	upserts []string
}

func (r *fakeFeedRepo) ListEnabledFeeds(ctx context.Context) ([]database.Feed, error) {
	return r.feeds, r.listErr
}

func (r *fakeFeedRepo) GetFeed(ctx context.Context, url string) (*database.Feed, error) {
	for i := range r.feeds {
		if r.feeds[i].URL == url {
			return &r.feeds[i], nil
		}
	}
	return nil, nil
}

func (r *fakeFeedRepo) UpsertFeed(ctx context.Context, url string, flags int, since *time.Time) (bool, error) {
	r.upserts = append(r.upserts, url)
	return true, nil
}

func (r *fakeFeedRepo) UpdateFeedState(ctx context.Context, url string, lastFetchedAt time.Time, etag string, title string) error {
	r.updates = append(r.updates, stateUpdate{URL: url, LastFetchedAt: lastFetchedAt, ETag: etag, Title: title})
	return nil
}

func (r *fakeFeedRepo) MarkFeedDead(ctx context.Context, url string) error {
	r.dead = append(r.dead, url)
	return nil
}

func (r *fakeFeedRepo) MoveFeed(ctx context.Context, oldURL, newURL string) error {
	if r.moveErr != nil {
		return r.moveErr
	}
	r.moves = append(r.moves, [2]string{oldURL, newURL})
	return nil
}

type fakeItemRepo struct {
	seen     map[string]bool
	recorded []database.SeenItem
	lookups  int
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{seen: make(map[string]bool)}
}

func (r *fakeItemRepo) HasSeen(ctx context.Context, guid string) (bool, error) {
	r.lookups++
	return r.seen[guid], nil
}

func (r *fakeItemRepo) RecordSeen(ctx context.Context, item database.SeenItem) error {
	if r.seen[item.GUID] {
		return database.ErrConflict
	}
	r.seen[item.GUID] = true
	r.recorded = append(r.recorded, item)
	return nil
}

// podcastRSS renders a channel whose items point at enclosure paths under
// mediaBase. Each item is "guid|path|title".
func podcastRSS(title, mediaBase string, items ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel>`)
	if title != "" {
		fmt.Fprintf(&b, "<title>%s</title>", title)
	}
	for _, item := range items {
		parts := strings.SplitN(item, "|", 3)
		fmt.Fprintf(&b, `<item><guid>%s</guid><title>%s</title><enclosure url="%s%s" type="audio/mpeg"/></item>`,
			parts[0], parts[2], mediaBase, parts[1])
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}
