package database

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type FeedRepository interface {
	ListEnabledFeeds(ctx context.Context) ([]Feed, error)
	GetFeed(ctx context.Context, url string) (*Feed, error)

	UpsertFeed(ctx context.Context, url string, flags int, since *time.Time) (bool, error)
	UpdateFeedState(ctx context.Context, url string, lastFetchedAt time.Time, etag string, title string) error
	MarkFeedDead(ctx context.Context, url string) error
	MoveFeed(ctx context.Context, oldURL, newURL string) error
}

type ItemRepository interface {
	HasSeen(ctx context.Context, guid string) (bool, error)
	RecordSeen(ctx context.Context, item SeenItem) error
}
