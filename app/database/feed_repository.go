package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
)

var _ FeedRepository = (*FeedRepo)(nil)

var feedColumns = []string{"url", "last_fetched_at", "flags", "etag", "since", "title"}

// SQLite extended result codes for unique and primary key violations.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// FeedRepo handles database operations for feeds
type FeedRepo struct {
	db *sqlx.DB
}

func NewFeedRepository(db *sqlx.DB) *FeedRepo {
	return &FeedRepo{db: db}
}

// ListEnabledFeeds returns feeds with positive flags ordered by URL.
func (r *FeedRepo) ListEnabledFeeds(ctx context.Context) ([]Feed, error) {
	query, args, err := sq.Select(feedColumns...).
		From("feeds").
		Where(sq.Gt{"flags": 0}).
		OrderBy("url").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build enabled feeds query: %w", err)
	}

	feeds := []Feed{}
	if err := r.db.SelectContext(ctx, &feeds, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list enabled feeds: %w", err)
	}

	return feeds, nil
}

// GetFeed returns nil, nil when no feed has the given URL.
func (r *FeedRepo) GetFeed(ctx context.Context, url string) (*Feed, error) {
	query, args, err := sq.Select(feedColumns...).
		From("feeds").
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build feed query: %w", err)
	}

	var feed Feed
	err = r.db.GetContext(ctx, &feed, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return &feed, nil
}

// UpsertFeed inserts a subscription or updates flags and cutoff of an
// existing one. Fetch state is left untouched. Reports whether a row was created.
func (r *FeedRepo) UpsertFeed(ctx context.Context, url string, flags int, since *time.Time) (bool, error) {
	existing, err := r.GetFeed(ctx, url)
	if err != nil {
		return false, fmt.Errorf("failed to check existing feed: %w", err)
	}

	if existing != nil {
		query, args, err := sq.Update("feeds").
			Set("flags", flags).
			Set("since", since).
			Where(sq.Eq{"url": url}).
			ToSql()
		if err != nil {
			return false, fmt.Errorf("failed to build feed update: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return false, fmt.Errorf("failed to update feed: %w", err)
		}
		return false, nil
	}

	const q = `INSERT INTO feeds (url, flags, since) VALUES (:url, :flags, :since);`
	if _, err := r.db.NamedExecContext(ctx, q, Feed{URL: url, Flags: flags, Since: since}); err != nil {
		return false, fmt.Errorf("failed to insert feed: %w", err)
	}

	return true, nil
}

// UpdateFeedState records a successful fetch. An empty etag clears the stored validator.
func (r *FeedRepo) UpdateFeedState(ctx context.Context, url string, lastFetchedAt time.Time, etag string, title string) error {
	query, args, err := sq.Update("feeds").
		Set("last_fetched_at", lastFetchedAt.UnixMilli()).
		Set("etag", nullString(etag)).
		Set("title", nullString(title)).
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build feed state update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update feed state: %w", err)
	}

	return requireRow(res, url)
}

// MarkFeedDead zeroes the flags so the feed is excluded from future runs.
func (r *FeedRepo) MarkFeedDead(ctx context.Context, url string) error {
	const q = `UPDATE feeds SET flags = 0 WHERE url = ?;`

	res, err := r.db.ExecContext(ctx, q, url)
	if err != nil {
		return fmt.Errorf("failed to mark feed dead: %w", err)
	}

	return requireRow(res, url)
}

// MoveFeed rewrites the primary key in place, keeping state and flags.
func (r *FeedRepo) MoveFeed(ctx context.Context, oldURL, newURL string) error {
	const q = `UPDATE feeds SET url = ? WHERE url = ?;`

	res, err := r.db.ExecContext(ctx, q, newURL, oldURL)
	if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) &&
		(sqliteErr.Code() == sqliteConstraintPrimaryKey || sqliteErr.Code() == sqliteConstraintUnique) {
		return fmt.Errorf("feed %s already exists: %w", newURL, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to move feed: %w", err)
	}

	return requireRow(res, oldURL)
}

func requireRow(res sql.Result, url string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("feed %s: %w", url, ErrNotFound)
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
